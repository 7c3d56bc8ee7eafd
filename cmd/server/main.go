package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/config"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/infra"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/router"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/worker"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Str("timezone", cfg.Timezone).Err(err).Msg("invalid timezone")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg, mailCB)
	flags := infra.NewFlagStore(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	fechamentoRepo := repository.NewFechamentoRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	caixaSvc := service.NewCaixaService(caixaRepo, fechamentoRepo, vendaRepo, loc)
	fechamentoSvc := service.NewFechamentoService(fechamentoRepo, caixaRepo, caixaSvc, dispatcher, flags, loc)
	vendaSvc := service.NewVendaService(vendaRepo, produtoRepo, clienteRepo, caixaRepo, caixaSvc, loc)
	reconciliacaoSvc := service.NewReconciliacaoService(vendaRepo, caixaSvc, cfg.CaixaPadrao, loc)
	alertaSvc := service.NewAlertaService(caixaRepo, fechamentoRepo, flags, dispatcher, loc)
	clienteSvc := service.NewClienteService(clienteRepo)
	produtoSvc := service.NewProdutoService(produtoRepo)

	// ── Worker pool ──────────────────────────────────────────────────────────
	handlers := worker.Handlers{
		Email:         worker.NewEmailWorker(mailer, fechamentoRepo, rdb, cfg.PDFStoragePath, cfg.EmailAlertas),
		Reconciliacao: worker.NewReconciliacaoWorker(reconciliacaoSvc, loc),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	// ── Scheduler ────────────────────────────────────────────────────────────
	// Nightly sweep converges the cash ledger with the day's sales; the
	// morning audit mails the administrators about missing closings.
	scheduler := gocron.NewScheduler(loc)
	scheduler.Every(1).Day().At("23:30").Do(func() {
		dia := time.Now().In(loc).Format("2006-01-02")
		if err := dispatcher.EnqueueReconciliacao(ctx, worker.ReconciliacaoJobPayload{Dia: dia}); err != nil {
			log.Error().Err(err).Msg("failed to enqueue nightly reconciliation")
		}
	})
	scheduler.Every(1).Day().At("08:00").Do(func() {
		if err := alertaSvc.Auditar(ctx); err != nil {
			log.Error().Err(err).Msg("morning closing audit failed")
		}
	})
	scheduler.StartAsync()
	defer scheduler.Stop()

	r := router.New(router.Deps{
		Cfg:    cfg,
		DB:     db,
		RDB:    rdb,
		MailCB: mailCB,
		Loc:    loc,

		AuthSvc:          authSvc,
		CaixaSvc:         caixaSvc,
		FechamentoSvc:    fechamentoSvc,
		VendaSvc:         vendaSvc,
		ReconciliacaoSvc: reconciliacaoSvc,
		AlertaSvc:        alertaSvc,
		ClienteSvc:       clienteSvc,
		ProdutoSvc:       produtoSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Cresci e Perdi backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
