package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/dto"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	reconciliacaoCorrigidas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cep_reconciliacao_movimentos_corrigidos_total",
		Help: "Sale movements backfilled by the reconciliation job.",
	})
	reconciliacaoFalhas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cep_reconciliacao_falhas_total",
		Help: "Sales the reconciliation job could not backfill.",
	})
)

type ReconciliacaoService interface {
	// Reconciliar sweeps completed sales in [inicio, fim) and backfills any
	// missing "venda" movement through the standard recorder. Idempotent:
	// already recorded and zero-cash sales are skipped, and each run only
	// converges the ledger toward the sales table.
	Reconciliar(ctx context.Context, inicio, fim time.Time) (*dto.ResultadoReconciliacao, error)
	// ReconciliarDia runs Reconciliar over one business day in the store
	// timezone. This is the nightly job's entrypoint.
	ReconciliarDia(ctx context.Context, dia time.Time) (*dto.ResultadoReconciliacao, error)
}

type reconciliacaoService struct {
	vendaRepo   repository.VendaRepository
	caixaSvc    CaixaService
	caixaPadrao string
	loc         *time.Location
}

func NewReconciliacaoService(vendaRepo repository.VendaRepository, caixaSvc CaixaService, caixaPadrao string, loc *time.Location) ReconciliacaoService {
	return &reconciliacaoService{vendaRepo: vendaRepo, caixaSvc: caixaSvc, caixaPadrao: caixaPadrao, loc: loc}
}

func (s *reconciliacaoService) Reconciliar(ctx context.Context, inicio, fim time.Time) (*dto.ResultadoReconciliacao, error) {
	vendas, err := s.vendaRepo.ListPeriodo(ctx, inicio, fim)
	if err != nil {
		return nil, err
	}

	resultado := &dto.ResultadoReconciliacao{Erros: []string{}}
	for i := range vendas {
		v := &vendas[i]

		pagamentos := make([]dto.PagamentoVenda, 0, len(v.Pagamentos))
		for _, p := range v.Pagamentos {
			pagamentos = append(pagamentos, dto.PagamentoVenda{Metodo: p.Metodo, Valor: p.Valor, Bandeira: p.Bandeira})
		}

		// Legacy sales may carry no register reference at all.
		caixaNome := v.CaixaNome
		if caixaNome == "" {
			caixaNome = s.caixaPadrao
		}

		// The movement keeps the sale's own timestamp so it lands on the
		// business day the money actually entered the drawer.
		res := s.caixaSvc.RegistrarMovimentoVenda(ctx, v.ID.String(), caixaNome, pagamentos, v.DataVenda, nil)
		switch {
		case !res.Sucesso:
			// One bad sale never stops the sweep.
			reconciliacaoFalhas.Inc()
			// The id matches the movement motivo "Venda #<id>", so the entry
			// can be correlated with the ledger by hand.
			resultado.Erros = append(resultado.Erros, fmt.Sprintf(
				"venda %s (ticket #%d, caixa %q): R$ %s não registrado: %s",
				v.ID, v.NumeroTicket, caixaNome, res.ValorRegistrado.StringFixed(2), res.Erro,
			))
		case res.Erro == "" && res.MovimentacaoID != nil:
			reconciliacaoCorrigidas.Inc()
			resultado.Corrigidas++
		}
	}

	log.Info().
		Time("inicio", inicio).
		Time("fim", fim).
		Int("vendas", len(vendas)).
		Int("corrigidas", resultado.Corrigidas).
		Int("erros", len(resultado.Erros)).
		Msg("reconciliação de movimentos concluída")
	return resultado, nil
}

func (s *reconciliacaoService) ReconciliarDia(ctx context.Context, dia time.Time) (*dto.ResultadoReconciliacao, error) {
	inicio := meiaNoite(dia, s.loc)
	return s.Reconciliar(ctx, inicio, inicio.Add(24*time.Hour))
}
