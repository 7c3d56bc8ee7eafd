package router

import (
	"time"

	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/config"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/handler"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/infra"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/middleware"
	"github.com/crescimaceioadm-arch/cep-newsystem-sub001/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs. Services are built once in
// main so the worker pool and the schedulers share the same instances.
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	RDB    *redis.Client
	MailCB *infra.CircuitBreaker
	Loc    *time.Location

	AuthSvc          service.AuthService
	CaixaSvc         service.CaixaService
	FechamentoSvc    service.FechamentoService
	VendaSvc         service.VendaService
	ReconciliacaoSvc service.ReconciliacaoService
	AlertaSvc        service.AlertaService
	ClienteSvc       service.ClienteService
	ProdutoSvc       service.ProdutoService
}

// New wires the middleware chain, handlers and routes into a Gin engine.
func New(d Deps) *gin.Engine {
	if d.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Prometheus())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(d.AuthSvc)
	usuariosH := handler.NewUsuariosHandler(d.AuthSvc)
	caixasH := handler.NewCaixasHandler(d.CaixaSvc, d.Loc)
	fechamentosH := handler.NewFechamentosHandler(d.FechamentoSvc, d.Loc)
	vendasH := handler.NewVendasHandler(d.VendaSvc)
	reconciliacaoH := handler.NewReconciliacaoHandler(d.ReconciliacaoSvc, d.Loc)
	alertasH := handler.NewAlertasHandler(d.AlertaSvc, d.Loc)
	clientesH := handler.NewClientesHandler(d.ClienteSvc)
	produtosH := handler.NewProdutosHandler(d.ProdutoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB, d.MailCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(d.Cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		todos := middleware.RequireRole("operador", "gerente", "administrador")
		gestao := middleware.RequireRole("gerente", "administrador")
		admin := middleware.RequireRole("administrador")

		// Vendas
		v1.POST("/vendas", todos, vendasH.Registrar)
		v1.GET("/vendas", todos, vendasH.Listar)
		v1.GET("/vendas/:id", todos, vendasH.Obter)
		v1.DELETE("/vendas/:id", gestao, vendasH.Cancelar)

		// Caixas
		v1.GET("/caixas", todos, caixasH.Listar)
		v1.GET("/caixas/:id/saldo", todos, caixasH.Saldo)
		v1.GET("/caixas/:id/movimentacoes", todos, caixasH.Movimentacoes)
		v1.POST("/caixas/movimentacoes", todos, caixasH.MovimentacaoManual)
		v1.POST("/caixas/transferencias", todos, caixasH.Transferir)
		v1.POST("/caixas", admin, caixasH.Criar)
		v1.DELETE("/caixas/:id", admin, caixasH.Desativar)
		v1.POST("/caixas/ajustes", admin, caixasH.Ajuste)

		// Fechamentos
		v1.POST("/fechamentos", todos, fechamentosH.Fechar)
		v1.GET("/fechamentos", todos, fechamentosH.ListarPorDia)
		v1.GET("/fechamentos/:id", todos, fechamentosH.Obter)
		// Retroativos ficam abertos a operadores: é o caminho de correção do
		// alerta de fechamento e o serviço já força status pendente_aprovacao.
		v1.POST("/fechamentos/retroativos", todos, fechamentosH.FecharRetroativo)
		v1.GET("/fechamentos/pendentes/lista", gestao, fechamentosH.ListarPendentes)
		v1.POST("/fechamentos/:id/aprovar", admin, fechamentosH.Aprovar)
		v1.POST("/fechamentos/:id/rejeitar", admin, fechamentosH.Rejeitar)

		// Abertura do caixa Avaliação
		v1.POST("/avaliacao/abertura", todos, fechamentosH.AbrirAvaliacao)

		// Reconciliação (o mesmo trabalho roda toda noite via scheduler)
		v1.POST("/reconciliacao", gestao, reconciliacaoH.Executar)

		// Alertas de fechamento
		v1.GET("/alertas/fechamentos", todos, alertasH.Verificar)
		v1.POST("/alertas/fechamentos/dispensar", todos, alertasH.Dispensar)

		// Clientes e avaliações de peças
		v1.POST("/clientes", todos, clientesH.Criar)
		v1.GET("/clientes", todos, clientesH.Listar)
		v1.GET("/clientes/:id", todos, clientesH.Obter)
		v1.PUT("/clientes/:id", gestao, clientesH.Atualizar)
		v1.POST("/avaliacoes", todos, clientesH.CriarAvaliacao)
		v1.GET("/avaliacoes", todos, clientesH.ListarAvaliacoes)
		v1.POST("/avaliacoes/:id/aceitar", gestao, clientesH.AceitarAvaliacao)
		v1.POST("/avaliacoes/:id/recusar", gestao, clientesH.RecusarAvaliacao)

		// Produtos
		v1.GET("/produtos", todos, produtosH.Listar)
		v1.GET("/produtos/:id", todos, produtosH.Obter)
		v1.POST("/produtos", gestao, produtosH.Criar)
		v1.PUT("/produtos/:id", gestao, produtosH.Atualizar)
		v1.DELETE("/produtos/:id", admin, produtosH.Desativar)

		// Usuários
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI — only enabled outside production
	if d.Cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
