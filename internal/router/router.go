package router

import (
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/auth"
	"github.com/KromaEnergia/api-crm/internal/cache"
	"github.com/KromaEnergia/api-crm/internal/cadastro"
	"github.com/KromaEnergia/api-crm/internal/config"
	"github.com/KromaEnergia/api-crm/internal/dashboard"
	"github.com/KromaEnergia/api-crm/internal/empresa"
	"github.com/KromaEnergia/api-crm/internal/etapa"
	"github.com/KromaEnergia/api-crm/internal/httpclient"
	"github.com/KromaEnergia/api-crm/internal/integracao/chat"
	"github.com/KromaEnergia/api-crm/internal/integracao/cnpj"
	"github.com/KromaEnergia/api-crm/internal/integracao/whatsapp"
	"github.com/KromaEnergia/api-crm/internal/interacao"
	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/metrics"
	"github.com/KromaEnergia/api-crm/internal/negocio"
	"github.com/KromaEnergia/api-crm/internal/notificacao"
	"github.com/KromaEnergia/api-crm/internal/servico"
	"github.com/KromaEnergia/api-crm/internal/tokens"
	"github.com/KromaEnergia/api-crm/internal/usuario"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Deps são as dependências montadas pelo main
type Deps struct {
	Config   *config.Configuration
	DB       *gorm.DB
	Logger   *logger.Logger
	Metrics  *metrics.Collector
	Verifier auth.Verifier
	Manager  *auth.Manager // nil com provider cognito: sem login local nem JWKS
	HTTP     httpclient.Client
	Cache    cache.Cache
	Hub      interacao.Hub
}

func New(d Deps) http.Handler {
	cfg, db, log := d.Config, d.DB, d.Logger
	integ := cfg.Integrations

	interacoes := interacao.NewService(db, d.Hub, log)
	negocios := negocio.NewService(db, interacoes, d.Metrics, log)
	etapas := etapa.NewService(db, negocios, log)
	servicos := servico.NewService(db, negocios, log)
	alertas := notificacao.NewWebhook(d.HTTP, integ.AlertWebhookURL, log)
	ledger := tokens.NewLedger(db, cfg.Tokens.PlanDays, d.Metrics, log)

	var sessions *auth.Sessions
	if d.Manager != nil {
		sessions = auth.NewSessions(db, d.Manager, cfg.Auth.CookieSecure)
	}

	usuarioHandler := usuario.NewHandler(db, sessions, log)
	etapaHandler := etapa.NewHandler(etapas)
	servicoHandler := servico.NewHandler(servicos)
	empresaHandler := empresa.NewHandler(db, cnpj.NewClient(d.HTTP, integ.CNPJBaseURL, d.Cache, integ.CNPJCacheTTL, log))
	negocioHandler := negocio.NewHandler(negocios)
	cadastroHandler := cadastro.NewHandler(cadastro.NewService(db, etapas, negocios, alertas, log))
	interacaoHandler := interacao.NewHandler(interacoes, negocios, usuario.NewDiretorio(db), cfg.Server.AllowedOrigins)
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(db, log))
	tokensHandler := tokens.NewHandler(ledger, integ.ActivationSecret)
	chatHandler := chat.NewHandler(chat.NewClient(d.HTTP, integ.ChatWebhookURL, log))
	whatsappHandler := whatsapp.NewHandler(
		whatsapp.NewClient(d.HTTP, integ.WhatsAppURL, integ.WhatsAppToken, integ.WhatsAppRate, log),
		interacoes, negocios)

	r := mux.NewRouter()
	r.Use(d.Metrics.Middleware)

	// Rotas públicas
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	r.HandleFunc("/tokens/ativacao", tokensHandler.Ativar).Methods(http.MethodPost)
	if sessions != nil {
		r.HandleFunc("/auth/login", usuarioHandler.Login).Methods(http.MethodPost)
		r.HandleFunc("/auth/refresh", sessions.Refresh).Methods(http.MethodPost)
		r.HandleFunc("/auth/logout", sessions.Logout).Methods(http.MethodPost)
		r.HandleFunc("/.well-known/jwks.json", d.Manager.JWKSHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.MiddlewareAutenticacao(d.Verifier))
	admin := func(h http.HandlerFunc) http.Handler { return auth.RequireAdmin(h) }

	// Usuários
	api.HandleFunc("/usuarios/me", usuarioHandler.Me).Methods(http.MethodGet)
	api.Handle("/usuarios", admin(usuarioHandler.Listar)).Methods(http.MethodGet)
	api.Handle("/usuarios", admin(usuarioHandler.Criar)).Methods(http.MethodPost)

	// Etapas do funil
	api.HandleFunc("/etapas", etapaHandler.Listar).Methods(http.MethodGet)
	api.HandleFunc("/etapas", etapaHandler.Criar).Methods(http.MethodPost)
	api.HandleFunc("/etapas/{id}", etapaHandler.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/etapas/{id}", etapaHandler.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/etapas/{id}/mover", etapaHandler.Mover).Methods(http.MethodPost)

	// Catálogo de serviços (escrita só admin)
	api.HandleFunc("/servicos", servicoHandler.Listar).Methods(http.MethodGet)
	api.HandleFunc("/servicos/{id}", servicoHandler.Buscar).Methods(http.MethodGet)
	api.Handle("/servicos", admin(servicoHandler.Criar)).Methods(http.MethodPost)
	api.Handle("/servicos/{id}", admin(servicoHandler.Atualizar)).Methods(http.MethodPut)
	api.Handle("/servicos/{id}", admin(servicoHandler.Deletar)).Methods(http.MethodDelete)

	// Empresas
	api.HandleFunc("/empresas", empresaHandler.Listar).Methods(http.MethodGet)
	api.HandleFunc("/empresas/cnpj/{cnpj}", empresaHandler.ConsultarCNPJ).Methods(http.MethodGet)
	api.HandleFunc("/empresas/{id}", empresaHandler.Buscar).Methods(http.MethodGet)

	// Negócios e histórico
	api.HandleFunc("/negocios", negocioHandler.Listar).Methods(http.MethodGet)
	api.HandleFunc("/negocios", cadastroHandler.Criar).Methods(http.MethodPost)
	api.HandleFunc("/negocios/{id}", negocioHandler.Buscar).Methods(http.MethodGet)
	api.HandleFunc("/negocios/{id}", negocioHandler.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/negocios/{id}/etapa", negocioHandler.MoverEtapa).Methods(http.MethodPatch)
	api.HandleFunc("/negocios/{id}/interacoes", interacaoHandler.Listar).Methods(http.MethodGet)
	api.HandleFunc("/negocios/{id}/interacoes", interacaoHandler.Criar).Methods(http.MethodPost)
	api.HandleFunc("/negocios/{id}/interacoes/ws", interacaoHandler.Acompanhar).Methods(http.MethodGet)

	// Painel, tokens e integrações
	api.HandleFunc("/dashboard", dashboardHandler.Obter).Methods(http.MethodGet)
	api.HandleFunc("/tokens/me", tokensHandler.Saldo).Methods(http.MethodGet)
	api.Handle("/chat", ledger.Require(int64(cfg.Tokens.ChatCost))(http.HandlerFunc(chatHandler.Enviar))).Methods(http.MethodPost)
	api.HandleFunc("/whatsapp/enviar", whatsappHandler.Enviar).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
