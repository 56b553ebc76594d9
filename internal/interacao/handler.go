package interacao

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/KromaEnergia/api-crm/internal/auth"
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Acesso confirma que o usuário enxerga o negócio (tenant e responsável)
type Acesso interface {
	VerificarAcesso(ctx context.Context, id auth.Identidade, negocioID string) error
}

// Autores resolve o nome de exibição dos usuários do tenant
type Autores interface {
	Nomes(ctx context.Context, tenantID string) (map[string]string, error)
}

const writeWait = 10 * time.Second

type Handler struct {
	Service  *Service
	Acesso   Acesso
	Autores  Autores
	upgrader websocket.Upgrader
}

// NewHandler aceita websocket das origens informadas; lista vazia aceita qualquer origem
func NewHandler(s *Service, acesso Acesso, autores Autores, origens []string) *Handler {
	return &Handler{
		Service: s,
		Acesso:  acesso,
		Autores: autores,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origens) == 0 || origin == "" || lo.Contains(origens, origin)
			},
		},
	}
}

func (h *Handler) nomes(ctx context.Context, tenantID string) map[string]string {
	nomes, err := h.Autores.Nomes(ctx, tenantID)
	if err != nil {
		h.Service.Logger.Warnw("falha ao carregar autores", "tenant", tenantID, "error", err)
		return map[string]string{}
	}
	return nomes
}

// GET /negocios/{id}/interacoes
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	negocioID := mux.Vars(r)["id"]

	if err := h.Acesso.VerificarAcesso(r.Context(), id, negocioID); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}
	lista, err := h.Service.Listar(r.Context(), id.TenantID, negocioID)
	if err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toDTOs(lista, h.nomes(r.Context(), id.TenantID)))
}

// POST /negocios/{id}/interacoes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	negocioID := mux.Vars(r)["id"]

	var req CriarInteracaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Tipo == "" {
		req.Tipo = TipoNota
	}
	if !req.Tipo.Manual() {
		http.Error(w, "tipo deve ser note, call ou email", http.StatusBadRequest)
		return
	}
	if err := h.Acesso.VerificarAcesso(r.Context(), id, negocioID); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	i := Interacao{
		TenantID:  id.TenantID,
		NegocioID: negocioID,
		AutorID:   id.UserID,
		Tipo:      req.Tipo,
		Descricao: req.Descricao,
	}
	if err := h.Service.Adicionar(r.Context(), &i); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toDTO(i, h.nomes(r.Context(), id.TenantID)))
}

// GET /negocios/{id}/interacoes/ws
// Envia a lista completa (mais recente primeiro) na conexão e a cada nova interação.
func (h *Handler) Acompanhar(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	negocioID := mux.Vars(r)["id"]

	if err := h.Acesso.VerificarAcesso(r.Context(), id, negocioID); err != nil {
		ierr.WriteHTTP(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	eventos, err := h.Service.Hub.Subscribe(ctx, negocioID)
	if err != nil {
		h.Service.Logger.Errorw("falha ao acompanhar negócio", "negocio", negocioID, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "indisponível"),
			time.Now().Add(writeWait))
		return
	}

	// leitura só para detectar o fechamento pelo cliente
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	enviar := func() error {
		lista, err := h.Service.Listar(ctx, id.TenantID, negocioID)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(toDTOs(lista, h.nomes(ctx, id.TenantID)))
	}

	if err := enviar(); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-eventos:
			if !ok {
				return
			}
			if err := enviar(); err != nil {
				return
			}
		}
	}
}
