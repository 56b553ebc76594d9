package interacao

import (
	"cmp"
	"slices"
	"time"
)

type AutorDTO struct {
	Tipo string `json:"type"`         // "usuario" | "system"
	ID   string `json:"id,omitempty"` // vazio para system
	Nome string `json:"nome"`
}

type InteracaoDTO struct {
	ID        string    `json:"id"`
	NegocioID string    `json:"negocioId"`
	Tipo      Tipo      `json:"tipo"`
	Descricao string    `json:"descricao"`
	CreatedAt time.Time `json:"createdAt"`
	Autor     AutorDTO  `json:"author"`
}

// CriarInteracaoRequest é usado em POST /negocios/{id}/interacoes
type CriarInteracaoRequest struct {
	Tipo      Tipo   `json:"tipo"`
	Descricao string `json:"descricao"`
}

func toDTO(i Interacao, nomes map[string]string) InteracaoDTO {
	out := InteracaoDTO{
		ID:        i.ID,
		NegocioID: i.NegocioID,
		Tipo:      i.Tipo,
		Descricao: i.Descricao,
		CreatedAt: i.CreatedAt,
	}
	if i.AutorID == "" {
		out.Autor = AutorDTO{Tipo: "system", Nome: "Sistema"}
		return out
	}
	nome := nomes[i.AutorID]
	if nome == "" {
		nome = "Usuário"
	}
	out.Autor = AutorDTO{Tipo: "usuario", ID: i.AutorID, Nome: nome}
	return out
}

func toDTOs(list []Interacao, nomes map[string]string) []InteracaoDTO {
	out := make([]InteracaoDTO, 0, len(list))
	for _, i := range list {
		out = append(out, toDTO(i, nomes))
	}
	return out
}

// OrdenarDesc ordena do mais recente para o mais antigo, estável para empates
func OrdenarDesc(list []Interacao) {
	slices.SortStableFunc(list, func(a, b Interacao) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
}
