package etapa

import (
	"cmp"
	"slices"
	"strings"

	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// As funções abaixo operam sobre a lista ordenada do tenant e devolvem uma nova
// lista com Ordem densa 0..N-1. Não tocam no banco.

// Ordenar devolve uma cópia ordenada por Ordem
func Ordenar(etapas []Etapa) []Etapa {
	out := slices.Clone(etapas)
	slices.SortStableFunc(out, func(a, b Etapa) int { return cmp.Compare(a.Ordem, b.Ordem) })
	return out
}

func renumerar(etapas []Etapa) []Etapa {
	for i := range etapas {
		etapas[i].Ordem = i
	}
	return etapas
}

func indice(etapas []Etapa, id string) int {
	_, i, ok := lo.FindIndexOf(etapas, func(e Etapa) bool { return e.ID == id })
	if !ok {
		return -1
	}
	return i
}

func naoEncontrada(id string) error {
	return ierr.NewErrorf("etapa %s não encontrada", id).
		WithHint("etapa não encontrada").
		Mark(ierr.ErrNotFound)
}

func nomeValido(nome string) (string, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return "", ierr.NewError("nome da etapa vazio").
			WithHint("o nome da etapa é obrigatório").
			Mark(ierr.ErrValidation)
	}
	return nome, nil
}

// Adicionar coloca a nova etapa no fim
func Adicionar(etapas []Etapa, tenantID, nome, cor string) ([]Etapa, Etapa, error) {
	nome, err := nomeValido(nome)
	if err != nil {
		return nil, Etapa{}, err
	}
	out := renumerar(Ordenar(etapas))
	nova := Etapa{ID: uuid.NewString(), TenantID: tenantID, Nome: nome, Cor: cor, Ordem: len(out)}
	return append(out, nova), nova, nil
}

// Renomear troca nome e cor sem mexer na posição
func Renomear(etapas []Etapa, id, nome, cor string) ([]Etapa, Etapa, error) {
	out := renumerar(Ordenar(etapas))
	i := indice(out, id)
	if i < 0 {
		return nil, Etapa{}, naoEncontrada(id)
	}
	nome, err := nomeValido(nome)
	if err != nil {
		return nil, Etapa{}, err
	}
	out[i].Nome = nome
	out[i].Cor = cor
	return out, out[i], nil
}

// Mover tira a etapa da posição atual e a coloca onde o alvo está hoje,
// como no arrastar e soltar: [A B C D] movendo A para C resulta em [B C A D].
func Mover(etapas []Etapa, movidaID, alvoID string) ([]Etapa, error) {
	out := renumerar(Ordenar(etapas))
	de := indice(out, movidaID)
	if de < 0 {
		return nil, naoEncontrada(movidaID)
	}
	para := indice(out, alvoID)
	if para < 0 {
		return nil, naoEncontrada(alvoID)
	}
	if de == para {
		return out, nil
	}

	movida := out[de]
	out = slices.Delete(out, de, de+1)
	out = slices.Insert(out, para, movida)
	return renumerar(out), nil
}

// Remover recusa apagar a última etapa
func Remover(etapas []Etapa, id string) ([]Etapa, Etapa, error) {
	out := renumerar(Ordenar(etapas))
	i := indice(out, id)
	if i < 0 {
		return nil, Etapa{}, naoEncontrada(id)
	}
	if len(out) == 1 {
		return nil, Etapa{}, ierr.NewError("última etapa").
			WithHint("o funil precisa de pelo menos uma etapa").
			Mark(ierr.ErrInvariantViolation)
	}
	removida := out[i]
	out = slices.Delete(out, i, i+1)
	return renumerar(out), removida, nil
}
