package etapa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificar(t *testing.T) {
	tests := []struct {
		nome string
		want Bucket
	}{
		{"Fechada", Ganho},
		{"Negócio FECHADO", Ganho},
		{"Won", Ganho},
		{"closed deal", Ganho},
		{"Perdida", Perdido},
		{"Lost", Perdido},
		{"Em Contato", EmAndamento},
		{"Mapeada", EmAndamento},
		{"Proposta Enviada", EmAndamento},
		{"", EmAndamento},
		// typo quebra a classificação
		{"Fexada", EmAndamento},
		// ganho vence perdido quando ambos aparecem
		{"Closed Lost", Ganho},
	}
	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			assert.Equal(t, tt.want, Classificar(tt.nome))
		})
	}
}
