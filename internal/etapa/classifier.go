package etapa

import "strings"

// Bucket é o resultado semântico de uma etapa para os relatórios
type Bucket string

const (
	Ganho       Bucket = "won"
	Perdido     Bucket = "lost"
	EmAndamento Bucket = "in_progress"
)

// Os nomes das etapas são livres, então a classificação é por trecho do nome.
// Ganho é testado antes de Perdido: "Closed Lost" conta como ganho.
var (
	padroesGanho   = []string{"fechada", "fechado", "won", "closed"}
	padroesPerdido = []string{"perdida", "lost"}
)

func Classificar(nome string) Bucket {
	n := strings.ToLower(nome)
	for _, p := range padroesGanho {
		if strings.Contains(n, p) {
			return Ganho
		}
	}
	for _, p := range padroesPerdido {
		if strings.Contains(n, p) {
			return Perdido
		}
	}
	return EmAndamento
}
