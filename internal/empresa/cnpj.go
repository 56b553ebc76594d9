package empresa

import (
	ierr "github.com/KromaEnergia/api-crm/internal/errors"
	"github.com/KromaEnergia/api-crm/internal/utils"
)

var (
	pesos1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	pesos2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func digito(d []int, pesos []int) int {
	soma := 0
	for i, p := range pesos {
		soma += d[i] * p
	}
	if r := soma % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// CNPJValido confere tamanho e dígitos verificadores de um CNPJ só com dígitos
func CNPJValido(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	d := make([]int, 14)
	iguais := true
	for i, c := range cnpj {
		if c < '0' || c > '9' {
			return false
		}
		d[i] = int(c - '0')
		if d[i] != d[0] {
			iguais = false
		}
	}
	if iguais {
		return false
	}
	return digito(d, pesos1) == d[12] && digito(d, pesos2) == d[13]
}

// NormalizarCNPJ remove a máscara e valida
func NormalizarCNPJ(s string) (string, error) {
	cnpj := utils.SomenteDigitos(s)
	if !CNPJValido(cnpj) {
		return "", ierr.NewErrorf("cnpj inválido: %q", s).
			WithHint("CNPJ inválido").
			Mark(ierr.ErrValidation)
	}
	return cnpj, nil
}
