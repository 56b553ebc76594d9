package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSenha(t *testing.T) {
	hash, err := HashSenha("segredo")
	require.NoError(t, err)

	assert.True(t, VerificarSenha(hash, "segredo"))
	assert.False(t, VerificarSenha(hash, "outra"))
}

func TestGerarSenhaTemporaria(t *testing.T) {
	a, err := GerarSenhaTemporaria()
	require.NoError(t, err)
	b, err := GerarSenhaTemporaria()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestSomenteDigitos(t *testing.T) {
	assert.Equal(t, "11222333000181", SomenteDigitos("11.222.333/0001-81"))
	assert.Equal(t, "5511999990000", SomenteDigitos("+55 (11) 99999-0000"))
	assert.Empty(t, SomenteDigitos("abc"))
}
