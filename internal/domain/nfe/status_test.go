package nfe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

func TestAutorizado_ListaDeSucesso(t *testing.T) {
	for _, codigo := range []string{"100", "103", "104", "105"} {
		assert.True(t, nfe.Autorizado(codigo), "cStat %s deve classificar como sucesso", codigo)
	}
}

func TestAutorizado_CodigosDeFalha(t *testing.T) {
	for _, codigo := range []string{"999", "110", "225", "539", "101", ""} {
		assert.False(t, nfe.Autorizado(codigo), "cStat %q deve classificar como falha", codigo)
	}
}
