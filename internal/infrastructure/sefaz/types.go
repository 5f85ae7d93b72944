// Package sefaz implementa a montagem do XML da NF-e (leiaute 4.00),
// o transporte SOAP até o webservice da SEFAZ e a interpretação da resposta.
package sefaz

import (
	"time"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// PedidoBuildContext reúne os dados necessários para montar o XML da nota.
// DataEmissao é injetável para que a montagem seja reprodutível em teste;
// o caso de uso informa o relógio de parede.
type PedidoBuildContext struct {
	Pedido      *nfe.Pedido
	DataEmissao time.Time
}
