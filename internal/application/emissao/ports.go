package emissao

import (
	"context"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// Transmissor abstrai o canal de comunicação com os webservices da SEFAZ.
// As operações de transmissão nunca retornam erro: qualquer falha vira um
// ResultadoTransmissao com código "999" e o motivo em Mensagem.
type Transmissor interface {
	Autorizar(ctx context.Context, xmlNFe string, amb nfe.Ambiente) *nfe.ResultadoTransmissao
	ConsultarRecibo(ctx context.Context, recibo string, amb nfe.Ambiente) *nfe.ResultadoTransmissao
	StatusServico(ctx context.Context, amb nfe.Ambiente) (int, error)
}

// Assinador aplica a assinatura digital XML-DSig sobre o documento montado.
// A assinatura em si é responsabilidade de um colaborador externo; o gateway
// apenas delega. Pode ser nil: nesse caso o documento segue sem assinatura
// (aceito somente em homologação).
type Assinador interface {
	Assinar(ctx context.Context, xmlNFe string, certificado []byte, senha string) (string, error)
}
