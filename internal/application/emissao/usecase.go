package emissao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seu-usuario/nfe-gateway/internal/domain"
	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/sefaz"
	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

// UseCase orquestra o ciclo completo de emissão:
//
//	Validação → XML enviNFe → Assinatura (externa) → Envio SOAP → Interpretação
//
// Toda falha anterior ao transporte retorna erro; a partir do transporte o
// desfecho é sempre um ResultadoTransmissao (inclusive rejeições e falhas de
// rede, código "999").
type UseCase struct {
	builder     *sefaz.XMLBuilderService
	transmissor Transmissor
	assinador   Assinador // nil quando nenhum colaborador de assinatura existe
	log         *logger.Logger
	agora       func() time.Time
}

// NewUseCase constrói o caso de uso. assinador pode ser nil; nesse caso só a
// emissão em homologação funciona, pois produção exige documento assinado.
func NewUseCase(builder *sefaz.XMLBuilderService, transmissor Transmissor, assinador Assinador, log *logger.Logger) *UseCase {
	return &UseCase{
		builder:     builder,
		transmissor: transmissor,
		assinador:   assinador,
		log:         log,
		agora:       time.Now,
	}
}

// ResultadoEmissao agrega o desfecho da transmissão ao documento enviado.
type ResultadoEmissao struct {
	*nfe.ResultadoTransmissao
	Chave               nfe.Chave
	Ambiente            nfe.Ambiente
	XMLAssinado         string
	CertificadoPresente bool
}

// Emitir monta, assina e transmite a nota do pedido. Erros retornados aqui
// são sempre pré-transporte: nenhuma chamada de rede foi feita.
func (u *UseCase) Emitir(ctx context.Context, pedido *nfe.Pedido) (*ResultadoEmissao, error) {
	if err := pedido.Chave.Validar(); err != nil {
		return nil, err
	}

	if len(pedido.Emitente.Certificado) == 0 || pedido.Emitente.SenhaCertificado == "" {
		return nil, fmt.Errorf("%w: certificado digital e senha", domain.ErrCampoObrigatorio)
	}

	xmlNFe, err := u.builder.Build(&sefaz.PedidoBuildContext{
		Pedido:      pedido,
		DataEmissao: u.agora(),
	})
	if err != nil {
		return nil, err
	}

	assinado := false
	if u.assinador != nil {
		xmlNFe, err = u.assinador.Assinar(ctx, xmlNFe, pedido.Emitente.Certificado, pedido.Emitente.SenhaCertificado)
		if err != nil {
			return nil, fmt.Errorf("assinar documento: %w", err)
		}
		assinado = strings.Contains(xmlNFe, "<Signature")
	}

	if !assinado {
		if pedido.Ambiente == nfe.AmbienteProducao {
			return nil, domain.ErrAssinaturaObrigatoria
		}
		u.log.Warn().
			Str("chave", string(pedido.Chave)).
			Msg("documento sem assinatura digital; aceito somente em homologação")
	}

	u.log.Info().
		Str("chave", string(pedido.Chave)).
		Str("ambiente", string(pedido.Ambiente)).
		Bool("assinado", assinado).
		Msg("transmitindo NFe para a SEFAZ")

	resultado := u.transmissor.Autorizar(ctx, xmlNFe, pedido.Ambiente)

	u.log.Info().
		Str("chave", string(pedido.Chave)).
		Str("codigo", resultado.Codigo).
		Bool("sucesso", resultado.Sucesso).
		Msg("resposta da SEFAZ interpretada")

	return &ResultadoEmissao{
		ResultadoTransmissao: resultado,
		Chave:                pedido.Chave,
		Ambiente:             pedido.Ambiente,
		XMLAssinado:          xmlNFe,
		CertificadoPresente:  true,
	}, nil
}

// Consultar verifica o processamento de um lote pelo número do recibo.
func (u *UseCase) Consultar(ctx context.Context, recibo string, amb nfe.Ambiente) (*nfe.ResultadoTransmissao, error) {
	if strings.TrimSpace(recibo) == "" {
		return nil, fmt.Errorf("%w: recibo", domain.ErrCampoObrigatorio)
	}
	return u.transmissor.ConsultarRecibo(ctx, recibo, amb), nil
}

// Status sonda a disponibilidade do webservice do ambiente informado.
func (u *UseCase) Status(ctx context.Context, amb nfe.Ambiente) (int, error) {
	return u.transmissor.StatusServico(ctx, amb)
}
