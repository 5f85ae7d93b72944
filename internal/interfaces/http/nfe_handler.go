package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/nfe-gateway/internal/application/dto"
	"github.com/seu-usuario/nfe-gateway/internal/application/emissao"
	"github.com/seu-usuario/nfe-gateway/internal/domain"
	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/danfe"
)

// NFeHandler expõe o ciclo de emissão pela API HTTP.
type NFeHandler struct {
	emissaoUC *emissao.UseCase
	danfeGen  *danfe.MarotoGenerator
}

// NewNFeHandler constrói o handler de NFe.
func NewNFeHandler(emissaoUC *emissao.UseCase, danfeGen *danfe.MarotoGenerator) *NFeHandler {
	return &NFeHandler{emissaoUC: emissaoUC, danfeGen: danfeGen}
}

// Emitir godoc
// @Summary      Emitir NFe
// @Tags         nfe
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EmitirRequest  true  "dados completos da emissão"
// @Success      200   {object}  dto.EmitirResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /nfe/emitir [post]
func (h *NFeHandler) Emitir(c *fiber.Ctx) error {
	var in dto.EmitirRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	resultado, err := h.emissaoUC.Emitir(c.UserContext(), in.ToPedido())
	if err != nil {
		return respostaErroEmissao(c, err)
	}

	// Mesmo uma rejeição da SEFAZ é HTTP 200: o desfecho vai em success/codigo.
	return c.Status(fiber.StatusOK).JSON(dto.ToEmitirResponse(resultado, true))
}

// Consultar godoc
// @Summary      Consultar recibo de lote
// @Tags         nfe
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsultarRequest  true  "recibo e ambiente"
// @Success      200   {object}  dto.ConsultarResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /nfe/consultar [post]
func (h *NFeHandler) Consultar(c *fiber.Ctx) error {
	var in dto.ConsultarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	resultado, err := h.emissaoUC.Consultar(c.UserContext(), in.Recibo, nfe.Ambiente(in.Ambiente))
	if err != nil {
		return respostaErroEmissao(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.ToConsultarResponse(resultado))
}

// Danfe godoc
// @Summary      Gerar DANFE em PDF
// @Tags         nfe
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.DanfeRequest  true  "dados da nota e protocolo opcional"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /nfe/danfe [post]
func (h *NFeHandler) Danfe(c *fiber.Ctx) error {
	var in dto.DanfeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	pedido := in.ToPedido()
	if err := pedido.Chave.Validar(); err != nil {
		return respostaErroEmissao(c, err)
	}

	pdf, err := h.danfeGen.Gerar(pedido, in.Protocolo, time.Now().Format("02/01/2006"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_GENERATION", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="danfe-`+string(pedido.Chave)+`.pdf"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}

// Status godoc
// @Summary      Sondar disponibilidade do webservice SEFAZ
// @Tags         nfe
// @Produce      json
// @Param        ambiente  query  string  false  "homologacao | producao"
// @Success      200   {object}  map[string]interface{}
// @Router       /status [get]
func (h *NFeHandler) Status(c *fiber.Ctx) error {
	amb := nfe.Ambiente(c.Query("ambiente", string(nfe.AmbienteHomologacao)))

	codigo, err := h.emissaoUC.Status(c.UserContext(), amb)
	if err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"disponivel": false,
			"ambiente":   string(amb),
			"erro":       err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"disponivel": codigo >= 200 && codigo < 500,
		"ambiente":   string(amb),
		"http":       codigo,
	})
}

// respostaErroEmissao mapeia os erros pré-transporte para códigos HTTP.
func respostaErroEmissao(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrChaveInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_KEY", Message: err.Error()})
	case errors.Is(err, domain.ErrCampoObrigatorio):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FIELD", Message: err.Error()})
	case errors.Is(err, domain.ErrAssinaturaObrigatoria):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SIGNATURE_REQUIRED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
