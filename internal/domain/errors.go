package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	// ErrCampoObrigatorio marca ausência de campo de identidade do documento.
	// É sempre envolvido com %w nomeando o campo: "cnpj do emitente", etc.
	// Falha dura: aborta a emissão antes de qualquer chamada de rede.
	ErrCampoObrigatorio = errors.New("campo obrigatório ausente")

	// ErrChaveInvalida indica chave de acesso fora do layout de 44 dígitos
	// ou com dígito verificador incorreto.
	ErrChaveInvalida = errors.New("chave de acesso inválida")

	// ErrAssinaturaObrigatoria indica XML sem bloco de assinatura em produção.
	ErrAssinaturaObrigatoria = errors.New("XML deve estar assinado digitalmente para emissão em produção")

	ErrUnauthorized = errors.New("não autorizado")
	ErrForbidden    = errors.New("acesso negado")
)
