package dto

import (
	"encoding/base64"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-usuario/nfe-gateway/internal/application/emissao"
	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// Os nomes de campo seguem o contrato público original do gateway
// (chaves minúsculas, sem separador), preservado para os integradores.

// EmpresaRequest dados do emitente por requisição; nada fica retido.
type EmpresaRequest struct {
	CNPJ              string `json:"cnpj"`
	RazaoSocial       string `json:"razaosocial"`
	NomeFantasia      string `json:"nomefantasia,omitempty"`
	InscricaoEstadual string `json:"inscricaoestadual,omitempty"`
	Endereco          string `json:"endereco,omitempty"`
	Numero            string `json:"numero,omitempty"`
	Complemento       string `json:"complemento,omitempty"`
	Bairro            string `json:"bairro,omitempty"`
	Cidade            string `json:"cidade,omitempty"`
	Estado            string `json:"estado,omitempty"`
	CEP               string `json:"cep,omitempty"`
	CodIBGE           string `json:"codibge,omitempty"`
	Telefone          string `json:"telefone,omitempty"`
	CNAE              string `json:"cnae,omitempty"`
	Regime            string `json:"regime,omitempty"`
	CRT               string `json:"crt,omitempty"`
	// Certificado PKCS#12 em base64, senha em claro; ambos repassados ao
	// assinador e descartados ao fim da requisição.
	Certificado      string `json:"certificado,omitempty"`
	SenhaCertificado string `json:"senhacertificado,omitempty"`
}

// ClienteRequest dados do destinatário.
type ClienteRequest struct {
	TipoPessoa  string `json:"tipopessoa,omitempty"` // "F" ou "J"
	CPFCNPJ     string `json:"cpfcnpj"`
	RazaoSocial string `json:"razaosocial,omitempty"`
	Endereco    string `json:"endereco,omitempty"`
	Numero      string `json:"numero,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
	Cidade      string `json:"cidade,omitempty"`
	Estado      string `json:"estado,omitempty"`
	CEP         string `json:"cep,omitempty"`
	CodIBGE     string `json:"codibge,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ItemRequest linha de produto da nota.
type ItemRequest struct {
	CodProduto string          `json:"codproduto"`
	Descricao  string          `json:"descricao"`
	NCM        string          `json:"ncm,omitempty"`
	Unidade    string          `json:"unidade,omitempty"`
	Quantidade decimal.Decimal `json:"quantidade"`
	Preco      decimal.Decimal `json:"preco"`
	Total      decimal.Decimal `json:"total"`
}

// EmitirRequest body para POST /nfe/emitir.
type EmitirRequest struct {
	Chave      string          `json:"chave"`
	Ambiente   string          `json:"ambiente"` // "homologacao" | "producao"
	Empresa    EmpresaRequest  `json:"empresa"`
	Cliente    ClienteRequest  `json:"cliente"`
	Itens      []ItemRequest   `json:"itens"`
	ValorTotal decimal.Decimal `json:"valorTotal"`
}

// DanfeRequest body para POST /nfe/danfe: os mesmos dados da emissão,
// mais o protocolo de autorização quando a nota já foi autorizada.
type DanfeRequest struct {
	EmitirRequest
	Protocolo string `json:"protocolo,omitempty"`
}

// ConsultarRequest body para POST /nfe/consultar.
type ConsultarRequest struct {
	Recibo   string `json:"recibo"`
	Ambiente string `json:"ambiente"`
}

// EmitirResponse desfecho da transmissão entregue ao integrador.
type EmitirResponse struct {
	Success             bool   `json:"success"`
	Codigo              string `json:"codigo"`
	Mensagem            string `json:"mensagem"`
	Protocolo           string `json:"protocolo,omitempty"`
	Chave               string `json:"chave"`
	Ambiente            string `json:"ambiente"`
	Timestamp           string `json:"timestamp"`
	Gateway             string `json:"gateway"`
	XMLAssinado         string `json:"xmlAssinado,omitempty"`
	CertificadoPresente bool   `json:"certificadoPresente"`
}

// ConsultarResponse desfecho da consulta de recibo.
type ConsultarResponse struct {
	Success   bool   `json:"success"`
	Codigo    string `json:"codigo"`
	Mensagem  string `json:"mensagem"`
	Protocolo string `json:"protocolo,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ToPedido converte o body de emissão no agregado de domínio.
func (r EmitirRequest) ToPedido() *nfe.Pedido {
	certificado, err := base64.StdEncoding.DecodeString(r.Empresa.Certificado)
	if err != nil {
		// Entrada que não é base64 vira blob cru; a exigência de certificado
		// presente é verificada adiante, não aqui.
		certificado = []byte(r.Empresa.Certificado)
	}

	itens := make([]nfe.Item, 0, len(r.Itens))
	for _, it := range r.Itens {
		itens = append(itens, nfe.Item{
			CodigoProduto: it.CodProduto,
			Descricao:     it.Descricao,
			NCM:           it.NCM,
			Unidade:       it.Unidade,
			Quantidade:    it.Quantidade,
			PrecoUnitario: it.Preco,
			Total:         it.Total,
		})
	}

	return &nfe.Pedido{
		Chave:    nfe.Chave(r.Chave),
		Ambiente: nfe.Ambiente(r.Ambiente),
		Emitente: nfe.Emitente{
			CNPJ:              r.Empresa.CNPJ,
			RazaoSocial:       r.Empresa.RazaoSocial,
			NomeFantasia:      r.Empresa.NomeFantasia,
			InscricaoEstadual: r.Empresa.InscricaoEstadual,
			Endereco:          r.Empresa.Endereco,
			Numero:            r.Empresa.Numero,
			Complemento:       r.Empresa.Complemento,
			Bairro:            r.Empresa.Bairro,
			Cidade:            r.Empresa.Cidade,
			Estado:            r.Empresa.Estado,
			CEP:               r.Empresa.CEP,
			CodigoIBGE:        r.Empresa.CodIBGE,
			Telefone:          r.Empresa.Telefone,
			CNAE:              r.Empresa.CNAE,
			Regime:            r.Empresa.Regime,
			CRT:               r.Empresa.CRT,
			Certificado:       certificado,
			SenhaCertificado:  r.Empresa.SenhaCertificado,
		},
		Destinatario: nfe.Destinatario{
			TipoPessoa:  r.Cliente.TipoPessoa,
			CPFCNPJ:     r.Cliente.CPFCNPJ,
			RazaoSocial: r.Cliente.RazaoSocial,
			Endereco:    r.Cliente.Endereco,
			Numero:      r.Cliente.Numero,
			Bairro:      r.Cliente.Bairro,
			Cidade:      r.Cliente.Cidade,
			Estado:      r.Cliente.Estado,
			CEP:         r.Cliente.CEP,
			CodigoIBGE:  r.Cliente.CodIBGE,
			Email:       r.Cliente.Email,
		},
		Itens:      itens,
		ValorTotal: r.ValorTotal,
	}
}

// ToEmitirResponse projeta o resultado da emissão no contrato público.
func ToEmitirResponse(r *emissao.ResultadoEmissao, incluirXML bool) *EmitirResponse {
	resp := &EmitirResponse{
		Success:             r.Sucesso,
		Codigo:              r.Codigo,
		Mensagem:            r.Mensagem,
		Protocolo:           r.Protocolo,
		Chave:               string(r.Chave),
		Ambiente:            string(r.Ambiente),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		Gateway:             "proprio",
		CertificadoPresente: r.CertificadoPresente,
	}
	if incluirXML {
		resp.XMLAssinado = r.XMLAssinado
	}
	return resp
}

// ToConsultarResponse projeta o resultado da consulta de recibo.
func ToConsultarResponse(r *nfe.ResultadoTransmissao) *ConsultarResponse {
	return &ConsultarResponse{
		Success:   r.Sucesso,
		Codigo:    r.Codigo,
		Mensagem:  r.Mensagem,
		Protocolo: r.Protocolo,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
