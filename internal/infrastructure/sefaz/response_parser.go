package sefaz

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// Mensagem usada quando a resposta não traz os elementos esperados.
const mensagemRespostaInvalida = "Resposta inválida da SEFAZ"

// InterpretarResposta extrai cStat, xMotivo e o identificador de recibo ou
// protocolo (nRec/nProt) da resposta XML da SEFAZ e deriva o veredito.
//
// A localização é por nome de elemento, em qualquer profundidade e ignorando
// prefixo de namespace: as respostas aninham o payload dentro de wrappers
// SOAP/Body cuja estrutura exata varia entre serviços. Entrada ilegível nunca
// derruba o pipeline: degrada para o resultado padrão "999".
func InterpretarResposta(raw string) *nfe.ResultadoTransmissao {
	resultado := &nfe.ResultadoTransmissao{
		Sucesso:         false,
		Codigo:          nfe.StatusFalhaComunicacao,
		Mensagem:        mensagemRespostaInvalida,
		XMLResposta:     raw,
		Simulacao:       false,
		ComunicacaoReal: true,
	}

	if strings.TrimSpace(raw) == "" {
		return resultado
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return resultado
	}

	cStat := primeiroElemento(doc.Root(), "cStat")
	if cStat == "" {
		return resultado
	}
	resultado.Codigo = cStat

	if motivo := primeiroElemento(doc.Root(), "xMotivo"); motivo != "" {
		resultado.Mensagem = motivo
	}

	// nRec: recibo do lote; nProt: protocolo de autorização (consulta).
	resultado.Protocolo = primeiroElemento(doc.Root(), "nRec")
	if resultado.Protocolo == "" {
		resultado.Protocolo = primeiroElemento(doc.Root(), "nProt")
	}

	resultado.Sucesso = nfe.Autorizado(resultado.Codigo)
	return resultado
}

// primeiroElemento devolve o texto do primeiro elemento com a tag dada,
// em ordem de documento, ignorando o namespace.
func primeiroElemento(el *etree.Element, tag string) string {
	if el == nil {
		return ""
	}
	if el.Tag == tag {
		return strings.TrimSpace(el.Text())
	}
	for _, filho := range el.ChildElements() {
		if texto := primeiroElemento(filho, tag); texto != "" {
			return texto
		}
	}
	return ""
}
