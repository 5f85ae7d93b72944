package sefaz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/sefaz"
)

// Resposta real de lote recebido, com a verbosidade SOAP típica da SEFAZ.
const respostaLoteRecebido = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4">
      <retEnviNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
        <tpAmb>2</tpAmb>
        <verAplic>SVRS202401</verAplic>
        <cStat>103</cStat>
        <xMotivo>Lote recebido com sucesso</xMotivo>
        <cUF>53</cUF>
        <infRec>
          <nRec>530000012345678</nRec>
          <tMed>1</tMed>
        </infRec>
      </retEnviNFe>
    </nfeResultMsg>
  </soap:Body>
</soap:Envelope>`

const respostaRejeicao = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <nfeResultMsg xmlns="http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4">
      <retEnviNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
        <tpAmb>2</tpAmb>
        <cStat>225</cStat>
        <xMotivo>Rejeicao: Falha no Schema XML da NFe</xMotivo>
      </retEnviNFe>
    </nfeResultMsg>
  </soap:Body>
</soap:Envelope>`

const respostaConsultaAutorizada = `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <retConsReciNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
      <cStat>104</cStat>
      <xMotivo>Lote processado</xMotivo>
      <protNFe versao="4.00">
        <infProt>
          <chNFe>53240112345678000195550010000001231123456780</chNFe>
          <cStat>100</cStat>
          <xMotivo>Autorizado o uso da NF-e</xMotivo>
          <nProt>353240000000123</nProt>
        </infProt>
      </protNFe>
    </retConsReciNFe>
  </soap:Body>
</soap:Envelope>`

func TestInterpretarResposta_LoteRecebido(t *testing.T) {
	r := sefaz.InterpretarResposta(respostaLoteRecebido)

	assert.True(t, r.Sucesso)
	assert.Equal(t, "103", r.Codigo)
	assert.Equal(t, "Lote recebido com sucesso", r.Mensagem)
	assert.Equal(t, "530000012345678", r.Protocolo)
	assert.Equal(t, respostaLoteRecebido, r.XMLResposta, "payload bruto preservado para diagnóstico")
	assert.True(t, r.ComunicacaoReal)
	assert.False(t, r.Simulacao)
}

func TestInterpretarResposta_RejeicaoDaSefaz(t *testing.T) {
	r := sefaz.InterpretarResposta(respostaRejeicao)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "225", r.Codigo, "código da autoridade repassado sem remapeamento")
	assert.Equal(t, "Rejeicao: Falha no Schema XML da NFe", r.Mensagem)
	assert.Empty(t, r.Protocolo)
}

func TestInterpretarResposta_ConsultaComProtocolo(t *testing.T) {
	r := sefaz.InterpretarResposta(respostaConsultaAutorizada)

	assert.True(t, r.Sucesso)
	assert.Equal(t, "104", r.Codigo, "o cStat mais externo (do lote) prevalece")
	assert.Equal(t, "353240000000123", r.Protocolo, "sem nRec, cai no nProt da autorização")
}

func TestInterpretarResposta_EntradaVazia(t *testing.T) {
	r := sefaz.InterpretarResposta("")

	assert.False(t, r.Sucesso)
	assert.Equal(t, nfe.StatusFalhaComunicacao, r.Codigo)
	assert.Equal(t, "Resposta inválida da SEFAZ", r.Mensagem)
	assert.Empty(t, r.Protocolo)
}

func TestInterpretarResposta_XMLSemCStat(t *testing.T) {
	r := sefaz.InterpretarResposta(`<resposta><outra>coisa</outra></resposta>`)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "999", r.Codigo)
	assert.Equal(t, "Resposta inválida da SEFAZ", r.Mensagem)
}

func TestInterpretarResposta_EntradaIlegivel(t *testing.T) {
	// Nunca propaga pânico ou erro; degrada para o resultado padrão.
	r := sefaz.InterpretarResposta("isto não é XML <<<>>>")

	assert.False(t, r.Sucesso)
	assert.Equal(t, "999", r.Codigo)
}

func TestInterpretarResposta_ElementoComPrefixo(t *testing.T) {
	// Alguns wrappers devolvem elementos do payload com prefixo de namespace.
	raw := `<env:Envelope xmlns:env="http://www.w3.org/2003/05/soap-envelope">
	  <env:Body><ret:retEnviNFe xmlns:ret="http://www.portalfiscal.inf.br/nfe">
	    <ret:cStat>105</ret:cStat><ret:xMotivo>Lote em processamento</ret:xMotivo>
	  </ret:retEnviNFe></env:Body></env:Envelope>`
	r := sefaz.InterpretarResposta(raw)

	assert.True(t, r.Sucesso)
	assert.Equal(t, "105", r.Codigo)
	assert.Equal(t, "Lote em processamento", r.Mensagem)
}
