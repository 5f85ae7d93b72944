package sefaz_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/sefaz"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

func logTeste() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func cfgComEndpoint(url string, timeoutSegundos int) config.SEFAZConfig {
	return config.SEFAZConfig{
		Homologacao: config.EndpointSet{
			Autorizacao:   url,
			Consulta:      url,
			StatusServico: url,
		},
		Producao: config.EndpointSet{
			Autorizacao:   url,
			Consulta:      url,
			StatusServico: url,
		},
		TimeoutSegundos: timeoutSegundos,
	}
}

const xmlNotaTeste = `<enviNFe xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00"><idLote>1</idLote></enviNFe>`

func TestAutorizar_RoundTripComSucesso(t *testing.T) {
	var recebido struct {
		contentType string
		soapAction  string
		corpo       string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		recebido.contentType = r.Header.Get("Content-Type")
		recebido.soapAction = r.Header.Get("SOAPAction")
		recebido.corpo = string(b)
		w.Header().Set("Content-Type", "application/soap+xml")
		_, _ = w.Write([]byte(respostaLoteRecebido))
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 5), logTeste())
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.AmbienteHomologacao)

	require.NotNil(t, r)
	assert.True(t, r.Sucesso)
	assert.Equal(t, "103", r.Codigo)
	assert.Equal(t, "530000012345678", r.Protocolo)
	assert.True(t, r.ComunicacaoReal)
	assert.False(t, r.Simulacao)

	// Contrato do envelope: SOAP 1.2, operação de lote, documento cru no corpo.
	assert.Equal(t, "application/soap+xml; charset=utf-8", recebido.contentType)
	assert.Equal(t,
		"http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4/nfeAutorizacaoLote",
		recebido.soapAction)
	assert.Contains(t, recebido.corpo, `xmlns:soap="http://www.w3.org/2003/05/soap-envelope"`)
	assert.Contains(t, recebido.corpo, "<nfe:nfeAutorizacaoLote>")
	assert.Contains(t, recebido.corpo, xmlNotaTeste,
		"o documento deve ir embutido sem escape dentro de nfeDadosMsg")
}

func TestAutorizar_RejeicaoDaAutoridade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(respostaRejeicao))
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 5), logTeste())
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.AmbienteHomologacao)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "225", r.Codigo)
}

func TestAutorizar_HTTPNao2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("pane no servidor"))
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 5), logTeste())
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.AmbienteHomologacao)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "999", r.Codigo)
	assert.Contains(t, r.Mensagem, "HTTP 500")
	assert.Contains(t, r.XMLResposta, "pane no servidor", "corpo preservado para diagnóstico")
	assert.True(t, r.ComunicacaoReal)
}

func TestAutorizar_FalhaDeRede(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // conexão recusada

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(url, 5), logTeste())
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.AmbienteHomologacao)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "999", r.Codigo)
	assert.Contains(t, r.Mensagem, "Erro de comunicação real")
	assert.True(t, r.ComunicacaoReal)
	assert.False(t, r.Simulacao)
}

func TestAutorizar_TimeoutSemRetry(t *testing.T) {
	var chamadas int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chamadas++
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 1), logTeste())
	inicio := time.Now()
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.AmbienteHomologacao)

	assert.False(t, r.Sucesso)
	assert.Equal(t, "999", r.Codigo)
	assert.Less(t, time.Since(inicio), 3*time.Second, "o teto de timeout deve interromper a chamada")
	assert.Equal(t, 1, chamadas, "sem retry automático")
}

func TestAutorizar_AmbienteDesconhecidoCaiEmHomologacao(t *testing.T) {
	srvHomolog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(respostaLoteRecebido))
	}))
	defer srvHomolog.Close()

	cfg := cfgComEndpoint(srvHomolog.URL, 5)
	cfg.Producao = config.EndpointSet{Autorizacao: "http://127.0.0.1:1/nunca"}

	c := sefaz.NewSOAPSefazClient(cfg, logTeste())
	r := c.Autorizar(context.Background(), xmlNotaTeste, nfe.Ambiente("desconhecido"))

	assert.True(t, r.Sucesso, "ambiente desconhecido usa os endpoints de homologação")
}

func TestConsultarRecibo_EnviaConsReciNFe(t *testing.T) {
	var corpo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		corpo = string(b)
		_, _ = w.Write([]byte(respostaConsultaAutorizada))
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 5), logTeste())
	r := c.ConsultarRecibo(context.Background(), "530000012345678", nfe.AmbienteHomologacao)

	assert.True(t, r.Sucesso)
	assert.Equal(t, "104", r.Codigo)
	assert.Equal(t, "353240000000123", r.Protocolo)

	assert.Contains(t, corpo, "<nfe:nfeRetAutorizacaoLote>")
	assert.Contains(t, corpo, "<nRec>530000012345678</nRec>")
	assert.Contains(t, corpo, "<tpAmb>2</tpAmb>")
}

func TestStatusServico_Disponivel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := sefaz.NewSOAPSefazClient(cfgComEndpoint(srv.URL, 5), logTeste())
	status, err := c.StatusServico(context.Background(), nfe.AmbienteHomologacao)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestStatusServico_Indisponivel(t *testing.T) {
	c := sefaz.NewSOAPSefazClient(cfgComEndpoint("http://127.0.0.1:1/nada", 5), logTeste())
	_, err := c.StatusServico(context.Background(), nfe.AmbienteHomologacao)
	assert.Error(t, err)
}
