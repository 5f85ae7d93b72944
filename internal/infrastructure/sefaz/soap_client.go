package sefaz

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

// ── Constantes do contrato SOAP 1.2 da SEFAZ ──────────────────────────────────

const (
	soapNS = "http://www.w3.org/2003/05/soap-envelope"

	nsAutorizacao = "http://www.portalfiscal.inf.br/nfe/wsdl/NFeAutorizacao4"
	nsRetAutoriza = "http://www.portalfiscal.inf.br/nfe/wsdl/NFeRetAutorizacao4"

	actionAutorizacao = nsAutorizacao + "/nfeAutorizacaoLote"
	actionConsulta    = nsRetAutoriza + "/nfeRetAutorizacaoLote"

	contentTypeSoap = "application/soap+xml; charset=utf-8"
	userAgent       = "NFe-Gateway/1.0"

	// Código interno para qualquer falha de transporte ou resposta ilegível.
	mensagemErroComunicacao = "Erro de comunicação real: %s"
)

// ── Estruturas SOAP ───────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName   xml.Name `xml:"soap:Envelope"`
	XmlnsSoap string   `xml:"xmlns:soap,attr"`
	XmlnsNFe  string   `xml:"xmlns:nfe,attr"`
	Header    struct{} `xml:"soap:Header"`
	Body      soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Lote     *operacaoLote     `xml:"nfe:nfeAutorizacaoLote,omitempty"`
	Consulta *operacaoConsulta `xml:"nfe:nfeRetAutorizacaoLote,omitempty"`
}

type operacaoLote struct {
	DadosMsg dadosMsg `xml:"nfe:nfeDadosMsg"`
}

type operacaoConsulta struct {
	DadosMsg dadosMsg `xml:"nfe:nfeDadosMsg"`
}

// dadosMsg carrega o documento como XML cru (innerxml): o conteúdo já é XML
// válido e não pode sair escapado dentro do envelope.
type dadosMsg struct {
	XML string `xml:",innerxml"`
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// SOAPSefazClient realiza as chamadas aos webservices da SEFAZ.
// Uma única instância, segura para uso concorrente: toda a configuração
// (endpoints, timeout, política TLS) é somente leitura após a construção.
// Sem retry e sem backoff; uma chamada de rede por requisição.
type SOAPSefazClient struct {
	cfg     config.SEFAZConfig
	cliente *http.Client
	// clienteHomolog ignora a cadeia de certificados; criado somente quando
	// TLSInsecureHomolog está ativo e usado exclusivamente em homologação.
	clienteHomolog *http.Client
	timeout        time.Duration
	log            *logger.Logger
}

// NewSOAPSefazClient constrói o cliente com keep-alive reutilizado entre chamadas.
func NewSOAPSefazClient(cfg config.SEFAZConfig, log *logger.Logger) *SOAPSefazClient {
	timeout := time.Duration(cfg.TimeoutSegundos) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &SOAPSefazClient{
		cfg:     cfg,
		cliente: &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
	if cfg.TLSInsecureHomolog {
		c.clienteHomolog = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// Endpoints de homologação com certificado auto-assinado.
				// Opt-in via SEFAZ_TLS_INSECURE_HOMOLOG; produção nunca passa por aqui.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	return c
}

// endpoints devolve o conjunto de URLs do ambiente; desconhecido cai em homologação.
func (c *SOAPSefazClient) endpoints(amb nfe.Ambiente) config.EndpointSet {
	if amb == nfe.AmbienteProducao {
		return c.cfg.Producao
	}
	return c.cfg.Homologacao
}

func (c *SOAPSefazClient) clienteHTTP(amb nfe.Ambiente) *http.Client {
	if amb != nfe.AmbienteProducao && c.clienteHomolog != nil {
		return c.clienteHomolog
	}
	return c.cliente
}

// Autorizar envia o lote enviNFe ao endpoint de autorização e interpreta a
// resposta. Nunca devolve erro: toda falha vira ResultadoTransmissao com
// código "999", ComunicacaoReal=true e Simulacao=false.
func (c *SOAPSefazClient) Autorizar(ctx context.Context, xmlNFe string, amb nfe.Ambiente) *nfe.ResultadoTransmissao {
	url := c.endpoints(amb).Autorizacao
	body := soapBody{Lote: &operacaoLote{DadosMsg: dadosMsg{XML: xmlNFe}}}
	return c.chamar(ctx, amb, url, nsAutorizacao, actionAutorizacao, body)
}

// ConsultarRecibo consulta o resultado de processamento de um recibo (nRec)
// via consReciNFe no endpoint de consulta.
func (c *SOAPSefazClient) ConsultarRecibo(ctx context.Context, recibo string, amb nfe.Ambiente) *nfe.ResultadoTransmissao {
	consulta := fmt.Sprintf(
		`<consReciNFe xmlns=%q versao=%q><tpAmb>%s</tpAmb><nRec>%s</nRec></consReciNFe>`,
		NsNFe, VersaoLeiaute, amb.TpAmb(), xmlEscape(recibo),
	)
	url := c.endpoints(amb).Consulta
	body := soapBody{Consulta: &operacaoConsulta{DadosMsg: dadosMsg{XML: consulta}}}
	return c.chamar(ctx, amb, url, nsRetAutoriza, actionConsulta, body)
}

// StatusServico sonda a disponibilidade do endpoint de status do ambiente.
// Orçamento menor (10 s), como a verificação original.
func (c *SOAPSefazClient) StatusServico(ctx context.Context, amb nfe.Ambiente) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints(amb).StatusServico, nil)
	if err != nil {
		return 0, fmt.Errorf("sefaz: criar request de status: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.clienteHTTP(amb).Do(req)
	if err != nil {
		return 0, fmt.Errorf("sefaz: status do serviço: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	return resp.StatusCode, nil
}

// chamar executa o POST SOAP e classifica o desfecho.
func (c *SOAPSefazClient) chamar(ctx context.Context, amb nfe.Ambiente, url, nsOperacao, action string, body soapBody) *nfe.ResultadoTransmissao {
	envelope := soapEnvelope{
		XmlnsSoap: soapNS,
		XmlnsNFe:  nsOperacao,
		Body:      body,
	}

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return falhaTransporte(fmt.Sprintf("serializar envelope SOAP: %v", err), "")
	}
	payload = append([]byte(xml.Header), payload...)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return falhaTransporte(fmt.Sprintf("criar request: %v", err), "")
	}
	req.Header.Set("Content-Type", contentTypeSoap)
	req.Header.Set("SOAPAction", action)
	req.Header.Set("User-Agent", userAgent)

	c.log.Debug().
		Str("url", url).
		Str("ambiente", string(amb)).
		Int("bytes", len(payload)).
		Msg("enviando requisição SOAP para a SEFAZ")

	resp, err := c.clienteHTTP(amb).Do(req)
	if err != nil {
		// Rede, DNS, TLS ou timeout: sem retry automático.
		c.log.Error().Err(err).Str("url", url).Msg("falha de comunicação com a SEFAZ")
		return falhaTransporte(err.Error(), "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return falhaTransporte(fmt.Sprintf("ler resposta: %v", err), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("resposta HTTP não-2xx da SEFAZ")
		return falhaTransporte(fmt.Sprintf("HTTP %d do webservice", resp.StatusCode), string(raw))
	}

	c.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(raw)).Msg("resposta recebida da SEFAZ")
	return InterpretarResposta(string(raw))
}

func falhaTransporte(motivo, xmlResposta string) *nfe.ResultadoTransmissao {
	return &nfe.ResultadoTransmissao{
		Sucesso:         false,
		Codigo:          nfe.StatusFalhaComunicacao,
		Mensagem:        fmt.Sprintf(mensagemErroComunicacao, motivo),
		XMLResposta:     xmlResposta,
		Simulacao:       false,
		ComunicacaoReal: true,
	}
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
