package nfe

import "github.com/shopspring/decimal"

// Ambiente seleciona tanto o código interno do documento (tpAmb)
// quanto o conjunto de endpoints de transporte.
type Ambiente string

const (
	AmbienteHomologacao Ambiente = "homologacao"
	AmbienteProducao    Ambiente = "producao"
)

// TpAmb devolve o código de ambiente embutido no documento: produção "1", demais "2".
func (a Ambiente) TpAmb() string {
	if a == AmbienteProducao {
		return "1"
	}
	return "2"
}

// Emitente é a empresa que emite a nota. Valores por requisição; nada é persistido.
type Emitente struct {
	CNPJ               string
	RazaoSocial        string
	NomeFantasia       string
	InscricaoEstadual  string
	Endereco           string
	Numero             string
	Complemento        string
	Bairro             string
	Cidade             string
	Estado             string
	CEP                string
	CodigoIBGE         string
	Telefone           string
	CNAE               string
	Regime             string // "simples" para Simples Nacional
	CRT                string // "1" também indica Simples Nacional

	// Certificado digital (blob opaco) e senha: repassados ao colaborador
	// de assinatura, nunca interpretados pelo núcleo.
	Certificado      []byte
	SenhaCertificado string
}

// Simples indica se o emitente está no Simples Nacional (regime simplificado).
func (e Emitente) Simples() bool {
	return e.Regime == "simples" || e.CRT == "1"
}

// Destinatario é a parte de destino da nota.
type Destinatario struct {
	TipoPessoa  string // "F" física | "J" jurídica
	CPFCNPJ     string
	RazaoSocial string
	Endereco    string
	Numero      string
	Bairro      string
	Cidade      string
	Estado      string
	CEP         string
	CodigoIBGE  string
	Email       string
}

// PessoaJuridica indica destinatário pessoa jurídica (CNPJ).
func (d Destinatario) PessoaJuridica() bool { return d.TipoPessoa == "J" }

// Item é uma linha de produto da nota. O total informado é de responsabilidade
// do chamador; o builder não o recalcula nem valida contra quantidade × preço.
type Item struct {
	CodigoProduto string
	Descricao     string
	NCM           string
	Unidade       string
	Quantidade    decimal.Decimal
	PrecoUnitario decimal.Decimal
	Total         decimal.Decimal
}

// Pedido agrega todos os dados de uma emissão. Objeto de valor com escopo de
// requisição: construído da entrada do chamador, consumido pelo pipeline
// síncrono e descartado após o resultado.
type Pedido struct {
	Chave        Chave
	Ambiente     Ambiente
	Emitente     Emitente
	Destinatario Destinatario
	Itens        []Item
	ValorTotal   decimal.Decimal
}

// ResultadoTransmissao é o registro uniforme devolvido ao chamador por
// qualquer caminho do pipeline (sucesso, rejeição da SEFAZ ou falha de
// transporte). Nunca se propaga erro de transporte/parse como exceção.
type ResultadoTransmissao struct {
	Sucesso     bool
	Codigo      string // cStat de 3 dígitos da SEFAZ, ou "999" para falhas do gateway
	Mensagem    string
	Protocolo   string // nRec/nProt; vazio quando ausente
	XMLResposta string // payload bruto para diagnóstico

	// Simulacao distingue resultados sintéticos (apenas dublês de teste)
	// de round-trips reais. ComunicacaoReal é true quando houve tentativa
	// genuína de rede, inclusive nas que falharam.
	Simulacao       bool
	ComunicacaoReal bool
}
