package sefaz

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/seu-usuario/nfe-gateway/internal/domain"
	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// Constantes do leiaute NF-e 4.00.
const (
	// NsNFe namespace do Portal Fiscal para todos os elementos do documento.
	NsNFe = "http://www.portalfiscal.inf.br/nfe"
	// VersaoLeiaute versão do leiaute declarada no enviNFe.
	VersaoLeiaute = "4.00"

	// CFOP de venda dentro do estado e interestadual.
	CFOPVendaIntraestadual  = "5102"
	CFOPVendaInterestadual  = "6102"

	// CSOSN do Simples Nacional e CST de isenção do regime normal.
	CSOSNSimples   = "102"
	CSTIsencao     = "41"

	natOpVenda    = "Venda de mercadorias"
	codigoPaisBR  = "1058"
	nomePaisBR    = "Brasil"
	semGTIN       = "SEM GTIN"
	ncmPadrao     = "84715010"
	cnaePadrao    = "4712100"
	fusoEmissao   = -3 * 60 * 60 // dhEmi sempre em -03:00, como o leiaute do DF
)

var fusoBrasilia = time.FixedZone("-03:00", fusoEmissao)

// XMLBuilderService monta o documento enviNFe 4.00 a partir de um Pedido.
// Função pura: sem I/O, sem efeitos colaterais, saída determinística para a
// mesma entrada (a data de emissão vem do contexto, não do relógio).
type XMLBuilderService struct{}

// NewXMLBuilderService cria o serviço.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build gera a string XML do lote enviNFe. Todo texto livre passa por
// xml.CharData, portanto '<' e '&' saem sempre escapados — divergência
// intencional do comportamento de referência, coberta por teste.
func (s *XMLBuilderService) Build(ctx *PedidoBuildContext) (string, error) {
	if ctx == nil || ctx.Pedido == nil {
		return "", fmt.Errorf("sefaz: pedido ausente no contexto de montagem")
	}
	p := ctx.Pedido

	if err := s.validar(p); err != nil {
		return "", err
	}

	emp := p.Emitente
	cli := p.Destinatario
	interestadual := valorOuPadrao(emp.Estado, "DF") != valorOuPadrao(cli.Estado, valorOuPadrao(emp.Estado, "DF"))
	cfop := CFOPVendaIntraestadual
	idDest := "1"
	if interestadual {
		cfop = CFOPVendaInterestadual
		idDest = "2"
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "enviNFe"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsNFe},
			{Name: xml.Name{Local: "versao"}, Value: VersaoLeiaute},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return "", err
	}

	escreve(enc, "idLote", "1")
	escreve(enc, "indSinc", "1")

	abre(enc, "NFe")
	abreAttr(enc, "infNFe", "Id", "NFe"+string(p.Chave))

	s.escreveIde(enc, p, idDest, ctx.DataEmissao)
	s.escreveEmit(enc, emp)
	s.escreveDest(enc, cli, emp)
	for i, item := range p.Itens {
		s.escreveDet(enc, i+1, item, cfop, emp.Simples())
	}
	s.escreveTotal(enc, p.ValorTotal)

	abre(enc, "transp")
	escreve(enc, "modFrete", "0")
	fecha(enc, "transp")

	abre(enc, "pag")
	abre(enc, "detPag")
	escreve(enc, "indPag", "0")
	escreve(enc, "tPag", "90")
	escreve(enc, "vPag", "0.00")
	fecha(enc, "detPag")
	fecha(enc, "pag")

	abre(enc, "infAdic")
	escreve(enc, "infCpl", "Documento emitido por ME/EPP optante pelo Simples Nacional.")
	fecha(enc, "infAdic")

	fecha(enc, "infNFe")
	fecha(enc, "NFe")

	if err := enc.EncodeToken(root.End()); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// validar cobre apenas os campos de identidade: chave, documentos fiscais,
// itens e total. Campos de texto livre nunca falham; recebem placeholder.
func (s *XMLBuilderService) validar(p *nfe.Pedido) error {
	if err := p.Chave.Validar(); err != nil {
		return err
	}
	if somenteDigitos(p.Emitente.CNPJ) == "" {
		return fmt.Errorf("%w: cnpj do emitente", domain.ErrCampoObrigatorio)
	}
	if somenteDigitos(p.Destinatario.CPFCNPJ) == "" {
		return fmt.Errorf("%w: cpf/cnpj do destinatario", domain.ErrCampoObrigatorio)
	}
	if len(p.Itens) == 0 {
		return fmt.Errorf("%w: itens da nota", domain.ErrCampoObrigatorio)
	}
	if !p.ValorTotal.IsPositive() {
		return fmt.Errorf("%w: valor total", domain.ErrCampoObrigatorio)
	}
	return nil
}

func (s *XMLBuilderService) escreveIde(enc *xml.Encoder, p *nfe.Pedido, idDest string, emissao time.Time) {
	emp := p.Emitente
	cli := p.Destinatario

	indFinal := "0"
	if cli.TipoPessoa == "F" {
		indFinal = "1"
	}

	abre(enc, "ide")
	escreve(enc, "cUF", p.Chave.CUF())
	escreve(enc, "cNF", p.Chave.CodigoNumerico())
	escreve(enc, "natOp", natOpVenda)
	escreve(enc, "mod", "55")
	escreve(enc, "serie", "1")
	escreve(enc, "nNF", p.Chave.Numero())
	escreve(enc, "dhEmi", emissao.In(fusoBrasilia).Format("2006-01-02T15:04:05-07:00"))
	escreve(enc, "tpNF", "1")
	escreve(enc, "idDest", idDest)
	escreve(enc, "cMunFG", valorOuPadrao(emp.CodigoIBGE, "5300108"))
	escreve(enc, "tpImp", "1")
	escreve(enc, "tpEmis", "1")
	escreve(enc, "tpAmb", p.Ambiente.TpAmb())
	escreve(enc, "finNFe", "1")
	escreve(enc, "indFinal", indFinal)
	escreve(enc, "indPres", "1")
	escreve(enc, "indIntermed", "0")
	escreve(enc, "procEmi", "0")
	escreve(enc, "verProc", "1.0")
	fecha(enc, "ide")
}

func (s *XMLBuilderService) escreveEmit(enc *xml.Encoder, emp nfe.Emitente) {
	abre(enc, "emit")
	escreve(enc, "CNPJ", somenteDigitos(emp.CNPJ))
	escreve(enc, "xNome", valorOuPadrao(emp.RazaoSocial, "EMPRESA TESTE"))
	escreve(enc, "xFant", valorOuPadrao(emp.NomeFantasia, "EMPRESA TESTE"))

	abre(enc, "enderEmit")
	escreve(enc, "xLgr", valorOuPadrao(emp.Endereco, "RUA TESTE"))
	escreve(enc, "nro", valorOuPadrao(emp.Numero, "123"))
	if emp.Complemento != "" {
		escreve(enc, "xCpl", emp.Complemento)
	}
	escreve(enc, "xBairro", valorOuPadrao(emp.Bairro, "CENTRO"))
	escreve(enc, "cMun", valorOuPadrao(emp.CodigoIBGE, "5300108"))
	escreve(enc, "xMun", valorOuPadrao(emp.Cidade, "BRASILIA"))
	escreve(enc, "UF", valorOuPadrao(emp.Estado, "DF"))
	escreve(enc, "CEP", somenteDigitosOuPadrao(emp.CEP, "70000000"))
	escreve(enc, "cPais", codigoPaisBR)
	escreve(enc, "xPais", nomePaisBR)
	if emp.Telefone != "" {
		escreve(enc, "fone", somenteDigitos(emp.Telefone))
	}
	fecha(enc, "enderEmit")

	escreve(enc, "IE", valorOuPadrao(emp.InscricaoEstadual, "ISENTO"))
	escreve(enc, "CNAE", valorOuPadrao(emp.CNAE, cnaePadrao))
	crt := "3"
	if emp.Simples() {
		crt = "1"
	}
	escreve(enc, "CRT", crt)
	fecha(enc, "emit")
}

func (s *XMLBuilderService) escreveDest(enc *xml.Encoder, cli nfe.Destinatario, emp nfe.Emitente) {
	abre(enc, "dest")
	docTag := "CPF"
	indIEDest := "9"
	if cli.PessoaJuridica() {
		docTag = "CNPJ"
		indIEDest = "1"
	}
	escreve(enc, docTag, somenteDigitos(cli.CPFCNPJ))
	escreve(enc, "xNome", valorOuPadrao(cli.RazaoSocial, "Nao informado"))

	abre(enc, "enderDest")
	escreve(enc, "xLgr", valorOuPadrao(cli.Endereco, "Nao informado"))
	escreve(enc, "nro", valorOuPadrao(cli.Numero, "SN"))
	escreve(enc, "xBairro", valorOuPadrao(cli.Bairro, "Nao informado"))
	escreve(enc, "cMun", valorOuPadrao(cli.CodigoIBGE, valorOuPadrao(emp.CodigoIBGE, "5300108")))
	escreve(enc, "xMun", valorOuPadrao(cli.Cidade, valorOuPadrao(emp.Cidade, "BRASILIA")))
	escreve(enc, "UF", valorOuPadrao(cli.Estado, valorOuPadrao(emp.Estado, "DF")))
	escreve(enc, "CEP", somenteDigitosOuPadrao(cli.CEP, "00000000"))
	escreve(enc, "cPais", codigoPaisBR)
	escreve(enc, "xPais", nomePaisBR)
	fecha(enc, "enderDest")

	escreve(enc, "indIEDest", indIEDest)
	if cli.Email != "" {
		escreve(enc, "email", cli.Email)
	}
	fecha(enc, "dest")
}

func (s *XMLBuilderService) escreveDet(enc *xml.Encoder, n int, item nfe.Item, cfop string, simples bool) {
	quantidade := item.Quantidade
	unitario := item.PrecoUnitario
	total := item.Total
	if !total.IsPositive() {
		total = unitario.Mul(quantidade)
	}
	unidade := valorOuPadrao(item.Unidade, "UN")

	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "det"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "nItem"}, Value: strconv.Itoa(n)}},
	})

	abre(enc, "prod")
	escreve(enc, "cProd", item.CodigoProduto)
	escreve(enc, "cEAN", semGTIN)
	escreve(enc, "xProd", trunca(item.Descricao, 120))
	escreve(enc, "NCM", valorOuPadrao(item.NCM, ncmPadrao))
	escreve(enc, "CFOP", cfop)
	escreve(enc, "uCom", unidade)
	escreve(enc, "qCom", quantidade.StringFixed(4))
	escreve(enc, "vUnCom", unitario.StringFixed(10))
	escreve(enc, "vProd", total.StringFixed(2))
	escreve(enc, "cEANTrib", semGTIN)
	escreve(enc, "uTrib", unidade)
	escreve(enc, "qTrib", quantidade.StringFixed(4))
	escreve(enc, "vUnTrib", unitario.StringFixed(10))
	escreve(enc, "indTot", "1")
	fecha(enc, "prod")

	abre(enc, "imposto")
	abre(enc, "ICMS")
	if simples {
		abre(enc, "ICMSSN102")
		escreve(enc, "orig", "0")
		escreve(enc, "CSOSN", CSOSNSimples)
		fecha(enc, "ICMSSN102")
	} else {
		abre(enc, "ICMS41")
		escreve(enc, "orig", "0")
		escreve(enc, "CST", CSTIsencao)
		fecha(enc, "ICMS41")
	}
	fecha(enc, "ICMS")
	abre(enc, "PIS")
	abre(enc, "PISNT")
	escreve(enc, "CST", "07")
	fecha(enc, "PISNT")
	fecha(enc, "PIS")
	abre(enc, "COFINS")
	abre(enc, "COFINSNT")
	escreve(enc, "CST", "07")
	fecha(enc, "COFINSNT")
	fecha(enc, "COFINS")
	fecha(enc, "imposto")

	fecha(enc, "det")
}

func (s *XMLBuilderService) escreveTotal(enc *xml.Encoder, valorTotal decimal.Decimal) {
	abre(enc, "total")
	abre(enc, "ICMSTot")
	for _, zerado := range []string{
		"vBC", "vICMS", "vICMSDeson", "vFCP", "vBCST", "vST", "vFCPST", "vFCPSTRet",
	} {
		escreve(enc, zerado, "0.00")
	}
	escreve(enc, "vProd", valorTotal.StringFixed(2))
	for _, zerado := range []string{
		"vFrete", "vSeg", "vDesc", "vII", "vIPI", "vIPIDevol", "vPIS", "vCOFINS", "vOutro",
	} {
		escreve(enc, zerado, "0.00")
	}
	escreve(enc, "vNF", valorTotal.StringFixed(2))
	fecha(enc, "ICMSTot")
	fecha(enc, "total")
}

// ── helpers de escrita (escape garantido via xml.CharData) ────────────────────

func abre(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func abreAttr(enc *xml.Encoder, local, attrLocal, attrValor string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValor}},
	})
}

func fecha(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func escreve(enc *xml.Encoder, local, valor string) {
	abre(enc, local)
	_ = enc.EncodeToken(xml.CharData(sanitizaTexto(valor)))
	fecha(enc, local)
}

// sanitizaTexto normaliza para NFC (bytes idênticos para entradas Unicode
// equivalentes) e remove caracteres de controle que o leiaute não admite.
func sanitizaTexto(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func valorOuPadrao(s, padrao string) string {
	if strings.TrimSpace(s) == "" {
		return padrao
	}
	return s
}

func somenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func somenteDigitosOuPadrao(s, padrao string) string {
	if d := somenteDigitos(s); d != "" {
		return d
	}
	return padrao
}

func trunca(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
