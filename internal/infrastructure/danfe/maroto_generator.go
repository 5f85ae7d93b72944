// Package danfe implementa a geração do DANFE simplificado (Documento
// Auxiliar da Nota Fiscal Eletrônica, modelo 55).
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razão Social + CNPJ  │  DANFE + nNF + Data          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CHAVE DE ACESSO: código de barras + dígitos agrupados       │
//	│  EMITENTE: Endereço / Tel / IE                               │
//	│  DESTINATÁRIO: Nome + CPF/CNPJ                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Cód | Descrição | Qtd | V.Unit | V.Total            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAIS: VALOR TOTAL DA NOTA                                 │
//	│  FOOTER: Protocolo de autorização + leyenda                  │
//	└─────────────────────────────────────────────────────────────┘
package danfe

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/barcode"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/seu-usuario/nfe-gateway/internal/domain/nfe"
)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	corPrimaria = &props.Color{Red: 20, Green: 60, Blue: 20}
	corCinza    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoGenerator produz o DANFE em PDF usando Maroto v2.
type MarotoGenerator struct{}

// NewMarotoGenerator constrói o gerador.
func NewMarotoGenerator() *MarotoGenerator { return &MarotoGenerator{} }

// Gerar monta o DANFE do pedido e devolve os bytes do PDF. protocolo pode
// ser vazio (nota ainda não autorizada); o rodapé indica a situação.
func (g *MarotoGenerator) Gerar(pedido *nfe.Pedido, protocolo, dataEmissao string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("DANFE", true).
		WithAuthor(pedido.Emitente.RazaoSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(cabecalhoRow(pedido, dataEmissao))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.5}))
	for _, r := range chaveAcessoRows(pedido.Chave) {
		m.AddRows(r)
	}
	m.AddRows(emitenteRow(pedido.Emitente))
	m.AddRows(destinatarioRow(pedido.Destinatario))
	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))

	m.AddRows(tabelaCabecalhoRow())
	for _, r := range tabelaItemRows(pedido.Itens) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: corPrimaria, Thickness: 0.3}))
	m.AddRows(totaisRow(pedido))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: corCinza, Thickness: 0.3}))
	for _, r := range rodapeRows(pedido, protocolo) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("danfe: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// cabecalhoRow: razão social + CNPJ (esq) e identificação do DANFE (dir).
func cabecalhoRow(pedido *nfe.Pedido, dataEmissao string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(pedido.Emitente.RazaoSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: corPrimaria, Top: 1,
			}),
			text.New("CNPJ: "+formataCNPJ(pedido.Emitente.CNPJ), props.Text{
				Size: 9, Top: 9, Color: corCinza,
			}),
		),
		col.New(5).Add(
			text.New("DANFE - DOCUMENTO AUXILIAR DA NF-e", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: corPrimaria, Top: 1,
			}),
			text.New("Nº "+pedido.Chave.Numero()+"  Série "+pedido.Chave.Serie(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emissão: "+dataEmissao, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: corCinza,
			}),
		),
	)
}

// chaveAcessoRows: código de barras Code128 + dígitos agrupados de 4 em 4.
func chaveAcessoRows(chave nfe.Chave) []core.Row {
	return []core.Row{
		row.New(14).Add(
			col.New(12).Add(code.NewBar(string(chave), props.Barcode{
				Type:    barcode.Code128,
				Percent: 90,
				Center:  true,
			})),
		),
		row.New(5).Add(col.New(12).Add(
			text.New(agrupaChave(string(chave)), props.Text{
				Size: 8, Align: align.Center, Color: corCinza, Top: 1,
			}),
		)),
	}
}

// emitenteRow: endereço e contato do emitente.
func emitenteRow(e nfe.Emitente) core.Row {
	endereco := strings.TrimSpace(fmt.Sprintf("%s, %s - %s, %s/%s",
		e.Endereco, e.Numero, e.Bairro, e.Cidade, e.Estado))
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EMITENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: corPrimaria, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s   |   IE: %s",
				endereco,
				valorOu(e.Telefone, "—"),
				valorOu(e.InscricaoEstadual, "ISENTO"),
			), props.Text{Size: 8, Top: 7, Color: corCinza}),
		),
	)
}

// destinatarioRow: identificação do destinatário.
func destinatarioRow(d nfe.Destinatario) core.Row {
	doc := "CPF"
	if d.PessoaJuridica() {
		doc = "CNPJ"
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DESTINATÁRIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: corPrimaria, Top: 1,
			}),
			text.New(valorOu(d.RazaoSocial, "Não informado"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s: %s   |   Email: %s",
				doc, d.CPFCNPJ, valorOu(d.Email, "—"),
			), props.Text{Size: 8, Top: 12, Color: corCinza}),
		),
	)
}

// tabelaCabecalhoRow: cabeçalho da tabela de itens.
func tabelaCabecalhoRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: corPrimaria, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descrição do produto", 5, align.Left),
		h("Qtd.", 1, align.Center),
		h("V. Unit.", 2, align.Right),
		h("V. Total", 2, align.Right),
	)
}

// tabelaItemRows: uma linha por item da nota.
func tabelaItemRows(itens []nfe.Item) []core.Row {
	result := make([]core.Row, 0, len(itens))
	for _, it := range itens {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				it.CodigoProduto,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(5).Add(text.New(
				it.Descricao,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				it.Quantidade.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+formataValor(it.PrecoUnitario.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"R$ "+formataValor(it.Total.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totaisRow: valor total da nota alinhado à direita.
func totaisRow(pedido *nfe.Pedido) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(
			text.New("VALOR TOTAL DA NOTA:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: corPrimaria, Right: 2, Top: 2,
			}),
		),
		col.New(3).Add(
			text.New("R$ "+formataValor(pedido.ValorTotal.StringFixed(2)), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: corPrimaria, Right: 1, Top: 2,
			}),
		),
	)
}

// rodapeRows: protocolo de autorização + aviso de ambiente.
func rodapeRows(pedido *nfe.Pedido, protocolo string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMAÇÕES DA AUTORIZAÇÃO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: corPrimaria, Top: 1,
			}),
		)),
	}

	if protocolo != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Protocolo de autorização: "+protocolo, props.Text{
				Size: 8, Top: 1, Left: 2,
			}),
		)))
	} else {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("NOTA AINDA NÃO AUTORIZADA PELA SEFAZ", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 1, Left: 2,
			}),
		)))
	}

	if pedido.Ambiente != nfe.AmbienteProducao {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("AMBIENTE DE HOMOLOGAÇÃO - SEM VALOR FISCAL", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: corCinza, Top: 2,
			}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Consulta de autenticidade no portal nacional da NF-e "+
				"www.nfe.fazenda.gov.br/portal ou no site da SEFAZ autorizadora.",
			props.Text{Size: 6.5, Color: corCinza, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func valorOu(s, padrao string) string {
	if s != "" {
		return s
	}
	return padrao
}

// agrupaChave insere um espaço a cada 4 dígitos da chave de acesso.
// Ex: "5324...780" → "5324 0112 3456 ..."
func agrupaChave(chave string) string {
	var b strings.Builder
	for i, c := range chave {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formataValor converte "1234.56" para o formato brasileiro "1.234,56".
func formataValor(s string) string {
	inteiro, fracao, ok := strings.Cut(s, ".")
	n := len(inteiro)
	buf := make([]byte, 0, n+n/3+4)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, inteiro[i])
	}
	if ok {
		buf = append(buf, ',')
		buf = append(buf, fracao...)
	}
	return string(buf)
}

// formataCNPJ aplica a máscara 00.000.000/0000-00 quando possível.
func formataCNPJ(cnpj string) string {
	if len(cnpj) != 14 {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s",
		cnpj[0:2], cnpj[2:5], cnpj[5:8], cnpj[8:12], cnpj[12:14])
}
