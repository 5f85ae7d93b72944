// Package nfe: tipos de valor e regras de domínio da NF-e modelo 55,
// incluindo a chave de acesso de 44 dígitos e a classificação de status
// retornados pela SEFAZ.
package nfe

import (
	"fmt"
	"strings"

	"github.com/seu-usuario/nfe-gateway/internal/domain"
)

// Layout da chave de acesso, versão 4.00 do leiaute NF-e. Offsets em dígitos.
// Tratado como constante versionada: toda extração posicional passa por aqui.
const (
	ChaveTamanho = 44

	posUF      = 0  // 2 dígitos: código IBGE da UF do emitente
	posAAMM    = 2  // 4 dígitos: ano e mês de emissão
	posCNPJ    = 6  // 14 dígitos: CNPJ do emitente
	posModelo  = 20 // 2 dígitos: modelo do documento (55)
	posSerie   = 22 // 3 dígitos: série
	posNumero  = 25 // 9 dígitos: número da nota (nNF)
	posTpEmis  = 34 // 1 dígito: tipo de emissão
	posCodigo  = 35 // 8 dígitos: código numérico (cNF)
	posDV      = 43 // 1 dígito: dígito verificador módulo 11
)

// Chave é a chave de acesso de 44 dígitos numéricos da NF-e.
type Chave string

// NovaChave valida formato e dígito verificador e devolve a Chave.
func NovaChave(s string) (Chave, error) {
	c := Chave(strings.TrimSpace(s))
	if err := c.Validar(); err != nil {
		return "", err
	}
	return c, nil
}

// Validar verifica tamanho, dígitos e DV. Função pura.
func (c Chave) Validar() error {
	if len(c) != ChaveTamanho {
		return fmt.Errorf("%w: esperados %d dígitos, recebidos %d", domain.ErrChaveInvalida, ChaveTamanho, len(c))
	}
	for i := 0; i < len(c); i++ {
		if c[i] < '0' || c[i] > '9' {
			return fmt.Errorf("%w: caractere não numérico na posição %d", domain.ErrChaveInvalida, i)
		}
	}
	if dv := CalcularDV(string(c[:posDV])); dv != string(c[posDV]) {
		return fmt.Errorf("%w: dígito verificador %s, esperado %s", domain.ErrChaveInvalida, string(c[posDV]), dv)
	}
	return nil
}

// CUF devolve o código IBGE da UF do emitente embutido na chave.
func (c Chave) CUF() string { return string(c[posUF : posUF+2]) }

// Numero devolve o número da nota (nNF) embutido na chave.
func (c Chave) Numero() string { return string(c[posNumero : posNumero+9]) }

// CodigoNumerico devolve o código numérico interno (cNF), offset 35, 8 dígitos.
func (c Chave) CodigoNumerico() string { return string(c[posCodigo : posCodigo+8]) }

// Serie devolve a série do documento.
func (c Chave) Serie() string { return string(c[posSerie : posSerie+3]) }

// CalcularDV calcula o dígito verificador módulo 11 dos 43 primeiros dígitos.
// Pesos {2,3,4,5,6,7,8,9} aplicados da direita para a esquerda, em ciclo.
// Resto < 2 resulta em DV 0; caso contrário DV = 11 - resto.
func CalcularDV(base string) string {
	pesos := [8]int{2, 3, 4, 5, 6, 7, 8, 9}
	soma := 0
	peso := 0

	for i := len(base) - 1; i >= 0; i-- {
		soma += int(base[i]-'0') * pesos[peso%8]
		peso++
	}

	resto := soma % 11
	dv := 0
	if resto >= 2 {
		dv = 11 - resto
	}
	return string(rune('0' + dv))
}
