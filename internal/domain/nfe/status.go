package nfe

// Códigos cStat que denotam sucesso (autorizado ou lote em processamento).
// Fonte única da verdade para o veredito sucesso/falha; não duplicar.
const (
	StatusAutorizado        = "100" // Autorizado o uso da NF-e
	StatusLoteRecebido      = "103" // Lote recebido com sucesso
	StatusLoteProcessado    = "104" // Lote processado
	StatusLoteEmProcesso    = "105" // Lote em processamento
	StatusFalhaComunicacao  = "999" // código interno do gateway para falhas de transporte/parse
)

var codigosSucesso = map[string]bool{
	StatusAutorizado:     true,
	StatusLoteRecebido:   true,
	StatusLoteProcessado: true,
	StatusLoteEmProcesso: true,
}

// Autorizado classifica um cStat da SEFAZ como sucesso ou falha.
func Autorizado(codigo string) bool {
	return codigosSucesso[codigo]
}
