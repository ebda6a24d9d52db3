// internal/core/budget/classifier.go
package budget

import (
	"regexp"
	"strings"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// codePrefixRegex reconhece um prefixo numérico N.NN no início do nome da
// categoria, seguido de ponto, espaço ou fim ("3.01 Receitas...", "4.05.02").
var codePrefixRegex = regexp.MustCompile(`^\s*(\d\.\d{2})(\.|\s|$)`)

// ExtractCodePrefix extrai o prefixo N.NN do nome da categoria, ou "" quando
// o nome não começa com código.
func ExtractCodePrefix(name string) string {
	m := codePrefixRegex.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// HasCodePrefix informa se o nome (ou código) começa com o prefixo dado,
// exigindo separador ou fim logo após ("3.01" casa "3.01 Vendas" e
// "3.01.02", não "3.011").
func HasCodePrefix(nameOrCode, prefix string) bool {
	s := strings.TrimSpace(nameOrCode)
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	rest := s[len(prefix):]
	return rest == "" || rest[0] == '.' || rest[0] == ' ' || rest[0] == '\t'
}

// InferType classifica a linha a partir do prefixo numérico e, na falta dele,
// de palavras-chave do nome. Saldo (balance) nunca é inferido aqui: só os
// agregados de caixa conhecidos recebem esse tipo, explicitamente.
func InferType(code, name string) domain.ItemType {
	switch {
	case strings.HasPrefix(code, "3."):
		return domain.TypeRevenue
	case strings.HasPrefix(code, "4."), strings.HasPrefix(code, "5."), strings.HasPrefix(code, "6."):
		return domain.TypeExpense
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "receita") || strings.Contains(lower, "vendas") {
		return domain.TypeRevenue
	}
	return domain.TypeExpense
}

// inferTypeByPrefix é a regra usada pelo passo genérico de agrupamento: o
// tipo do pai sintético vem só do prefixo.
func inferTypeByPrefix(prefix string) domain.ItemType {
	switch {
	case strings.HasPrefix(prefix, "3."):
		return domain.TypeRevenue
	case strings.HasPrefix(prefix, "4."):
		return domain.TypeExpense
	default:
		return domain.TypeBalance
	}
}
