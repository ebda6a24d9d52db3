// internal/core/budget/match.go
package budget

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeText remove acentos, pontuação e espaços redundantes e põe o texto
// em maiúsculas, para comparação tolerante de nomes de categoria.
func NormalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// RowPredicate decide se uma linha do grid (pelo nome da categoria) é a
// procurada.
type RowPredicate func(name string) bool

// ContainsNormalized devolve um predicado que procura o termo ignorando
// acentos e caixa.
func ContainsNormalized(term string) RowPredicate {
	needle := NormalizeText(term)
	return func(name string) bool {
		return strings.Contains(NormalizeText(name), needle)
	}
}

// AnyOf combina predicados em OU, na ordem dada.
func AnyOf(preds ...RowPredicate) RowPredicate {
	return func(name string) bool {
		for _, p := range preds {
			if p(name) {
				return true
			}
		}
		return false
	}
}

// Predicados das linhas agregadas conhecidas do fluxo de caixa Conta Azul,
// com as variações de grafia observadas nos exports.
var (
	IsTotalRecebimentos = AnyOf(
		ContainsNormalized("total de recebimentos"),
		ContainsNormalized("total recebimentos"),
		ContainsNormalized("total de recebimento"),
		ContainsNormalized("total recebimento"),
	)

	IsTotalPagamentos = AnyOf(
		ContainsNormalized("total de pagamentos"),
		ContainsNormalized("total pagamentos"),
		ContainsNormalized("total de pagamento"),
		ContainsNormalized("total pagamento"),
	)

	IsReceitasVendasServicos = AnyOf(
		ContainsNormalized("3.01 receitas de vendas e de serviços"),
		ContainsNormalized("receitas de vendas e serviços"),
		ContainsNormalized("receitas diretas"),
		ContainsNormalized("receita direta"),
	)

	IsSaldoFinalCaixa = AnyOf(
		ContainsNormalized("saldo final de caixa"),
		ContainsNormalized("saldo final líquido (caixa)"),
		ContainsNormalized("saldo final"),
	)

	// IsDespesasVendasServicos cobre "Despesas com Vendas e Serviços" e a
	// variante sem cedilha.
	IsDespesasVendasServicos = func(name string) bool {
		n := NormalizeText(name)
		return strings.Contains(n, "DESPESAS COM VENDAS") && strings.Contains(n, "SERV")
	}

	// IsReceitasFinanciamento é a âncora de inserção do bucket operacional.
	IsReceitasFinanciamento = func(name string) bool {
		n := NormalizeText(name)
		return strings.Contains(n, "RECEITA") &&
			(strings.Contains(n, "FINANCIAMENTO") || strings.Contains(n, "FINANCEIRA"))
	}
)

// FindRow percorre as linhas de dados e devolve a primeira cujo nome de
// categoria satisfaz o predicado, ou nil.
func FindRow(raw domain.RawGrid, dataStart int, pred RowPredicate) []any {
	for i := dataStart; i < len(raw); i++ {
		name := CellString(cellAt(raw[i], 0))
		if name == "" {
			continue
		}
		if pred(name) {
			return raw[i]
		}
	}
	return nil
}

// FindRowFuzzy procura primeiro pelo predicado; se nada casar, tenta o nome
// mais próximo via bag-of-words sobre os nomes normalizados das linhas.
func FindRowFuzzy(raw domain.RawGrid, dataStart int, pred RowPredicate, term string) []any {
	if row := FindRow(raw, dataStart, pred); row != nil {
		return row
	}
	var keys []string
	byKey := make(map[string][]any)
	for i := dataStart; i < len(raw); i++ {
		name := CellString(cellAt(raw[i], 0))
		if name == "" {
			continue
		}
		key := NormalizeText(name)
		if _, ok := byKey[key]; !ok {
			byKey[key] = raw[i]
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	cm := closestmatch.New(keys, []int{3, 4})
	match := cm.Closest(NormalizeText(term))
	if match == "" {
		return nil
	}
	return byKey[match]
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
