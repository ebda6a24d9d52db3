// internal/core/budget/currency.go
package budget

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseCurrency converte uma célula da planilha (string no formato brasileiro
// ou número) para float64 com sinal. Entradas sem valor aproveitável viram 0.
func ParseCurrency(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return parseCurrencyString(v)
	default:
		return 0
	}
}

func parseCurrencyString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// O sinal negativo pode aparecer em qualquer posição (notação contábil
	// com símbolo antes do menos, ou menos ao final).
	negative := strings.Contains(s, "-")

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, s)
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	if strings.Contains(cleaned, ",") {
		// Vírgula presente: todos os pontos são separadores de milhar e a
		// última vírgula é o separador decimal.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if idx := strings.LastIndex(cleaned, ","); idx >= 0 {
			cleaned = strings.ReplaceAll(cleaned[:idx], ",", "") + "." + cleaned[idx+1:]
		}
	} else if n := strings.Count(cleaned, "."); n > 1 {
		// Sem vírgula: só o último ponto é decimal.
		idx := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:idx], ".", "") + cleaned[idx:]
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	if negative && parsed > 0 {
		parsed = -parsed
	}
	return parsed
}

// parseCell é a variante estrita usada pelo extrator: distingue célula vazia
// (ok, valor 0) de célula com texto sem nenhum dígito (falha de parse, que
// descarta a linha inteira).
func parseCell(value any) (float64, bool) {
	s, isString := value.(string)
	if !isString {
		return ParseCurrency(value), true
	}
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return 0, false
	}
	return parseCurrencyString(s), true
}

// CellString devolve a célula como texto aparado.
func CellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
