// internal/core/budget/header.go
package budget

import (
	"strings"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// MonthNames são os meses em português, na grafia dos exports Conta Azul.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// monthKeywords bastam para pontuar uma linha como cabeçalho; cobre também a
// grafia sem cedilha de março.
var monthKeywords = []string{"janeiro", "fevereiro", "março", "marco", "abril"}

// HeaderInfo descreve o layout detectado da planilha.
type HeaderInfo struct {
	Row        int  // índice da linha de cabeçalho
	Simplified bool // um valor por mês em vez de pares Previsto/Realizado
}

// pairedColumnCount é a largura do formato completo: Categorias + 12 meses
// em pares Previsto/Realizado + 2 colunas finais.
const pairedColumnCount = 27

// DetectHeader pontua as primeiras linhas do grid e escolhe a de maior
// pontuação como cabeçalho: +5 se cita um mês, +3 se cita Previsto/Realizado,
// +1 por célula não vazia. Empates ficam com o índice menor.
func DetectHeader(raw domain.RawGrid) HeaderInfo {
	if len(raw) == 0 {
		return HeaderInfo{Row: 0, Simplified: true}
	}

	maxScan := len(raw)
	if maxScan > 5 {
		maxScan = 5
	}

	bestIdx := 0
	bestScore := -1
	for i := 0; i < maxScan; i++ {
		score := scoreHeaderRow(raw[i])
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	header := raw[bestIdx]
	simplified := len(header) < pairedColumnCount || !hasForecastActualLabels(header)
	return HeaderInfo{Row: bestIdx, Simplified: simplified}
}

// DataStart devolve a primeira linha de dados. O piso em 2 existe porque
// alguns exports reservam a segunda linha para metadados, mesmo quando o
// cabeçalho está na primeira.
func (h HeaderInfo) DataStart() int {
	start := h.Row + 1
	if start < 2 {
		start = 2
	}
	return start
}

// ForecastCol devolve a coluna de Previsto do mês (0–11) no layout detectado.
func (h HeaderInfo) ForecastCol(month int) int {
	if h.Simplified {
		return 1 + month
	}
	return 1 + month*2
}

// ActualCol devolve a coluna de Realizado do mês (0–11) no layout detectado.
func (h HeaderInfo) ActualCol(month int) int {
	if h.Simplified {
		return 1 + month
	}
	return 2 + month*2
}

func scoreHeaderRow(row []any) int {
	hasMonth := false
	hasPrevReal := false
	nonEmpty := 0
	for _, cell := range row {
		v := strings.ToLower(CellString(cell))
		if v == "" {
			continue
		}
		nonEmpty++
		for _, kw := range monthKeywords {
			if strings.Contains(v, kw) {
				hasMonth = true
				break
			}
		}
		if strings.Contains(v, "previsto") || strings.Contains(v, "realizado") {
			hasPrevReal = true
		}
	}
	score := nonEmpty
	if hasMonth {
		score += 5
	}
	if hasPrevReal {
		score += 3
	}
	return score
}

func hasForecastActualLabels(row []any) bool {
	for _, cell := range row {
		v := strings.ToLower(CellString(cell))
		if strings.Contains(v, "previsto") || strings.Contains(v, "realizado") {
			return true
		}
	}
	return false
}
