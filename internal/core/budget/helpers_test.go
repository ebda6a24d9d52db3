package budget

import (
	"fmt"
	"math"
	"strings"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// monthVals mapeia mês (0-11) para o par {previsto, realizado}.
type monthVals map[int][2]float64

// formatBR escreve o valor no formato dos exports ("1234,56").
func formatBR(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

// pairedHeader monta o cabeçalho completo de 27 colunas.
func pairedHeader() []any {
	header := []any{"Categorias"}
	for _, m := range MonthNames {
		header = append(header, m+" Previsto", m+" Realizado")
	}
	return append(header, "Total Previsto", "Total Realizado")
}

// dataRow monta uma linha de dados no layout pareado; meses ausentes ficam
// zerados.
func dataRow(name string, vals monthVals) []any {
	row := make([]any, 27)
	row[0] = name
	for m := 0; m < 12; m++ {
		var f, a float64
		if v, ok := vals[m]; ok {
			f, a = v[0], v[1]
		}
		row[1+m*2] = formatBR(f)
		row[2+m*2] = formatBR(a)
	}
	return row
}

// buildGrid monta um grid completo: cabeçalho, linha de metadados vazia e as
// linhas de dados na ordem dada.
func buildGrid(rows ...[]any) domain.RawGrid {
	grid := domain.RawGrid{pairedHeader(), {}}
	return append(grid, rows...)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
