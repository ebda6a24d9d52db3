// internal/core/budget/period.go
package budget

import (
	"math"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// Column escolhe entre a coluna de Previsto e a de Realizado.
type Column int

const (
	ColumnForecast Column = iota
	ColumnActual
)

// SummarizePeriod soma a coluna pedida nos meses Start..End (inclusivos) de
// todas as linhas cujo nome de categoria satisfaz o predicado.
func SummarizePeriod(raw domain.RawGrid, layout HeaderInfo, pred RowPredicate, period domain.Period, col Column) float64 {
	var total float64
	for i := layout.DataStart(); i < len(raw); i++ {
		name := CellString(cellAt(raw[i], 0))
		if name == "" || !pred(name) {
			continue
		}
		total += sumRowRange(raw[i], layout, period, col)
	}
	return total
}

// PreviousPeriod devolve o período de comparação [start-1, end-1], com piso
// em zero. Quando o período já começa em janeiro não há período anterior.
func PreviousPeriod(p domain.Period) (domain.Period, bool) {
	if p.Start <= 0 {
		return domain.Period{}, false
	}
	prevStart := p.Start - 1
	prevEnd := p.End - 1
	if prevEnd < prevStart {
		prevEnd = prevStart
	}
	return domain.Period{Start: prevStart, End: prevEnd}, true
}

func sumRowRange(row []any, layout HeaderInfo, period domain.Period, col Column) float64 {
	var sum float64
	for m := period.Start; m <= period.End && m < 12; m++ {
		idx := layout.ForecastCol(m)
		if col == ColumnActual {
			idx = layout.ActualCol(m)
		}
		sum += ParseCurrency(cellAt(row, idx))
	}
	return sum
}

// marginExpenseCategories compõem o numerador de despesas da Margem Líquida.
var marginExpenseCategories = []string{
	"4.01 Despesas com Vendas e Serviços",
	"4.02 Impostos sobre Vendas, Serviços e Lucro",
	"4.03 Despesa com Pessoal",
	"4.04 Despesas Diretas",
	"4.05 Despesas Administrativas",
	"4.06 Despesas com Funcionamento",
	"4.07 Despesas Comerciais",
	"4.08 Despesas Financeiras",
	"4.10 Despesa com Pessoal – Indireto",
	"4.12 Despesas Financeiras – Variáveis",
}

const expectedNetMargin = 15.0

// BuildKPIs monta os cartões do dashboard para um mês, lendo o Realizado das
// linhas agregadas conhecidas do fluxo de caixa. Cartões cujo dado-fonte não
// existe na planilha simplesmente não aparecem.
func BuildKPIs(raw domain.RawGrid, layout HeaderInfo, month int) []domain.KPICard {
	if len(raw) == 0 {
		return nil
	}
	var cards []domain.KPICard

	one := domain.Period{Start: month, End: month}
	prevMonth := month - 1
	if prevMonth < 0 {
		prevMonth = 11
	}
	prevOne := domain.Period{Start: prevMonth, End: prevMonth}

	// Saldo do mês anterior vive por convenção na primeira linha de dados
	// (índice 2), acima das categorias codificadas.
	if len(raw) > 2 {
		saldoRow := raw[2]
		cards = append(cards, domain.KPICard{
			Title:         "Saldo do Mês Anterior",
			Forecast:      sumRowRange(saldoRow, layout, one, ColumnActual),
			Actual:        sumRowRange(saldoRow, layout, one, ColumnActual),
			PreviousMonth: sumRowRange(saldoRow, layout, prevOne, ColumnActual),
			Type:          domain.TypeBalance,
		})
	}

	dataStart := layout.DataStart()

	recebimentosRow := FindRow(raw, dataStart, IsTotalRecebimentos)
	if recebimentosRow == nil {
		recebimentosRow = FindRow(raw, dataStart, IsReceitasVendasServicos)
	}
	if recebimentosRow != nil {
		actual := sumRowRange(recebimentosRow, layout, one, ColumnActual)
		cards = append(cards, domain.KPICard{
			Title:         "Total Recebimentos",
			Forecast:      actual,
			Actual:        actual,
			PreviousMonth: sumRowRange(recebimentosRow, layout, prevOne, ColumnActual),
			Type:          domain.TypeRevenue,
		})
	}

	if cmvRow := FindRow(raw, dataStart, ContainsNormalized("4.01 Despesas com Vendas e Serviços")); cmvRow != nil {
		actual := sumRowRange(cmvRow, layout, one, ColumnActual)
		cards = append(cards, domain.KPICard{
			Title:         "CMV/CSP/CPV",
			Forecast:      actual,
			Actual:        actual,
			PreviousMonth: sumRowRange(cmvRow, layout, prevOne, ColumnActual),
			Type:          domain.TypeExpense,
		})
	}

	if pagamentosRow := FindRow(raw, dataStart, IsTotalPagamentos); pagamentosRow != nil {
		actual := sumRowRange(pagamentosRow, layout, one, ColumnActual)
		cards = append(cards, domain.KPICard{
			Title:         "Total de Pagamentos",
			Forecast:      actual,
			Actual:        actual,
			PreviousMonth: sumRowRange(pagamentosRow, layout, prevOne, ColumnActual),
			Type:          domain.TypeExpense,
		})
	}

	if saldoFinalRow := FindRow(raw, dataStart, IsSaldoFinalCaixa); saldoFinalRow != nil {
		cards = append(cards, domain.KPICard{
			Title:         "Saldo Final de Caixa",
			Forecast:      sumRowRange(saldoFinalRow, layout, one, ColumnForecast),
			Actual:        sumRowRange(saldoFinalRow, layout, one, ColumnActual),
			PreviousMonth: sumRowRange(saldoFinalRow, layout, prevOne, ColumnActual),
			Type:          domain.TypeBalance,
		})
	}

	if receitasRow := FindRow(raw, dataStart, ContainsNormalized("3.01 Receitas de Vendas e de Serviços")); receitasRow != nil {
		receitaActual := sumRowRange(receitasRow, layout, one, ColumnActual)
		receitaPrev := sumRowRange(receitasRow, layout, prevOne, ColumnActual)

		var despesasActual, despesasPrev float64
		for _, categoria := range marginExpenseCategories {
			row := FindRow(raw, dataStart, ContainsNormalized(categoria))
			if row == nil {
				continue
			}
			despesasActual += sumRowRange(row, layout, one, ColumnActual)
			despesasPrev += sumRowRange(row, layout, prevOne, ColumnActual)
		}

		margem := receitaActual - despesasActual
		var pct float64
		if receitaActual > 0 {
			pct = (margem / receitaActual) * 100
		}
		expected := expectedNetMargin
		cards = append(cards, domain.KPICard{
			Title:            "Margem Líquida",
			Forecast:         margem,
			Actual:           margem,
			PreviousMonth:    receitaPrev - despesasPrev,
			Type:             domain.TypeBalance,
			MarginPercentage: &pct,
			ExpectedMargin:   &expected,
		})
	}

	return cards
}

// PeriodKPIs parte dos cartões do mês final do período e substitui os de
// fluxo (Recebimentos, Pagamentos, Saldo Final) por somas do intervalo, com
// comparação contra o período imediatamente anterior (zero quando o período
// começa em janeiro).
func PeriodKPIs(raw domain.RawGrid, layout HeaderInfo, period domain.Period) []domain.KPICard {
	cards := BuildKPIs(raw, layout, period.End)
	dataStart := layout.DataStart()

	replace := func(title string, itemType domain.ItemType, pred, fallback RowPredicate) {
		row := FindRow(raw, dataStart, pred)
		if row == nil && fallback != nil {
			row = FindRow(raw, dataStart, fallback)
		}
		if row == nil {
			return
		}
		actual := sumRowRange(row, layout, period, ColumnActual)
		var previous float64
		if prev, ok := PreviousPeriod(period); ok {
			previous = sumRowRange(row, layout, prev, ColumnActual)
		}
		for i := range cards {
			if cards[i].Title == title {
				cards[i].Forecast = actual
				cards[i].Actual = actual
				cards[i].PreviousMonth = previous
				return
			}
		}
		cards = append(cards, domain.KPICard{
			Title:         title,
			Forecast:      actual,
			Actual:        actual,
			PreviousMonth: previous,
			Type:          itemType,
		})
	}

	replace("Total Recebimentos", domain.TypeRevenue, IsTotalRecebimentos, IsReceitasVendasServicos)
	replace("Total de Pagamentos", domain.TypeExpense, IsTotalPagamentos, nil)
	replace("Saldo Final de Caixa", domain.TypeBalance, IsSaldoFinalCaixa, nil)
	return cards
}

// MonthlySeries produz os doze pontos das séries de performance para as
// linhas que casam com qualquer dos prefixos dados. "Previous" é o Realizado
// do mês anterior, com dezembro antecedendo janeiro.
func MonthlySeries(raw domain.RawGrid, layout HeaderInfo, prefixes []string) []domain.ChartPoint {
	pred := func(name string) bool {
		for _, p := range prefixes {
			if HasCodePrefix(name, p) {
				return true
			}
		}
		return false
	}

	points := make([]domain.ChartPoint, 0, 12)
	for m := 0; m < 12; m++ {
		prev := (m + 11) % 12
		points = append(points, domain.ChartPoint{
			Month:    MonthNames[m],
			Current:  SummarizePeriod(raw, layout, pred, domain.Period{Start: m, End: m}, ColumnActual),
			Previous: SummarizePeriod(raw, layout, pred, domain.Period{Start: prev, End: prev}, ColumnActual),
			Forecast: SummarizePeriod(raw, layout, pred, domain.Period{Start: m, End: m}, ColumnForecast),
		})
	}
	return points
}

// MarginSummary compara a margem corrente do cenário com a esperada do setor.
type MarginSummary struct {
	CurrentMargin  float64 `json:"currentMargin"`
	ExpectedMargin float64 `json:"expectedMargin"`
	Difference     float64 `json:"difference"`
}

var marginRevenuePrefixes = []string{"3.01", "3.02", "3.04"}
var marginNumeratorPrefixes = []string{
	"3.01", "3.02", "3.04",
	"4.01", "4.02", "4.03", "4.04", "4.05", "4.06",
	"4.07", "4.08", "4.09", "4.10", "4.11", "4.12",
}

// ScenarioMargin calcula a margem projetada a partir dos valores orçados da
// árvore editada. O setor define a margem esperada: serviços 30%, comércio
// 15%, demais 10%.
func ScenarioMargin(tree []domain.BudgetItem, sector string) MarginSummary {
	expected := 10.0
	switch sector {
	case "servicos":
		expected = 30.0
	case "comercio":
		expected = 15.0
	}

	den := sumBudgetedByPrefixes(tree, marginRevenuePrefixes)
	num := sumBudgetedByPrefixes(tree, marginNumeratorPrefixes)

	var current float64
	if den != 0 {
		current = (num / den) * 100
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	return MarginSummary{
		CurrentMargin:  current,
		ExpectedMargin: expected,
		Difference:     current - expected,
	}
}

func sumBudgetedByPrefixes(items []domain.BudgetItem, prefixes []string) float64 {
	var sum float64
	for _, it := range items {
		for _, p := range prefixes {
			if HasCodePrefix(it.Code, p) || HasCodePrefix(it.Category, p) {
				if len(it.Subcategories) > 0 {
					var s float64
					for _, c := range it.Subcategories {
						s += c.Budgeted
					}
					sum += s
				} else {
					sum += it.Budgeted
				}
				break
			}
		}
		if len(it.Subcategories) > 0 {
			sum += sumBudgetedByPrefixes(it.Subcategories, prefixes)
		}
	}
	return sum
}
