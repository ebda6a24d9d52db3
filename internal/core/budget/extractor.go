// internal/core/budget/extractor.go
package budget

import (
	"fmt"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// Extract percorre as linhas de dados do grid e produz a lista plana de
// itens analíticos. Actual/Forecast somam os meses do período pedido;
// Budgeted nasce igual ao Forecast. A decisão de descartar uma linha olha
// sempre os doze meses: linha inteiramente zerada, ou com célula mensal
// iletrável, é ignorada e seu número (1-based) entra no relatório de
// linhas puladas.
func Extract(raw domain.RawGrid, layout HeaderInfo, period domain.Period) ([]domain.BudgetItem, []int) {
	var items []domain.BudgetItem
	var skipped []int

	for i := layout.DataStart(); i < len(raw); i++ {
		row := raw[i]
		category := CellString(cellAt(row, 0))
		if category == "" {
			skipped = append(skipped, i+1)
			continue
		}

		forecast, actual, ok := readMonthlyValues(row, layout)
		if !ok {
			skipped = append(skipped, i+1)
			continue
		}
		if allZero(forecast) && allZero(actual) {
			skipped = append(skipped, i+1)
			continue
		}

		code := ExtractCodePrefix(category)
		if code == "" {
			code = fmt.Sprintf("%d.00", i)
		}

		var sumForecast, sumActual float64
		for m := period.Start; m <= period.End && m < 12; m++ {
			sumForecast += forecast[m]
			sumActual += actual[m]
		}

		items = append(items, domain.BudgetItem{
			ID:          fmt.Sprintf("item-%d", i),
			Code:        code,
			Category:    category,
			Type:        InferType(ExtractCodePrefix(category), category),
			Actual:      sumActual,
			Forecast:    sumForecast,
			Budgeted:    sumForecast,
			AccountType: domain.AccountAnalytical,
			Level:       1,
		})
	}

	return items, skipped
}

func readMonthlyValues(row []any, layout HeaderInfo) (forecast, actual [12]float64, ok bool) {
	for m := 0; m < 12; m++ {
		f, okF := parseCell(cellAt(row, layout.ForecastCol(m)))
		a, okA := parseCell(cellAt(row, layout.ActualCol(m)))
		if !okF || !okA {
			return forecast, actual, false
		}
		forecast[m] = f
		actual[m] = a
	}
	return forecast, actual, true
}

func allZero(vals [12]float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}
