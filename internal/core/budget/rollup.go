// internal/core/budget/rollup.go
package budget

import "github.com/cfsmart/painel-lamole/internal/domain"

// RecalculateParentTotals devolve uma cópia da árvore onde todo item
// sintético com filhas tem Actual/Forecast/Budgeted recalculados de baixo
// para cima. É o contrato do caminho de escrita: depois de uma edição no
// simulador, os valores preservados da planilha dão lugar às somas.
func RecalculateParentTotals(tree []domain.BudgetItem) []domain.BudgetItem {
	out := make([]domain.BudgetItem, len(tree))
	for i, item := range tree {
		out[i] = recalcItem(item)
	}
	return out
}

func recalcItem(item domain.BudgetItem) domain.BudgetItem {
	if len(item.Subcategories) == 0 {
		return item
	}
	children := make([]domain.BudgetItem, len(item.Subcategories))
	for i, child := range item.Subcategories {
		children[i] = recalcItem(child)
	}
	item.Subcategories = children
	if item.AccountType == domain.AccountSynthetic {
		item.Actual, item.Forecast, item.Budgeted = sumFields(children)
	}
	return item
}

// ApplyScenario grava valores orçados editados nas folhas analíticas da
// árvore (por id) e recalcula os pais. Itens sintéticos nunca são editados
// diretamente. Sem edições a árvore volta intocada: na leitura os subtotais
// vindos da planilha permanecem preservados, e o rollup só acontece depois
// que alguma folha foi de fato alterada.
func ApplyScenario(tree []domain.BudgetItem, edits map[string]float64) []domain.BudgetItem {
	if len(edits) == 0 {
		return tree
	}
	out := make([]domain.BudgetItem, len(tree))
	for i, item := range tree {
		out[i] = applyEdits(item, edits)
	}
	return RecalculateParentTotals(out)
}

func applyEdits(item domain.BudgetItem, edits map[string]float64) domain.BudgetItem {
	if len(item.Subcategories) == 0 {
		if item.AccountType == domain.AccountAnalytical {
			if v, ok := edits[item.ID]; ok {
				item.Budgeted = v
			}
		}
		return item
	}
	children := make([]domain.BudgetItem, len(item.Subcategories))
	for i, child := range item.Subcategories {
		children[i] = applyEdits(child, edits)
	}
	item.Subcategories = children
	return item
}

// Leaves percorre a árvore e devolve os nomes das folhas alcançáveis (itens
// sem subcategorias), na ordem de visita.
func Leaves(tree []domain.BudgetItem) []string {
	var names []string
	var walk func(items []domain.BudgetItem)
	walk = func(items []domain.BudgetItem) {
		for _, it := range items {
			if len(it.Subcategories) == 0 {
				names = append(names, it.Category)
				continue
			}
			walk(it.Subcategories)
		}
	}
	walk(tree)
	return names
}
