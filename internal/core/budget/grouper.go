// internal/core/budget/grouper.go
package budget

import (
	"strings"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// As regras de agrupamento são declarativas e aplicadas em ordem fixa; cada
// passo consome linhas da lista de trabalho antes do seguinte rodar, e uma
// linha já absorvida como filha nunca é reagrupada.

// namedRule agrupa os filhos de um prefixo sob uma linha agregada explícita
// da planilha (ou sob um pai sintetizado, quando a linha não existe).
type namedRule struct {
	prefix     string
	parentPred RowPredicate // nil: a primeira ocorrência do prefixo vira pai
	minMatches int          // mínimo de linhas do prefixo para agrupar
	synthesize bool         // cria o pai quando não há linha explícita
	synthID    string
	synthName  string
	itemType   domain.ItemType
}

// bucketRule cria um pai sintético novo somando linhas de vários prefixos
// (ex.: Despesa Operacional) e o insere após uma linha-âncora.
type bucketRule struct {
	prefixes    []string
	excludeName string // nome exato que não entra como filho
	id          string
	code        string
	name        string
	anchors     []RowPredicate // inserir após o primeiro que casar; senão, ao final
}

var namedRules = []namedRule{
	{
		prefix:     "3.01",
		parentPred: IsTotalRecebimentos,
		synthesize: true,
		synthID:    "receipts-total",
		synthName:  "Total de Recebimentos",
		itemType:   domain.TypeRevenue,
	},
	{
		prefix:     "4.01",
		parentPred: IsDespesasVendasServicos,
		synthesize: true,
		synthID:    "expenses-sales-services",
		synthName:  "Despesas com Vendas e Serviços",
		itemType:   domain.TypeExpense,
	},
	{
		prefix:     "3.04",
		minMatches: 2,
		itemType:   domain.TypeRevenue,
	},
}

// genericExcluded são os prefixos já tratados pelas regras nomeadas.
var genericExcluded = map[string]bool{"3.01": true, "4.01": true, "3.04": true}

var bucketRules = []bucketRule{
	{
		// 4.11 fica de fora do bucket operacional, fielmente ao comportamento
		// de origem.
		prefixes:    []string{"4.03", "4.04", "4.05", "4.06", "4.07", "4.08", "4.09", "4.10", "4.12"},
		excludeName: "Despesa Operacional",
		id:          "operational-expenses",
		code:        "4.OP",
		name:        "Despesa Operacional",
		anchors:     []RowPredicate{IsReceitasFinanciamento, IsDespesasVendasServicos},
	},
	{
		prefixes:    []string{"5.01", "6.01"},
		excludeName: "Despesas Não Operacionais",
		id:          "non-operational-expenses",
		code:        "5-6.NO",
		name:        "Despesas Não Operacionais",
		anchors:     []RowPredicate{isNamedExactly("Despesa Operacional")},
	},
}

// GroupHierarchy aplica o pipeline de agrupamento sobre a lista plana e
// devolve a lista (possivelmente mais curta) onde itens sintéticos carregam
// Subcategories. Pais explícitos preservam os valores vindos da planilha;
// pais sintetizados somam os filhos.
func GroupHierarchy(items []domain.BudgetItem) []domain.BudgetItem {
	work := make([]domain.BudgetItem, len(items))
	copy(work, items)

	for _, rule := range namedRules {
		work = applyNamedRule(work, rule)
	}
	work = applyGenericPass(work)
	for _, rule := range bucketRules {
		work = applyBucketRule(work, rule)
	}
	return work
}

func applyNamedRule(work []domain.BudgetItem, rule namedRule) []domain.BudgetItem {
	parentIdx := -1
	if rule.parentPred != nil {
		for i, it := range work {
			if rule.parentPred(it.Category) {
				parentIdx = i
				break
			}
		}
	}

	var childIdx []int
	for i, it := range work {
		if i == parentIdx {
			continue
		}
		if rule.parentPred != nil && rule.parentPred(it.Category) {
			continue
		}
		if HasCodePrefix(it.Category, rule.prefix) {
			childIdx = append(childIdx, i)
		}
	}

	min := rule.minMatches
	if min == 0 {
		min = 1
	}
	if len(childIdx) < min {
		return work
	}

	// Sem linha agregada explícita e sem regra nomeada: a primeira ocorrência
	// do prefixo vira o pai, na ordem original da planilha.
	if rule.parentPred == nil {
		parentIdx = childIdx[0]
		childIdx = childIdx[1:]
	}
	if len(childIdx) == 0 {
		return work
	}

	children := make([]domain.BudgetItem, 0, len(childIdx))
	consumed := make(map[int]bool, len(childIdx))
	for _, i := range childIdx {
		child := work[i]
		child.AccountType = domain.AccountAnalytical
		child.Level = 1
		children = append(children, child)
		consumed[i] = true
	}

	if parentIdx >= 0 {
		// Pai explícito: valores da planilha ficam como estão, apenas o papel
		// do item muda.
		parent := work[parentIdx]
		if parent.Code == "" {
			parent.Code = rule.prefix
		}
		if rule.itemType != "" {
			parent.Type = rule.itemType
		}
		parent.AccountType = domain.AccountSynthetic
		parent.Level = 0
		parent.Subcategories = children

		out := make([]domain.BudgetItem, 0, len(work)-len(children))
		for i, it := range work {
			if consumed[i] {
				continue
			}
			if i == parentIdx {
				out = append(out, parent)
				continue
			}
			out = append(out, it)
		}
		return out
	}

	if !rule.synthesize {
		return work
	}

	actual, forecast, budgeted := sumFields(children)
	parent := domain.BudgetItem{
		ID:            rule.synthID,
		Code:          rule.prefix,
		Category:      rule.synthName,
		Type:          rule.itemType,
		Actual:        actual,
		Forecast:      forecast,
		Budgeted:      budgeted,
		AccountType:   domain.AccountSynthetic,
		Level:         0,
		Subcategories: children,
	}

	out := make([]domain.BudgetItem, 0, len(work)-len(children)+1)
	out = append(out, parent)
	for i, it := range work {
		if !consumed[i] {
			out = append(out, it)
		}
	}
	return out
}

// applyGenericPass agrupa qualquer prefixo N.NN restante com duas ou mais
// ocorrências: a primeira vira o pai (valores preservados), as demais viram
// filhas. Os grupos são calculados sobre a lista pré-passo e a remoção
// acontece de uma vez ao final.
func applyGenericPass(work []domain.BudgetItem) []domain.BudgetItem {
	byPrefix := make(map[string][]int)
	var order []string
	for i, it := range work {
		prefix := ExtractCodePrefix(it.Category)
		if prefix == "" || genericExcluded[prefix] {
			continue
		}
		if _, ok := byPrefix[prefix]; !ok {
			order = append(order, prefix)
		}
		byPrefix[prefix] = append(byPrefix[prefix], i)
	}

	parents := make(map[int]domain.BudgetItem)
	consumed := make(map[int]bool)
	for _, prefix := range order {
		indices := byPrefix[prefix]
		if len(indices) < 2 {
			continue
		}
		parentIdx := indices[0]
		parent := work[parentIdx]
		if parent.Code == "" {
			parent.Code = prefix
		}
		parent.Type = inferTypeByPrefix(prefix)
		parent.AccountType = domain.AccountSynthetic
		parent.Level = 0
		for _, i := range indices[1:] {
			child := work[i]
			child.AccountType = domain.AccountAnalytical
			child.Level = 1
			parent.Subcategories = append(parent.Subcategories, child)
			consumed[i] = true
		}
		parents[parentIdx] = parent
	}

	if len(parents) == 0 {
		return work
	}

	out := make([]domain.BudgetItem, 0, len(work)-len(consumed))
	for i, it := range work {
		if consumed[i] {
			continue
		}
		if p, ok := parents[i]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, it)
	}
	return out
}

func applyBucketRule(work []domain.BudgetItem, rule bucketRule) []domain.BudgetItem {
	excluded := isNamedExactly(rule.excludeName)

	var memberIdx []int
	for i, it := range work {
		if excluded(it.Category) {
			continue
		}
		for _, prefix := range rule.prefixes {
			if HasCodePrefix(it.Category, prefix) {
				memberIdx = append(memberIdx, i)
				break
			}
		}
	}
	if len(memberIdx) == 0 {
		return work
	}

	members := make([]domain.BudgetItem, 0, len(memberIdx))
	consumed := make(map[int]bool, len(memberIdx))
	for _, i := range memberIdx {
		// Membros entram como estão: um grupo já montado pelo passo genérico
		// segue sintético dentro do bucket, com as próprias filhas.
		members = append(members, work[i])
		consumed[i] = true
	}

	actual, forecast, budgeted := sumFields(members)
	parent := domain.BudgetItem{
		ID:            rule.id,
		Code:          rule.code,
		Category:      rule.name,
		Type:          domain.TypeExpense,
		Actual:        actual,
		Forecast:      forecast,
		Budgeted:      budgeted,
		AccountType:   domain.AccountSynthetic,
		Level:         0,
		Subcategories: members,
	}

	remaining := make([]domain.BudgetItem, 0, len(work)-len(members)+1)
	for i, it := range work {
		if !consumed[i] {
			remaining = append(remaining, it)
		}
	}

	insertAt := len(remaining)
	for _, anchor := range rule.anchors {
		found := -1
		for i, it := range remaining {
			if anchor(it.Category) {
				found = i
				break
			}
		}
		if found >= 0 {
			insertAt = found + 1
			break
		}
	}

	out := make([]domain.BudgetItem, 0, len(remaining)+1)
	out = append(out, remaining[:insertAt]...)
	out = append(out, parent)
	out = append(out, remaining[insertAt:]...)
	return out
}

func isNamedExactly(name string) RowPredicate {
	want := NormalizeText(name)
	return func(candidate string) bool {
		return NormalizeText(strings.TrimSpace(candidate)) == want
	}
}

func sumFields(items []domain.BudgetItem) (actual, forecast, budgeted float64) {
	for _, it := range items {
		actual += it.Actual
		forecast += it.Forecast
		budgeted += it.Budgeted
	}
	return actual, forecast, budgeted
}
