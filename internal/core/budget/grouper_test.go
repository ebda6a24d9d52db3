package budget

import (
	"reflect"
	"sort"
	"testing"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

func analytical(id, category string, actual, forecast float64) domain.BudgetItem {
	return domain.BudgetItem{
		ID:          id,
		Code:        ExtractCodePrefix(category),
		Category:    category,
		Type:        InferType(ExtractCodePrefix(category), category),
		Actual:      actual,
		Forecast:    forecast,
		Budgeted:    forecast,
		AccountType: domain.AccountAnalytical,
		Level:       1,
	}
}

func TestGroupHierarchySintetizaTotalDeRecebimentos(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "3.01 Vendas A", 100, 90),
		analytical("item-3", "3.01 Vendas B", 200, 180),
	}

	tree := GroupHierarchy(items)
	if len(tree) != 1 {
		t.Fatalf("esperava 1 nó raiz, obteve %d", len(tree))
	}

	parent := tree[0]
	if parent.ID != "receipts-total" {
		t.Errorf("ID = %q, esperava \"receipts-total\"", parent.ID)
	}
	if parent.Category != "Total de Recebimentos" {
		t.Errorf("Category = %q", parent.Category)
	}
	if parent.AccountType != domain.AccountSynthetic {
		t.Errorf("pai sintetizado deveria ser sintético")
	}
	if !almostEqual(parent.Actual, 300) || !almostEqual(parent.Forecast, 270) {
		t.Errorf("pai sintetizado deveria somar os filhos: (%v, %v)", parent.Actual, parent.Forecast)
	}
	if len(parent.Subcategories) != 2 {
		t.Fatalf("esperava 2 filhas, obteve %d", len(parent.Subcategories))
	}
	for _, child := range parent.Subcategories {
		if child.AccountType != domain.AccountAnalytical || child.Level != 1 {
			t.Errorf("filha %q deveria ser analítica de nível 1", child.Category)
		}
	}
}

// Linha agregada explícita vira o pai e preserva os valores da planilha,
// mesmo que difiram da soma das filhas.
func TestGroupHierarchyPaiExplicitoPreservaValores(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "Total de Recebimentos", 999, 888),
		analytical("item-3", "3.01 Vendas A", 100, 90),
		analytical("item-4", "3.01 Vendas B", 200, 180),
	}

	tree := GroupHierarchy(items)
	if len(tree) != 1 {
		t.Fatalf("esperava 1 nó raiz, obteve %d", len(tree))
	}

	parent := tree[0]
	if parent.ID != "item-2" {
		t.Errorf("o pai deveria ser a linha explícita, obteve %q", parent.ID)
	}
	if !almostEqual(parent.Actual, 999) || !almostEqual(parent.Forecast, 888) {
		t.Errorf("valores da planilha deveriam ser preservados: (%v, %v)", parent.Actual, parent.Forecast)
	}
	if len(parent.Subcategories) != 2 {
		t.Errorf("esperava 2 filhas, obteve %d", len(parent.Subcategories))
	}
}

func TestGroupHierarchyBucketOperacional(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "4.03 Despesa com Pessoal", -100, -100),
		analytical("item-3", "4.05 Despesas Administrativas", -50, -50),
	}

	tree := GroupHierarchy(items)
	if len(tree) != 1 {
		t.Fatalf("esperava só o bucket, obteve %d nó(s)", len(tree))
	}

	bucket := tree[0]
	if bucket.Code != "4.OP" || bucket.Category != "Despesa Operacional" {
		t.Errorf("bucket = %q/%q", bucket.Code, bucket.Category)
	}
	if !almostEqual(bucket.Actual, -150) {
		t.Errorf("Actual = %v, esperava -150", bucket.Actual)
	}
	if len(bucket.Subcategories) != 2 {
		t.Errorf("esperava 2 membros, obteve %d", len(bucket.Subcategories))
	}
}

// 4.11 fica fora do bucket operacional; 4.12 entra.
func TestGroupHierarchyBucketExclui411(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "4.11 Retiradas de Sócios", -70, -70),
		analytical("item-3", "4.12 Despesas Financeiras Variáveis", -30, -30),
	}

	tree := GroupHierarchy(items)
	if len(tree) != 2 {
		t.Fatalf("esperava bucket + 4.11 solto, obteve %d nó(s)", len(tree))
	}

	var bucket *domain.BudgetItem
	for i := range tree {
		if tree[i].Code == "4.OP" {
			bucket = &tree[i]
		}
	}
	if bucket == nil {
		t.Fatal("bucket 4.OP não encontrado")
	}
	if !almostEqual(bucket.Actual, -30) {
		t.Errorf("só 4.12 deveria entrar no bucket: Actual = %v", bucket.Actual)
	}
	for _, member := range bucket.Subcategories {
		if HasCodePrefix(member.Category, "4.11") {
			t.Error("4.11 não deveria estar no bucket operacional")
		}
	}
}

func TestGroupHierarchyPassoGenerico(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "4.05 Despesas Administrativas", -10, -10),
		analytical("item-3", "4.05.01 Energia", -6, -6),
		analytical("item-4", "4.05.02 Água", -4, -4),
	}

	grouped := applyGenericPass(items)
	if len(grouped) != 1 {
		t.Fatalf("esperava 1 pai, obteve %d", len(grouped))
	}
	parent := grouped[0]
	if parent.ID != "item-2" {
		t.Errorf("a primeira ocorrência deveria virar o pai, obteve %q", parent.ID)
	}
	// Pai promovido preserva os próprios valores da planilha.
	if !almostEqual(parent.Actual, -10) {
		t.Errorf("Actual = %v, esperava -10", parent.Actual)
	}
	if len(parent.Subcategories) != 2 {
		t.Errorf("esperava 2 filhas, obteve %d", len(parent.Subcategories))
	}
}

// Idempotência: rodar o passo genérico sobre a própria saída não muda nada.
func TestPassoGenericoIdempotente(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "4.05 Despesas Administrativas", -10, -10),
		analytical("item-3", "4.05.01 Energia", -6, -6),
		analytical("item-4", "4.02 Impostos", -20, -20),
		analytical("item-5", "4.02.01 ICMS", -12, -12),
	}

	once := applyGenericPass(items)
	twice := applyGenericPass(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("segunda passada alterou a árvore:\n1ª: %+v\n2ª: %+v", once, twice)
	}
}

// Nenhuma linha analítica se perde no agrupamento: o multiconjunto de folhas
// antes e depois é o mesmo.
func TestGroupHierarchySemPerdaDeDados(t *testing.T) {
	items := []domain.BudgetItem{
		analytical("item-2", "3.01 Vendas A", 100, 100),
		analytical("item-3", "3.01 Vendas B", 200, 200),
		analytical("item-4", "4.03 Pessoal", -50, -50),
		analytical("item-5", "4.05 Administrativas", -30, -30),
		analytical("item-6", "9.99 Categoria avulsa", 10, 10),
	}

	before := make([]string, 0, len(items))
	for _, it := range items {
		before = append(before, it.Category)
	}
	after := Leaves(GroupHierarchy(items))

	sort.Strings(before)
	sort.Strings(after)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("folhas antes %v != depois %v", before, after)
	}
}

func TestGroupHierarchyListaVazia(t *testing.T) {
	if tree := GroupHierarchy(nil); len(tree) != 0 {
		t.Errorf("lista vazia deveria devolver árvore vazia, obteve %d nó(s)", len(tree))
	}
}
