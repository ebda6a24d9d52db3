package budget

import (
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Receitas de Vendas e de Serviços", "RECEITAS DE VENDAS E DE SERVICOS"},
		{"  Saldo   Final de Caixa ", "SALDO FINAL DE CAIXA"},
		{"Março/2025", "MARCO 2025"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.input); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, esperava %q", tt.input, got, tt.want)
		}
	}
}

func TestPredicadosDeLinhasAgregadas(t *testing.T) {
	tests := []struct {
		pred RowPredicate
		name string
		want bool
	}{
		{IsTotalRecebimentos, "Total de Recebimentos", true},
		{IsTotalRecebimentos, "TOTAL RECEBIMENTOS", true},
		{IsTotalRecebimentos, "3.01 Receitas de Vendas", false},
		{IsTotalPagamentos, "Total de Pagamentos", true},
		{IsSaldoFinalCaixa, "Saldo Final de Caixa", true},
		{IsSaldoFinalCaixa, "Saldo Final Líquido (Caixa)", true},
		{IsDespesasVendasServicos, "4.01 Despesas com Vendas e Serviços", true},
		{IsDespesasVendasServicos, "Despesas com vendas e servicos", true},
		{IsDespesasVendasServicos, "4.05 Despesas Administrativas", false},
		{IsReceitasFinanciamento, "3.02 Receitas de Financiamento", true},
		{IsReceitasFinanciamento, "3.02 Receita Financeira", true},
		{IsReceitasFinanciamento, "4.08 Despesas Financeiras", false},
	}
	for _, tt := range tests {
		if got := tt.pred(tt.name); got != tt.want {
			t.Errorf("predicado(%q) = %v, esperava %v", tt.name, got, tt.want)
		}
	}
}

func TestFindRow(t *testing.T) {
	grid := buildGrid(
		dataRow("3.01 Vendas", monthVals{0: {0, 100}}),
		dataRow("Total de Recebimentos", monthVals{0: {0, 100}}),
	)
	layout := DetectHeader(grid)

	row := FindRow(grid, layout.DataStart(), IsTotalRecebimentos)
	if row == nil || CellString(row[0]) != "Total de Recebimentos" {
		t.Errorf("FindRow devolveu a linha errada: %v", row)
	}

	if FindRow(grid, layout.DataStart(), IsSaldoFinalCaixa) != nil {
		t.Error("FindRow deveria devolver nil quando nada casa")
	}
}

func TestFindRowFuzzy(t *testing.T) {
	grid := buildGrid(
		dataRow("3.01 Vendas", monthVals{0: {0, 100}}),
		dataRow("Totais de Recebimento Geral", monthVals{0: {0, 100}}),
	)
	layout := DetectHeader(grid)

	// O predicado estrito falha; o fuzzy aponta o nome mais próximo.
	row := FindRowFuzzy(grid, layout.DataStart(), IsTotalRecebimentos, "Total de Recebimentos")
	if row == nil {
		t.Fatal("fuzzy não encontrou nenhuma linha")
	}
	if CellString(row[0]) != "Totais de Recebimento Geral" {
		t.Errorf("fuzzy apontou %q", CellString(row[0]))
	}
}
