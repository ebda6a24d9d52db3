// internal/domain/models.go
package domain

import "time"

// RawGrid é a planilha importada como matriz de células. As células chegam
// como string (excelize) ou float64 (JSON vindo do Firestore); vazias são
// nil ou "".
type RawGrid [][]any

// ItemType classifica uma linha do orçamento.
type ItemType string

const (
	TypeRevenue ItemType = "revenue"
	TypeExpense ItemType = "expense"
	TypeBalance ItemType = "balance"
)

// AccountType distingue grupos (sintéticos) de contas editáveis (analíticas).
type AccountType string

const (
	AccountSynthetic  AccountType = "synthetic"
	AccountAnalytical AccountType = "analytical"
)

// BudgetItem é uma linha do orçamento: plana após a extração, hierárquica
// após o agrupamento (itens sintéticos carregam Subcategories).
type BudgetItem struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Category      string       `json:"category"`
	Type          ItemType     `json:"type"`
	Actual        float64      `json:"actual"`
	Forecast      float64      `json:"forecast"`
	Budgeted      float64      `json:"budgeted"`
	AccountType   AccountType  `json:"accountType"`
	Level         int          `json:"level"`
	Subcategories []BudgetItem `json:"subcategories,omitempty"`
}

// KPICard é um cartão de indicador do dashboard.
type KPICard struct {
	Title            string   `json:"title"`
	Forecast         float64  `json:"forecast"`
	Actual           float64  `json:"actual"`
	PreviousMonth    float64  `json:"previousMonth"`
	Type             ItemType `json:"type"`
	MarginPercentage *float64 `json:"marginPercentage,omitempty"`
	ExpectedMargin   *float64 `json:"expectedMargin,omitempty"`
}

// ChartPoint é um ponto mensal das séries da página de performance.
type ChartPoint struct {
	Month    string  `json:"month"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Forecast float64 `json:"forecast"`
}

// Period é um intervalo fechado de meses, 0 = janeiro.
type Period struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FullYear cobre os doze meses.
var FullYear = Period{Start: 0, End: 11}

// StatusCode define códigos numéricos para o frontend classificar falhas de
// importação.
type StatusCode int

const (
	StatusFormatoInvalido       StatusCode = 1 // Extensão não reconhecida.
	StatusEstruturaInsuficiente StatusCode = 2 // Menos de 3 linhas na planilha.
	StatusSemDadosValidos       StatusCode = 3 // Nenhuma linha com valores.
	StatusArquivoIlegivel       StatusCode = 4 // Binário corrompido.
)

// ImportResult acumula o desfecho de uma importação num único objeto: erros
// bloqueantes e avisos (linhas ignoradas, cabeçalhos fora do padrão).
type ImportResult struct {
	Success            bool       `json:"success"`
	Message            string     `json:"message"`
	StatusCode         StatusCode `json:"status_code,omitempty"`
	SyntheticGroups    int        `json:"syntheticGroups"`
	AnalyticalAccounts int        `json:"analyticalAccounts"`
	SkippedRows        []int      `json:"skippedRows,omitempty"`
	Warnings           []string   `json:"warnings,omitempty"`
	Errors             []string   `json:"errors,omitempty"`
	DatasetName        string     `json:"datasetName,omitempty"`
}

// ImportHistory registra cada tentativa de importação.
type ImportHistory struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"` // "success" | "error"
	RecordCount int       `json:"recordCount"`
	UserID      string    `json:"userId,omitempty"`
}

// ResetLog mantém a trilha de auditoria dos factory resets.
type ResetLog struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
	Steps     []string      `json:"steps"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}
