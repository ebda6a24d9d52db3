// internal/core/importer/service.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfsmart/painel-lamole/internal/core/budget"
	"github.com/cfsmart/painel-lamole/internal/domain"
)

// DatasetSink é o que o importador precisa do armazenamento: gravar a
// planilha, registrar a tentativa no histórico e replicar para o remoto.
type DatasetSink interface {
	SaveDataset(name string, grid domain.RawGrid) error
	AppendHistory(entry domain.ImportHistory) error
	UpsertRemote(ctx context.Context, name string, grid domain.RawGrid)
}

// Service define a interface do serviço de importação de planilhas.
type Service interface {
	Import(ctx context.Context, file io.Reader, filename, userID string) domain.ImportResult
}

type service struct {
	sink DatasetSink
	log  *zap.SugaredLogger
}

// NewService cria uma nova instância do serviço de importação.
func NewService(sink DatasetSink, log *zap.SugaredLogger) Service {
	return &service{sink: sink, log: log}
}

const maxSkippedReported = 10

// Import processa o upload de ponta a ponta: decodifica a pasta de trabalho,
// valida a estrutura, extrai e agrupa as contas, grava a planilha (substituindo
// qualquer importação anterior de mesmo nome) e dispara a replicação remota
// sem bloquear a resposta.
func (s *service) Import(ctx context.Context, file io.Reader, filename, userID string) domain.ImportResult {
	grid, err := ReadWorkbook(file, filename)
	if err != nil {
		return s.fail(filename, userID, classifyReadError(err))
	}

	if len(grid) < 3 {
		return s.fail(filename, userID, domain.ImportResult{
			StatusCode: domain.StatusEstruturaInsuficiente,
			Message:    "A planilha precisa de ao menos três linhas (cabeçalho e dados).",
			Errors:     []string{fmt.Sprintf("apenas %d linha(s) encontrada(s)", len(grid))},
		})
	}

	layout := budget.DetectHeader(grid)
	warnings := headerWarnings(grid, layout)
	warnings = append(warnings, aggregateWarnings(grid, layout)...)

	items, skipped := budget.Extract(grid, layout, domain.FullYear)
	if len(items) == 0 {
		res := s.fail(filename, userID, domain.ImportResult{
			StatusCode: domain.StatusSemDadosValidos,
			Message:    "Nenhuma linha com valores válidos foi encontrada na planilha.",
		})
		res.SkippedRows = truncateSkipped(skipped)
		res.Warnings = warnings
		return res
	}

	tree := budget.GroupHierarchy(items)
	synthetic, analytical := countAccounts(tree)

	if err := s.sink.SaveDataset(filename, grid); err != nil {
		s.log.Errorw("falha ao gravar dataset", "arquivo", filename, "erro", err)
		return s.fail(filename, userID, domain.ImportResult{
			StatusCode: domain.StatusArquivoIlegivel,
			Message:    "Falha ao gravar a planilha importada.",
			Errors:     []string{err.Error()},
		})
	}

	if err := s.sink.AppendHistory(domain.ImportHistory{
		ID:          uuid.NewString(),
		FileName:    filename,
		Timestamp:   time.Now(),
		Status:      "success",
		RecordCount: analytical,
		UserID:      userID,
	}); err != nil {
		s.log.Errorw("falha ao registrar histórico de importação", "erro", err)
	}

	// Replicação remota é melhor-esforço: o dataset local já é a fonte da
	// verdade e o erro é apenas logado pelo store.
	go s.sink.UpsertRemote(context.WithoutCancel(ctx), filename, grid)

	if len(skipped) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d linha(s) ignorada(s) por estarem zeradas ou ilegíveis", len(skipped)))
	}

	return domain.ImportResult{
		Success:            true,
		Message:            fmt.Sprintf("Importação concluída: %d conta(s) analítica(s) em %d grupo(s).", analytical, synthetic),
		SyntheticGroups:    synthetic,
		AnalyticalAccounts: analytical,
		SkippedRows:        truncateSkipped(skipped),
		Warnings:           warnings,
		DatasetName:        filename,
	}
}

func (s *service) fail(filename, userID string, res domain.ImportResult) domain.ImportResult {
	res.Success = false
	if err := s.sink.AppendHistory(domain.ImportHistory{
		ID:        uuid.NewString(),
		FileName:  filename,
		Timestamp: time.Now(),
		Status:    "error",
		UserID:    userID,
	}); err != nil {
		s.log.Errorw("falha ao registrar histórico de importação", "erro", err)
	}
	return res
}

func classifyReadError(err error) domain.ImportResult {
	if errors.Is(err, ErrUnsupportedExtension) {
		return domain.ImportResult{
			StatusCode: domain.StatusFormatoInvalido,
			Message:    "Formato de arquivo inválido. Envie uma planilha .xlsx ou .xls.",
			Errors:     []string{err.Error()},
		}
	}
	return domain.ImportResult{
		StatusCode: domain.StatusArquivoIlegivel,
		Message:    "Não foi possível ler o arquivo enviado. Verifique se ele não está corrompido.",
		Errors:     []string{err.Error()},
	}
}

// headerWarnings confere o cabeçalho detectado contra o layout esperado do
// export. Divergências nunca rejeitam a importação, só geram avisos.
func headerWarnings(grid domain.RawGrid, layout budget.HeaderInfo) []string {
	var warnings []string
	header := grid[layout.Row]

	for m := 0; m < 12; m++ {
		idx := layout.ForecastCol(m)
		if idx >= len(header) {
			warnings = append(warnings, fmt.Sprintf("coluna do mês de %s ausente no cabeçalho", budget.MonthNames[m]))
			continue
		}
		cell := strings.ToLower(budget.CellString(header[idx]))
		if cell != "" && !strings.Contains(cell, strings.ToLower(budget.MonthNames[m])) &&
			!strings.Contains(cell, "previsto") && !strings.Contains(cell, "realizado") {
			warnings = append(warnings, fmt.Sprintf("cabeçalho inesperado na coluna %d: %q", idx, cell))
		}
	}
	return warnings
}

// aggregateWarnings avisa quando as linhas agregadas que alimentam os cartões
// do dashboard não existem, apontando a linha de nome mais parecido.
func aggregateWarnings(grid domain.RawGrid, layout budget.HeaderInfo) []string {
	expected := []struct {
		name string
		pred budget.RowPredicate
	}{
		{"Total de Recebimentos", budget.IsTotalRecebimentos},
		{"Total de Pagamentos", budget.IsTotalPagamentos},
		{"Saldo Final de Caixa", budget.IsSaldoFinalCaixa},
	}

	var warnings []string
	for _, exp := range expected {
		if budget.FindRow(grid, layout.DataStart(), exp.pred) != nil {
			continue
		}
		msg := fmt.Sprintf("linha %q não encontrada; o cartão correspondente não aparecerá no dashboard", exp.name)
		if row := budget.FindRowFuzzy(grid, layout.DataStart(), exp.pred, exp.name); row != nil && len(row) > 0 {
			msg = fmt.Sprintf("linha %q não encontrada; a mais parecida é %q", exp.name, budget.CellString(row[0]))
		}
		warnings = append(warnings, msg)
	}
	return warnings
}

func countAccounts(tree []domain.BudgetItem) (synthetic, analytical int) {
	for _, it := range tree {
		if it.AccountType == domain.AccountSynthetic {
			synthetic++
		} else {
			analytical++
		}
		s, a := countAccounts(it.Subcategories)
		synthetic += s
		analytical += a
	}
	return synthetic, analytical
}

func truncateSkipped(skipped []int) []int {
	if len(skipped) > maxSkippedReported {
		return skipped[:maxSkippedReported]
	}
	return skipped
}
