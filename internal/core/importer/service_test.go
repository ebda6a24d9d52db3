package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// fakeSink captura as gravações do importador sem tocar disco ou rede.
type fakeSink struct {
	mu       sync.Mutex
	datasets map[string]domain.RawGrid
	history  []domain.ImportHistory
	upserts  int
	saveErr  error
}

func newFakeSink() *fakeSink {
	return &fakeSink{datasets: make(map[string]domain.RawGrid)}
}

func (f *fakeSink) SaveDataset(name string, grid domain.RawGrid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.datasets[name] = grid
	return nil
}

func (f *fakeSink) AppendHistory(entry domain.ImportHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeSink) UpsertRemote(ctx context.Context, name string, grid domain.RawGrid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
}

func (f *fakeSink) lastHistory() domain.ImportHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[len(f.history)-1]
}

// buildWorkbook fabrica um .xlsx em memória no layout pareado do export.
func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, cell))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func exportRows() [][]string {
	header := []string{"Categorias"}
	months := []string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}
	for _, m := range months {
		header = append(header, m+" Previsto", m+" Realizado")
	}
	header = append(header, "Total Previsto", "Total Realizado")

	vendas := make([]string, 27)
	vendas[0] = "3.01 Vendas A"
	vendas[1], vendas[2] = "1.000,00", "1.200,50"

	servicos := make([]string, 27)
	servicos[0] = "3.01 Serviços B"
	servicos[1], servicos[2] = "500,00", "600,00"

	zerada := make([]string, 27)
	zerada[0] = "4.05 Administrativas"
	for i := 1; i < 25; i++ {
		zerada[i] = "0"
	}

	return [][]string{header, {}, vendas, servicos, zerada}
}

func newTestService(sink *fakeSink) Service {
	return NewService(sink, zap.NewNop().Sugar())
}

func TestImportSucesso(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	buf := buildWorkbook(t, exportRows())
	result := svc.Import(context.Background(), buf, "fluxo.xlsx", "cfsmart")

	require.True(t, result.Success, "importação deveria ter sucesso: %+v", result)
	assert.Equal(t, "fluxo.xlsx", result.DatasetName)
	assert.Equal(t, 1, result.SyntheticGroups, "as duas linhas 3.01 viram um grupo sintetizado")
	assert.Equal(t, 2, result.AnalyticalAccounts)
	assert.NotEmpty(t, result.SkippedRows, "a linha zerada deveria ser reportada")

	assert.Contains(t, sink.datasets, "fluxo.xlsx")
	entry := sink.lastHistory()
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, 2, entry.RecordCount)
	assert.Equal(t, "cfsmart", entry.UserID)
	assert.NotEmpty(t, entry.ID)
}

func TestImportExtensaoInvalida(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	result := svc.Import(context.Background(), strings.NewReader("qualquer coisa"), "dados.csv", "cfsmart")

	require.False(t, result.Success)
	assert.Equal(t, domain.StatusFormatoInvalido, result.StatusCode)
	assert.Empty(t, sink.datasets)
	assert.Equal(t, "error", sink.lastHistory().Status)
}

func TestImportBinarioCorrompido(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	result := svc.Import(context.Background(), bytes.NewReader([]byte{0x00, 0x01, 0x02}), "dados.xlsx", "cfsmart")

	require.False(t, result.Success)
	assert.Equal(t, domain.StatusArquivoIlegivel, result.StatusCode)
	assert.Empty(t, sink.datasets)
}

func TestImportEstruturaInsuficiente(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	buf := buildWorkbook(t, [][]string{{"Categorias", "Janeiro Previsto"}})
	result := svc.Import(context.Background(), buf, "curto.xlsx", "cfsmart")

	require.False(t, result.Success)
	assert.Equal(t, domain.StatusEstruturaInsuficiente, result.StatusCode)
}

func TestImportSemDadosValidos(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	rows := exportRows()[:2]
	zerada := make([]string, 27)
	zerada[0] = "3.01 Vendas"
	for i := 1; i < 25; i++ {
		zerada[i] = "0"
	}
	rows = append(rows, zerada)

	buf := buildWorkbook(t, rows)
	result := svc.Import(context.Background(), buf, "vazio.xlsx", "cfsmart")

	require.False(t, result.Success)
	assert.Equal(t, domain.StatusSemDadosValidos, result.StatusCode)
	assert.NotEmpty(t, result.SkippedRows)
}

func TestImportReimportacaoSubstitui(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	first := svc.Import(context.Background(), buildWorkbook(t, exportRows()), "fluxo.xlsx", "cfsmart")
	require.True(t, first.Success)
	second := svc.Import(context.Background(), buildWorkbook(t, exportRows()), "fluxo.xlsx", "cfsmart")
	require.True(t, second.Success)

	assert.Len(t, sink.datasets, 1, "reimportar o mesmo nome substitui, não duplica")
	assert.Len(t, sink.history, 2, "cada tentativa entra no histórico")
}

func TestImportLimiteDeLinhasPuladas(t *testing.T) {
	sink := newFakeSink()
	svc := newTestService(sink)

	rows := exportRows()[:2]
	valida := make([]string, 27)
	valida[0] = "3.01 Vendas"
	valida[1], valida[2] = "100,00", "100,00"
	rows = append(rows, valida)
	for i := 0; i < 15; i++ {
		zerada := make([]string, 27)
		zerada[0] = fmt.Sprintf("4.%02d Zerada", i+1)
		rows = append(rows, zerada)
	}

	buf := buildWorkbook(t, rows)
	result := svc.Import(context.Background(), buf, "muitas.xlsx", "cfsmart")

	require.True(t, result.Success)
	assert.LessOrEqual(t, len(result.SkippedRows), 10, "o relatório lista no máximo as dez primeiras")
}
