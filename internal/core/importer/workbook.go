// internal/core/importer/workbook.go
package importer

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/cfsmart/painel-lamole/internal/domain"
)

// ErrUnsupportedExtension indica um upload fora de .xls/.xlsx.
var ErrUnsupportedExtension = errors.New("extensão de arquivo não suportada")

// ErrUnreadableWorkbook indica que nenhum leitor conseguiu abrir o arquivo.
var ErrUnreadableWorkbook = errors.New("não foi possível ler a pasta de trabalho")

// ReadWorkbook abre a planilha enviada e devolve a primeira aba como grid
// bruto. A extensão decide o leitor; arquivos .xls com conteúdo xlsx (caso
// comum em exports renomeados) caem no leitor moderno.
func ReadWorkbook(file io.Reader, filename string) (domain.RawGrid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(file)
	case ".xls":
		return readXLS(file)
	default:
		return nil, ErrUnsupportedExtension
	}
}

func readXLSX(file io.Reader) (domain.RawGrid, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, ErrUnreadableWorkbook
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrUnreadableWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrUnreadableWorkbook
	}

	grid := make(domain.RawGrid, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func readXLS(file io.Reader) (domain.RawGrid, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrUnreadableWorkbook
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		if _, errX := excelize.OpenReader(bytes.NewReader(data)); errX == nil {
			return readXLSX(bytes.NewReader(data))
		}
		return nil, ErrUnreadableWorkbook
	}

	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, ErrUnreadableWorkbook
	}

	var grid domain.RawGrid
	sheet := sheets[0]
	for _, row := range sheet.GetRows() {
		cols := row.GetCols()
		cells := make([]any, len(cols))
		for i, cell := range cols {
			cells[i] = cell.GetString()
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
