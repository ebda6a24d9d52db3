// internal/api/handlers/export_handler.go
package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/core/budget"
	"github.com/cfsmart/painel-lamole/internal/store"
)

type ExportHandler struct {
	store *store.Store
}

func NewExportHandler(st *store.Store) *ExportHandler {
	return &ExportHandler{store: st}
}

// HandleExport baixa a planilha ativa como CSV em Windows-1252, separado por
// ponto e vírgula, no formato que o Excel brasileiro abre sem perguntas.
func (h *ExportHandler) HandleExport(c *gin.Context) {
	_, grid, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}

	var buffer bytes.Buffer
	encoder := charmap.Windows1252.NewEncoder()
	writer := csv.NewWriter(transform.NewWriter(&buffer, encoder))
	writer.Comma = ';'

	for _, row := range grid {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = budget.CellString(cell)
		}
		if err := writer.Write(record); err != nil {
			responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o CSV", err.Error())
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o CSV", err.Error())
		return
	}

	fileName := fmt.Sprintf("FluxoDeCaixa_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv; charset=windows-1252", buffer.Bytes())
}
