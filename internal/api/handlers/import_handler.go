// internal/api/handlers/import_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cfsmart/painel-lamole/internal/api/middleware"
	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/core/importer"
	"github.com/cfsmart/painel-lamole/internal/store"
)

type ImportHandler struct {
	service importer.Service
	store   *store.Store
}

func NewImportHandler(service importer.Service, st *store.Store) *ImportHandler {
	return &ImportHandler{service: service, store: st}
}

// HandleImport recebe a planilha via multipart e dispara a importação.
func (h *ImportHandler) HandleImport(c *gin.Context) {
	fileHeader, err := c.FormFile("databaseFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo da planilha não encontrado ou inválido")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo enviado")
		return
	}
	defer file.Close()

	result := h.service.Import(c.Request.Context(), file, fileHeader.Filename, middleware.Username(c))
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleHistory lista o histórico de importações e a trilha de resets.
func (h *ImportHandler) HandleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"history": h.store.History(),
		"resets":  h.store.ResetLogs(),
	})
}

// HandleDeleteHistory remove uma entrada do histórico.
func (h *ImportHandler) HandleDeleteHistory(c *gin.Context) {
	if err := h.store.DeleteHistory(c.Param("id")); err != nil {
		responses.Error(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// HandleReset executa o factory reset, preservando a trilha de auditoria.
func (h *ImportHandler) HandleReset(c *gin.Context) {
	entry := h.store.FactoryReset(middleware.Username(c))
	status := http.StatusOK
	if !entry.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, entry)
}
