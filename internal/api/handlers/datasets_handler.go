// internal/api/handlers/datasets_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/store"
)

type DatasetsHandler struct {
	store *store.Store
}

func NewDatasetsHandler(st *store.Store) *DatasetsHandler {
	return &DatasetsHandler{store: st}
}

// HandleList lista os datasets importados e qual está ativo.
func (h *DatasetsHandler) HandleList(c *gin.Context) {
	active, _, _ := h.store.ActiveGrid()
	c.JSON(http.StatusOK, gin.H{
		"datasets": h.store.Datasets(),
		"active":   active,
	})
}

type setActiveRequest struct {
	Name string `json:"name" binding:"required"`
}

// HandleSetActive troca o dataset ativo do painel.
func (h *DatasetsHandler) HandleSetActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Informe o nome do dataset")
		return
	}
	if err := h.store.SetActive(req.Name); err != nil {
		responses.Error(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": req.Name})
}
