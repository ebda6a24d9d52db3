// internal/api/handlers/simulator_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/core/budget"
	"github.com/cfsmart/painel-lamole/internal/domain"
	"github.com/cfsmart/painel-lamole/internal/store"
)

var errInvalidMonth = errors.New("mês inválido: informe um valor entre 0 e 11")

type SimulatorHandler struct {
	store *store.Store
}

func NewSimulatorHandler(st *store.Store) *SimulatorHandler {
	return &SimulatorHandler{store: st}
}

// HandleSimulator devolve a árvore do simulador com as edições salvas
// aplicadas e os totais recalculados de baixo para cima, mais o resumo da
// margem para o setor pedido (?month=&sector=).
func (h *SimulatorHandler) HandleSimulator(c *gin.Context) {
	name, tree, ok, err := h.scenarioTree(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"items":   tree,
		"margin":  budget.ScenarioMargin(tree, c.DefaultQuery("sector", "outros")),
	})
}

type scenarioRequest struct {
	Edits  map[string]float64 `json:"edits" binding:"required"`
	Sector string             `json:"sector"`
}

// HandleScenario grava edições de valores orçados nas folhas analíticas e
// devolve a árvore recalculada com a nova margem.
func (h *SimulatorHandler) HandleScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo inválido: envie edits como mapa de id para valor")
		return
	}

	name, _, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}
	h.store.MergeScenario(name, req.Edits)

	name, tree, ok, err := h.scenarioTree(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		responses.Error(c, http.StatusInternalServerError, "Falha ao recalcular o cenário")
		return
	}

	sector := req.Sector
	if sector == "" {
		sector = "outros"
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"items":   tree,
		"margin":  budget.ScenarioMargin(tree, sector),
	})
}

// HandleClearScenario descarta as edições do simulador do dataset ativo.
func (h *SimulatorHandler) HandleClearScenario(c *gin.Context) {
	name, _, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}
	h.store.ClearScenario(name)
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (h *SimulatorHandler) scenarioTree(c *gin.Context) (string, []domain.BudgetItem, bool, error) {
	name, grid, ok := h.store.ActiveGrid()
	if !ok {
		return "", nil, false, nil
	}

	period := domain.FullYear
	if raw := c.Query("month"); raw != "" {
		month, err := parseMonth(raw)
		if err != nil {
			return name, nil, true, err
		}
		period = domain.Period{Start: month, End: month}
	}

	layout := budget.DetectHeader(grid)
	items, _ := budget.Extract(grid, layout, period)
	tree := budget.GroupHierarchy(items)
	tree = budget.ApplyScenario(tree, h.store.Scenario(name))
	return name, tree, true, nil
}
