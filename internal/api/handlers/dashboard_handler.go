// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cfsmart/painel-lamole/internal/api/responses"
	"github.com/cfsmart/painel-lamole/internal/core/budget"
	"github.com/cfsmart/painel-lamole/internal/domain"
	"github.com/cfsmart/painel-lamole/internal/store"
)

type DashboardHandler struct {
	store *store.Store
}

func NewDashboardHandler(st *store.Store) *DashboardHandler {
	return &DashboardHandler{store: st}
}

// HandleKPIs devolve os cartões do dashboard para o período pedido
// (?start=&end=, meses 0–11; padrão o ano inteiro).
func (h *DashboardHandler) HandleKPIs(c *gin.Context) {
	name, grid, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}

	period, err := queryPeriod(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	layout := budget.DetectHeader(grid)
	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"period":  period,
		"cards":   budget.PeriodKPIs(grid, layout, period),
	})
}

// HandleBudget devolve a árvore orçamentária agrupada. Com ?month= a soma é
// restrita ao mês; sem o parâmetro, vale o ano inteiro. Os valores dos pais
// vindos da planilha são preservados como estão.
func (h *DashboardHandler) HandleBudget(c *gin.Context) {
	name, grid, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}

	period := domain.FullYear
	if raw := c.Query("month"); raw != "" {
		month, err := parseMonth(raw)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		period = domain.Period{Start: month, End: month}
	}

	layout := budget.DetectHeader(grid)
	items, _ := budget.Extract(grid, layout, period)
	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"period":  period,
		"items":   budget.GroupHierarchy(items),
	})
}

// performanceGroups mapeia os grupos nomeados da página de performance para
// os prefixos de conta que os compõem.
var performanceGroups = map[string][]string{
	"receitas":        {"3.01", "3.02", "3.04"},
	"despesas":        {"4.01", "4.02", "4.03", "4.04", "4.05", "4.06", "4.07", "4.08", "4.09", "4.10", "4.11", "4.12"},
	"operacional":     {"4.03", "4.04", "4.05", "4.06", "4.07", "4.08", "4.09", "4.10", "4.12"},
	"nao-operacional": {"5.01", "6.01"},
}

// HandleSeries devolve as doze séries mensais para um grupo nomeado
// (?group=receitas) ou para um prefixo de conta específico (?group=4.03).
func (h *DashboardHandler) HandleSeries(c *gin.Context) {
	name, grid, ok := h.store.ActiveGrid()
	if !ok {
		responses.Error(c, http.StatusNotFound, "Nenhuma planilha importada")
		return
	}

	group := c.DefaultQuery("group", "receitas")
	prefixes, ok := performanceGroups[group]
	if !ok {
		prefixes = []string{group}
	}

	layout := budget.DetectHeader(grid)
	c.JSON(http.StatusOK, gin.H{
		"dataset": name,
		"group":   group,
		"series":  budget.MonthlySeries(grid, layout, prefixes),
	})
}

func queryPeriod(c *gin.Context) (domain.Period, error) {
	period := domain.FullYear
	if raw := c.Query("start"); raw != "" {
		start, err := parseMonth(raw)
		if err != nil {
			return period, err
		}
		period.Start = start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := parseMonth(raw)
		if err != nil {
			return period, err
		}
		period.End = end
	}
	if period.End < period.Start {
		period.End = period.Start
	}
	return period, nil
}

func parseMonth(raw string) (int, error) {
	month, err := strconv.Atoi(raw)
	if err != nil || month < 0 || month > 11 {
		return 0, errInvalidMonth
	}
	return month, nil
}
