// internal/api/handler/api/analytics.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/newthinker/holdings/internal/analytics"
	"github.com/newthinker/holdings/internal/api/response"
	"github.com/newthinker/holdings/internal/concentration"
	"github.com/newthinker/holdings/internal/core"
)

// Views is the part of the analytics engine served over HTTP.
type Views interface {
	LatestWindow() analytics.Window
	LastWindow(n int) analytics.Window
	QuarterSummary() analytics.Summary
	MomentumShifts(quarters []core.Quarter) analytics.Momentum
	ExitTracker(quarters []core.Quarter) analytics.Exits
	NewDiscoveries(quarters []core.Quarter) analytics.Discoveries
	BuySellBalance(quarters []core.Quarter) analytics.BuySell
	SectorNetFlows(quarters []core.Quarter) analytics.SectorFlows
	TopSectors(limit int) analytics.TopSectorsResult
	Concentration(investors []string, limit int) []concentration.Score
}

// AnalyticsHandler serves the derived views.
type AnalyticsHandler struct {
	views Views
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(views Views) *AnalyticsHandler {
	return &AnalyticsHandler{views: views}
}

// Quarters lists known quarters with their coverage.
func (h *AnalyticsHandler) Quarters(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.views.QuarterSummary())
}

// Momentum returns momentum shifts for the requested window.
func (h *AnalyticsHandler) Momentum(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.window(r, analytics.MomentumDepth)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.MomentumShifts(quarters))
}

// Exits returns exits for the requested window.
func (h *AnalyticsHandler) Exits(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.window(r, 1)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.ExitTracker(quarters))
}

// Discoveries returns new discoveries for the requested window.
func (h *AnalyticsHandler) Discoveries(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.window(r, 1)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.NewDiscoveries(quarters))
}

// Balance returns per quarter buy/sell balance.
func (h *AnalyticsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.window(r, 1)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.BuySellBalance(quarters))
}

// SectorFlows returns net flows by sector over the requested window.
func (h *AnalyticsHandler) SectorFlows(w http.ResponseWriter, r *http.Request) {
	quarters, err := h.window(r, 1)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.SectorNetFlows(quarters))
}

// TopSectors returns the largest sectors across latest snapshots.
func (h *AnalyticsHandler) TopSectors(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.views.TopSectors(limit))
}

// Concentration ranks investors by portfolio concentration.
func (h *AnalyticsHandler) Concentration(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	var investors []string
	for _, slug := range strings.Split(r.URL.Query().Get("investor"), ",") {
		if slug = strings.TrimSpace(slug); slug != "" {
			investors = append(investors, slug)
		}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"scores": h.views.Concentration(investors, limit),
	})
}

// window reads the quarter window from ?quarters=2024-Q3,2024-Q4 or
// ?last=N. Without either it spans the latest depth quarters.
func (h *AnalyticsHandler) window(r *http.Request, depth int) ([]core.Quarter, error) {
	q := r.URL.Query()

	if list := q.Get("quarters"); list != "" {
		quarters, err := core.ParseQuarters(list)
		if err != nil {
			return nil, err
		}
		return quarters, nil
	}

	if last := q.Get("last"); last != "" {
		n, err := strconv.Atoi(last)
		if err != nil || n <= 0 {
			return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("last must be a positive integer, got %q", last))
		}
		return h.views.LastWindow(n).Quarters, nil
	}

	if depth > 1 {
		return h.views.LastWindow(depth).Quarters, nil
	}
	return h.views.LatestWindow().Quarters, nil
}

func parseLimit(r *http.Request) (int, error) {
	limit := r.URL.Query().Get("limit")
	if limit == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n < 0 {
		return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("limit must be a non-negative integer, got %q", limit))
	}
	return n, nil
}
