package api

import (
	"net/http"

	models "BandTrader/internal/domain/models"
	"BandTrader/internal/usecase"
	xhttp "BandTrader/pkg/http"
	xlogger "BandTrader/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler serves the read-only dashboard API over Echo.
type StatusEchoHandler struct {
	logger  *xlogger.Logger
	runner  *usecase.Runner
	watcher *usecase.QuoteWatcher
}

func NewStatusEchoHandler(logger *xlogger.Logger, runner *usecase.Runner, watcher *usecase.QuoteWatcher) *StatusEchoHandler {
	return &StatusEchoHandler{logger: logger, runner: runner, watcher: watcher}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/log", h.Log)
	g.GET("/health", h.Health)
}

// Status returns the runner's last observed cycle state plus the latest
// streamed quote, if any.
func (h *StatusEchoHandler) Status(c echo.Context) error {
	snap := h.runner.Snapshot()

	resp := map[string]interface{}{
		"status": snap,
	}
	if h.watcher != nil {
		if t := h.watcher.Latest(snap.Symbol); t != nil {
			resp["quote"] = t
		}
	}
	return xhttp.SuccessResponse(c, resp)
}

// Log returns the most recent trade-log entries, newest first.
func (h *StatusEchoHandler) Log(c echo.Context) error {
	req := &models.TradeLogRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries := h.runner.TradeLog().Entries()
	if req.Category != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Category == models.LogCategory(req.Category) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// Health reports liveness plus the quote stream's connection state.
func (h *StatusEchoHandler) Health(c echo.Context) error {
	streamConnected := false
	if h.watcher != nil {
		streamConnected = h.watcher.IsConnected()
	}
	return xhttp.DataResponse(c, http.StatusOK, map[string]interface{}{
		"alive":            true,
		"stream_connected": streamConnected,
	})
}
