package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/ingest"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/service"
)

// AdminHandler handles the admin-only bulk and lookup endpoints.
type AdminHandler struct {
	cards  service.CardService
	base   context.Context
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cards service.CardService, base context.Context, logger *slog.Logger) *AdminHandler {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card service cannot be nil for AdminHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}

	return &AdminHandler{
		cards:  cards,
		base:   base,
		logger: logger.With(slog.String("component", "admin_handler")),
	}
}

// GenerateBulk handles POST /api/admin/generate-bulk requests.
func (h *AdminHandler) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateBulkRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	names := ingest.SplitNameList(req.LanguageNames)
	if len(names) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "languageNames must contain at least one name")
		return
	}

	h.runBulk(w, r, names)
}

// UploadCSV handles POST /api/admin/upload-csv requests.
func (h *AdminHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UploadCSVRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	names, err := ingest.ParseLanguageNamesFromCSV(req.CSVData)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if len(names) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("no names found in the %q column", ingest.LanguageColumn))
		return
	}

	h.runBulk(w, r, names)
}

func (h *AdminHandler) runBulk(w http.ResponseWriter, r *http.Request, names []string) {
	ctx, cancel := detach(r, h.base)
	defer cancel()

	result := h.cards.ProduceBulk(ctx, names)

	logger.FromContextOrDefault(r.Context(), h.logger).Info("bulk request finished",
		slog.String("batch_id", result.BatchID),
		slog.Int("successful", result.Successful),
		slog.Int("failed", result.Failed))

	shared.RespondWithJSON(w, r, http.StatusOK, BulkResponse{
		Message: fmt.Sprintf("bulk generation finished: %d succeeded, %d failed",
			result.Successful, result.Failed),
		Successful: result.Successful,
		Failed:     result.Failed,
	})
}

// GetCard handles GET /api/admin/cards/{name} requests.
func (h *AdminHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	name, err := getPathName(r, "name")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cards.GetCard(r.Context(), name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}
