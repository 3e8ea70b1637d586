package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devdeck/devdeck-api/internal/api/shared"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/redact"
	"github.com/devdeck/devdeck-api/internal/service"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cards  service.CardService
	base   context.Context
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler. Generation started by a request
// outlives the request but not base; pass the server's lifetime context.
func NewCardHandler(cards service.CardService, base context.Context, logger *slog.Logger) *CardHandler {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card service cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:  cards,
		base:   base,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /api/cards requests.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListCards(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// CreateCard handles POST /api/cards requests.
// An existing card is returned with 200; otherwise the card is generated
// with a fresh image and returned with 201.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CardNameRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	name := strings.TrimSpace(req.LanguageName)
	if name == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "languageName is required")
		return
	}

	ctx, cancel := detach(r, h.base)
	defer cancel()

	card, created, err := h.cards.CreateCard(ctx, name)
	switch {
	case errors.Is(err, service.ErrInvalidSubject):
		log.Info("card request rejected", slog.String("name", name))
		respondInvalidSubject(w, r, name)
		return
	case err != nil:
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	if !created {
		shared.RespondWithJSON(w, r, http.StatusOK, CardMessageResponse{
			Message: fmt.Sprintf("card for %q already exists", card.Name),
			Card:    card,
		})
		return
	}

	log.Info("card created", slog.String("name", card.Name))
	shared.RespondWithJSON(w, r, http.StatusCreated, CardMessageResponse{
		Message: fmt.Sprintf("card for %q created", card.Name),
		Card:    card,
	})
}

// UpdateCards handles POST /api/cards/update requests.
// With a name the card is refreshed; without one every card is.
func (h *CardHandler) UpdateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// An empty body refreshes every card.
	var req UpdateCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	ctx, cancel := detach(r, h.base)
	defer cancel()

	name := strings.TrimSpace(req.LanguageName)
	if name == "" {
		result, err := h.cards.RefreshAll(ctx)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to refresh cards")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, RefreshAllResponse{
			Message: fmt.Sprintf("refresh finished: %d updated, %d failed",
				len(result.Successful), len(result.Failed)),
			Successful: result.Successful,
			Failed:     failureMessages(result.Failed),
		})
		return
	}

	card, err := h.cards.RefreshCard(ctx, name)
	switch {
	case errors.Is(err, service.ErrInvalidSubject):
		respondInvalidSubject(w, r, name)
		return
	case err != nil:
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardMessageResponse{
		Message: fmt.Sprintf("card for %q updated", card.Name),
		Card:    card,
	})
}

// DeleteCard handles DELETE /api/cards/{name} requests.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	name, err := getPathName(r, "name")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	n, err := h.cards.DeleteCard(r.Context(), name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	if n == 0 {
		shared.RespondWithJSON(w, r, http.StatusNotFound, DeleteResponse{
			Message: fmt.Sprintf("card %q not found", name),
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{
		Message:      fmt.Sprintf("card %q deleted", name),
		DeletedCount: n,
	})
}

// failureMessages flattens per-card refresh failures into their messages.
func failureMessages(items []service.ItemResult) []string {
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, item.Error)
	}
	return msgs
}
