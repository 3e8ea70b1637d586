package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/redact"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ItemResult is the outcome of processing one name in a batch.
type ItemResult struct {
	Name            string `json:"name"`
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped,omitempty"`
	IsValidLanguage bool   `json:"isValidLanguage"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`

	// Err is the underlying failure, for errors.Is checks by callers.
	Err error `json:"-"`
}

// BulkResult aggregates a sequential bulk run in input order.
type BulkResult struct {
	BatchID    string
	Successful int
	Failed     int
	Items      []ItemResult
}

func (r *BulkResult) add(item ItemResult) {
	if item.Success {
		r.Successful++
	} else {
		r.Failed++
	}
	r.Items = append(r.Items, item)
}

// RefreshResult partitions the outcomes of RefreshAll.
type RefreshResult struct {
	Successful []string     `json:"successful"`
	Failed     []ItemResult `json:"failed"`
}

// ProduceBulk implements CardService.ProduceBulk.
func (s *cardServiceImpl) ProduceBulk(ctx context.Context, names []string) *BulkResult {
	result := &BulkResult{
		BatchID: uuid.NewString(),
		Items:   make([]ItemResult, 0, len(names)),
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("batch_id", result.BatchID))
	log.InfoContext(ctx, "bulk generation started", slog.Int("count", len(names)))

	for i, name := range names {
		if err := s.sleep(ctx, s.requestDelay); err != nil {
			log.WarnContext(ctx, "bulk generation interrupted",
				slog.Int("remaining", len(names)-i),
				slog.Any("error", err))
			for _, rest := range names[i:] {
				result.add(failedItem(domain.CanonicalName(rest), err))
			}
			break
		}
		result.add(s.produceOne(ctx, log, name))
	}

	log.InfoContext(ctx, "bulk generation finished",
		slog.Int("successful", result.Successful),
		slog.Int("failed", result.Failed))
	return result
}

// produceOne creates the card for name unless it is already stored. Panics
// are recovered into a failed item.
func (s *cardServiceImpl) produceOne(ctx context.Context, log *slog.Logger, name string) (item ItemResult) {
	canonical := domain.CanonicalName(name)
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic while processing card",
				slog.String("card", canonical),
				slog.Any("panic", r))
			item = failedItem(canonical, fmt.Errorf("panic: %v", r))
		}
	}()

	exists, err := s.CardExists(ctx, canonical)
	if err != nil {
		return failedItem(canonical, err)
	}
	if exists {
		log.DebugContext(ctx, "card already exists, skipping", slog.String("card", canonical))
		return ItemResult{
			Name:            canonical,
			Success:         true,
			Skipped:         true,
			IsValidLanguage: true,
			Message:         fmt.Sprintf("card for %q already exists", canonical),
		}
	}

	card, err := s.ProduceCard(ctx, canonical, false)
	if err != nil {
		return failedItem(canonical, err)
	}
	if err := s.SaveCard(ctx, card); err != nil {
		return failedItem(canonical, err)
	}
	return ItemResult{
		Name:            card.Name,
		Success:         true,
		IsValidLanguage: true,
		Message:         fmt.Sprintf("card for %q created", card.Name),
	}
}

// RefreshAll implements CardService.RefreshAll.
func (s *cardServiceImpl) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	names, err := s.cards.ListNames(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to list cards for refresh", slog.Any("error", err))
		return nil, NewCardServiceError("refresh_all", "", err)
	}

	items := make([]ItemResult, len(names))
	var g errgroup.Group
	if s.refreshConcurrency > 0 {
		g.SetLimit(s.refreshConcurrency)
	}
	for i, name := range names {
		g.Go(func() error {
			items[i] = s.refreshOne(ctx, log, name)
			return nil
		})
	}
	_ = g.Wait()

	result := &RefreshResult{
		Successful: make([]string, 0, len(items)),
		Failed:     make([]ItemResult, 0),
	}
	for _, item := range items {
		if item.Success {
			result.Successful = append(result.Successful, item.Name)
		} else {
			result.Failed = append(result.Failed, item)
		}
	}

	log.InfoContext(ctx, "refresh finished",
		slog.Int("successful", len(result.Successful)),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *cardServiceImpl) refreshOne(ctx context.Context, log *slog.Logger, name string) (item ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic while refreshing card",
				slog.String("card", name),
				slog.Any("panic", r))
			item = failedItem(name, fmt.Errorf("panic: %v", r))
		}
	}()

	card, err := s.RefreshCard(ctx, name)
	if err != nil {
		return failedItem(name, err)
	}
	return ItemResult{
		Name:            card.Name,
		Success:         true,
		IsValidLanguage: true,
		Message:         fmt.Sprintf("card for %q refreshed", card.Name),
	}
}

func failedItem(name string, err error) ItemResult {
	item := ItemResult{
		Name:            name,
		IsValidLanguage: true,
		Error:           redact.String(err.Error()),
		Err:             err,
	}
	if errors.Is(err, ErrInvalidSubject) {
		item.IsValidLanguage = false
		item.Error = fmt.Sprintf("%q is not a recognizable development technology", name)
	}
	return item
}
