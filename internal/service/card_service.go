package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/store"
)

// AssetStore locates and stores card artwork and icons. References returned
// are public URLs the gallery can load directly.
type AssetStore interface {
	// FindExisting probes the supported image formats in preference order.
	FindExisting(base string) (string, bool)

	// Write stores image bytes as {base}.{format} and returns its reference.
	Write(ctx context.Context, base, format string, data []byte) (string, error)

	// FindIcon probes the curated icon for base.
	FindIcon(base string) (string, bool)

	// Placeholder is the reference used when no artwork is available.
	Placeholder() string
}

// CardService provides card generation and management operations.
type CardService interface {
	// ProduceCard generates a card for languageName without persisting it.
	// With forceImageRegeneration the image provider is always called;
	// otherwise an existing asset is reused when present.
	// Returns ErrInvalidSubject when the text generator rejects the name.
	ProduceCard(ctx context.Context, languageName string, forceImageRegeneration bool) (*domain.Card, error)

	// SaveCard upserts the card. Returns ErrPersistence on failure.
	SaveCard(ctx context.Context, card *domain.Card) error

	// CardExists reports whether a card is stored under the canonical form
	// of name.
	CardExists(ctx context.Context, name string) (bool, error)

	// CreateCard returns the stored card when one exists (created=false);
	// otherwise it produces the card with a fresh image and saves it.
	CreateCard(ctx context.Context, name string) (card *domain.Card, created bool, err error)

	// RefreshCard regenerates the card, image included, and overwrites it.
	RefreshCard(ctx context.Context, name string) (*domain.Card, error)

	// ProduceBulk processes names sequentially with the configured delay
	// before each item, skipping names already stored. Per-item failures
	// never abort the batch.
	ProduceBulk(ctx context.Context, names []string) *BulkResult

	// RefreshAll refreshes every stored card and reports each outcome.
	// Only a failure to list the stored cards is returned as an error.
	RefreshAll(ctx context.Context) (*RefreshResult, error)

	// GetCard retrieves a card. Returns store.ErrCardNotFound if absent.
	GetCard(ctx context.Context, name string) (*domain.Card, error)

	// ListCards returns every stored card ordered by name.
	ListCards(ctx context.Context) ([]*domain.Card, error)

	// DeleteCard removes a card and returns the number of rows removed.
	DeleteCard(ctx context.Context, name string) (int64, error)
}

// Deps holds the collaborators of the card service.
type Deps struct {
	Cards  store.CardStore
	Text   generation.TextGenerator
	Images generation.ImageGenerator
	Assets AssetStore
	Logger *slog.Logger

	// RequestDelay is waited before every item of a bulk run.
	RequestDelay time.Duration
	// RefreshConcurrency bounds RefreshAll; 0 means unbounded.
	RefreshConcurrency int
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cards              store.CardStore
	text               generation.TextGenerator
	images             generation.ImageGenerator
	assets             AssetStore
	logger             *slog.Logger
	requestDelay       time.Duration
	refreshConcurrency int

	// sleep waits between bulk items; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(deps Deps) (CardService, error) {
	return newCardService(deps)
}

func newCardService(deps Deps) (*cardServiceImpl, error) {
	if deps.Cards == nil {
		return nil, fmt.Errorf("%w: card store", ErrMissingDependency)
	}
	if deps.Text == nil {
		return nil, fmt.Errorf("%w: text generator", ErrMissingDependency)
	}
	if deps.Images == nil {
		return nil, fmt.Errorf("%w: image generator", ErrMissingDependency)
	}
	if deps.Assets == nil {
		return nil, fmt.Errorf("%w: asset store", ErrMissingDependency)
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return &cardServiceImpl{
		cards:              deps.Cards,
		text:               deps.Text,
		images:             deps.Images,
		assets:             deps.Assets,
		logger:             log.With(slog.String("component", "card_service")),
		requestDelay:       deps.RequestDelay,
		refreshConcurrency: deps.RefreshConcurrency,
		sleep:              sleepContext,
	}, nil
}

// ProduceCard implements CardService.ProduceCard.
func (s *cardServiceImpl) ProduceCard(
	ctx context.Context,
	languageName string,
	forceImageRegeneration bool,
) (*domain.Card, error) {
	name := domain.CanonicalName(languageName)
	if name == "" {
		return nil, invalidSubject(name, domain.ErrEmptyName)
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card", name))

	text, err := s.text.GenerateCardText(ctx, name)
	if err != nil {
		log.WarnContext(ctx, "text generation failed", slog.Any("error", err))
		return nil, invalidSubject(name, err)
	}
	if text == nil || !text.IsValidLanguage {
		log.InfoContext(ctx, "subject rejected by text generator")
		return nil, invalidSubject(name, nil)
	}

	cardText := *text
	var clamped []string
	cardText.Stats, clamped = text.Stats.Clamp()
	for _, stat := range clamped {
		log.WarnContext(ctx, "provider contract violation: stat out of range, clamped",
			slog.String("stat", stat))
	}

	base := domain.FilenameBase(name)
	imageURL := s.resolveImage(ctx, log, base, cardText.ImagePrompt, forceImageRegeneration)

	iconURL := ""
	if base != "" {
		if ref, ok := s.assets.FindIcon(base); ok {
			iconURL = ref
		} else {
			log.DebugContext(ctx, "no curated icon, frontend default applies")
		}
	}

	card, err := domain.NewCard(name, cardText, imageURL, iconURL)
	if err != nil {
		log.ErrorContext(ctx, "assembled card failed validation", slog.Any("error", err))
		return nil, NewCardServiceError("produce", name, err)
	}

	log.InfoContext(ctx, "card produced",
		slog.String("image_url", card.ImageURL),
		slog.Bool("forced_image", forceImageRegeneration))
	return card, nil
}

// resolveImage returns the artwork reference for a card, never empty.
func (s *cardServiceImpl) resolveImage(
	ctx context.Context,
	log *slog.Logger,
	base, prompt string,
	force bool,
) string {
	if base == "" {
		log.WarnContext(ctx, "name has no filename characters, using placeholder")
		return s.assets.Placeholder()
	}

	if !force {
		if ref, ok := s.assets.FindExisting(base); ok {
			log.DebugContext(ctx, "reusing existing image", slog.String("image_url", ref))
			return ref
		}
	}

	img, err := s.images.GenerateImage(ctx, prompt)
	if err != nil || img == nil || len(img.Data) == 0 {
		log.WarnContext(ctx, "image generation failed, using placeholder", slog.Any("error", err))
		return s.assets.Placeholder()
	}

	ref, err := s.assets.Write(ctx, base, img.Format, img.Data)
	if err != nil {
		log.ErrorContext(ctx, "storing generated image failed, using placeholder", slog.Any("error", err))
		return s.assets.Placeholder()
	}
	return ref
}

// SaveCard implements CardService.SaveCard.
func (s *cardServiceImpl) SaveCard(ctx context.Context, card *domain.Card) error {
	if card == nil {
		return NewCardServiceError("save", "", fmt.Errorf("%w: nil card", ErrPersistence))
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cards.Upsert(ctx, card); err != nil {
		log.ErrorContext(ctx, "failed to save card",
			slog.String("card", card.Name),
			slog.Any("error", err))
		return NewCardServiceError("save", card.Name, fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	log.DebugContext(ctx, "card saved", slog.String("card", card.Name))
	return nil
}

// CardExists implements CardService.CardExists.
func (s *cardServiceImpl) CardExists(ctx context.Context, name string) (bool, error) {
	canonical := domain.CanonicalName(name)
	if canonical == "" {
		return false, nil
	}
	exists, err := s.cards.Exists(ctx, canonical)
	if err != nil {
		return false, NewCardServiceError("exists", canonical, err)
	}
	return exists, nil
}

// CreateCard implements CardService.CreateCard.
func (s *cardServiceImpl) CreateCard(ctx context.Context, name string) (*domain.Card, bool, error) {
	canonical := domain.CanonicalName(name)
	if canonical == "" {
		return nil, false, invalidSubject(canonical, domain.ErrEmptyName)
	}

	existing, err := s.cards.GetByName(ctx, canonical)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrCardNotFound) {
		return nil, false, NewCardServiceError("create", canonical, err)
	}

	card, err := s.ProduceCard(ctx, canonical, true)
	if err != nil {
		return nil, false, err
	}
	if err := s.SaveCard(ctx, card); err != nil {
		return nil, false, err
	}
	return card, true, nil
}

// RefreshCard implements CardService.RefreshCard.
func (s *cardServiceImpl) RefreshCard(ctx context.Context, name string) (*domain.Card, error) {
	card, err := s.ProduceCard(ctx, name, true)
	if err != nil {
		return nil, err
	}
	if err := s.SaveCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(ctx context.Context, name string) (*domain.Card, error) {
	canonical := domain.CanonicalName(name)
	card, err := s.cards.GetByName(ctx, canonical)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewCardServiceError("get", canonical, store.ErrCardNotFound)
		}
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to retrieve card",
			slog.String("card", canonical),
			slog.Any("error", err))
		return nil, NewCardServiceError("get", canonical, err)
	}
	return card, nil
}

// ListCards implements CardService.ListCards.
func (s *cardServiceImpl) ListCards(ctx context.Context) ([]*domain.Card, error) {
	cards, err := s.cards.ListAll(ctx)
	if err != nil {
		return nil, NewCardServiceError("list", "", err)
	}
	return cards, nil
}

// DeleteCard implements CardService.DeleteCard.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, name string) (int64, error) {
	canonical := domain.CanonicalName(name)
	n, err := s.cards.DeleteByName(ctx, canonical)
	if err != nil {
		return 0, NewCardServiceError("delete", canonical, err)
	}
	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "card deleted",
		slog.String("card", canonical),
		slog.Int64("deleted", n))
	return n, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
