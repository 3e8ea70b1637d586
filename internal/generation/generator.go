package generation

import (
	"context"

	"github.com/devdeck/devdeck-api/internal/domain"
)

// TextGenerator produces the descriptive part of a card.
type TextGenerator interface {
	// GenerateCardText asks the provider to describe canonicalName. A nil
	// error means the response parsed and passed schema validation; callers
	// must still check IsValidLanguage.
	GenerateCardText(ctx context.Context, canonicalName string) (*domain.CardText, error)
}

// ImageGenerator produces card artwork.
type ImageGenerator interface {
	// GenerateImage renders prompt and returns the raw image bytes. Any
	// failure, including an exhausted polling budget, is returned as an error.
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// Image is a generated artwork payload.
type Image struct {
	Data []byte
	// Format is the file extension to store the bytes under, e.g. "png".
	Format string
}
