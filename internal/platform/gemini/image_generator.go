package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"google.golang.org/genai"
)

// imageModel is the slice of *genai.Models used for image generation.
type imageModel interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// ImageGenerator implements generation.ImageGenerator with an Imagen model.
// Calls are synchronous; the configured image timeout bounds each one.
type ImageGenerator struct {
	logger *slog.Logger
	models imageModel
	model  string
	cfg    config.ImageConfig
}

// Ensure ImageGenerator implements generation.ImageGenerator
var _ generation.ImageGenerator = (*ImageGenerator)(nil)

// NewImageGenerator creates an ImageGenerator sharing the Gemini API key.
func NewImageGenerator(
	ctx context.Context,
	logger *slog.Logger,
	llm config.LLMConfig,
	cfg config.ImageConfig,
) (*ImageGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if llm.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ImagenModel == "" {
		return nil, fmt.Errorf("%w: imagen model cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := newClient(ctx, llm.GeminiAPIKey, llm.BaseURL)
	if err != nil {
		return nil, err
	}
	return newImageGenerator(logger, client.Models, cfg), nil
}

func newImageGenerator(logger *slog.Logger, models imageModel, cfg config.ImageConfig) *ImageGenerator {
	return &ImageGenerator{
		logger: logger.With(slog.String("component", "imagen")),
		models: models,
		model:  cfg.ImagenModel,
		cfg:    cfg,
	}
}

// aspectRatio picks the supported Imagen ratio closest to width:height.
func aspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1:1"
	}
	ratios := []struct {
		label string
		value float64
	}{
		{"1:1", 1},
		{"3:4", 0.75},
		{"4:3", 4.0 / 3.0},
		{"9:16", 9.0 / 16.0},
		{"16:9", 16.0 / 9.0},
	}
	target := float64(width) / float64(height)
	best := ratios[0]
	for _, r := range ratios[1:] {
		if abs(r.value-target) < abs(best.value-target) {
			best = r
		}
	}
	return best.label
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// GenerateImage implements generation.ImageGenerator.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt string) (*generation.Image, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio(g.cfg.Width, g.cfg.Height),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		log.ErrorContext(ctx, "Imagen call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, fmt.Errorf("%w: no images returned", generation.ErrInvalidResponse)
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("%w: empty image payload", generation.ErrInvalidResponse)
	}

	data := generated.Image.ImageBytes
	format, err := generation.FormatFromBytes(data)
	if err != nil {
		declared, ok := generation.FormatFromMIME(generated.Image.MIMEType)
		if !ok {
			return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
		}
		format = declared
	}

	log.InfoContext(ctx, "image generated", slog.String("format", format), slog.Int("bytes", len(data)))
	return &generation.Image{Data: data, Format: format}, nil
}
