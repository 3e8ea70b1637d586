package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"text/template"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// contentGenerator is the slice of *genai.Models used for text generation.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// TextGenerator implements generation.TextGenerator using a Gemini model
// with a JSON response schema.
type TextGenerator struct {
	logger         *slog.Logger
	models         contentGenerator
	model          string
	promptTemplate *template.Template
	validate       *validator.Validate
}

// Ensure TextGenerator implements generation.TextGenerator
var _ generation.TextGenerator = (*TextGenerator)(nil)

// NewTextGenerator creates a TextGenerator backed by the Gemini API.
// The prompt template is read from cfg.PromptTemplatePath when set and the
// embedded default is used otherwise.
func NewTextGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*TextGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	tmpl, err := loadPromptTemplate(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx, cfg.GeminiAPIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return newTextGenerator(logger, client.Models, cfg.ModelName, tmpl), nil
}

func newTextGenerator(
	logger *slog.Logger,
	models contentGenerator,
	model string,
	tmpl *template.Template,
) *TextGenerator {
	return &TextGenerator{
		logger:         logger.With(slog.String("component", "gemini_text")),
		models:         models,
		model:          model,
		promptTemplate: tmpl,
		validate:       validator.New(),
	}
}

func newClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return client, nil
}

func loadPromptTemplate(path string) (*template.Template, error) {
	content := defaultPromptTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				generation.ErrInvalidConfig, path, err)
		}
		content = string(raw)
	}

	tmpl, err := template.New("card").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// createPrompt renders the prompt template for languageName.
func (g *TextGenerator) createPrompt(languageName string) (string, error) {
	types := make([]string, len(domain.CardTypes))
	for i, t := range domain.CardTypes {
		types[i] = string(t)
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, promptData{
		LanguageName: languageName,
		CardTypes:    types,
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// GenerateCardText implements generation.TextGenerator.
func (g *TextGenerator) GenerateCardText(ctx context.Context, canonicalName string) (*domain.CardText, error) {
	log := logger.FromContextOrDefault(ctx, g.logger).With(slog.String("language", canonicalName))

	if strings.TrimSpace(canonicalName) == "" {
		return nil, ErrEmptyLanguageName
	}

	prompt, err := g.createPrompt(canonicalName)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "calling Gemini for card text", slog.Int("prompt_length", len(prompt)))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Gemini API call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text, err := responseText(resp)
	if err != nil {
		log.WarnContext(ctx, "unusable Gemini response", slog.Any("error", err))
		return nil, err
	}

	cardText, err := g.parseResponse(ctx, log, text)
	if err != nil {
		log.WarnContext(ctx, "Gemini response failed validation", slog.Any("error", err))
		return nil, err
	}

	log.InfoContext(ctx, "card text generated",
		slog.Bool("is_valid_language", cardText.IsValidLanguage),
		slog.String("type", string(cardText.Type)))
	return cardText, nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: candidate blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty text", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}

// parseResponse decodes and validates the model's JSON document. Invalid
// subjects only need the flag; valid ones must carry every field.
func (g *TextGenerator) parseResponse(ctx context.Context, log *slog.Logger, text string) (*domain.CardText, error) {
	var schema cardTextSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if schema.IsValidLanguage == nil {
		return nil, fmt.Errorf("%w: missing isValidLanguage", generation.ErrInvalidResponse)
	}
	if !*schema.IsValidLanguage {
		return &domain.CardText{Name: schema.Name, IsValidLanguage: false}, nil
	}

	if err := g.validate.Struct(schema); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}

	raw := domain.Stats{
		PWR: roundStat(*schema.Stats.PWR),
		VEL: roundStat(*schema.Stats.VEL),
		FLX: roundStat(*schema.Stats.FLX),
		COM: roundStat(*schema.Stats.COM),
		CRV: roundStat(*schema.Stats.CRV),
	}
	stats, clamped := raw.Clamp()
	for _, name := range clamped {
		log.WarnContext(ctx, "provider contract violation: stat out of range, clamped",
			slog.String("stat", name))
	}

	return &domain.CardText{
		Name:            schema.Name,
		Type:            domain.NormalizeCardType(schema.Type),
		Description:     strings.TrimSpace(schema.Description),
		Stats:           stats,
		ImagePrompt:     strings.TrimSpace(schema.ImagePrompt),
		IsValidLanguage: true,
	}, nil
}

func roundStat(v float64) int {
	if math.IsNaN(v) {
		return domain.StatMin
	}
	// Bound before converting so huge values cannot overflow int.
	v = math.Max(-1, math.Min(v, domain.StatMax+1))
	return int(math.Round(v))
}
