package gemini

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeContentGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	calls      int
	lastModel  string
	lastPrompt string
	lastConfig *genai.GenerateContentConfig
}

func (f *fakeContentGenerator) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastModel = model
	f.lastConfig = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastPrompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func newTestTextGenerator(t *testing.T, fake *fakeContentGenerator) (*TextGenerator, *logger.TestLogBuffer) {
	t.Helper()
	tmpl, err := loadPromptTemplate("")
	require.NoError(t, err)
	log, buf := logger.GetTestLogger(t)
	return newTextGenerator(log, fake, "gemini-test", tmpl), buf
}

const validJSON = `{
	"name": "python",
	"type": "language",
	"description": "  Readable and versatile.  ",
	"stats": {"pwr": 80, "vel": 55.4, "flx": 90.6, "com": 95, "crv": 85},
	"imagePrompt": "a friendly serpent mage",
	"isValidLanguage": true
}`

func TestGenerateCardTextValid(t *testing.T) {
	fake := &fakeContentGenerator{resp: textResponse(validJSON)}
	g, _ := newTestTextGenerator(t, fake)

	text, err := g.GenerateCardText(context.Background(), "Python")
	require.NoError(t, err)

	assert.True(t, text.IsValidLanguage)
	assert.Equal(t, domain.CardTypeLanguage, text.Type)
	assert.Equal(t, "Readable and versatile.", text.Description)
	assert.Equal(t, domain.Stats{PWR: 80, VEL: 55, FLX: 91, COM: 95, CRV: 85}, text.Stats)
	assert.Equal(t, "a friendly serpent mage", text.ImagePrompt)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "gemini-test", fake.lastModel)
	assert.Contains(t, fake.lastPrompt, `"Python"`)
	assert.Contains(t, fake.lastPrompt, `"API & Platform"`)
	require.NotNil(t, fake.lastConfig)
	assert.Equal(t, "application/json", fake.lastConfig.ResponseMIMEType)
	require.NotNil(t, fake.lastConfig.ResponseSchema)
	assert.Contains(t, fake.lastConfig.ResponseSchema.Required, "isValidLanguage")
}

func TestGenerateCardTextInvalidSubject(t *testing.T) {
	fake := &fakeContentGenerator{resp: textResponse(`{"name":"Xyz","isValidLanguage":false}`)}
	g, _ := newTestTextGenerator(t, fake)

	text, err := g.GenerateCardText(context.Background(), "Xyz")
	require.NoError(t, err, "an invalid subject is a valid response")
	assert.False(t, text.IsValidLanguage)
}

func TestGenerateCardTextUnknownTypeBecomesOther(t *testing.T) {
	body := strings.Replace(validJSON, `"language"`, `"Quantum Thing"`, 1)
	g, _ := newTestTextGenerator(t, &fakeContentGenerator{resp: textResponse(body)})

	text, err := g.GenerateCardText(context.Background(), "Python")
	require.NoError(t, err)
	assert.Equal(t, domain.CardTypeOther, text.Type)
}

func TestGenerateCardTextClampsOutOfRangeStats(t *testing.T) {
	body := `{"name":"Go","type":"Language","description":"d","imagePrompt":"p","isValidLanguage":true,
		"stats":{"pwr":150,"vel":-3,"flx":50,"com":1e12,"crv":100}}`
	g, buf := newTestTextGenerator(t, &fakeContentGenerator{resp: textResponse(body)})

	text, err := g.GenerateCardText(context.Background(), "Go")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{PWR: 100, VEL: 0, FLX: 50, COM: 100, CRV: 100}, text.Stats)

	logs := buf.String()
	assert.Contains(t, logs, "provider contract violation")
	assert.Equal(t, 3, strings.Count(logs, "provider contract violation"))
}

func TestGenerateCardTextRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeContentGenerator
		wantErr error
	}{
		{
			name:    "transport error",
			fake:    &fakeContentGenerator{err: errors.New("connection reset")},
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "nil response",
			fake:    &fakeContentGenerator{},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			fake:    &fakeContentGenerator{resp: &genai.GenerateContentResponse{}},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "safety block",
			fake: &fakeContentGenerator{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "empty text",
			fake:    &fakeContentGenerator{resp: textResponse("   ")},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "not json",
			fake:    &fakeContentGenerator{resp: textResponse("Sure! Here is your card")},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "missing validity flag",
			fake:    &fakeContentGenerator{resp: textResponse(`{"name":"Go","type":"Language"}`)},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "valid subject missing stats",
			fake: &fakeContentGenerator{resp: textResponse(
				`{"name":"Go","type":"Language","description":"d","imagePrompt":"p","isValidLanguage":true}`)},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "valid subject missing one stat",
			fake: &fakeContentGenerator{resp: textResponse(
				`{"name":"Go","type":"Language","description":"d","imagePrompt":"p","isValidLanguage":true,
				"stats":{"pwr":1,"vel":2,"flx":3,"com":4}}`)},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "valid subject missing description",
			fake: &fakeContentGenerator{resp: textResponse(
				`{"name":"Go","type":"Language","imagePrompt":"p","isValidLanguage":true,
				"stats":{"pwr":1,"vel":2,"flx":3,"com":4,"crv":5}}`)},
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestTextGenerator(t, tt.fake)
			text, err := g.GenerateCardText(context.Background(), "Go")
			assert.Nil(t, text)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGenerateCardTextEmptyName(t *testing.T) {
	fake := &fakeContentGenerator{resp: textResponse(validJSON)}
	g, _ := newTestTextGenerator(t, fake)

	_, err := g.GenerateCardText(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrEmptyLanguageName))
	assert.Equal(t, 0, fake.calls)
}

func TestLoadPromptTemplateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Describe {{.LanguageName}} briefly."), 0o644))

	tmpl, err := loadPromptTemplate(path)
	require.NoError(t, err)

	fake := &fakeContentGenerator{resp: textResponse(validJSON)}
	g := newTextGenerator(slog.Default(), fake, "m", tmpl)
	_, err = g.GenerateCardText(context.Background(), "Rust")
	require.NoError(t, err)
	assert.Equal(t, "Describe Rust briefly.", fake.lastPrompt)
}

func TestLoadPromptTemplateErrors(t *testing.T) {
	_, err := loadPromptTemplate(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.True(t, errors.Is(err, generation.ErrInvalidConfig))

	bad := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{.LanguageName"), 0o644))
	_, err = loadPromptTemplate(bad)
	assert.True(t, errors.Is(err, generation.ErrInvalidConfig))
}

func TestNewTextGeneratorValidatesConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewTextGenerator(ctx, nil, config.LLMConfig{GeminiAPIKey: "k", ModelName: "m"})
	assert.Error(t, err)

	_, err = NewTextGenerator(ctx, slog.Default(), config.LLMConfig{ModelName: "m"})
	assert.True(t, errors.Is(err, generation.ErrInvalidConfig))

	_, err = NewTextGenerator(ctx, slog.Default(), config.LLMConfig{GeminiAPIKey: "k"})
	assert.True(t, errors.Is(err, generation.ErrInvalidConfig))
}
