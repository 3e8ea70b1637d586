package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/redact"
)

const (
	defaultBaseURL   = "https://api.replicate.com/v1"
	defaultScheduler = "K_EULER"
	maxImageBytes    = 20 << 20
	maxErrorBody     = 512
)

// Options configures a Client.
type Options struct {
	BaseURL         string
	APIToken        string
	ModelVersion    string
	Width           int
	Height          int
	PollInterval    time.Duration
	MaxPollAttempts int
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// OptionsFromConfig maps the image configuration group onto Options.
func OptionsFromConfig(cfg config.ImageConfig) Options {
	return Options{
		BaseURL:         cfg.ReplicateBaseURL,
		APIToken:        cfg.ReplicateAPIToken,
		ModelVersion:    cfg.ReplicateModelVersion,
		Width:           cfg.Width,
		Height:          cfg.Height,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		Timeout:         cfg.Timeout,
	}
}

// Client implements generation.ImageGenerator on top of Replicate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	version    string
	width      int
	height     int
	poller     *poller
	logger     *slog.Logger
}

// Ensure Client implements generation.ImageGenerator
var _ generation.ImageGenerator = (*Client)(nil)

// NewClient creates a Client. The token and model version are required.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	token := strings.TrimSpace(opts.APIToken)
	if token == "" {
		return nil, fmt.Errorf("%w: replicate API token cannot be empty", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(opts.ModelVersion) == "" {
		return nil, fmt.Errorf("%w: replicate model version cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	maxAttempts := opts.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 640
	}

	log := logger.With(slog.String("component", "replicate"))
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		token:      token,
		version:    opts.ModelVersion,
		width:      width,
		height:     height,
		poller:     &poller{interval: interval, maxAttempts: maxAttempts, logger: log},
		logger:     log,
	}, nil
}

// GenerateImage implements generation.ImageGenerator.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*generation.Image, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: empty prompt", generation.ErrGenerationFailed)
	}

	submitted, err := c.submit(ctx, prompt)
	if err != nil {
		log.ErrorContext(ctx, "prediction submission failed", slog.Any("error", err))
		return nil, err
	}
	log.DebugContext(ctx, "prediction submitted",
		slog.String("prediction_id", submitted.ID),
		slog.String("status", submitted.Status))

	final, err := c.poller.run(ctx, submitted, func(ctx context.Context) (*prediction, error) {
		return c.status(ctx, submitted)
	})
	if err != nil {
		log.WarnContext(ctx, "prediction did not succeed",
			slog.String("prediction_id", submitted.ID),
			slog.Any("error", err))
		return nil, err
	}

	img, err := c.download(ctx, final.outputs()[0])
	if err != nil {
		log.ErrorContext(ctx, "image download failed",
			slog.String("prediction_id", submitted.ID),
			slog.Any("error", err))
		return nil, err
	}

	log.InfoContext(ctx, "image generated",
		slog.String("prediction_id", submitted.ID),
		slog.String("format", img.Format),
		slog.Int("bytes", len(img.Data)))
	return img, nil
}

func (c *Client) submit(ctx context.Context, prompt string) (*prediction, error) {
	body, err := json.Marshal(predictionRequest{
		Version: c.version,
		Input: predictionInput{
			Prompt:     prompt,
			Width:      c.width,
			Height:     c.height,
			NumOutputs: 1,
			Scheduler:  defaultScheduler,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", generation.ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	return c.doPrediction(req)
}

func (c *Client) status(ctx context.Context, submitted *prediction) (*prediction, error) {
	url := submitted.URLs.Get
	if url == "" {
		if submitted.ID == "" {
			return nil, fmt.Errorf("%w: prediction has neither status URL nor id", generation.ErrInvalidResponse)
		}
		url = c.baseURL + "/predictions/" + submitted.ID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	return c.doPrediction(req)
}

func (c *Client) doPrediction(req *http.Request) (*prediction, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", generation.ErrGenerationFailed, req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %s %s: http %d: %s", generation.ErrGenerationFailed,
			req.Method, req.URL.Path, resp.StatusCode, redact.String(strings.TrimSpace(string(snippet))))
	}

	var out prediction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode prediction: %v", generation.ErrInvalidResponse, err)
	}
	if out.Status == "" {
		return nil, fmt.Errorf("%w: prediction without status", generation.ErrInvalidResponse)
	}
	return &out, nil
}

func (c *Client) download(ctx context.Context, url string) (*generation.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch output: %v", generation.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch output: http %d", generation.ErrGenerationFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", generation.ErrGenerationFailed, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: output exceeds %d bytes", generation.ErrInvalidResponse, maxImageBytes)
	}

	format, err := generation.FormatFromBytes(data)
	if err != nil {
		declared, ok := generation.FormatFromMIME(resp.Header.Get("Content-Type"))
		if !ok {
			if errors.Is(err, generation.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
			}
			return nil, err
		}
		format = declared
	}
	return &generation.Image{Data: data, Format: format}, nil
}
