package replicate

import (
	"encoding/json"
	"strings"
)

// Job statuses reported by the predictions API.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusQueued     = "queued"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt     string `json:"prompt"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	NumOutputs int    `json:"num_outputs"`
	Scheduler  string `json:"scheduler"`
}

// prediction is the job document returned by submit and status calls.
type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// outputs returns the output URLs. The API reports either a list of URLs or
// a single URL string depending on the model.
func (p *prediction) outputs() []string {
	if p == nil || len(p.Output) == 0 || string(p.Output) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, u := range list {
			if strings.TrimSpace(u) != "" {
				out = append(out, u)
			}
		}
		return out
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil && strings.TrimSpace(single) != "" {
		return []string{single}
	}
	return nil
}

// errorMessage renders the job's error field for logs and wrapped errors.
func (p *prediction) errorMessage() string {
	if p == nil || len(p.Error) == 0 || string(p.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Error, &s); err == nil {
		return s
	}
	return string(p.Error)
}
