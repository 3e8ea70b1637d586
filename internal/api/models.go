package api

import (
	"github.com/devdeck/devdeck-api/internal/domain"
)

// Common request/response structures

// CardNameRequest is the payload of POST /api/cards.
type CardNameRequest struct {
	LanguageName string `json:"languageName" validate:"required"`
}

// UpdateCardsRequest is the payload of POST /api/cards/update. An empty
// name refreshes every card.
type UpdateCardsRequest struct {
	LanguageName string `json:"languageName"`
}

// GenerateBulkRequest is the payload of POST /api/admin/generate-bulk.
type GenerateBulkRequest struct {
	LanguageNames string `json:"languageNames" validate:"required"`
}

// UploadCSVRequest is the payload of POST /api/admin/upload-csv.
type UploadCSVRequest struct {
	CSVData string `json:"csvData" validate:"required"`
}

// CardMessageResponse carries a single card with a status message.
type CardMessageResponse struct {
	Message string       `json:"message"`
	Card    *domain.Card `json:"card"`
}

// InvalidSubjectResponse is returned with 400 when a name is not a
// recognizable technology.
type InvalidSubjectResponse struct {
	Error           string `json:"error"`
	IsValidLanguage bool   `json:"isValidLanguage"`
	TraceID         string `json:"trace_id,omitempty"`
}

// BulkResponse summarizes a bulk run. Only counts are returned.
type BulkResponse struct {
	Message    string `json:"message"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// RefreshAllResponse lists refreshed card names and the error message of
// every card that could not be refreshed.
type RefreshAllResponse struct {
	Message    string   `json:"message"`
	Successful []string `json:"successful"`
	Failed     []string `json:"failed"`
}

// DeleteResponse is returned by DELETE /api/cards/{name}.
type DeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount,omitempty"`
}
