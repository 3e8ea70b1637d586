package gemini

import "google.golang.org/genai"

// promptData represents the data passed to the prompt template
type promptData struct {
	LanguageName string
	CardTypes    []string
}

// cardTextSchema is the JSON document the model is asked to produce.
// Pointers distinguish a missing field from its zero value.
type cardTextSchema struct {
	Name            string       `json:"name"`
	Type            string       `json:"type" validate:"required"`
	Description     string       `json:"description" validate:"required"`
	Stats           *statsSchema `json:"stats" validate:"required"`
	ImagePrompt     string       `json:"imagePrompt" validate:"required"`
	IsValidLanguage *bool        `json:"isValidLanguage" validate:"required"`
}

// statsSchema carries the five stats as JSON numbers; models occasionally
// emit fractional values.
type statsSchema struct {
	PWR *float64 `json:"pwr" validate:"required"`
	VEL *float64 `json:"vel" validate:"required"`
	FLX *float64 `json:"flx" validate:"required"`
	COM *float64 `json:"com" validate:"required"`
	CRV *float64 `json:"crv" validate:"required"`
}

// responseSchema mirrors cardTextSchema for the model's structured output.
func responseSchema() *genai.Schema {
	number := func() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        str(),
			"type":        str(),
			"description": str(),
			"stats": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"pwr": number(),
					"vel": number(),
					"flx": number(),
					"com": number(),
					"crv": number(),
				},
				Required: []string{"pwr", "vel", "flx", "com", "crv"},
			},
			"imagePrompt":     str(),
			"isValidLanguage": {Type: genai.TypeBoolean},
		},
		Required: []string{"name", "type", "description", "stats", "imagePrompt", "isValidLanguage"},
	}
}
