package domain

import (
	"fmt"
	"strings"
)

// Stat bounds shared by all five card stats.
const (
	StatMin = 0
	StatMax = 100
)

// CardType is the category label of a card.
type CardType string

// The closed set of card categories.
const (
	CardTypeLanguage         CardType = "Language"
	CardTypeFramework        CardType = "Framework"
	CardTypeLibrary          CardType = "Library"
	CardTypeDatabase         CardType = "Database"
	CardTypeAPIPlatform      CardType = "API & Platform"
	CardTypeMarkupStyle      CardType = "Markup/Style"
	CardTypeContainerization CardType = "Containerization"
	CardTypeMobile           CardType = "Mobile"
	CardTypeOther            CardType = "Other"
)

// CardTypes lists every valid category in display order.
var CardTypes = []CardType{
	CardTypeLanguage,
	CardTypeFramework,
	CardTypeLibrary,
	CardTypeDatabase,
	CardTypeAPIPlatform,
	CardTypeMarkupStyle,
	CardTypeContainerization,
	CardTypeMobile,
	CardTypeOther,
}

// NormalizeCardType maps a free-form category label onto the closed set,
// matching case-insensitively. Unknown labels become CardTypeOther.
func NormalizeCardType(label string) CardType {
	label = strings.TrimSpace(label)
	for _, t := range CardTypes {
		if strings.EqualFold(label, string(t)) {
			return t
		}
	}
	return CardTypeOther
}

// Stats holds the five numeric card attributes.
type Stats struct {
	// PWR is power: ability to handle complex, demanding work.
	PWR int `json:"pwr"`
	// VEL is velocity: runtime performance.
	VEL int `json:"vel"`
	// FLX is flexibility across paradigms and domains.
	FLX int `json:"flx"`
	// COM is community size and activity.
	COM int `json:"com"`
	// CRV is the learning curve.
	CRV int `json:"crv"`
}

// Clamp returns a copy of s with every stat forced into [StatMin, StatMax],
// together with the names of the stats that had to be adjusted.
func (s Stats) Clamp() (Stats, []string) {
	var clamped []string
	fix := func(name string, v int) int {
		switch {
		case v < StatMin:
			clamped = append(clamped, name)
			return StatMin
		case v > StatMax:
			clamped = append(clamped, name)
			return StatMax
		}
		return v
	}

	return Stats{
		PWR: fix("pwr", s.PWR),
		VEL: fix("vel", s.VEL),
		FLX: fix("flx", s.FLX),
		COM: fix("com", s.COM),
		CRV: fix("crv", s.CRV),
	}, clamped
}

// Validate checks that every stat lies within [StatMin, StatMax].
func (s Stats) Validate() error {
	if _, clamped := s.Clamp(); len(clamped) > 0 {
		return fmt.Errorf("%w: %s", ErrStatOutOfRange, strings.Join(clamped, ", "))
	}
	return nil
}

// CardText is the structured result of the text-generation step, before any
// asset resolution.
type CardText struct {
	Name            string
	Type            CardType
	Description     string
	Stats           Stats
	ImagePrompt     string
	IsValidLanguage bool
}

// Card is the persisted profile of one technology. JSON field names match the
// gallery frontend, which renders stored rows verbatim.
type Card struct {
	Name            string   `json:"name"`
	Type            CardType `json:"type"`
	Description     string   `json:"description"`
	PWR             int      `json:"pwr"`
	VEL             int      `json:"vel"`
	FLX             int      `json:"flx"`
	COM             int      `json:"com"`
	CRV             int      `json:"crv"`
	ImagePrompt     string   `json:"imagePrompt"`
	ImageURL        string   `json:"imageUrl"`
	IconURL         string   `json:"iconUrl"`
	IsValidLanguage bool     `json:"isValidLanguage"`
}

// NewCard assembles a card from generated text and resolved asset references.
// The name is canonicalized here regardless of what the generator echoed.
func NewCard(name string, text CardText, imageURL, iconURL string) (*Card, error) {
	card := &Card{
		Name:            CanonicalName(name),
		Type:            NormalizeCardType(string(text.Type)),
		Description:     text.Description,
		ImagePrompt:     text.ImagePrompt,
		ImageURL:        imageURL,
		IconURL:         iconURL,
		IsValidLanguage: text.IsValidLanguage,
	}
	card.SetStats(text.Stats)

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Stats returns the card's five attributes as a Stats value.
func (c *Card) Stats() Stats {
	return Stats{PWR: c.PWR, VEL: c.VEL, FLX: c.FLX, COM: c.COM, CRV: c.CRV}
}

// SetStats copies the five attributes onto the card.
func (c *Card) SetStats(s Stats) {
	c.PWR, c.VEL, c.FLX, c.COM, c.CRV = s.PWR, s.VEL, s.FLX, s.COM, s.CRV
}

// Validate checks if the Card holds data that may be persisted.
func (c *Card) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}

	if !IsCanonicalName(c.Name) {
		return fmt.Errorf("%w: %q", ErrNonCanonicalName, c.Name)
	}

	if !c.IsValidLanguage {
		return ErrInvalidSubjectCard
	}

	if c.ImageURL == "" {
		return ErrMissingImageURL
	}

	return c.Stats().Validate()
}
