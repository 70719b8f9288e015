package domain

import (
	"fmt"
)

// SlotID identifies an image slot of the template
type SlotID string

const (
	SlotLogo SlotID = "logo"
	SlotHero SlotID = "hero"
)

// ImageSlot describes one image position in the template together with the
// placeholder asset used when nothing real was supplied
type ImageSlot struct {
	ID             SlotID `json:"id"`
	PlaceholderURL string `json:"placeholder_url"`
	DefaultWidth   int    `json:"default_width"`
	DefaultHeight  int    `json:"default_height"`
	URLToken       string `json:"url_token"`
	WidthToken     string `json:"width_token"`
	HeightToken    string `json:"height_token"`
	// AcceptsVector allows SVG uploads; those are hosted as-is but never
	// measured locally.
	AcceptsVector bool `json:"accepts_vector"`
}

// ResolvedAsset is the url and size an image slot ends up with
type ResolvedAsset struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Default returns the placeholder asset of the slot
func (s ImageSlot) Default() ResolvedAsset {
	return ResolvedAsset{
		URL:    s.PlaceholderURL,
		Width:  s.DefaultWidth,
		Height: s.DefaultHeight,
	}
}

// IsReal reports whether asset replaces the slot's placeholder
func (s ImageSlot) IsReal(asset ResolvedAsset) bool {
	return asset.URL != s.PlaceholderURL
}

// Validate checks the slot definition itself
func (s ImageSlot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("slot id is required")
	}
	if s.PlaceholderURL == "" {
		return fmt.Errorf("slot %s: placeholder url is required", s.ID)
	}
	if s.DefaultWidth <= 0 || s.DefaultHeight <= 0 {
		return fmt.Errorf("slot %s: default dimensions must be positive, got %dx%d", s.ID, s.DefaultWidth, s.DefaultHeight)
	}
	if s.URLToken == "" || s.WidthToken == "" || s.HeightToken == "" {
		return fmt.Errorf("slot %s: url, width and height tokens are required", s.ID)
	}
	return nil
}

// ValidateSlots checks every slot and that ids and placeholder urls are
// unique, so elision for one slot can never hit another
func ValidateSlots(slots []ImageSlot) error {
	ids := make(map[SlotID]struct{}, len(slots))
	urls := make(map[string]SlotID, len(slots))
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := ids[s.ID]; ok {
			return fmt.Errorf("duplicate slot id: %s", s.ID)
		}
		ids[s.ID] = struct{}{}
		if other, ok := urls[s.PlaceholderURL]; ok {
			return fmt.Errorf("slots %s and %s share placeholder url %s", other, s.ID, s.PlaceholderURL)
		}
		urls[s.PlaceholderURL] = s.ID
	}
	return nil
}

// DefaultSlots are the image slots the bundled templates are authored with
var DefaultSlots = []ImageSlot{
	{
		ID:             SlotLogo,
		PlaceholderURL: "https://via.placeholder.com/160x48?text=Logo",
		DefaultWidth:   160,
		DefaultHeight:  48,
		URLToken:       TokenLogoImgURL,
		WidthToken:     TokenLogoWidth,
		HeightToken:    TokenLogoHeight,
		AcceptsVector:  true,
	},
	{
		ID:             SlotHero,
		PlaceholderURL: "https://via.placeholder.com/1200x600?text=Hero",
		DefaultWidth:   1200,
		DefaultHeight:  600,
		URLToken:       TokenHeroImgURL,
		WidthToken:     TokenHeroWidth,
		HeightToken:    TokenHeroHeight,
	},
}
