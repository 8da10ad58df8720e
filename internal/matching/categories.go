package matching

import "strings"

// Quiz category choices.
const (
	CategorySport     = "Sport"
	CategoryCruiser   = "Cruiser"
	CategoryTouring   = "Touring"
	CategoryAdventure = "Adventure / Offroad"
	CategoryStandard  = "Standard"
	CategoryScooter   = "Scooter"
)

// categoryTokens maps a quiz choice onto substrings of the catalog's
// "Category" vocabulary (e.g. "Custom / cruiser", "Enduro / offroad").
var categoryTokens = map[string][]string{
	CategorySport:     {"sport", "naked"},
	CategoryCruiser:   {"cruiser"},
	CategoryTouring:   {"touring"},
	CategoryAdventure: {"motard", "enduro", "offroad", "cross", "motocross", "trial"},
	CategoryStandard:  {"allround", "classic"},
	CategoryScooter:   {"scooter", "minibike"},
}

// Categories lists the quiz choices in display order.
func Categories() []string {
	return []string{
		CategorySport,
		CategoryCruiser,
		CategoryTouring,
		CategoryAdventure,
		CategoryStandard,
		CategoryScooter,
	}
}

// CategoryTokens returns the catalog substrings for a quiz choice, matched
// case-insensitively. Unknown choices return nil.
func CategoryTokens(choice string) []string {
	choice = strings.TrimSpace(choice)
	for key, tokens := range categoryTokens {
		if strings.EqualFold(key, choice) {
			return append([]string(nil), tokens...)
		}
	}
	return nil
}
