// Package matching turns quiz answers into filter criteria and applies them
// to catalog records. Everything here is pure: no I/O, no logging, no state.
package matching

import (
	"math"
	"strings"

	"bike-recommender/internal/models"
)

const (
	// ccTolerance widens an explicit displacement range on both ends.
	ccTolerance = 10

	budgetMinFactor = 0.9
	budgetMaxFactor = 1.1
	usedBikeFactor  = 1.5

	// seatHeightPerCM converts rider height (cm) into a seat-height ceiling (mm).
	seatHeightPerCM = 4.9
)

var (
	beginnerBans     = []string{"4", "four", "6", "six", "8", "eight"}
	intermediateBans = []string{"8", "eight"}
)

// weightBand raises the displacement floor for riders heavier than AboveKG.
type weightBand struct {
	AboveKG float64
	MinCC   int
}

// weightBands is ordered heaviest first; the first band that applies wins.
var weightBands = []weightBand{
	{AboveKG: 120, MinCC: 490},
	{AboveKG: 110, MinCC: 440},
	{AboveKG: 100, MinCC: 390},
	{AboveKG: 80, MinCC: 290},
	{AboveKG: 70, MinCC: 240},
}

// BuildCriteria derives the filter criteria for a questionnaire. It never
// fails: a blank, unknown or unparsable answer leaves its bound at the
// widest default. Each step may tighten what an earlier step set.
func BuildCriteria(q models.Questionnaire) models.FilterCriteria {
	c := models.DefaultCriteria()

	applyExperience(&c, q.Experience)
	applyDisplacement(&c, q.Displacement)
	applyCategories(&c, q.Categories)
	applyBudget(&c, q.Budget)
	if q.AcceptUsed == models.UsedYes {
		if p, ok := scaled(c.MaxPrice, usedBikeFactor); ok {
			c.MaxPrice = p
		}
	}
	c.AllowedBrands = BrandsForRegion(q.Region)
	applyBrandPreference(&c, q.Brands)
	if height, ok := parseAnswer(q.HeightCM); ok {
		if seat, ok := scaled(height, seatHeightPerCM); ok {
			c.MaxSeatHeight = seat
		}
	}
	if weight, ok := parseAnswer(q.WeightKG); ok {
		c.MinCC = max(c.MinCC, WeightFloor(weight))
	}

	return c
}

// WeightFloor is the displacement floor for a rider weight in kg, zero when
// no band applies. It is non-decreasing in weight.
func WeightFloor(weightKG float64) int {
	for _, band := range weightBands {
		if weightKG > band.AboveKG {
			return band.MinCC
		}
	}
	return 0
}

func applyExperience(c *models.FilterCriteria, level models.ExperienceLevel) {
	switch models.ExperienceLevel(strings.TrimSpace(string(level))) {
	case models.ExperienceBeginner:
		c.MaxCC = 610
		c.BannedCylinderTokens = append(c.BannedCylinderTokens, beginnerBans...)
	case models.ExperienceIntermediate:
		c.MinCC = 370
		c.MaxCC = 810
		c.BannedCylinderTokens = append(c.BannedCylinderTokens, intermediateBans...)
	case models.ExperienceAdvanced:
		c.MinCC = 370
	}
}

func applyDisplacement(c *models.FilterCriteria, r models.Range) {
	if v, ok := parseAnswer(r.Min); ok {
		c.MinCC = max(c.MinCC, clampCC(v)-ccTolerance)
	}
	if v, ok := parseAnswer(r.Max); ok {
		c.MaxCC = min(c.MaxCC, clampCC(v)+ccTolerance)
	}
}

// clampCC converts an answered displacement to an int inside the default
// range, so out-of-range answers cannot overflow the conversion.
func clampCC(v float64) int {
	return int(math.Max(models.DefaultMinCC, math.Min(v, models.DefaultMaxCC)))
}

func applyCategories(c *models.FilterCriteria, choices []string) {
	for _, choice := range choices {
		c.InterestedCategories = appendUnique(c.InterestedCategories, CategoryTokens(choice)...)
	}
}

func applyBudget(c *models.FilterCriteria, r models.Range) {
	if v, ok := parseAnswer(r.Min); ok {
		if p, ok := scaled(v, budgetMinFactor); ok {
			c.MinPrice = p
		}
	}
	if v, ok := parseAnswer(r.Max); ok {
		if p, ok := scaled(v, budgetMaxFactor); ok {
			c.MaxPrice = p
		}
	}
}

// scaled multiplies an answer by a factor. A product that overflows is
// treated as absent.
func scaled(v, factor float64) (float64, bool) {
	p := v * factor
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return 0, false
	}
	return p, true
}

// applyBrandPreference narrows the allow-list to brands the rider also
// named. It can only remove brands, never add them.
func applyBrandPreference(c *models.FilterCriteria, preferred []string) {
	wanted := make([]string, 0, len(preferred))
	for _, p := range preferred {
		if p = strings.TrimSpace(p); p != "" {
			wanted = append(wanted, p)
		}
	}
	if len(wanted) == 0 {
		return
	}

	kept := []string{}
	for _, brand := range c.AllowedBrands {
		for _, w := range wanted {
			if strings.EqualFold(brand, w) {
				kept = append(kept, brand)
				break
			}
		}
	}
	c.AllowedBrands = kept
}
