package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SlotCount is the number of positional answers in the quiz wire form.
const SlotCount = 9

// Positional slot indexes of the quiz wire form.
const (
	SlotExperience = iota
	SlotDisplacement
	SlotCategories
	SlotBudget
	SlotAcceptUsed
	SlotRegion
	SlotBrands
	SlotHeight
	SlotWeight
)

var ErrInvalidAnswerShape = errors.New("INVALID_ANSWER_SHAPE")

type ExperienceLevel string

const (
	ExperienceUnset        ExperienceLevel = ""
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
)

type UsedPreference string

const (
	UsedUnset UsedPreference = ""
	UsedYes   UsedPreference = "Yes"
	UsedNo    UsedPreference = "No"
)

type Region string

const (
	RegionUnset        Region = ""
	RegionAsia         Region = "Asia"
	RegionEurope       Region = "Europe"
	RegionNorthAmerica Region = "North America"
	RegionSouthAmerica Region = "South America"
	RegionAfrica       Region = "Africa"
	RegionAustralia    Region = "Australia"
)

// Regions lists every selectable region in quiz order.
func Regions() []Region {
	return []Region{
		RegionAsia,
		RegionEurope,
		RegionNorthAmerica,
		RegionSouthAmerica,
		RegionAfrica,
		RegionAustralia,
	}
}

func (r Region) IsValid() bool {
	for _, known := range Regions() {
		if r == known {
			return true
		}
	}
	return false
}

// Range is a ranged answer; either bound may be blank.
type Range struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Questionnaire is one user's quiz response with a named field per question.
// Blank strings and empty slices mean the question was skipped.
type Questionnaire struct {
	Experience   ExperienceLevel `json:"experience"`
	Displacement Range           `json:"displacement"`
	Categories   []string        `json:"categories"`
	Budget       Range           `json:"budget"`
	AcceptUsed   UsedPreference  `json:"acceptUsed"`
	Region       Region          `json:"region"`
	Brands       []string        `json:"brands"`
	HeightCM     string          `json:"heightCm"`
	WeightKG     string          `json:"weightKg"`
}

// UnmarshalJSON accepts both the named object form and the positional
// 9-slot array form produced by the quiz front end.
func (q *Questionnaire) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var slots []json.RawMessage
		if err := json.Unmarshal(trimmed, &slots); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAnswerShape, err)
		}
		parsed, err := QuestionnaireFromSlots(slots)
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &named); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswerShape, err)
	}
	slots := make([]json.RawMessage, SlotCount)
	for i, name := range slotNames {
		slots[i] = named[name]
	}
	parsed, err := QuestionnaireFromSlots(slots)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// slotNames are the JSON keys of the named form, in slot order.
var slotNames = [SlotCount]string{
	"experience",
	"displacement",
	"categories",
	"budget",
	"acceptUsed",
	"region",
	"brands",
	"heightCm",
	"weightKg",
}

// QuestionnaireFromSlots decodes the positional form. A wrong slot count or
// a slot holding the wrong JSON kind is a shape error; null is read as a
// skipped question.
func QuestionnaireFromSlots(slots []json.RawMessage) (Questionnaire, error) {
	var q Questionnaire
	if len(slots) != SlotCount {
		return q, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidAnswerShape, SlotCount, len(slots))
	}

	var err error
	var s string

	if s, err = decodeChoice(slots[SlotExperience], SlotExperience); err != nil {
		return q, err
	}
	q.Experience = ExperienceLevel(s)

	if q.Displacement, err = decodeRange(slots[SlotDisplacement], SlotDisplacement); err != nil {
		return q, err
	}
	if q.Categories, err = decodeSet(slots[SlotCategories], SlotCategories); err != nil {
		return q, err
	}
	if q.Budget, err = decodeRange(slots[SlotBudget], SlotBudget); err != nil {
		return q, err
	}

	if s, err = decodeChoice(slots[SlotAcceptUsed], SlotAcceptUsed); err != nil {
		return q, err
	}
	q.AcceptUsed = UsedPreference(s)

	if s, err = decodeChoice(slots[SlotRegion], SlotRegion); err != nil {
		return q, err
	}
	q.Region = Region(s)

	if q.Brands, err = decodeSet(slots[SlotBrands], SlotBrands); err != nil {
		return q, err
	}
	if q.HeightCM, err = decodeNumeric(slots[SlotHeight], SlotHeight); err != nil {
		return q, err
	}
	if q.WeightKG, err = decodeNumeric(slots[SlotWeight], SlotWeight); err != nil {
		return q, err
	}

	return q, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeChoice(raw json.RawMessage, slot int) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: slot %d must be a string", ErrInvalidAnswerShape, slot)
	}
	return strings.TrimSpace(s), nil
}

// decodeNumeric accepts a numeric string or a bare JSON number.
func decodeNumeric(raw json.RawMessage, slot int) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: slot %d must be a numeric string", ErrInvalidAnswerShape, slot)
}

func decodeRange(raw json.RawMessage, slot int) (Range, error) {
	if isNull(raw) {
		return Range{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Range{}, fmt.Errorf("%w: slot %d must be a {min,max} object", ErrInvalidAnswerShape, slot)
	}
	var r Range
	var err error
	if r.Min, err = decodeNumeric(fields["min"], slot); err != nil {
		return Range{}, err
	}
	if r.Max, err = decodeNumeric(fields["max"], slot); err != nil {
		return Range{}, err
	}
	return r, nil
}

func decodeSet(raw json.RawMessage, slot int) ([]string, error) {
	result := []string{}
	if isNull(raw) {
		return result, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		// A lone string is a single selection.
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: slot %d must be a list of strings", ErrInvalidAnswerShape, slot)
		}
		items = []string{single}
	}
	seen := make(map[string]bool)
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" && !seen[trimmed] {
			result = append(result, trimmed)
			seen[trimmed] = true
		}
	}
	return result, nil
}
