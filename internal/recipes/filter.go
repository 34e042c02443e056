package recipes

import (
	"errors"
	"sort"
	"strings"
)

// Filter is the recipe search request. Optional fields stay at their zero
// value when the client omits them; normalization and key derivation skip
// them entirely in that case.
type Filter struct {
	Ingredients    []string `json:"ingredients"`
	Diet           string   `json:"diet,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	MaxMinutes     int      `json:"max_minutes,omitempty"`
	Cuisine        string   `json:"cuisine,omitempty"`
	AllowedMethods []string `json:"allowed_methods,omitempty"`
	OutputLang     string   `json:"output_lang"`
}

// Validate checks the fields the API requires. It does not judge semantic
// content (unknown diets, made-up cuisines); the model deals with those.
func (f *Filter) Validate() error {
	if len(f.Ingredients) == 0 {
		return errors.New("at least one ingredient is required")
	}
	if strings.TrimSpace(f.OutputLang) == "" {
		return errors.New("output_lang is required")
	}
	if f.MaxMinutes < 0 {
		return errors.New("max_minutes must be positive")
	}
	return nil
}

// Normalize returns the canonical form of f: every string trimmed and
// lower-cased, every list additionally deduplicated and sorted. Absent
// optional fields pass through untouched. The input is never mutated, and
// Normalize(Normalize(f)) == Normalize(f).
func Normalize(f Filter) Filter {
	return Filter{
		Ingredients:    normalizeList(f.Ingredients),
		Diet:           normalizeString(f.Diet),
		Allergies:      normalizeList(f.Allergies),
		MaxMinutes:     f.MaxMinutes,
		Cuisine:        normalizeString(f.Cuisine),
		AllowedMethods: normalizeList(f.AllowedMethods),
		OutputLang:     normalizeString(f.OutputLang),
	}
}

func normalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeList trims and lower-cases each element, drops duplicates and
// sorts ascending. A nil input stays nil so omitted fields keep omitempty
// semantics after normalization.
func normalizeList(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalizeString(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
