package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/hoangdinh2411/cook-ai-api/internal/recipes"
)

// KeyForImage derives the cache key for an uploaded image: the SHA-256 hex
// digest of the raw bytes. The declared MIME type is deliberately left out —
// identical bytes uploaded as image/jpeg and image/png share one entry, since
// the vision model reads the content, not the container.
func KeyForImage(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// KeyForFilter derives the cache key for a recipe filter. The filter MUST
// already be normalized (recipes.Normalize); this function serializes it in a
// fixed field order and hashes the result, so two filters that normalize to
// the same canonical form always map to the same key.
//
// Serialized form, absent optional fields omitted entirely:
//
//	recipe:<lang>[:ingredients=a,b][:diet=..][:allergies=a,b][:max_minutes=N][:cuisine=..][:allowed_methods=a,b]
func KeyForFilter(f recipes.Filter) string {
	parts := []string{"recipe:" + f.OutputLang}
	if len(f.Ingredients) > 0 {
		parts = append(parts, "ingredients="+strings.Join(f.Ingredients, ","))
	}
	if f.Diet != "" {
		parts = append(parts, "diet="+f.Diet)
	}
	if len(f.Allergies) > 0 {
		parts = append(parts, "allergies="+strings.Join(f.Allergies, ","))
	}
	if f.MaxMinutes > 0 {
		parts = append(parts, "max_minutes="+strconv.Itoa(f.MaxMinutes))
	}
	if f.Cuisine != "" {
		parts = append(parts, "cuisine="+f.Cuisine)
	}
	if len(f.AllowedMethods) > 0 {
		parts = append(parts, "allowed_methods="+strings.Join(f.AllowedMethods, ","))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
