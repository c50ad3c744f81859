package console

import (
	"context"
	"strings"
)

// TranslationService resolves display strings for a locale. Menu labels and
// screen titles fall back to their English text when it is nil or fails.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ResolveLocalizedValue picks the value for locale from values, trying the
// region-less language next and then the "default" key.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if value != "" && strings.EqualFold(key, candidate) {
				return value
			}
		}
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, args map[string]any) string {
	if svc != nil {
		if out, err := svc.Translate(ctx, key, locale, args); err == nil && out != "" {
			return out
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// MapTranslator is a TranslationService over a static catalog keyed by
// locale and then message key.
type MapTranslator map[string]map[string]string

// Translate implements TranslationService.
func (m MapTranslator) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	for _, candidate := range localeCandidates(locale) {
		for lang, catalog := range m {
			if !strings.EqualFold(lang, candidate) {
				continue
			}
			if value := catalog[key]; value != "" {
				return value, nil
			}
		}
	}
	return "", nil
}
