package ingest

import (
	"strings"
	"unicode"
)

// SourceKind classifies the shape of an inbound payload so the right
// extractor is used. Unrecognized shapes fall back to DirectObject with zero
// extracted fields rather than failing.
type SourceKind int

const (
	// DirectObject is a mapping whose keys already resemble canonical or
	// near-canonical field names.
	DirectObject SourceKind = iota
	// FreeText is a bilingual label: value text block.
	FreeText
	// ArrayEnvelope is a webhook array wrapper needing one level of unwrap.
	ArrayEnvelope
	// LegacyFlat is a mapping using the deprecated flat key names.
	LegacyFlat
)

func (k SourceKind) String() string {
	switch k {
	case FreeText:
		return "free_text"
	case ArrayEnvelope:
		return "array_envelope"
	case LegacyFlat:
		return "legacy_flat"
	default:
		return "direct_object"
	}
}

// Detect classifies a payload. It has no side effects and never fails; shapes
// it cannot place end up as DirectObject and simply map zero fields.
func Detect(payload interface{}) SourceKind {
	switch p := payload.(type) {
	case string:
		return FreeText
	case []interface{}:
		return ArrayEnvelope
	case map[string]interface{}:
		for k := range p {
			if _, ok := legacyFieldPaths[strings.ToLower(k)]; ok {
				return LegacyFlat
			}
		}
		if _, ok := dominantText(p); ok {
			return FreeText
		}
		return DirectObject
	default:
		return DirectObject
	}
}

// dominantText reports whether the object is really a text block in disguise:
// a single string field carrying a multi-line or Hebrew-script blob, with no
// recognizable field keys alongside it.
func dominantText(m map[string]interface{}) (string, bool) {
	var text string
	var textFields int
	for k, v := range m {
		if _, ok := directFieldPaths[strings.ToLower(k)]; ok {
			return "", false
		}
		if s, ok := v.(string); ok && (strings.Contains(s, "\n") || hasHebrew(s)) {
			text = s
			textFields++
		}
	}
	if textFields == 1 && text != "" {
		return text, true
	}
	return "", false
}

func hasHebrew(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}
