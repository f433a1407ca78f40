package ingest

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/models"
)

// Normalize turns an arbitrarily-shaped inbound payload into a normalized
// field set plus any unresolved value conflicts. It is the single ingestion
// front half: detection, extraction, envelope unwrapping and deduplication
// all happen here, and it never fails — malformed input degrades to an empty
// field set.
func Normalize(payload interface{}, source string) (models.FieldSet, []models.Conflict) {
	kind := Detect(payload)
	zap.S().Debugw("ingest payload detected",
		"kind", kind.String(),
		"source", source,
	)

	var records []models.FieldSet
	switch kind {
	case FreeText:
		records = append(records, Extract(freeText(payload)))
	case ArrayEnvelope:
		records = unwrapEnvelope(payload.([]interface{}))
	case LegacyFlat:
		records = append(records, MapLegacy(payload.(map[string]interface{})))
	default:
		if m, ok := payload.(map[string]interface{}); ok {
			records = append(records, MapDirect(m))
		}
	}

	fields, conflicts := Dedupe(records)
	if len(fields) == 0 {
		zap.S().Debugw("ingest produced no fields", "kind", kind.String(), "source", source)
	}
	return fields, conflicts
}

func freeText(payload interface{}) string {
	if s, ok := payload.(string); ok {
		return s
	}
	if m, ok := payload.(map[string]interface{}); ok {
		if text, ok := dominantText(m); ok {
			return text
		}
	}
	return ""
}

// unwrapEnvelope opens one level of webhook array wrapping. Each element may
// carry a JSON-encoded string or object under "value", a free-text block
// under "Body", or be a bare record; each contributes one field set and the
// dedup filter folds them.
func unwrapEnvelope(items []interface{}) []models.FieldSet {
	var records []models.FieldSet
	for _, item := range items {
		switch el := item.(type) {
		case string:
			records = append(records, Extract(el))
		case map[string]interface{}:
			records = append(records, unwrapRecord(el))
		}
	}
	return records
}

func unwrapRecord(el map[string]interface{}) models.FieldSet {
	if v, ok := el["value"]; ok {
		switch inner := v.(type) {
		case string:
			var decoded map[string]interface{}
			if err := json.Unmarshal([]byte(inner), &decoded); err == nil {
				return mapObject(decoded)
			}
			return Extract(inner)
		case map[string]interface{}:
			return mapObject(inner)
		}
	}
	for _, key := range []string{"Body", "body", "text"} {
		if s, ok := el[key].(string); ok {
			return Extract(s)
		}
	}
	return mapObject(el)
}

func mapObject(m map[string]interface{}) models.FieldSet {
	if Detect(m) == LegacyFlat {
		return MapLegacy(m)
	}
	return MapDirect(m)
}
