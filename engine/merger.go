package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caseworks/appraisal-case-api/models"
)

// ErrMerge marks malformed merge input. The merge is a no-op when returned;
// the document is never partially applied.
var ErrMerge = errors.New("malformed merge input")

// Merger applies an authorized field set to the canonical document. It is the
// only code in the process that mutates document fields.
type Merger struct {
	CaseIDPrefix string
	Now          func() time.Time
}

func (m Merger) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Merge deep-merges accepted fields into doc in place, recomputes the derived
// case identifier, and bumps the version counter. The document identity is
// preserved so observers holding the reference see the update.
func (m Merger) Merge(doc models.CaseDocument, accepted models.FieldSet, source string) (int64, error) {
	if doc == nil || accepted == nil {
		return 0, fmt.Errorf("%w: nil input", ErrMerge)
	}
	for _, path := range accepted.SortedPaths() {
		if err := validatePath(path); err != nil {
			return 0, err
		}
	}

	for _, path := range accepted.SortedPaths() {
		applyField(doc, path, accepted[path])
	}

	if plate := doc.GetString(models.PathPlate); plate != "" {
		doc.Set(models.PathCaseID, CaseID(m.CaseIDPrefix, plate, m.now().Year()))
	}

	return doc.BumpVersion(m.now()), nil
}

// CaseID derives the case identifier from a plate and calendar year. The
// identifier is never set directly; it is recomputed on every merge that
// leaves a plate in place.
func CaseID(prefix, plate string, year int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, models.NormalizePlate(plate), year)
}

func applyField(doc models.CaseDocument, path string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		existing, _ := doc.Get(path)
		if target, ok := existing.(map[string]interface{}); ok {
			mergeMaps(target, v)
			return
		}
		doc.Set(path, v)
	case []interface{}:
		// arrays only ever append
		existing, _ := doc.Get(path)
		if list, ok := existing.([]interface{}); ok {
			doc.Set(path, append(list, v...))
			return
		}
		doc.Set(path, v)
	default:
		doc.Set(path, v)
	}
}

func mergeMaps(dst, src map[string]interface{}) {
	for k, v := range src {
		if nested, ok := v.(map[string]interface{}); ok {
			if target, ok := dst[k].(map[string]interface{}); ok {
				mergeMaps(target, nested)
				continue
			}
		}
		if incoming, ok := v.([]interface{}); ok {
			if list, ok := dst[k].([]interface{}); ok {
				dst[k] = append(list, incoming...)
				continue
			}
		}
		dst[k] = v
	}
}

func validatePath(path string) error {
	segs := strings.Split(path, ".")
	if len(segs) < 2 {
		return fmt.Errorf("%w: path %q has no section", ErrMerge, path)
	}
	for _, seg := range segs {
		if seg == "" {
			return fmt.Errorf("%w: path %q has an empty segment", ErrMerge, path)
		}
	}
	switch segs[0] {
	case models.SectionMeta, models.SectionVehicle, models.SectionStakeholders,
		models.SectionCaseInfo, models.SectionDamage, models.SectionCalculations:
		return nil
	}
	return fmt.Errorf("%w: unknown section in path %q", ErrMerge, path)
}
