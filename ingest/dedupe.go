package ingest

import (
	"strings"

	"github.com/caseworks/appraisal-case-api/models"
)

// CollapseRepeats collapses a value made of the same token sequence repeated
// with only whitespace between repetitions ("71818601 71818601" ->
// "71818601"). Multi-record webhook arrays concatenate this way when the same
// record arrives twice in one envelope. Values that are not a clean
// repetition are returned unchanged.
func CollapseRepeats(value string) string {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return strings.TrimSpace(value)
	}
	for unit := 1; unit <= len(tokens)/2; unit++ {
		if len(tokens)%unit != 0 {
			continue
		}
		if !repeatsOf(tokens, unit) {
			continue
		}
		head := strings.Join(tokens[:unit], " ")
		// single-character units are too trivial to call a defect
		if len(head) > 1 {
			return head
		}
	}
	return strings.Join(tokens, " ")
}

func repeatsOf(tokens []string, unit int) bool {
	for i := unit; i < len(tokens); i++ {
		if tokens[i] != tokens[i%unit] {
			return false
		}
	}
	return true
}

// Dedupe folds the field sets produced by a multi-record envelope into one.
// The policy is earliest-wins, deliberately the inverse of the usual merge
// direction, because observed corruption appends to later records rather than
// prepending:
//
//  1. the first non-empty value for a field is kept
//  2. a later value containing the kept value as a substring is discarded as
//     concatenation corruption, without a conflict
//  3. a later unrelated non-empty value is recorded as a conflict for
//     operator review, and the first value stays the working value
func Dedupe(records []models.FieldSet) (models.FieldSet, []models.Conflict) {
	merged := models.FieldSet{}
	var conflicts []models.Conflict
	for _, rec := range records {
		for _, path := range rec.SortedPaths() {
			raw := rec[path]
			s, isString := raw.(string)
			if isString {
				s = CollapseRepeats(s)
				if s == "" {
					continue
				}
				raw = s
			}
			existing, seen := merged[path]
			if !seen {
				merged[path] = raw
				continue
			}
			prev, prevIsString := existing.(string)
			if !isString || !prevIsString {
				continue // opaque values: first record wins outright
			}
			if s == prev {
				continue
			}
			if strings.Contains(s, prev) {
				continue // corrupted superstring, drop it
			}
			conflicts = append(conflicts, models.Conflict{Field: path, Kept: prev, Discarded: s})
		}
	}
	return merged, conflicts
}
