package models

import (
	"strings"
	"time"
)

// Section names of the canonical case document.
const (
	SectionMeta         = "meta"
	SectionVehicle      = "vehicle"
	SectionStakeholders = "stakeholders"
	SectionCaseInfo     = "case_info"
	SectionDamage       = "damage_assessment"
	SectionCalculations = "calculations"
	SectionSystem       = "system"
)

// Well-known document paths used by the protection and merge rules.
const (
	PathPlate            = "meta.plate"
	PathCaseID           = "meta.case_id"
	PathPlateLocked      = "meta.plate_locked"
	PathDamageDate       = "case_info.damage_date"
	PathDamageDateManual = "case_info.damage_date_manual"
	PathAlerts           = "system.protection_alerts"
	PathVersion          = "system.version"
	PathLastUpdated      = "system.last_updated"
)

// CaseDocument is the single canonical in-memory representation of one
// appraisal case. The nested layout mirrors the persisted JSON document, so
// values are held as generic maps rather than rigid structs; typed accessors
// below cover the fields the engine itself depends on.
type CaseDocument map[string]interface{}

// NewCaseDocument returns an empty document seeded with every section so
// readers never have to nil-check section presence.
func NewCaseDocument() CaseDocument {
	return CaseDocument{
		SectionMeta:         map[string]interface{}{},
		SectionVehicle:      map[string]interface{}{},
		SectionStakeholders: map[string]interface{}{},
		SectionCaseInfo:     map[string]interface{}{},
		SectionDamage:       map[string]interface{}{"centers": []interface{}{}},
		SectionCalculations: map[string]interface{}{},
		SectionSystem: map[string]interface{}{
			"version":           int64(0),
			"last_updated":      "",
			"protection_alerts": []interface{}{},
		},
	}
}

// Section returns the named top-level section, creating it when absent.
func (d CaseDocument) Section(name string) map[string]interface{} {
	if s, ok := d[name].(map[string]interface{}); ok {
		return s
	}
	s := map[string]interface{}{}
	d[name] = s
	return s
}

// Get resolves a dotted path. The second return is false when any segment of
// the path is missing or a non-map intermediate blocks descent.
func (d CaseDocument) Get(path string) (interface{}, bool) {
	segs := strings.Split(path, ".")
	var cur interface{} = map[string]interface{}(d)
	for _, seg := range segs {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString resolves a dotted path to a string, returning "" for missing or
// non-string values.
func (d CaseDocument) GetString(path string) string {
	v, ok := d.Get(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetBool resolves a dotted path to a bool, returning false for missing or
// non-bool values.
func (d CaseDocument) GetBool(path string) bool {
	v, ok := d.Get(path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Set writes a value at a dotted path, creating intermediate maps as needed.
// A non-map intermediate is overwritten; the engine validates paths before
// calling Set, so this only happens for corrupt hydrated snapshots.
func (d CaseDocument) Set(path string, value interface{}) {
	segs := strings.Split(path, ".")
	cur := map[string]interface{}(d)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

// Version returns the monotonic merge counter from the system section.
// JSON round trips decode numbers as float64, so both encodings are accepted.
func (d CaseDocument) Version() int64 {
	v, _ := d.Get(PathVersion)
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// BumpVersion increments the merge counter and stamps last_updated.
func (d CaseDocument) BumpVersion(now time.Time) int64 {
	next := d.Version() + 1
	d.Set(PathVersion, next)
	d.Set(PathLastUpdated, now.UTC().Format(time.RFC3339))
	return next
}

// Alerts returns the protection alert trail decoded into typed records.
func (d CaseDocument) Alerts() []ProtectionAlert {
	raw, _ := d.Get(PathAlerts)
	list, _ := raw.([]interface{})
	out := make([]ProtectionAlert, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, alertFromMap(m))
	}
	return out
}

// AppendAlert appends to the protection alert trail. The trail is append-only;
// nothing in the engine ever rewrites or removes an entry.
func (d CaseDocument) AppendAlert(a ProtectionAlert) {
	raw, _ := d.Get(PathAlerts)
	list, _ := raw.([]interface{})
	d.Set(PathAlerts, append(list, a.toMap()))
}

// Snapshot returns a deep copy safe to hand to readers while the canonical
// instance keeps being mutated behind the store's queue.
func (d CaseDocument) Snapshot() CaseDocument {
	return CaseDocument(deepCopyMap(d))
}

// Flatten walks every data section (system is excluded, it is engine-managed)
// and returns scalar leaves keyed by dotted path. Used when reconciling an
// externally written snapshot back through the merge pipeline.
func (d CaseDocument) Flatten() FieldSet {
	out := FieldSet{}
	for _, section := range []string{SectionMeta, SectionVehicle, SectionStakeholders, SectionCaseInfo, SectionDamage, SectionCalculations} {
		m, ok := d[section].(map[string]interface{})
		if !ok {
			continue
		}
		flattenInto(out, section, m)
	}
	// case_id is derived, never re-merged as input
	delete(out, PathCaseID)
	return out
}

func flattenInto(out FieldSet, prefix string, m map[string]interface{}) {
	for k, v := range m {
		path := prefix + "." + k
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = v
	}
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(t)
	case CaseDocument:
		return deepCopyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// NormalizePlate strips hyphens and whitespace and upper-cases a plate so the
// same physical plate compares equal regardless of source formatting.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range plate {
		if r == '-' || r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
