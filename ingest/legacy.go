package ingest

import (
	"strconv"
	"strings"

	"github.com/caseworks/appraisal-case-api/models"
)

// directFieldPaths maps canonical and near-canonical payload keys to document
// paths. Lookup is case-insensitive; unknown keys are skipped so a payload
// with a few unrecognized extras still maps what it can.
var directFieldPaths = map[string]string{
	"plate":               models.PathPlate,
	"location":            "meta.location",
	"office_code":         "meta.office_code",
	"officecode":          "meta.office_code",
	"manufacturer":        "vehicle.manufacturer",
	"maker":               "vehicle.manufacturer",
	"model":               "vehicle.model",
	"model_type":          "vehicle.model_type",
	"modeltype":           "vehicle.model_type",
	"trim":                "vehicle.trim",
	"year":                "vehicle.year",
	"chassis":             "vehicle.chassis",
	"vin":                 "vehicle.chassis",
	"engine_volume":       "vehicle.engine_volume",
	"enginevolume":        "vehicle.engine_volume",
	"fuel_type":           "vehicle.fuel_type",
	"fueltype":            "vehicle.fuel_type",
	"drive_type":          "vehicle.drive_type",
	"drivetype":           "vehicle.drive_type",
	"transmission":        "vehicle.transmission",
	"model_code":          "vehicle.model_code",
	"modelcode":           "vehicle.model_code",
	"owner":               "stakeholders.owner.name",
	"owner_name":          "stakeholders.owner.name",
	"ownername":           "stakeholders.owner.name",
	"owner_address":       "stakeholders.owner.address",
	"owner_phone":         "stakeholders.owner.phone",
	"ownerphone":          "stakeholders.owner.phone",
	"garage":              "stakeholders.garage.name",
	"garage_name":         "stakeholders.garage.name",
	"garage_phone":        "stakeholders.garage.phone",
	"garage_email":        "stakeholders.garage.email",
	"insurance":           "stakeholders.insurance.company",
	"insurance_company":   "stakeholders.insurance.company",
	"policy_number":       "stakeholders.insurance.policy_number",
	"policynumber":        "stakeholders.insurance.policy_number",
	"agent_name":          "stakeholders.insurance.agent.name",
	"agent_phone":         "stakeholders.insurance.agent.phone",
	"agent_email":         "stakeholders.insurance.agent.email",
	"damage_date":         models.PathDamageDate,
	"damagedate":          models.PathDamageDate,
	"inspection_location": "case_info.inspection_location",
}

// legacyFieldPaths is the rename table for the deprecated flat key set still
// emitted by the licensing-registry export. Presence of any of these keys is
// what classifies a payload as LegacyFlat.
var legacyFieldPaths = map[string]string{
	"mispar_rechev": models.PathPlate,
	"tozeret_nm":    "vehicle.manufacturer",
	"kinuy_mishari": "vehicle.model",
	"degem_nm":      "vehicle.model_type",
	"ramat_gimur":   "vehicle.trim",
	"shnat_yitzur":  "vehicle.year",
	"misgeret":      "vehicle.chassis",
	"nefach_manoa":  "vehicle.engine_volume",
	"sug_delek_nm":  "vehicle.fuel_type",
	"hanaa_nm":      "vehicle.drive_type",
	"degem_cd":      "vehicle.model_code",
	"baal_rechev":   "stakeholders.owner.name",
}

// MapDirect maps a direct-object payload to document paths. Three key styles
// are accepted: flat near-canonical keys, dotted paths ("vehicle.model"), and
// nested section objects ({"vehicle": {"model": ...}}). Calculations and
// damage-center values pass through untouched; everything else is coerced to
// a trimmed string.
func MapDirect(payload map[string]interface{}) models.FieldSet {
	fields := models.FieldSet{}
	for key, value := range payload {
		lower := strings.ToLower(key)
		if nested, ok := value.(map[string]interface{}); ok && isSection(lower) {
			mapNested(fields, lower, nested)
			continue
		}
		path, ok := directFieldPaths[lower]
		if !ok {
			path = dottedPath(lower)
			if path == "" {
				continue
			}
		}
		setMapped(fields, path, value)
	}
	return fields
}

// MapLegacy renames the deprecated flat keys and maps the result.
func MapLegacy(payload map[string]interface{}) models.FieldSet {
	fields := models.FieldSet{}
	for key, value := range payload {
		path, ok := legacyFieldPaths[strings.ToLower(key)]
		if !ok {
			// mixed payloads happen; fall back to the direct table per key
			path, ok = directFieldPaths[strings.ToLower(key)]
			if !ok {
				continue
			}
		}
		setMapped(fields, path, value)
	}
	return fields
}

// dottedPath accepts an explicit document path only when it points into a
// known writable section and has no empty segments. Junk dotted keys are
// skipped like any other unknown key instead of poisoning the whole merge.
func dottedPath(key string) string {
	segs := strings.Split(key, ".")
	if len(segs) < 2 || !isSection(segs[0]) {
		return ""
	}
	for _, seg := range segs {
		if seg == "" {
			return ""
		}
	}
	return key
}

func mapNested(fields models.FieldSet, section string, m map[string]interface{}) {
	for k, v := range m {
		path := section + "." + strings.ToLower(k)
		if nested, ok := v.(map[string]interface{}); ok {
			mapNested(fields, path, nested)
			continue
		}
		setMapped(fields, path, v)
	}
}

func setMapped(fields models.FieldSet, path string, value interface{}) {
	// calculations and damage records are opaque to ingestion
	if strings.HasPrefix(path, models.SectionCalculations+".") || strings.HasPrefix(path, models.SectionDamage+".") {
		fields[path] = value
		return
	}
	s, ok := stringify(value)
	if !ok || s == "" {
		return
	}
	fields[path] = s
}

func stringify(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func isSection(name string) bool {
	switch name {
	case models.SectionMeta, models.SectionVehicle, models.SectionStakeholders,
		models.SectionCaseInfo, models.SectionDamage, models.SectionCalculations:
		return true
	}
	return false
}
