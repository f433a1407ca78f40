package ingest

import (
	"regexp"
	"strings"

	"github.com/caseworks/appraisal-case-api/models"
)

// labelPattern binds one labeled line of a free-text block to a document
// path. Patterns are tried in order and the first match in the text wins;
// repeated labels later in the block are ignored.
type labelPattern struct {
	re   *regexp.Regexp
	path string
}

// line matches "<label>: <value>" at the start of a line, tolerating the
// full-width colon some upstream systems emit.
func line(labels, path string) labelPattern {
	return labelPattern{
		re:   regexp.MustCompile(`(?mi)^[ \t]*(?:` + labels + `)[ \t]*[:：][ \t]*(.+)$`),
		path: path,
	}
}

// The label set is static: these are the lines the licensing-office and
// garage intake blocks actually contain, in Hebrew with the English variants
// some producers use. Specific labels come before the generic ones they
// contain (model type before model, chassis number before chassis).
var labelPatterns = []labelPattern{
	line(`מספר רישוי|מס' רישוי|license plate|plate`, models.PathPlate),
	line(`שם היצרן|שם יצרן|manufacturer name|manufacturer`, "vehicle.manufacturer"),
	line(`סוג דגם|model type`, "vehicle.model_type"),
	line(`קוד דגם|model code`, "vehicle.model_code"),
	line(`דגם|model`, "vehicle.model"),
	line(`רמת גימור|trim level|trim`, "vehicle.trim"),
	line(`שנת ייצור|עליה לכביש|year of manufacture|year`, "vehicle.year"),
	line(`מספר שלדה|שלדה|chassis number|chassis|vin`, "vehicle.chassis"),
	line(`נפח מנוע|engine volume|engine`, "vehicle.engine_volume"),
	line(`סוג דלק|fuel type|fuel`, "vehicle.fuel_type"),
	line(`הנעה|drive type|drive`, "vehicle.drive_type"),
	line(`תיבת הילוכים|transmission`, "vehicle.transmission"),
	line(`שם בעל הרכב|בעלים|owner name|owner`, "stakeholders.owner.name"),
	line(`כתובת|address`, "stakeholders.owner.address"),
	line(`טלפון מוסך|garage phone`, "stakeholders.garage.phone"),
	line(`מוסך|garage`, "stakeholders.garage.name"),
	line(`טלפון|phone`, "stakeholders.owner.phone"),
	line(`חברת ביטוח|insurance company|insurance`, "stakeholders.insurance.company"),
	line(`מספר פוליסה|policy number|policy`, "stakeholders.insurance.policy_number"),
	line(`שם סוכן|agent name|agent`, "stakeholders.insurance.agent.name"),
	line(`תאריך נזק|תאריך התאונה|damage date|accident date`, models.PathDamageDate),
	line(`מקום בדיקה|inspection location`, "case_info.inspection_location"),
	line(`מיקום|location`, "meta.location"),
	line(`קוד משרד|office code|office`, "meta.office_code"),
}

// yearFields carry a trailing slash-delimited date fragment in some intake
// blocks ("עליה לכביש: 05/2019"); the final segment is the year.
var yearFields = map[string]bool{
	"vehicle.year": true,
}

// Extract pulls labeled fields out of a free-text block. Extraction is
// best-effort: a block matching none of the label patterns yields an empty
// field set, never an error.
func Extract(text string) models.FieldSet {
	fields := models.FieldSet{}
	for _, lp := range labelPatterns {
		if _, done := fields[lp.path]; done {
			continue
		}
		m := lp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		if yearFields[lp.path] {
			if i := strings.LastIndex(value, "/"); i >= 0 {
				value = strings.TrimSpace(value[i+1:])
			}
		}
		fields[lp.path] = value
	}
	return fields
}
