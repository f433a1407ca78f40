package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/models"
)

// Authorization is the outcome of running an update through the field
// protection rules: what may be merged, what was refused, and the alerts the
// refusals produced.
type Authorization struct {
	Accepted models.FieldSet
	Rejected models.FieldSet
	Alerts   []models.ProtectionAlert
}

// Guard enforces field-level protection ahead of every merge.
//
// Two fields are special. A locked plate rejects any write that is not the
// same plate modulo formatting, and every rejection is recorded as an alert —
// silent divergence on the identifying field is never acceptable. A manually
// entered damage date drops later automated writes silently; that is expected
// steady state, not an anomaly, so no alert is recorded.
type Guard struct {
	Now func() time.Time
}

func (g Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Authorize splits an update into accepted and rejected fields against the
// current document state. The document is only read, never written.
func (g Guard) Authorize(doc models.CaseDocument, update models.FieldSet, source string, manual bool) Authorization {
	auth := Authorization{
		Accepted: models.FieldSet{},
		Rejected: models.FieldSet{},
	}

	for _, path := range update.SortedPaths() {
		value := update[path]

		// engine-managed fields are never writable by any source
		if path == models.PathCaseID || strings.HasPrefix(path, models.SectionSystem+".") {
			auth.Rejected[path] = value
			continue
		}

		switch path {
		case models.PathPlate:
			g.authorizePlate(doc, value, source, &auth)
		case models.PathDamageDate:
			if doc.GetBool(models.PathDamageDateManual) && !manual {
				zap.S().Debugw("dropping automated damage date, manual entry present",
					"source", source,
				)
				auth.Rejected[path] = value
				continue
			}
			auth.Accepted[path] = value
			if manual {
				auth.Accepted[models.PathDamageDateManual] = true
			}
		default:
			auth.Accepted[path] = value
		}
	}
	return auth
}

func (g Guard) authorizePlate(doc models.CaseDocument, value interface{}, source string, auth *Authorization) {
	incoming, _ := value.(string)
	stored := doc.GetString(models.PathPlate)

	if !doc.GetBool(models.PathPlateLocked) || stored == "" {
		auth.Accepted[models.PathPlate] = value
		return
	}
	if models.NormalizePlate(incoming) == models.NormalizePlate(stored) {
		// same plate, source formatting differs; the stored form wins
		auth.Accepted[models.PathPlate] = stored
		return
	}

	auth.Rejected[models.PathPlate] = value
	alert := models.ProtectionAlert{
		ID:            uuid.New().String(),
		Field:         models.PathPlate,
		StoredValue:   stored,
		IncomingValue: incoming,
		Source:        source,
		CreatedAt:     g.now().UTC().Format(time.RFC3339),
	}
	auth.Alerts = append(auth.Alerts, alert)
	zap.S().Warnw("protected plate rejected conflicting write",
		"stored", stored,
		"incoming", incoming,
		"source", source,
	)
}
