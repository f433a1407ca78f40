package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/models"
)

func lockedDoc(plate string) models.CaseDocument {
	doc := models.NewCaseDocument()
	doc.Set(models.PathPlate, plate)
	doc.Set(models.PathPlateLocked, true)
	return doc
}

func TestGuard_LockedPlateRejectsConflict(t *testing.T) {
	g := engine.Guard{}
	doc := lockedDoc("12-345-67")

	auth := g.Authorize(doc, models.FieldSet{models.PathPlate: "99-999-99"}, "webhook", false)

	assert.Empty(t, auth.Accepted)
	assert.Equal(t, "99-999-99", auth.Rejected[models.PathPlate])
	assert.Len(t, auth.Alerts, 1)
	assert.Equal(t, models.PathPlate, auth.Alerts[0].Field)
	assert.Equal(t, "12-345-67", auth.Alerts[0].StoredValue)
	assert.Equal(t, "99-999-99", auth.Alerts[0].IncomingValue)
	assert.Equal(t, "webhook", auth.Alerts[0].Source)
}

func TestGuard_LockedPlateAcceptsNormalizedEqual(t *testing.T) {
	g := engine.Guard{}
	doc := lockedDoc("123-4567")

	auth := g.Authorize(doc, models.FieldSet{models.PathPlate: "1234567"}, "webhook", false)

	assert.Empty(t, auth.Alerts)
	assert.Equal(t, "123-4567", auth.Accepted[models.PathPlate], "stored formatting wins")
}

func TestGuard_UnlockedPlatePasses(t *testing.T) {
	g := engine.Guard{}
	doc := models.NewCaseDocument()

	auth := g.Authorize(doc, models.FieldSet{models.PathPlate: "5785269"}, "webhook", false)

	assert.Equal(t, "5785269", auth.Accepted[models.PathPlate])
	assert.Empty(t, auth.Alerts)
}

func TestGuard_UnrelatedFieldsProceedPastPlateRejection(t *testing.T) {
	g := engine.Guard{}
	doc := lockedDoc("12-345-67")

	auth := g.Authorize(doc, models.FieldSet{
		models.PathPlate: "99-999-99",
		"vehicle.model":  "Corolla",
	}, "webhook", false)

	assert.Equal(t, "Corolla", auth.Accepted["vehicle.model"])
	assert.Len(t, auth.Alerts, 1)
}

func TestGuard_ManualDamageDateBlocksAutomatedSilently(t *testing.T) {
	g := engine.Guard{}
	doc := models.NewCaseDocument()
	doc.Set(models.PathDamageDate, "2026-01-15")
	doc.Set(models.PathDamageDateManual, true)

	auth := g.Authorize(doc, models.FieldSet{models.PathDamageDate: "2026-02-01"}, "webhook", false)

	assert.Empty(t, auth.Accepted)
	assert.Equal(t, "2026-02-01", auth.Rejected[models.PathDamageDate])
	assert.Empty(t, auth.Alerts, "expected steady state, no alert")
}

func TestGuard_ManualDamageDateOverridesManual(t *testing.T) {
	g := engine.Guard{}
	doc := models.NewCaseDocument()
	doc.Set(models.PathDamageDateManual, true)

	auth := g.Authorize(doc, models.FieldSet{models.PathDamageDate: "2026-02-01"}, "manual_input", true)

	assert.Equal(t, "2026-02-01", auth.Accepted[models.PathDamageDate])
	assert.Equal(t, true, auth.Accepted[models.PathDamageDateManual])
}

func TestGuard_SystemAndDerivedFieldsNeverWritable(t *testing.T) {
	g := engine.Guard{}
	doc := models.NewCaseDocument()

	auth := g.Authorize(doc, models.FieldSet{
		models.PathCaseID: "DMG-123-2026",
		"system.version":  int64(99),
	}, "webhook", false)

	assert.Empty(t, auth.Accepted)
	assert.Len(t, auth.Rejected, 2)
}
