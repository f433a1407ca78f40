package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/models"
)

var fixedNow = func() time.Time {
	return time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
}

func TestMerger_ScalarMergeAndVersionBump(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()

	version, err := m.Merge(doc, models.FieldSet{"vehicle.model": "Corolla"}, "webhook")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "Corolla", doc.GetString("vehicle.model"))
	assert.Equal(t, "2026-03-14T10:30:00Z", doc.GetString(models.PathLastUpdated))
}

func TestMerger_CaseIDDerivation(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()

	_, err := m.Merge(doc, models.FieldSet{models.PathPlate: "5785269"}, "webhook")

	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("DMG-5785269-%d", 2026), doc.GetString(models.PathCaseID))
}

func TestMerger_CaseIDRecomputedOnPlateChange(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()

	_, _ = m.Merge(doc, models.FieldSet{models.PathPlate: "5785269"}, "webhook")
	_, _ = m.Merge(doc, models.FieldSet{models.PathPlate: "71-818-601"}, "manual_input")

	assert.Equal(t, "DMG-71818601-2026", doc.GetString(models.PathCaseID))
}

func TestMerger_DeepMergePerLeaf(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()

	_, _ = m.Merge(doc, models.FieldSet{"stakeholders.owner.name": "דוד לוי"}, "webhook")
	_, _ = m.Merge(doc, models.FieldSet{"stakeholders.owner.phone": "050-1234567"}, "manual_input")

	assert.Equal(t, "דוד לוי", doc.GetString("stakeholders.owner.name"))
	assert.Equal(t, "050-1234567", doc.GetString("stakeholders.owner.phone"))
}

func TestMerger_ArraysAppend(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()

	_, _ = m.Merge(doc, models.FieldSet{"damage_assessment.centers": []interface{}{map[string]interface{}{"part": "front bumper"}}}, "webhook")
	_, _ = m.Merge(doc, models.FieldSet{"damage_assessment.centers": []interface{}{map[string]interface{}{"part": "left door"}}}, "webhook")

	centers, ok := doc.Get("damage_assessment.centers")
	assert.True(t, ok)
	assert.Len(t, centers, 2)
}

func TestMerger_MalformedInputIsNoOp(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	doc := models.NewCaseDocument()
	_, _ = m.Merge(doc, models.FieldSet{"vehicle.model": "Corolla"}, "webhook")

	_, err := m.Merge(doc, models.FieldSet{
		"vehicle.year":   "2020",
		"nosection":      "x",
		"bogus..segment": "y",
	}, "webhook")

	assert.ErrorIs(t, err, engine.ErrMerge)
	assert.Equal(t, int64(1), doc.Version(), "document unchanged on MergeError")
	_, present := doc.Get("vehicle.year")
	assert.False(t, present)
}

func TestMerger_NilInput(t *testing.T) {
	m := engine.Merger{CaseIDPrefix: "DMG", Now: fixedNow}
	_, err := m.Merge(models.NewCaseDocument(), nil, "webhook")
	assert.ErrorIs(t, err, engine.ErrMerge)
}

func TestCaseID_Format(t *testing.T) {
	assert.Equal(t, "DMG-1234567-2026", engine.CaseID("DMG", "123-45 67", 2026))
}
