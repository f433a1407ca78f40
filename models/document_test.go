package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseworks/appraisal-case-api/models"
)

func TestNewCaseDocumentSeedsSections(t *testing.T) {
	doc := models.NewCaseDocument()

	for _, section := range []string{
		models.SectionMeta, models.SectionVehicle, models.SectionStakeholders,
		models.SectionCaseInfo, models.SectionDamage, models.SectionCalculations,
		models.SectionSystem,
	} {
		_, ok := doc[section].(map[string]interface{})
		assert.True(t, ok, "section %s missing", section)
	}
	assert.Equal(t, int64(0), doc.Version())
	assert.Empty(t, doc.Alerts())
}

func TestCaseDocument_GetSet(t *testing.T) {
	doc := models.NewCaseDocument()

	doc.Set("stakeholders.insurance.agent.name", "Dana")
	assert.Equal(t, "Dana", doc.GetString("stakeholders.insurance.agent.name"))

	_, ok := doc.Get("stakeholders.insurance.agent.phone")
	assert.False(t, ok)

	// a scalar intermediate blocks descent instead of panicking
	doc.Set("vehicle.model", "Corolla")
	_, ok = doc.Get("vehicle.model.trim")
	assert.False(t, ok)

	assert.Equal(t, "", doc.GetString("vehicle.year"))
	assert.False(t, doc.GetBool(models.PathPlateLocked))
}

func TestCaseDocument_VersionRoundTrip(t *testing.T) {
	doc := models.NewCaseDocument()
	doc.BumpVersion(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	doc.BumpVersion(time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(2), doc.Version())
	assert.Equal(t, "2026-03-14T11:00:00Z", doc.GetString(models.PathLastUpdated))

	// JSON decoding turns the counter into a float64; Version must still read it
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	decoded := models.CaseDocument{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, int64(2), decoded.Version())
}

func TestCaseDocument_AlertTrail(t *testing.T) {
	doc := models.NewCaseDocument()

	doc.AppendAlert(models.ProtectionAlert{ID: "a1", Field: models.PathPlate, StoredValue: "12-345-67", IncomingValue: "99-999-99", Source: "registry_export", CreatedAt: "2026-03-14T10:00:00Z"})
	doc.AppendAlert(models.ProtectionAlert{ID: "a2", Field: models.PathPlate, StoredValue: "12-345-67", IncomingValue: "88-888-88", Source: "webhook", CreatedAt: "2026-03-14T11:00:00Z"})

	alerts := doc.Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, "a1", alerts[0].ID)
	assert.Equal(t, "99-999-99", alerts[0].IncomingValue)
	assert.Equal(t, "a2", alerts[1].ID)

	// the trail survives a JSON round trip
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	decoded := models.CaseDocument{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, alerts, decoded.Alerts())
}

func TestCaseDocument_SnapshotIsDeepCopy(t *testing.T) {
	doc := models.NewCaseDocument()
	doc.Set("vehicle.model", "Corolla")
	doc.Set("damage_assessment.centers", []interface{}{map[string]interface{}{"part": "bumper"}})

	snap := doc.Snapshot()
	snap.Set("vehicle.model", "Camry")
	centers, _ := snap.Get("damage_assessment.centers")
	centers.([]interface{})[0].(map[string]interface{})["part"] = "hood"

	assert.Equal(t, "Corolla", doc.GetString("vehicle.model"))
	orig, _ := doc.Get("damage_assessment.centers")
	assert.Equal(t, "bumper", orig.([]interface{})[0].(map[string]interface{})["part"])
}

func TestCaseDocument_Flatten(t *testing.T) {
	doc := models.NewCaseDocument()
	doc.Set(models.PathPlate, "12-345-67")
	doc.Set(models.PathCaseID, "DMG-1234567-2026")
	doc.Set("stakeholders.owner.phone", "050-1234567")
	doc.BumpVersion(time.Now())

	flat := doc.Flatten()

	assert.Equal(t, "12-345-67", flat[models.PathPlate])
	assert.Equal(t, "050-1234567", flat["stakeholders.owner.phone"])

	// derived and engine-managed fields never re-enter the merge pipeline
	_, hasCaseID := flat[models.PathCaseID]
	assert.False(t, hasCaseID)
	_, hasVersion := flat[models.PathVersion]
	assert.False(t, hasVersion)
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "1234567", models.NormalizePlate("12-345-67"))
	assert.Equal(t, "1234567", models.NormalizePlate("12 345 67"))
	assert.Equal(t, "ABC123", models.NormalizePlate("abc-123"))
	assert.Equal(t, "", models.NormalizePlate(" - "))
}
