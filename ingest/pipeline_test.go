package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caseworks/appraisal-case-api/ingest"
)

func TestNormalize_DirectObject(t *testing.T) {
	fields, conflicts := ingest.Normalize(map[string]interface{}{
		"plate":        "5785269",
		"manufacturer": "Toyota",
		"year":         float64(2020),
		"unknownKey":   "ignored",
	}, "webhook")

	assert.Empty(t, conflicts)
	assert.Equal(t, "5785269", fields["meta.plate"])
	assert.Equal(t, "Toyota", fields["vehicle.manufacturer"])
	assert.Equal(t, "2020", fields["vehicle.year"])
	assert.NotContains(t, fields, "unknownKey")
}

func TestNormalize_JunkDottedKeySkipped(t *testing.T) {
	fields, conflicts := ingest.Normalize(map[string]interface{}{
		"model":         "Corolla",
		"foo.bar":       "junk",
		"vehicle.":      "junk",
		"vehicle.color": "silver",
	}, "webhook")

	assert.Empty(t, conflicts)
	assert.Equal(t, "Corolla", fields["vehicle.model"])
	assert.Equal(t, "silver", fields["vehicle.color"])
	assert.NotContains(t, fields, "foo.bar")
	assert.NotContains(t, fields, "vehicle.")
}

func TestNormalize_NestedSections(t *testing.T) {
	fields, _ := ingest.Normalize(map[string]interface{}{
		"vehicle": map[string]interface{}{"model": "Corolla"},
		"stakeholders": map[string]interface{}{
			"owner": map[string]interface{}{"phone": "050-1234567"},
		},
	}, "webhook")

	assert.Equal(t, "Corolla", fields["vehicle.model"])
	assert.Equal(t, "050-1234567", fields["stakeholders.owner.phone"])
}

func TestNormalize_ArrayEnvelopeWithJSONValue(t *testing.T) {
	payload := []interface{}{
		map[string]interface{}{"value": `{"plate":"71818601","model":"LUCERNE"}`},
		map[string]interface{}{"value": `{"plate":"71818601 71818601","model":"COROLLA"}`},
	}
	fields, conflicts := ingest.Normalize(payload, "webhook")

	assert.Equal(t, "71818601", fields["meta.plate"])
	assert.Equal(t, "LUCERNE", fields["vehicle.model"])
	assert.Len(t, conflicts, 1)
	assert.Equal(t, "COROLLA", conflicts[0].Discarded)
}

func TestNormalize_ArrayEnvelopeWithBodyText(t *testing.T) {
	payload := []interface{}{
		map[string]interface{}{"Body": "manufacturer: Toyota\nmodel: Corolla\n"},
	}
	fields, conflicts := ingest.Normalize(payload, "webhook")

	assert.Empty(t, conflicts)
	assert.Equal(t, "Toyota", fields["vehicle.manufacturer"])
	assert.Equal(t, "Corolla", fields["vehicle.model"])
}

func TestNormalize_LegacyFlat(t *testing.T) {
	fields, _ := ingest.Normalize(map[string]interface{}{
		"mispar_rechev": "5785269",
		"tozeret_nm":    "TOYOTA",
		"shnat_yitzur":  float64(2018),
		"misgeret":      "JTD1234567",
	}, "legacy_export")

	assert.Equal(t, "5785269", fields["meta.plate"])
	assert.Equal(t, "TOYOTA", fields["vehicle.manufacturer"])
	assert.Equal(t, "2018", fields["vehicle.year"])
	assert.Equal(t, "JTD1234567", fields["vehicle.chassis"])
}

func TestNormalize_MalformedPayloadDegradesToEmpty(t *testing.T) {
	fields, conflicts := ingest.Normalize(3.14, "webhook")
	assert.Empty(t, fields)
	assert.Empty(t, conflicts)
}

func TestNormalize_IsIdempotentOnFields(t *testing.T) {
	payload := map[string]interface{}{"plate": "5785269", "model": "Corolla"}
	first, _ := ingest.Normalize(payload, "webhook")
	second, _ := ingest.Normalize(payload, "webhook")
	assert.Equal(t, first, second)
}
