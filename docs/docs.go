// Package docs Caseworks Appraisal Case API.
//
// Documentation of the appraisal case synchronization API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/caseworks/appraisal-case-api/api/handlers"
	"github.com/caseworks/appraisal-case-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/case case caseDocument
// Returns the current canonical case document snapshot.
// responses:
//   200: caseDocumentResponse

// The full case document, sectioned and versioned.
// swagger:response caseDocumentResponse
type caseDocumentResponseWrapper struct {
	// in:body
	Body models.CaseDocument
}

// swagger:route POST /api/v1/case/ingest ingest ingestPayload
// Normalizes and merges one inbound payload from a producer system.
// responses:
//   200: ingestResponse
//   409: ingestResponse

// The merge outcome: counters, changed sections and any protection alerts.
// swagger:response ingestResponse
type ingestResponseWrapper struct {
	// in:body
	Body handlers.IngestResponse
}

// swagger:route GET /api/v1/case/alerts case caseAlerts
// Returns the append-only protection alert trail.
// responses:
//   200: caseAlertsResponse

// Every conflicting write a locked field has rejected.
// swagger:response caseAlertsResponse
type caseAlertsResponseWrapper struct {
	// in:body
	Body []models.ProtectionAlert
}
