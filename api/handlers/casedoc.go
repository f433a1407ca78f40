package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/config"
	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/models"
)

// Case exposes the canonical case document to the form UI
type Case struct {
	Store *engine.Store
}

// FieldUpdateRequest is one debounced form-field edit. Manual defaults to
// true: values arriving here were typed by the operator.
type FieldUpdateRequest struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
	Manual  *bool  `json:"manual,omitempty"`
}

// CaseHandler returns the current document snapshot
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	doc := c.Store.Document()

	b, err := json.Marshal(doc)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateFieldHandler routes one form-field edit through the same
// accept/merge/persist/broadcast pipeline as ingestion
func (c Case) UpdateFieldHandler(w http.ResponseWriter, r *http.Request) {
	var req FieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode field update", http.StatusBadRequest, w, err)
		return
	}

	path, ok := models.FormFieldPaths[req.FieldID]
	if !ok {
		config.ErrorStatus("unknown form field", http.StatusBadRequest, w, fmt.Errorf("no document path for field id %q", req.FieldID))
		return
	}

	manual := true
	if req.Manual != nil {
		manual = *req.Manual
	}

	zap.S().Debugf("field update: %v -> %v", req.FieldID, path)

	res, err := c.Store.Apply(r.Context(), models.FieldSet{path: req.Value}, "manual_input", engine.ApplyOptions{Manual: manual})
	if err != nil {
		if errors.Is(err, engine.ErrMerge) {
			config.ErrorStatus("failed to merge field update", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to persist field update", http.StatusInternalServerError, w, err)
		return
	}

	status := http.StatusOK
	if len(res.Alerts) > 0 {
		// the one condition worth interrupting the operator for
		status = http.StatusConflict
	}

	b, err := json.Marshal(res)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	w.Write(b)
}

// AlertsHandler returns the protection alert trail
func (c Case) AlertsHandler(w http.ResponseWriter, r *http.Request) {
	alerts := c.Store.Alerts()
	if len(alerts) == 0 {
		alerts = []models.ProtectionAlert{}
	}

	b, err := json.Marshal(alerts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResetHandler discards the in-memory document and rehydrates from storage
func (c Case) ResetHandler(w http.ResponseWriter, r *http.Request) {
	doc := c.Store.Reset(r.Context())

	b, err := json.Marshal(doc)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
