package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/config"
	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/ingest"
	"github.com/caseworks/appraisal-case-api/models"
)

// Ingest accepts case payloads from webhook producers in any supported shape
type Ingest struct {
	Store *engine.Store
}

// IngestResponse reports the merge outcome plus any value conflicts the
// dedup filter could not resolve.
type IngestResponse struct {
	engine.ApplyResult
	Conflicts []models.Conflict `json:"conflicts,omitempty"`
	Dropped   bool              `json:"dropped,omitempty"`
}

// IngestHandler normalizes and merges one inbound payload. The body may be
// JSON in any accepted shape or a raw free-text block; query parameters
// naming canonical fields ride along as a direct object.
func (i Ingest) IngestHandler(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "webhook"
	}

	var baseVersion int64
	if h := r.Header.Get("If-Match-Version"); h != "" {
		v, err := strconv.ParseInt(h, 10, 64)
		if err != nil {
			config.ErrorStatus("invalid If-Match-Version header", http.StatusBadRequest, w, err)
			return
		}
		baseVersion = v
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		config.ErrorStatus("failed to read request body", http.StatusBadRequest, w, err)
		return
	}

	var payload interface{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		payload = string(body)
	} else if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			// malformed input is the expected common case; treat it as text
			zap.S().Debugf("ingest body is not JSON, treating as free text: %v", err)
			payload = string(body)
		}
	}

	fields, conflicts := ingest.Normalize(payload, source)
	mergeQueryFields(fields, r, source)

	res, err := i.Store.Apply(r.Context(), fields, source, engine.ApplyOptions{BaseVersion: baseVersion})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrStaleWrite):
			writeJSON(w, http.StatusOK, IngestResponse{ApplyResult: res, Dropped: true})
		case errors.Is(err, engine.ErrMerge):
			config.ErrorStatus("failed to merge payload", http.StatusBadRequest, w, err)
		default:
			config.ErrorStatus("failed to persist case document", http.StatusInternalServerError, w, err)
		}
		return
	}

	status := http.StatusOK
	if len(res.Alerts) > 0 {
		status = http.StatusConflict
	}
	writeJSON(w, status, IngestResponse{ApplyResult: res, Conflicts: conflicts})
}

// mergeQueryFields is the URL-parameter ingestion path: ?plate=...&model=...
// adds fields the body did not already provide.
func mergeQueryFields(fields models.FieldSet, r *http.Request, source string) {
	params := map[string]interface{}{}
	for key, values := range r.URL.Query() {
		if key == "source" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	if len(params) == 0 {
		return
	}
	extra, _ := ingest.Normalize(params, source)
	for path, value := range extra {
		if _, ok := fields[path]; !ok {
			fields[path] = value
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	w.Write(b)
}
