package databases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/models"
)

// PersistenceError reports a failed write to the primary tier. Failures on
// the backup and mirror tiers are downgraded to warnings since a successful
// primary write is sufficient for correctness.
type PersistenceError struct {
	Tier string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed on tier %s: %v", e.Tier, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Coordinator is the only writer of record for the case document. It mirrors
// every successful merge to an ordered list of tiers: primary (session
// scope), backup (same scope, separate key), and the durable mongo mirror. A
// lightweight timestamp marker is written next to the document so readers can
// detect staleness without deserializing the whole snapshot.
type Coordinator struct {
	primary Tier
	backup  Tier
	mirror  CaseSnapshotDatabase
	caseKey string
}

// NewCoordinator wires the tier chain for one case key.
func NewCoordinator(primary, backup Tier, mirror CaseSnapshotDatabase, caseKey string) *Coordinator {
	return &Coordinator{primary: primary, backup: backup, mirror: mirror, caseKey: caseKey}
}

// MarkerKey is where the staleness marker lives relative to the case key.
func (c *Coordinator) MarkerKey() string { return c.caseKey + ":last_updated" }

func (c *Coordinator) backupKey() string { return c.caseKey + ":backup" }

// Persist serializes the document and writes every tier. Only a primary
// failure is surfaced; the lower tiers log and move on.
func (c *Coordinator) Persist(ctx context.Context, doc models.CaseDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return &PersistenceError{Tier: c.primary.Name(), Err: err}
	}

	if err := c.primary.Put(ctx, c.caseKey, payload); err != nil {
		return &PersistenceError{Tier: c.primary.Name(), Err: err}
	}
	if err := c.primary.Put(ctx, c.MarkerKey(), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
		zap.S().Warnw("failed to write staleness marker", "error", err)
	}
	if err := c.backup.Put(ctx, c.backupKey(), payload); err != nil {
		zap.S().Warnw("backup tier write failed", "tier", c.backup.Name(), "error", err)
	}
	if err := c.mirror.Replace(ctx, models.CaseSnapshot{
		ID:        c.caseKey,
		Document:  doc.Snapshot(),
		Version:   doc.Version(),
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		zap.S().Warnw("durable mirror write failed", "error", err)
	}
	return nil
}

// Load resolves the most recent snapshot by checking tiers in priority
// order. It never fails: callers that only need a document to exist get a
// freshly seeded one when every tier misses.
func (c *Coordinator) Load(ctx context.Context) models.CaseDocument {
	if doc, ok := c.loadTier(ctx, c.primary, c.caseKey); ok {
		return doc
	}
	if doc, ok := c.loadTier(ctx, c.backup, c.backupKey()); ok {
		zap.S().Infow("primary tier empty, recovered document from backup")
		return doc
	}
	snapshot, err := c.mirror.FindOne(ctx, bson.M{"_id": c.caseKey})
	if err == nil && snapshot != nil && len(snapshot.Document) > 0 {
		if doc, ok := reencode(snapshot.Document); ok {
			zap.S().Infow("recovered document from durable mirror", "version", snapshot.Version)
			return doc
		}
	}
	zap.S().Debugw("no persisted case document found, starting empty")
	return models.NewCaseDocument()
}

// LastUpdated reads the staleness marker without touching the document.
func (c *Coordinator) LastUpdated(ctx context.Context) (time.Time, error) {
	b, err := c.primary.Get(ctx, c.MarkerKey())
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, string(b))
}

// reencode rebuilds a mirror document through JSON. bson decoding types
// arrays as primitive.A and nested maps as primitive.M, which the engine's
// []interface{} and map[string]interface{} assertions do not match; without
// the round trip a recovered alert trail reads empty and the next append
// replaces it.
func reencode(doc models.CaseDocument) (models.CaseDocument, bool) {
	b, err := json.Marshal(doc)
	if err != nil {
		zap.S().Warnw("mirror document not re-encodable", "error", err)
		return nil, false
	}
	out := models.CaseDocument{}
	if err := json.Unmarshal(b, &out); err != nil {
		zap.S().Warnw("mirror document not re-encodable", "error", err)
		return nil, false
	}
	return out, true
}

func (c *Coordinator) loadTier(ctx context.Context, tier Tier, key string) (models.CaseDocument, bool) {
	b, err := tier.Get(ctx, key)
	if err != nil {
		if err != ErrTierMiss {
			zap.S().Warnw("tier read failed", "tier", tier.Name(), "error", err)
		}
		return nil, false
	}
	doc := models.CaseDocument{}
	if err := json.Unmarshal(b, &doc); err != nil {
		zap.S().Warnw("tier held unparseable document", "tier", tier.Name(), "error", err)
		return nil, false
	}
	if len(doc) == 0 {
		return nil, false
	}
	return doc, true
}
