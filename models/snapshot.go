package models

import "time"

// CaseSnapshot holds the structure for the case_snapshots collection in
// mongo, the durable mirror tier. One document per case key, replaced in
// place on every persist.
type CaseSnapshot struct {
	ID        string       `json:"_id" bson:"_id"`
	Document  CaseDocument `json:"document" bson:"document"`
	Version   int64        `json:"version" bson:"version"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}
