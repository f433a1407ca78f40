package databases

//go generate: mockery --name CaseSnapshotDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caseworks/appraisal-case-api/models"
)

const caseSnapshotName = "case_snapshots"

// CaseSnapshotDatabase contains the methods to use with the case snapshot
// database, the durable mirror tier of the persistence coordinator.
type CaseSnapshotDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.CaseSnapshot, error)
	Replace(ctx context.Context, snapshot models.CaseSnapshot) error
}

type caseSnapshotDatabase struct {
	db DatabaseHelper
}

// NewCaseSnapshotDatabase initializes a new instance of case snapshot database with the provided db connection
func NewCaseSnapshotDatabase(db DatabaseHelper) CaseSnapshotDatabase {
	return &caseSnapshotDatabase{
		db: db,
	}
}

func (c *caseSnapshotDatabase) FindOne(ctx context.Context, filter interface{}) (*models.CaseSnapshot, error) {
	snapshot := &models.CaseSnapshot{}
	err := c.db.Collection(caseSnapshotName).FindOne(ctx, filter).Decode(&snapshot)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *caseSnapshotDatabase) Replace(ctx context.Context, snapshot models.CaseSnapshot) error {
	upsert := true
	return c.db.Collection(caseSnapshotName).ReplaceOne(ctx,
		bson.M{"_id": snapshot.ID},
		snapshot,
		&options.ReplaceOptions{Upsert: &upsert},
	)
}
