package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanArchive stores metadata about an accepted plan snapshot.
// The JSON document itself resides in S3.
type PlanArchive struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	SessionID   primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Date        string             `bson:"date" json:"date"`
	RunID       string             `bson:"runId" json:"runId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // internal use
	Size        int64              `bson:"size" json:"size"`
	ArchivedAt  time.Time          `bson:"archivedAt" json:"archivedAt"`
}
