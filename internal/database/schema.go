package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ModelQueued   string = "QUEUED"
	ModelTraining string = "TRAINING"
	ModelTrained  string = "TRAINED"
	ModelFailed   string = "FAILED"
)

// Model is the registry row for one trained susceptibility model. The
// archive blob itself lives in object storage; the row carries the spec the
// model was built from and a summary metric.
type Model struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name   string
	Kind   string `gorm:"size:20;not null"`
	Status string `gorm:"size:20;not null"`

	DatasetPath     string
	TargetColumn    string
	FeatureColumns  datatypes.JSON
	TestFraction    float64
	Hyperparameters datatypes.JSON

	ArchiveKey string

	Accuracy sql.NullFloat64

	CreationTime   time.Time
	CompletionTime sql.NullTime
}
