package api

import (
	"time"

	"github.com/google/uuid"
)

// TrainRequest describes a model to train: the dataset spec plus the
// hyperparameters forwarded to the classifier.
type TrainRequest struct {
	ModelName       string         `json:"model_name"`
	ModelKind       string         `json:"model_kind"`
	DatasetPath     string         `json:"dataset_path"`
	TargetColumn    string         `json:"target_column"`
	FeatureColumns  []string       `json:"feature_columns"`
	TestFraction    float64        `json:"test_fraction"`
	Hyperparameters map[string]any `json:"hyperparameters"`
}

type TrainResponse struct {
	ModelId uuid.UUID `json:"model_id"`
	Status  string    `json:"status"`
	Report  *Report   `json:"report,omitempty"`
}

type Model struct {
	Id             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	Accuracy       *float64   `json:"accuracy,omitempty"`
	CreationTime   time.Time  `json:"creation_time"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
}

// ListModelsQuery is decoded from the query string of GET /models.
type ListModelsQuery struct {
	Status string `schema:"status"`
	Limit  int    `schema:"limit"`
	Offset int    `schema:"offset"`
}

// PredictRequest carries external feature records; every record must hold a
// numeric value for each feature column the model was trained on.
type PredictRequest struct {
	Records []map[string]float64 `json:"records"`
}

type PredictResponse struct {
	Predictions []string `json:"predictions"`
}

// EvaluateRequest's show_report must be a JSON boolean when present; any
// other type is rejected.
type EvaluateRequest struct {
	ShowReport any `json:"show_report"`
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

type Report struct {
	Classes     map[string]ClassMetrics `json:"classes"`
	Accuracy    float64                 `json:"accuracy"`
	MacroAvg    ClassMetrics            `json:"macro_avg"`
	WeightedAvg ClassMetrics            `json:"weighted_avg"`
}
