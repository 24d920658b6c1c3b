package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"landslide-backend/internal/core"
	"landslide-backend/internal/database"
	"landslide-backend/internal/dataset"
	"landslide-backend/internal/storage"
	"landslide-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const archiveKeySuffix = "archive.bin"

// BackendService exposes the model lifecycle over HTTP: train, inspect,
// predict, evaluate. Trained managers are persisted as archives in object
// storage and reconstructed per request, so no manager is ever shared
// between concurrent calls.
type BackendService struct {
	db     *gorm.DB
	store  storage.Provider
	bucket string
}

func NewBackendService(db *gorm.DB, store storage.Provider, bucket string) *BackendService {
	return &BackendService{db: db, store: store, bucket: bucket}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/models", func(r chi.Router) {
		r.Post("/", RestHandler(s.TrainModel))
		r.Get("/", RestHandler(s.ListModels))
		r.Route("/{model_id}", func(r chi.Router) {
			r.Get("/", RestHandler(s.GetModel))
			r.Delete("/", RestHandler(s.DeleteModel))
			r.Post("/predict", RestHandler(s.Predict))
			r.Post("/evaluate", RestHandler(s.Evaluate))
		})
	})
}

// TrainModel builds a manager from the requested spec, fits it, evaluates
// it on the test split and stores the archive. Training is synchronous; the
// response carries the final status and report.
func (s *BackendService) TrainModel(r *http.Request) (any, error) {
	req, err := ParseRequest[api.TrainRequest](r)
	if err != nil {
		return nil, err
	}

	kind, err := core.ParseModelKind(req.ModelKind)
	if err != nil {
		return nil, CodedError(http.StatusUnprocessableEntity, err)
	}

	ctx := r.Context()

	manager, err := core.NewManager(core.ModelSpec{
		Kind:           kind,
		DatasetPath:    req.DatasetPath,
		TargetColumn:   req.TargetColumn,
		FeatureColumns: req.FeatureColumns,
		TestFraction:   req.TestFraction,
	}, nil)
	if err != nil {
		return nil, CodedError(codeForCoreError(err), err)
	}

	features, err := json.Marshal(req.FeatureColumns)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to encode feature columns")
	}
	params, err := json.Marshal(req.Hyperparameters)
	if err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to encode hyperparameters")
	}

	record := &database.Model{
		Id:              uuid.New(),
		Name:            req.ModelName,
		Kind:            string(kind),
		Status:          database.ModelTraining,
		DatasetPath:     req.DatasetPath,
		TargetColumn:    req.TargetColumn,
		FeatureColumns:  features,
		TestFraction:    req.TestFraction,
		Hyperparameters: params,
		CreationTime:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		slog.Error("error creating model record", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to create model entry")
	}

	if err := manager.Reconfigure(req.Hyperparameters); err != nil {
		database.UpdateModelStatus(ctx, s.db, record.Id, database.ModelFailed) //nolint:errcheck
		return nil, CodedError(codeForCoreError(err), err)
	}

	report, err := manager.Evaluate(false)
	if err != nil {
		database.UpdateModelStatus(ctx, s.db, record.Id, database.ModelFailed) //nolint:errcheck
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	key := record.Id.String() + "/" + archiveKeySuffix
	var buf bytes.Buffer
	if err := manager.WriteArchive(&buf); err != nil {
		database.UpdateModelStatus(ctx, s.db, record.Id, database.ModelFailed) //nolint:errcheck
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	if err := s.store.PutObject(ctx, s.bucket, key, &buf); err != nil {
		database.UpdateModelStatus(ctx, s.db, record.Id, database.ModelFailed) //nolint:errcheck
		slog.Error("error storing model archive", "model_id", record.Id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to store model archive")
	}

	if err := database.SetModelResult(ctx, s.db, record.Id, key, report.Accuracy); err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to record training result")
	}

	slog.Info("trained model", "model_id", record.Id, "kind", kind, "accuracy", report.Accuracy)
	return api.TrainResponse{ModelId: record.Id, Status: database.ModelTrained, Report: convertReport(report)}, nil
}

func (s *BackendService) ListModels(r *http.Request) (any, error) {
	query, err := ParseRequestQueryParams[api.ListModelsQuery](r)
	if err != nil {
		return nil, err
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 100
	}

	txn := s.db.WithContext(r.Context()).Order("creation_time DESC").Limit(query.Limit).Offset(query.Offset)
	if query.Status != "" {
		txn = txn.Where("status = ?", query.Status)
	}

	var records []database.Model
	if err := txn.Find(&records).Error; err != nil {
		slog.Error("error listing models", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error listing models")
	}

	models := make([]api.Model, len(records))
	for i, record := range records {
		models[i] = convertModel(record)
	}
	return models, nil
}

func (s *BackendService) GetModel(r *http.Request) (any, error) {
	record, err := s.getModelRecord(r)
	if err != nil {
		return nil, err
	}
	return convertModel(*record), nil
}

func (s *BackendService) DeleteModel(r *http.Request) (any, error) {
	record, err := s.getModelRecord(r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	if record.ArchiveKey != "" {
		if err := s.store.DeleteObject(ctx, s.bucket, record.ArchiveKey); err != nil {
			slog.Error("error deleting model archive", "model_id", record.Id, "error", err)
			return nil, CodedErrorf(http.StatusInternalServerError, "failed to delete model archive")
		}
	}
	if err := s.db.WithContext(ctx).Delete(&database.Model{Id: record.Id}).Error; err != nil {
		slog.Error("error deleting model record", "model_id", record.Id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to delete model record")
	}
	return nil, nil
}

// Predict loads the model archive and runs the classifier over the request
// records. Records missing a feature column are a schema mismatch.
func (s *BackendService) Predict(r *http.Request) (any, error) {
	record, err := s.getModelRecord(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.PredictRequest](r)
	if err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "no records given")
	}

	manager, err := s.loadManager(r, record)
	if err != nil {
		return nil, err
	}

	frame, err := recordsToFrame(manager.Spec().FeatureColumns, req.Records)
	if err != nil {
		return nil, CodedError(http.StatusUnprocessableEntity, err)
	}

	predictions, err := manager.Predict(frame)
	if err != nil {
		return nil, CodedError(codeForCoreError(err), err)
	}
	return api.PredictResponse{Predictions: predictions}, nil
}

// Evaluate loads the model archive and returns its classification report.
// show_report, when present, must be a JSON boolean.
func (s *BackendService) Evaluate(r *http.Request) (any, error) {
	record, err := s.getModelRecord(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.EvaluateRequest](r)
	if err != nil {
		return nil, err
	}

	showReport := false
	switch v := req.ShowReport.(type) {
	case nil:
	case bool:
		showReport = v
	default:
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "%v: show_report must be a boolean, got %T", core.ErrInvalidArgumentType, v)
	}

	manager, err := s.loadManager(r, record)
	if err != nil {
		return nil, err
	}

	report, err := manager.Evaluate(showReport)
	if err != nil {
		return nil, CodedError(codeForCoreError(err), err)
	}
	return convertReport(report), nil
}

func (s *BackendService) getModelRecord(r *http.Request) (*database.Model, error) {
	modelId, err := URLParamUUID(r, "model_id")
	if err != nil {
		return nil, err
	}

	var record database.Model
	if err := s.db.WithContext(r.Context()).First(&record, "id = ?", modelId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "model not found")
		}
		slog.Error("error getting model", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving model record")
	}
	return &record, nil
}

func (s *BackendService) loadManager(r *http.Request, record *database.Model) (*core.Manager, error) {
	if record.Status != database.ModelTrained {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "model is not ready: model has status %s", record.Status)
	}
	if record.ArchiveKey == "" {
		return nil, CodedErrorf(http.StatusInternalServerError, "model archive key is missing")
	}

	blob, err := s.store.GetObject(r.Context(), s.bucket, record.ArchiveKey)
	if err != nil {
		slog.Error("error fetching model archive", "model_id", record.Id, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to fetch model archive")
	}
	manager, err := core.ReadArchive(bytes.NewReader(blob))
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return manager, nil
}

func recordsToFrame(columns []string, records []map[string]float64) (*dataset.Frame, error) {
	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			v, ok := record[col]
			if !ok {
				return nil, fmt.Errorf("%w: record %d is missing column %q", core.ErrSchemaMismatch, i, col)
			}
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		rows[i] = row
	}
	return dataset.NewFrame(columns, rows)
}

func convertModel(record database.Model) api.Model {
	model := api.Model{
		Id:           record.Id,
		Name:         record.Name,
		Kind:         record.Kind,
		Status:       record.Status,
		CreationTime: record.CreationTime,
	}
	if record.Accuracy.Valid {
		model.Accuracy = &record.Accuracy.Float64
	}
	if record.CompletionTime.Valid {
		model.CompletionTime = &record.CompletionTime.Time
	}
	return model
}

func convertReport(report core.Report) *api.Report {
	out := &api.Report{
		Classes:     make(map[string]api.ClassMetrics, len(report.PerClass)),
		Accuracy:    report.Accuracy,
		MacroAvg:    convertMetrics(report.MacroAvg),
		WeightedAvg: convertMetrics(report.WeightedAvg),
	}
	for name, m := range report.PerClass {
		out.Classes[name] = convertMetrics(m)
	}
	return out
}

func convertMetrics(m core.ClassMetrics) api.ClassMetrics {
	return api.ClassMetrics{Precision: m.Precision, Recall: m.Recall, F1Score: m.F1Score, Support: m.Support}
}

func codeForCoreError(err error) int {
	switch {
	case errors.Is(err, core.ErrDatasetNotFound), errors.Is(err, core.ErrArchiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedModelKind),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, core.ErrInvalidFeatureList),
		errors.Is(err, core.ErrInvalidTestFraction),
		errors.Is(err, core.ErrInvalidHyperparameter),
		errors.Is(err, core.ErrSchemaMismatch),
		errors.Is(err, core.ErrModelNotFitted),
		errors.Is(err, core.ErrInvalidArgumentType):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
