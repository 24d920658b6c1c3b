package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateModelStatus moves a registry row to status, stamping the completion
// time on terminal states.
func UpdateModelStatus(ctx context.Context, txn *gorm.DB, modelId uuid.UUID, status string) error {
	updates := map[string]any{"status": status}
	if status == ModelTrained || status == ModelFailed {
		updates["completion_time"] = time.Now().UTC()
	}

	if err := txn.WithContext(ctx).Model(&Model{Id: modelId}).Updates(updates).Error; err != nil {
		slog.Error("error updating model status", "model_id", modelId, "status", status, "error", err)
		return err
	}
	return nil
}

// SetModelResult records the archive location and test accuracy of a
// trained model and marks it TRAINED.
func SetModelResult(ctx context.Context, txn *gorm.DB, modelId uuid.UUID, archiveKey string, accuracy float64) error {
	updates := map[string]any{
		"status":          ModelTrained,
		"archive_key":     archiveKey,
		"accuracy":        accuracy,
		"completion_time": time.Now().UTC(),
	}
	if err := txn.WithContext(ctx).Model(&Model{Id: modelId}).Updates(updates).Error; err != nil {
		slog.Error("error recording model result", "model_id", modelId, "error", err)
		return err
	}
	return nil
}
