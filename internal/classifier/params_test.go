package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForestParams(t *testing.T) {
	rf, err := NewRandomForest(map[string]any{
		"n_estimators": 50,
		"max_depth":    float64(10), // JSON numbers arrive as float64
		"bootstrap":    false,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, rf.NEstimators)
	assert.Equal(t, 10, rf.MaxDepth)
	assert.False(t, rf.Bootstrap)
	assert.Equal(t, 2, rf.MinSamplesSplit) // default untouched
}

func TestUnknownParamsRejectedAtomically(t *testing.T) {
	_, err := NewRandomForest(map[string]any{
		"n_estimators": 50,
		"bogus_param":  1,
		"also_bogus":   2,
	})
	require.Error(t, err)

	var unknownErr *UnknownParamsError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []string{"also_bogus", "bogus_param"}, unknownErr.Names)
	assert.Contains(t, err.Error(), "bogus_param")
	assert.Contains(t, err.Error(), "also_bogus")
}

func TestParamTypeValidation(t *testing.T) {
	_, err := NewRandomForest(map[string]any{"n_estimators": "many"})
	assert.ErrorContains(t, err, "n_estimators")

	_, err = NewRandomForest(map[string]any{"max_depth": 2.5})
	assert.ErrorContains(t, err, "expected integer")

	_, err = NewRandomForest(map[string]any{"bootstrap": 1})
	assert.ErrorContains(t, err, "expected boolean")

	_, err = NewRandomForest(map[string]any{"n_estimators": 0})
	assert.ErrorContains(t, err, "must be positive")
}

func TestSVMParams(t *testing.T) {
	svm, err := NewSVM(map[string]any{"c": 10, "max_iter": 200})
	require.NoError(t, err)
	assert.Equal(t, 10.0, svm.C)
	assert.Equal(t, 200, svm.MaxIter)

	_, err = NewSVM(map[string]any{"c": -1})
	assert.ErrorContains(t, err, "must be positive")

	_, err = NewSVM(map[string]any{"n_estimators": 10})
	var unknownErr *UnknownParamsError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestGBMParams(t *testing.T) {
	gbm, err := NewGBM(map[string]any{"n_estimators": 20, "learning_rate": 0.05, "subsample": 0.8})
	require.NoError(t, err)
	assert.Equal(t, 20, gbm.NEstimators)
	assert.Equal(t, 0.05, gbm.LearningRate)
	assert.Equal(t, 0.8, gbm.Subsample)

	_, err = NewGBM(map[string]any{"subsample": 1.5})
	assert.ErrorContains(t, err, "subsample")
}
