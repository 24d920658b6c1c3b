package core_test

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landslide-backend/internal/core"
	"landslide-backend/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var featureColumns = []string{"tree_cover_density", "alti", "slope", "clay"}

// writeTrainingCSV produces a small separable susceptibility dataset: steep
// high-altitude clay-rich cells labelled landslide, flat forested cells
// labelled stable.
func writeTrainingCSV(t *testing.T) string {
	t.Helper()
	rng := rand.New(rand.NewSource(9))
	var b strings.Builder
	b.WriteString("tree_cover_density,alti,slope,clay,label\n")
	for i := 0; i < 120; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%.3f,%.3f,%.3f,%.3f,landslide\n",
				10+rng.NormFloat64()*2, 900+rng.NormFloat64()*20, 35+rng.NormFloat64()*2, 40+rng.NormFloat64()*2)
		} else {
			fmt.Fprintf(&b, "%.3f,%.3f,%.3f,%.3f,stable\n",
				80+rng.NormFloat64()*2, 300+rng.NormFloat64()*20, 8+rng.NormFloat64()*2, 15+rng.NormFloat64()*2)
		}
	}

	path := filepath.Join(t.TempDir(), "training.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func validSpec(t *testing.T) core.ModelSpec {
	return core.ModelSpec{
		Kind:           core.RandomForest,
		DatasetPath:    writeTrainingCSV(t),
		TargetColumn:   "label",
		FeatureColumns: featureColumns,
		TestFraction:   0.2,
	}
}

func TestNewManagerValidation(t *testing.T) {
	base := validSpec(t)

	tests := []struct {
		name   string
		mutate func(*core.ModelSpec)
		want   error
	}{
		{
			name:   "unsupported kind",
			mutate: func(s *core.ModelSpec) { s.Kind = "DecisionTree" },
			want:   core.ErrUnsupportedModelKind,
		},
		{
			name:   "missing dataset",
			mutate: func(s *core.ModelSpec) { s.DatasetPath = filepath.Join(t.TempDir(), "nope.csv") },
			want:   core.ErrDatasetNotFound,
		},
		{
			name:   "invalid target name",
			mutate: func(s *core.ModelSpec) { s.TargetColumn = "bad column" },
			want:   core.ErrInvalidTarget,
		},
		{
			name:   "empty feature list",
			mutate: func(s *core.ModelSpec) { s.FeatureColumns = nil },
			want:   core.ErrInvalidFeatureList,
		},
		{
			name:   "duplicate feature",
			mutate: func(s *core.ModelSpec) { s.FeatureColumns = []string{"alti", "alti"} },
			want:   core.ErrInvalidFeatureList,
		},
		{
			name:   "test fraction too large",
			mutate: func(s *core.ModelSpec) { s.TestFraction = 1.0 },
			want:   core.ErrInvalidTestFraction,
		},
		{
			name:   "test fraction zero",
			mutate: func(s *core.ModelSpec) { s.TestFraction = 0 },
			want:   core.ErrInvalidTestFraction,
		},
		{
			name:   "feature missing from dataset",
			mutate: func(s *core.ModelSpec) { s.FeatureColumns = []string{"alti", "aspect"} },
			want:   core.ErrSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			tt.mutate(&spec)
			_, err := core.NewManager(spec, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewManagerSplitsDataset(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)

	assert.Equal(t, 120, manager.TrainSize()+manager.TestSize())
	assert.Equal(t, 24, manager.TestSize())
	assert.Equal(t, []string{"landslide", "stable"}, manager.Classes())
	assert.False(t, manager.Fitted())
}

func TestNewManagerRejectsBadInitialParams(t *testing.T) {
	_, err := core.NewManager(validSpec(t), map[string]any{"n_trees": 10})
	assert.ErrorIs(t, err, core.ErrInvalidHyperparameter)
	assert.ErrorContains(t, err, "n_trees")
}

func TestReconfigureAndEvaluate(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)

	require.NoError(t, manager.Reconfigure(map[string]any{"n_estimators": 100, "max_depth": 10}))
	assert.True(t, manager.Fitted())
	assert.Equal(t, 100, manager.Params()["n_estimators"])

	report, err := manager.Evaluate(false)
	require.NoError(t, err)
	assert.Contains(t, report.PerClass, "landslide")
	assert.Contains(t, report.PerClass, "stable")
	assert.Greater(t, report.Accuracy, 0.9)
	assert.Equal(t, manager.TestSize(), report.MacroAvg.Support)
	require.NotNil(t, manager.LastReport())
	assert.Equal(t, report, *manager.LastReport())
}

func TestReconfigureRejectsUnknownParamAtomically(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)
	require.NoError(t, manager.Reconfigure(map[string]any{"n_estimators": 20}))

	before, err := manager.Evaluate(false)
	require.NoError(t, err)

	err = manager.Reconfigure(map[string]any{"bogus_param": 1})
	require.ErrorIs(t, err, core.ErrInvalidHyperparameter)
	assert.ErrorContains(t, err, "bogus_param")

	// failed call leaves the previous fit and parameters untouched
	assert.True(t, manager.Fitted())
	assert.NotContains(t, manager.Params(), "bogus_param")
	after, err := manager.Evaluate(false)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPredictBeforeFit(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)

	frame, err := dataset.NewFrame(featureColumns, [][]string{{"10", "900", "35", "40"}})
	require.NoError(t, err)

	_, err = manager.Predict(frame)
	assert.ErrorIs(t, err, core.ErrModelNotFitted)

	_, err = manager.Evaluate(false)
	assert.ErrorIs(t, err, core.ErrModelNotFitted)
}

func TestPredictSchemaMismatch(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)
	require.NoError(t, manager.Reconfigure(nil))

	frame, err := dataset.NewFrame([]string{"tree_cover_density", "alti", "slope"}, [][]string{{"10", "900", "35"}})
	require.NoError(t, err)

	_, err = manager.Predict(frame)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
	assert.ErrorContains(t, err, "clay")
}

func TestPredictDecodesLabels(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)
	require.NoError(t, manager.Reconfigure(map[string]any{"n_estimators": 30}))

	frame, err := dataset.NewFrame(featureColumns, [][]string{
		{"10", "900", "35", "40"},
		{"80", "300", "8", "15"},
	})
	require.NoError(t, err)

	predictions, err := manager.Predict(frame)
	require.NoError(t, err)
	assert.Equal(t, []string{"landslide", "stable"}, predictions)
	assert.Equal(t, predictions, manager.LastPrediction())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	manager, err := core.NewManager(validSpec(t), nil)
	require.NoError(t, err)
	require.NoError(t, manager.Reconfigure(map[string]any{"n_estimators": 30, "max_depth": 8}))

	frame, err := dataset.NewFrame(featureColumns, [][]string{
		{"12", "880", "33", "41"},
		{"78", "310", "9", "14"},
		{"45", "600", "20", "28"},
	})
	require.NoError(t, err)
	wantPred, err := manager.Predict(frame)
	require.NoError(t, err)
	wantReport, err := manager.Evaluate(false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, manager.Save(path))

	loaded, err := core.LoadManager(path)
	require.NoError(t, err)

	assert.Equal(t, manager.Spec(), loaded.Spec())
	assert.Equal(t, manager.Params(), loaded.Params())
	assert.True(t, loaded.Fitted())

	gotPred, err := loaded.Predict(frame)
	require.NoError(t, err)
	assert.Equal(t, wantPred, gotPred)

	gotReport, err := loaded.Evaluate(false)
	require.NoError(t, err)
	assert.Equal(t, wantReport, gotReport)
}

func TestLoadManagerErrors(t *testing.T) {
	_, err := core.LoadManager(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, core.ErrArchiveNotFound)

	path := filepath.Join(t.TempDir(), "garbage.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a model archive"), 0o644))
	_, err = core.LoadManager(path)
	assert.ErrorIs(t, err, core.ErrCorruptArchive)
}
