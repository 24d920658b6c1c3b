package core

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"regexp"
	"strings"

	"landslide-backend/internal/classifier"
	"landslide-backend/internal/dataset"
)

// splitSeed fixes the train/test shuffle so identical inputs always yield
// identical partitions.
const splitSeed = 42

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ModelSpec is the immutable construction input of a Manager.
type ModelSpec struct {
	Kind           ModelKind
	DatasetPath    string
	TargetColumn   string
	FeatureColumns []string
	TestFraction   float64
}

// Manager owns the full lifecycle of one susceptibility model: the loaded
// dataset split, the hyperparameter set, the fitted classifier, and the
// prediction/evaluation caches. It is not safe for concurrent use; callers
// needing shared access must serialize externally.
type Manager struct {
	spec    ModelSpec
	params  map[string]any
	classes []string
	split   dataset.Split

	clf    classifier.Classifier
	fitted bool

	testPred []int    // test-split predictions, refreshed on Reconfigure
	lastPred []string // last Predict output over external data
	report   *Report
}

// NewManager validates the spec, loads and splits the dataset once, and
// instantiates an unfit classifier carrying the initial hyperparameters.
func NewManager(spec ModelSpec, initialParams map[string]any) (*Manager, error) {
	if !spec.Kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModelKind, spec.Kind)
	}
	info, err := os.Stat(spec.DatasetPath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, spec.DatasetPath)
	}
	if !identifierPattern.MatchString(spec.TargetColumn) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, spec.TargetColumn)
	}
	if len(spec.FeatureColumns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns given", ErrInvalidFeatureList)
	}
	seen := make(map[string]bool, len(spec.FeatureColumns))
	for _, col := range spec.FeatureColumns {
		if !identifierPattern.MatchString(col) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFeatureList, col)
		}
		if seen[col] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidFeatureList, col)
		}
		seen[col] = true
	}
	if spec.TestFraction <= 0 || spec.TestFraction >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTestFraction, spec.TestFraction)
	}

	frame, err := dataset.ReadCSV(spec.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetNotFound, err)
	}
	required := append([]string{spec.TargetColumn}, spec.FeatureColumns...)
	if missing := frame.MissingColumns(required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: dataset is missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	X, err := frame.Matrix(spec.FeatureColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	labels, err := frame.Column(spec.TargetColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	classes, y := dataset.EncodeLabels(labels)

	clf, err := newClassifier(spec.Kind, initialParams)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		spec:    spec,
		params:  cloneParams(initialParams),
		classes: classes,
		split:   dataset.TrainTestSplit(X, y, spec.TestFraction, splitSeed),
		clf:     clf,
	}
	return m, nil
}

// Reconfigure merges the given hyperparameters into the current set,
// rebuilds the classifier, fits it on the train split and refreshes the
// test-split predictions. Any unaccepted parameter name rejects the whole
// call with no state change.
func (m *Manager) Reconfigure(params map[string]any) error {
	merged := cloneParams(m.params)
	maps.Copy(merged, params)

	clf, err := newClassifier(m.spec.Kind, merged)
	if err != nil {
		return err
	}
	if err := clf.Fit(m.split.XTrain, m.split.YTrain); err != nil {
		return fmt.Errorf("failed to fit %s classifier: %w", m.spec.Kind, err)
	}
	testPred, err := clf.Predict(m.split.XTest)
	if err != nil {
		return fmt.Errorf("failed to predict test split: %w", err)
	}

	m.params = merged
	m.clf = clf
	m.fitted = true
	m.testPred = testPred
	return nil
}

// Predict runs the fitted classifier over an external feature frame. The
// frame must carry every feature column of the spec; the returned labels
// are aligned one to one with the frame's rows.
func (m *Manager) Predict(frame *dataset.Frame) ([]string, error) {
	if !m.fitted {
		return nil, fmt.Errorf("%w: call Reconfigure before Predict", ErrModelNotFitted)
	}
	if missing := frame.MissingColumns(m.spec.FeatureColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: input is missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	X, err := frame.Matrix(m.spec.FeatureColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	encoded, err := m.clf.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	predictions := make([]string, len(encoded))
	for i, id := range encoded {
		predictions[i] = m.classes[id]
	}
	m.lastPred = predictions
	return predictions, nil
}

// Evaluate compares the cached test-split predictions against the true
// test labels and returns the classification report. When no predictions
// are cached yet it warns and predicts the test split first. With
// showReport the report table is also printed to stdout.
func (m *Manager) Evaluate(showReport bool) (Report, error) {
	if !m.fitted {
		return Report{}, fmt.Errorf("%w: call Reconfigure before Evaluate", ErrModelNotFitted)
	}
	if len(m.testPred) == 0 {
		slog.Warn("no cached predictions, evaluating on test split predictions")
		testPred, err := m.clf.Predict(m.split.XTest)
		if err != nil {
			return Report{}, fmt.Errorf("failed to predict test split: %w", err)
		}
		m.testPred = testPred
	}

	report := classificationReport(m.classes, m.split.YTest, m.testPred)
	if showReport {
		fmt.Println(report.String())
	}
	m.report = &report
	return report, nil
}

// Spec returns the immutable construction spec.
func (m *Manager) Spec() ModelSpec { return m.spec }

// Params returns a copy of the current hyperparameter set.
func (m *Manager) Params() map[string]any { return cloneParams(m.params) }

// Classes returns the label vocabulary in encoding order.
func (m *Manager) Classes() []string { return m.classes }

// TrainSize and TestSize expose the split sizes.
func (m *Manager) TrainSize() int { return len(m.split.XTrain) }
func (m *Manager) TestSize() int  { return len(m.split.XTest) }

// Fitted reports whether Reconfigure has fit a classifier yet.
func (m *Manager) Fitted() bool { return m.fitted }

// LastPrediction returns the most recent Predict output, or nil.
func (m *Manager) LastPrediction() []string { return m.lastPred }

// LastReport returns the most recent evaluation report, or nil.
func (m *Manager) LastReport() *Report { return m.report }

func newClassifier(kind ModelKind, params map[string]any) (classifier.Classifier, error) {
	var (
		clf classifier.Classifier
		err error
	)
	switch kind {
	case RandomForest:
		clf, err = classifier.NewRandomForest(params)
	case SVM:
		clf, err = classifier.NewSVM(params)
	case GBM:
		clf, err = classifier.NewGBM(params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModelKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHyperparameter, err)
	}
	return clf, nil
}

func cloneParams(params map[string]any) map[string]any {
	clone := make(map[string]any, len(params))
	maps.Copy(clone, params)
	return clone
}
