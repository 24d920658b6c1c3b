package classifier

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBlobs returns a linearly separable two-class dataset: class 0 around
// (0, 0), class 1 around (4, 4).
func twoBlobs(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		class := i % 2
		center := float64(class * 4)
		X[i] = []float64{center + rng.NormFloat64()*0.5, center + rng.NormFloat64()*0.5}
		y[i] = class
	}
	return X, y
}

func accuracy(yTrue, yPred []int) float64 {
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func TestRandomForestSeparable(t *testing.T) {
	X, y := twoBlobs(200, 1)

	rf, err := NewRandomForest(map[string]any{"n_estimators": 20, "max_depth": 5})
	require.NoError(t, err)
	require.NoError(t, rf.Fit(X, y))

	preds, err := rf.Predict(X)
	require.NoError(t, err)
	require.Len(t, preds, len(X))
	assert.Greater(t, accuracy(y, preds), 0.95)
}

func TestRandomForestDeterministic(t *testing.T) {
	X, y := twoBlobs(100, 2)

	fitAndPredict := func() []int {
		rf, err := NewRandomForest(map[string]any{"n_estimators": 10, "max_depth": 4, "random_state": 7})
		require.NoError(t, err)
		require.NoError(t, rf.Fit(X, y))
		preds, err := rf.Predict(X)
		require.NoError(t, err)
		return preds
	}

	assert.Equal(t, fitAndPredict(), fitAndPredict())
}

func TestRandomForestNotFitted(t *testing.T) {
	rf, err := NewRandomForest(nil)
	require.NoError(t, err)

	_, err = rf.Predict([][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestRandomForestBadTrainingData(t *testing.T) {
	rf, err := NewRandomForest(nil)
	require.NoError(t, err)

	assert.Error(t, rf.Fit(nil, nil))
	assert.Error(t, rf.Fit([][]float64{{1}}, []int{0, 1}))
	assert.Error(t, rf.Fit([][]float64{{1, 2}, {3}}, []int{0, 1}))
}

func TestSVMSeparable(t *testing.T) {
	X, y := twoBlobs(200, 3)

	svm, err := NewSVM(map[string]any{"max_iter": 100})
	require.NoError(t, err)
	require.NoError(t, svm.Fit(X, y))

	preds, err := svm.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, accuracy(y, preds), 0.95)
}

func TestSVMMultiClass(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	centers := [][2]float64{{0, 0}, {5, 0}, {0, 5}}
	var X [][]float64
	var y []int
	for class, center := range centers {
		for i := 0; i < 60; i++ {
			X = append(X, []float64{center[0] + rng.NormFloat64()*0.5, center[1] + rng.NormFloat64()*0.5})
			y = append(y, class)
		}
	}

	svm, err := NewSVM(map[string]any{"max_iter": 200})
	require.NoError(t, err)
	require.NoError(t, svm.Fit(X, y))

	preds, err := svm.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, accuracy(y, preds), 0.9)
}

func TestGBMSeparable(t *testing.T) {
	X, y := twoBlobs(200, 5)

	gbm, err := NewGBM(map[string]any{"n_estimators": 30, "max_depth": 3})
	require.NoError(t, err)
	require.NoError(t, gbm.Fit(X, y))

	preds, err := gbm.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, accuracy(y, preds), 0.95)
}

func TestGBMNotFitted(t *testing.T) {
	gbm, err := NewGBM(nil)
	require.NoError(t, err)

	_, err = gbm.Predict([][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestTreeHandlesPureNode(t *testing.T) {
	X := [][]float64{{1, 1}, {1, 2}, {1, 3}}
	y := []int{0, 0, 0}

	tree := &Tree{MinSamplesSplit: 2}
	tree.fit(X, y, []int{0, 1, 2})

	require.Len(t, tree.Nodes, 1)
	assert.True(t, tree.Nodes[0].Leaf)
	assert.Equal(t, 0, tree.Nodes[0].Class)
}
