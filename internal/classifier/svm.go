package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SVM is a linear support vector machine trained with stochastic gradient
// descent on the hinge loss, one-vs-rest for multi-class problems.
// Features are standardized internally; the fitted scaling is part of the
// model state.
type SVM struct {
	C            float64
	LearningRate float64
	MaxIter      int
	Tol          float64
	RandomState  int64

	NumClasses int
	Weights    [][]float64 // one weight vector per class
	Biases     []float64
	Mean       []float64
	Scale      []float64
}

// NewSVM builds an unfit SVM from defaults overlaid with the given
// hyperparameters.
func NewSVM(params map[string]any) (*SVM, error) {
	svm := &SVM{
		C:            1.0,
		LearningRate: 0.01,
		MaxIter:      1000,
		Tol:          1e-4,
		RandomState:  42,
	}
	setters := map[string]paramSetter{
		"c":             func(v any) error { return setFloat(&svm.C, v) },
		"learning_rate": func(v any) error { return setFloat(&svm.LearningRate, v) },
		"max_iter":      func(v any) error { return setInt(&svm.MaxIter, v) },
		"tol":           func(v any) error { return setFloat(&svm.Tol, v) },
		"random_state":  func(v any) error { return setInt64(&svm.RandomState, v) },
	}
	if err := applyParams(setters, params); err != nil {
		return nil, err
	}
	if svm.C <= 0 {
		return nil, fmt.Errorf("parameter %q: must be positive, got %v", "c", svm.C)
	}
	return svm, nil
}

// Fit standardizes the features, then runs SGD epochs over shuffled rows
// for each one-vs-rest problem until the epoch weight delta drops below
// Tol or MaxIter epochs elapse.
func (svm *SVM) Fit(X [][]float64, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return fmt.Errorf("svm: %w", err)
	}

	n := len(X)
	d := len(X[0])
	svm.NumClasses = countClasses(y)
	svm.fitScaling(X)
	scaled := svm.scaleMatrix(X)

	lambda := 1 / (svm.C * float64(n))
	rng := rand.New(rand.NewSource(svm.RandomState))

	svm.Weights = make([][]float64, svm.NumClasses)
	svm.Biases = make([]float64, svm.NumClasses)
	prev := make([]float64, d)

	for class := 0; class < svm.NumClasses; class++ {
		w := make([]float64, d)
		b := 0.0

		for epoch := 0; epoch < svm.MaxIter; epoch++ {
			copy(prev, w)
			for _, i := range rng.Perm(n) {
				target := -1.0
				if y[i] == class {
					target = 1.0
				}
				margin := target * (floats.Dot(w, scaled[i]) + b)

				// L2 shrinkage every step; hinge term only inside the margin
				floats.Scale(1-svm.LearningRate*lambda, w)
				if margin < 1 {
					floats.AddScaled(w, svm.LearningRate*target, scaled[i])
					b += svm.LearningRate * target
				}
			}
			if floats.Distance(prev, w, 2) < svm.Tol {
				break
			}
		}
		svm.Weights[class] = w
		svm.Biases[class] = b
	}
	return nil
}

// Predict returns the class with the highest decision value per row.
func (svm *SVM) Predict(X [][]float64) ([]int, error) {
	if len(svm.Weights) == 0 {
		return nil, ErrNotFitted
	}
	predictions := make([]int, len(X))
	row := make([]float64, len(svm.Mean))
	for i, raw := range X {
		svm.scaleRow(raw, row)
		best, bestScore := 0, math.Inf(-1)
		for class := 0; class < svm.NumClasses; class++ {
			score := floats.Dot(svm.Weights[class], row) + svm.Biases[class]
			if score > bestScore {
				best, bestScore = class, score
			}
		}
		predictions[i] = best
	}
	return predictions, nil
}

func (svm *SVM) fitScaling(X [][]float64) {
	d := len(X[0])
	svm.Mean = make([]float64, d)
	svm.Scale = make([]float64, d)
	column := make([]float64, len(X))
	for j := 0; j < d; j++ {
		for i, row := range X {
			column[i] = row[j]
		}
		m, s := stat.MeanStdDev(column, nil)
		if s == 0 || math.IsNaN(s) {
			s = 1
		}
		svm.Mean[j] = m
		svm.Scale[j] = s
	}
}

func (svm *SVM) scaleMatrix(X [][]float64) [][]float64 {
	scaled := make([][]float64, len(X))
	for i, raw := range X {
		row := make([]float64, len(raw))
		svm.scaleRow(raw, row)
		scaled[i] = row
	}
	return scaled
}

func (svm *SVM) scaleRow(raw, dst []float64) {
	for j, v := range raw {
		dst[j] = (v - svm.Mean[j]) / svm.Scale[j]
	}
}
