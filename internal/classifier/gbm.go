package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// GBM is a gradient boosting machine over regression trees with logistic
// loss. Multi-class problems are handled one-vs-rest with an argmax over
// the per-class scores.
type GBM struct {
	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	MinSamplesSplit int
	Subsample       float64 // fraction of rows per stage, (0,1]
	RandomState     int64

	NumClasses int
	Base       []float64           // initial log-odds per class
	Trees      [][]*RegressionTree // [class][stage]
}

// NewGBM builds an unfit GBM from defaults overlaid with the given
// hyperparameters.
func NewGBM(params map[string]any) (*GBM, error) {
	gbm := &GBM{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 2,
		Subsample:       1.0,
		RandomState:     42,
	}
	setters := map[string]paramSetter{
		"n_estimators":      func(v any) error { return setInt(&gbm.NEstimators, v) },
		"learning_rate":     func(v any) error { return setFloat(&gbm.LearningRate, v) },
		"max_depth":         func(v any) error { return setInt(&gbm.MaxDepth, v) },
		"min_samples_split": func(v any) error { return setInt(&gbm.MinSamplesSplit, v) },
		"subsample":         func(v any) error { return setFloat(&gbm.Subsample, v) },
		"random_state":      func(v any) error { return setInt64(&gbm.RandomState, v) },
	}
	if err := applyParams(setters, params); err != nil {
		return nil, err
	}
	if gbm.Subsample <= 0 || gbm.Subsample > 1 {
		return nil, fmt.Errorf("parameter %q: must be in (0, 1], got %v", "subsample", gbm.Subsample)
	}
	return gbm, nil
}

// Fit boosts one tree per stage per class against the logistic-loss
// pseudo-residuals y - sigmoid(score).
func (gbm *GBM) Fit(X [][]float64, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return fmt.Errorf("gbm: %w", err)
	}

	n := len(X)
	gbm.NumClasses = countClasses(y)
	gbm.Base = make([]float64, gbm.NumClasses)
	gbm.Trees = make([][]*RegressionTree, gbm.NumClasses)

	rng := rand.New(rand.NewSource(gbm.RandomState))

	for class := 0; class < gbm.NumClasses; class++ {
		targets := make([]float64, n)
		for i, label := range y {
			if label == class {
				targets[i] = 1
			}
		}

		positive := floats.Sum(targets)
		gbm.Base[class] = initialLogOdds(positive, float64(n))

		scores := make([]float64, n)
		for i := range scores {
			scores[i] = gbm.Base[class]
		}

		residuals := make([]float64, n)
		stages := make([]*RegressionTree, 0, gbm.NEstimators)
		for stage := 0; stage < gbm.NEstimators; stage++ {
			for i := range residuals {
				residuals[i] = targets[i] - sigmoid(scores[i])
			}

			tree := &RegressionTree{MaxDepth: gbm.MaxDepth, MinSamplesSplit: gbm.MinSamplesSplit}
			tree.fit(X, residuals, gbm.stageIndices(n, rng))
			stages = append(stages, tree)

			for i, row := range X {
				scores[i] += gbm.LearningRate * tree.predictRow(row)
			}
		}
		gbm.Trees[class] = stages
	}
	return nil
}

// Predict scores every class and returns the argmax per row.
func (gbm *GBM) Predict(X [][]float64) ([]int, error) {
	if len(gbm.Trees) == 0 {
		return nil, ErrNotFitted
	}
	predictions := make([]int, len(X))
	for i, row := range X {
		best, bestScore := 0, math.Inf(-1)
		for class := 0; class < gbm.NumClasses; class++ {
			score := gbm.Base[class]
			for _, tree := range gbm.Trees[class] {
				score += gbm.LearningRate * tree.predictRow(row)
			}
			if score > bestScore {
				best, bestScore = class, score
			}
		}
		predictions[i] = best
	}
	return predictions, nil
}

func (gbm *GBM) stageIndices(n int, rng *rand.Rand) []int {
	if gbm.Subsample >= 1 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	k := int(float64(n) * gbm.Subsample)
	if k < 1 {
		k = 1
	}
	return rng.Perm(n)[:k]
}

func initialLogOdds(positive, total float64) float64 {
	// clamp away from 0 and 1 so the log-odds stay finite
	p := positive / total
	if p < 1e-6 {
		p = 1e-6
	}
	if p > 1-1e-6 {
		p = 1 - 1e-6
	}
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
