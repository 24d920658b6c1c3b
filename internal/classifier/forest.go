package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RandomForest is a bagged ensemble of CART trees with majority voting.
// Each tree gets a seed derived from RandomState so a fitted forest is
// reproducible run to run.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 selects sqrt(feature count)
	Bootstrap       bool
	RandomState     int64

	Trees      []*Tree
	NumClasses int
}

// NewRandomForest builds an unfit forest from defaults overlaid with the
// given hyperparameters. Unknown names are rejected as a whole via
// UnknownParamsError.
func NewRandomForest(params map[string]any) (*RandomForest, error) {
	rf := &RandomForest{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     42,
	}
	setters := map[string]paramSetter{
		"n_estimators":      func(v any) error { return setInt(&rf.NEstimators, v) },
		"max_depth":         func(v any) error { return setInt(&rf.MaxDepth, v) },
		"min_samples_split": func(v any) error { return setInt(&rf.MinSamplesSplit, v) },
		"max_features":      func(v any) error { return setInt(&rf.MaxFeatures, v) },
		"bootstrap":         func(v any) error { return setBool(&rf.Bootstrap, v) },
		"random_state":      func(v any) error { return setInt64(&rf.RandomState, v) },
	}
	if err := applyParams(setters, params); err != nil {
		return nil, err
	}
	if rf.NEstimators < 1 {
		return nil, fmt.Errorf("parameter %q: must be positive, got %d", "n_estimators", rf.NEstimators)
	}
	return rf, nil
}

// Fit trains every tree on a bootstrap sample of the data. Trees are
// trained concurrently; determinism comes from per-tree seeds, not from
// scheduling order.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := checkTrainingData(X, y); err != nil {
		return fmt.Errorf("randomforest: %w", err)
	}

	n := len(X)
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(len(X[0]))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	trees := make([]*Tree, rf.NEstimators)
	var wg sync.WaitGroup
	for i := 0; i < rf.NEstimators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			seed := rf.RandomState + int64(idx)
			rng := rand.New(rand.NewSource(seed))

			indices := make([]int, n)
			for j := range indices {
				if rf.Bootstrap {
					indices[j] = rng.Intn(n)
				} else {
					indices[j] = j
				}
			}

			tree := &Tree{
				MaxDepth:        rf.MaxDepth,
				MinSamplesSplit: rf.MinSamplesSplit,
				MaxFeatures:     maxFeatures,
				Seed:            seed,
			}
			tree.fit(X, y, indices)
			trees[idx] = tree
		}(i)
	}
	wg.Wait()

	rf.Trees = trees
	rf.NumClasses = countClasses(y)
	return nil
}

// Predict returns the majority vote over all trees, breaking ties on the
// lowest class id.
func (rf *RandomForest) Predict(X [][]float64) ([]int, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	predictions := make([]int, len(X))
	for i, row := range X {
		votes := make([]int, rf.NumClasses)
		for _, tree := range rf.Trees {
			votes[tree.predictRow(row)]++
		}
		best, bestVotes := 0, -1
		for class, v := range votes {
			if v > bestVotes {
				best, bestVotes = class, v
			}
		}
		predictions[i] = best
	}
	return predictions, nil
}
