package dataset

import "math/rand"

// Split holds the train/test partition of a feature matrix and label vector.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []int
}

// TrainTestSplit partitions X and y by a seeded shuffle so that repeated
// runs with the same inputs produce the same partition. The test set gets
// round(n * testFraction) rows and train/test sizes always sum to n.
func TrainTestSplit(X [][]float64, y []int, testFraction float64, seed int64) Split {
	n := len(X)
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)

	nTest := int(float64(n)*testFraction + 0.5)
	if nTest < 1 && n > 0 {
		nTest = 1
	}
	if nTest > n {
		nTest = n
	}

	split := Split{
		XTrain: make([][]float64, 0, n-nTest),
		XTest:  make([][]float64, 0, nTest),
		YTrain: make([]int, 0, n-nTest),
		YTest:  make([]int, 0, nTest),
	}
	for i, idx := range indices {
		if i < nTest {
			split.XTest = append(split.XTest, X[idx])
			split.YTest = append(split.YTest, y[idx])
		} else {
			split.XTrain = append(split.XTrain, X[idx])
			split.YTrain = append(split.YTrain, y[idx])
		}
	}
	return split
}
