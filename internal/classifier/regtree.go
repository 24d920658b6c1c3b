package classifier

import (
	"math"
	"sort"
)

// RegressionNode is a node of a flattened regression tree.
type RegressionNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// RegressionTree is a CART regression tree splitting on squared error.
// GBM uses it to fit pseudo-residuals at each boosting stage.
type RegressionTree struct {
	MaxDepth        int
	MinSamplesSplit int

	Nodes []RegressionNode
}

func (t *RegressionTree) fit(X [][]float64, targets []float64, indices []int) {
	t.Nodes = t.build(X, targets, indices, 0)
}

func (t *RegressionTree) predictRow(row []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func (t *RegressionTree) build(X [][]float64, targets []float64, indices []int, depth int) []RegressionNode {
	leaf := []RegressionNode{{Feature: -1, Left: -1, Right: -1, Value: mean(targets, indices), Leaf: true}}

	if len(indices) < t.MinSamplesSplit {
		return leaf
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return leaf
	}

	feature, threshold, ok := t.bestSplit(X, targets, indices)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	leftNodes := t.build(X, targets, left, depth+1)
	rightNodes := t.build(X, targets, right, depth+1)

	nodes := make([]RegressionNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, RegressionNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      1,
		Right:     1 + len(leftNodes),
	})
	for _, n := range leftNodes {
		if !n.Leaf {
			n.Left++
			n.Right++
		}
		nodes = append(nodes, n)
	}
	for _, n := range rightNodes {
		if !n.Leaf {
			n.Left += 1 + len(leftNodes)
			n.Right += 1 + len(leftNodes)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// bestSplit minimizes the summed squared error of the two children using
// running prefix sums over each feature's sorted order.
func (t *RegressionTree) bestSplit(X [][]float64, targets []float64, indices []int) (int, float64, bool) {
	numFeatures := len(X[indices[0]])

	bestFeature, bestThreshold := -1, 0.0
	bestSSE := math.MaxFloat64

	sorted := make([]int, len(indices))
	for feature := 0; feature < numFeatures; feature++ {
		copy(sorted, indices)
		f := feature
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += targets[i]
			totalSq += targets[i] * targets[i]
		}

		var leftSum, leftSq float64
		for pos := 0; pos < len(sorted)-1; pos++ {
			v := targets[sorted[pos]]
			leftSum += v
			leftSq += v * v

			cur, next := X[sorted[pos]][f], X[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			leftN := float64(pos + 1)
			rightN := float64(len(sorted) - pos - 1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq

			sse := (leftSq - leftSum*leftSum/leftN) + (rightSq - rightSum*rightSum/rightN)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func mean(values []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	s := 0.0
	for _, i := range indices {
		s += values[i]
	}
	return s / float64(len(indices))
}
