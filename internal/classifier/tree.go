package classifier

import (
	"math"
	"math/rand"
	"sort"
)

// TreeNode is a node of a flattened decision tree. Children are indices
// into the tree's node slice; -1 marks a leaf.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Class     int
	Leaf      bool
}

// Tree is a CART classification tree splitting on the gini criterion.
// Fields are exported so trees survive gob encoding inside archives.
type Tree struct {
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Seed            int64

	Nodes      []TreeNode
	NumClasses int
}

func (t *Tree) fit(X [][]float64, y []int, indices []int) {
	t.NumClasses = countClasses(y)
	rng := rand.New(rand.NewSource(t.Seed))
	t.Nodes = t.build(X, y, indices, 0, rng)
}

func (t *Tree) predictRow(row []float64) int {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Class
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func (t *Tree) build(X [][]float64, y []int, indices []int, depth int, rng *rand.Rand) []TreeNode {
	label := majorityClass(y, indices, t.NumClasses)
	leaf := []TreeNode{{Feature: -1, Left: -1, Right: -1, Class: label, Leaf: true}}

	if len(indices) < t.MinSamplesSplit || isPure(y, indices) {
		return leaf
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return leaf
	}

	feature, threshold, ok := t.bestSplit(X, y, indices, rng)
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

	leftNodes := t.build(X, y, left, depth+1, rng)
	rightNodes := t.build(X, y, right, depth+1, rng)

	// subtree child indices are relative to their own slice; shift them to
	// positions in the combined slice
	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      1,
		Right:     1 + len(leftNodes),
		Class:     label,
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

// bestSplit scans candidate features and, per feature, every threshold
// between adjacent distinct sorted values, picking the split with the
// lowest weighted gini impurity.
func (t *Tree) bestSplit(X [][]float64, y []int, indices []int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(X[indices[0]])
	features := candidateFeatures(numFeatures, t.MaxFeatures, rng)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := math.MaxFloat64

	sorted := make([]int, len(indices))
	for _, feature := range features {
		copy(sorted, indices)
		f := feature
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		leftCounts := make([]int, t.NumClasses)
		rightCounts := make([]int, t.NumClasses)
		for _, i := range sorted {
			rightCounts[y[i]]++
		}

		for pos := 0; pos < len(sorted)-1; pos++ {
			label := y[sorted[pos]]
			leftCounts[label]++
			rightCounts[label]--

			cur, next := X[sorted[pos]][f], X[sorted[pos+1]][f]
			if cur == next {
				continue
			}
			impurity := weightedGini(leftCounts, rightCounts, pos+1, len(sorted)-pos-1)
			if impurity < bestImpurity {
				bestImpurity = impurity
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

func candidateFeatures(numFeatures, maxFeatures int, rng *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= numFeatures {
		features := make([]int, numFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return rng.Perm(numFeatures)[:maxFeatures]
}

func weightedGini(leftCounts, rightCounts []int, leftTotal, rightTotal int) float64 {
	total := float64(leftTotal + rightTotal)
	return float64(leftTotal)/total*giniFromCounts(leftCounts, leftTotal) +
		float64(rightTotal)/total*giniFromCounts(rightCounts, rightTotal)
}

func giniFromCounts(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

func majorityClass(y []int, indices []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, i := range indices {
		counts[y[i]]++
	}
	best, bestCount := 0, -1
	for class, count := range counts {
		if count > bestCount {
			best, bestCount = class, count
		}
	}
	return best
}

func isPure(y []int, indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := y[indices[0]]
	for _, i := range indices[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}
