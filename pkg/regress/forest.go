package regress

import (
	"errors"
	"math"
	"math/rand"
)

// RandomForest is a bagged ensemble of regression trees. Trees are grown on
// bootstrap samples with a random feature subset considered at each split,
// and predictions are the mean over trees. A fixed Seed makes Fit
// deterministic.
type RandomForest struct {
	NumTrees    int
	MaxDepth    int
	MinLeafSize int
	Seed        int64

	trees []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// Fit trains the forest on rows X with targets y.
func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("regress: bad training shape")
	}
	if f.NumTrees <= 0 {
		f.NumTrees = 50
	}
	if f.MaxDepth <= 0 {
		f.MaxDepth = 8
	}
	if f.MinLeafSize <= 0 {
		f.MinLeafSize = 3
	}

	rng := rand.New(rand.NewSource(f.Seed))
	dims := len(X[0])
	mtry := int(math.Max(1, math.Ceil(float64(dims)/3)))

	f.trees = make([]*treeNode, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		sampleX := make([][]float64, len(X))
		sampleY := make([]float64, len(y))
		for i := range X {
			j := rng.Intn(len(X))
			sampleX[i] = X[j]
			sampleY[i] = y[j]
		}
		f.trees[t] = growTree(sampleX, sampleY, 0, f.MaxDepth, f.MinLeafSize, mtry, rng)
	}
	return nil
}

// Predict returns the forest's estimate for one row.
func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func growTree(X [][]float64, y []float64, depth, maxDepth, minLeaf, mtry int, rng *rand.Rand) *treeNode {
	if depth >= maxDepth || len(y) <= minLeaf*2 || variance(y) == 0 {
		return &treeNode{value: mean(y)}
	}

	dims := len(X[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(1)

	features := rng.Perm(dims)[:mtry]
	for _, feat := range features {
		for _, row := range X {
			threshold := row[feat]
			var leftY, rightY []float64
			for i, r := range X {
				if r[feat] <= threshold {
					leftY = append(leftY, y[i])
				} else {
					rightY = append(rightY, y[i])
				}
			}
			if len(leftY) < minLeaf || len(rightY) < minLeaf {
				continue
			}
			score := float64(len(leftY))*variance(leftY) + float64(len(rightY))*variance(rightY)
			if score < bestScore {
				bestScore = score
				bestFeature = feat
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{value: mean(y)}
	}

	var leftX, rightX [][]float64
	var leftY, rightY []float64
	for i, row := range X {
		if row[bestFeature] <= bestThreshold {
			leftX = append(leftX, row)
			leftY = append(leftY, y[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, y[i])
		}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      growTree(leftX, leftY, depth+1, maxDepth, minLeaf, mtry, rng),
		right:     growTree(rightX, rightY, depth+1, maxDepth, minLeaf, mtry, rng),
	}
}

func mean(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for _, v := range y {
		sum += v
	}
	return sum / float64(len(y))
}

func variance(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	m := mean(y)
	var sum float64
	for _, v := range y {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(y))
}
