package utl

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/jarrodmillman/unsuptree/ucl"
	"gonum.org/v1/gonum/mat"
)

//TreeNode is a node of a tree. The tree is stored in an array. LeftIndex and
//RightIndex are equal to -1 when the current node is a leaf, otherwise they
//contain array indices of children. A leaf node carries LeafIndex, an index
//into the LeafNodes array.
type TreeNode struct {
	TreeNodeId            int
	Proj                  Projection
	Threshold             float64
	LeftIndex, RightIndex int // -1, -1 if it is a leaf
	LeafIndex             int // -1 if it is a non-leaf tree node
	NumberOfObjects       int
	Impurity              float64
}

//NewTreeNode returns an empty leaf-shaped node.
func NewTreeNode() TreeNode {
	return TreeNode{0, Projection{}, 0, -1, -1, -1, 0, 0}
}

//NewTreeNodeFromSplit creates a new internal node from a selected split.
func NewTreeNodeFromSplit(split CandidateSplit, treeNodeId, numberOfObjects int) TreeNode {
	treeNode := NewTreeNode()
	treeNode.TreeNodeId = treeNodeId
	treeNode.Proj = split.Proj
	treeNode.Threshold = split.Threshold
	treeNode.NumberOfObjects = numberOfObjects
	treeNode.Impurity = split.ImpurityParent
	return treeNode
}

//IsLeaf returns whether this node refers to a LeafNode.
func (node TreeNode) IsLeaf() bool {
	return node.LeafIndex != -1
}

//GraphDescription returns the description of a tree node for rendering.
func (node TreeNode) GraphDescription() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintln("#", node.NumberOfObjects))
	sb.WriteString(fmt.Sprintln("id: ", node.TreeNodeId))
	sb.WriteString(fmt.Sprintln("impurity: ", node.Impurity))
	if len(node.Proj.Indices) == 1 && node.Proj.Weights[0] == 1.0 {
		sb.WriteString(fmt.Sprintf("f_%d < %6.5f", node.Proj.Indices[0], node.Threshold))
	} else {
		sb.WriteString(fmt.Sprintf("proj%v < %6.5f", node.Proj.Indices, node.Threshold))
	}
	return sb.String()
}

//LeafNode stores leaf-related information: the node value written by the
//criterion and the samples that ended up in the leaf.
type LeafNode struct {
	LeafNodeId      int
	Value           float64
	WeightedN       float64
	NumberOfObjects int
	SampleIds       []int
}

//GraphDescription returns the description of a leaf node for rendering.
func (node LeafNode) GraphDescription() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintln("id: ", node.LeafNodeId))
	sb.WriteString(fmt.Sprintf("value: %6.2f\n", node.Value))
	sb.WriteString(fmt.Sprintln(node.NumberOfObjects))
	return sb.String()
}

//UnsupTree is one fitted unsupervised partitioning tree.
type UnsupTree struct {
	NFeatures int
	TreeNodes []TreeNode
	LeafNodes []LeafNode
}

//TreeParams collects the arguments required to fit a tree.
type TreeParams struct {
	Criterion           string  // "twomeans" or "fastbic"
	MaxDepth            int     // 0 means unlimited
	MinSamplesSplit     int     // smallest node the builder attempts to split
	MinSamplesLeaf      int     // smallest admissible child
	MinImpurityDecrease float64 // required improvement to accept a split
	NProjections        int     // oblique candidates per node; 0 means one per feature
	FeatureCombinations float64 // 0 means axis-aligned projections
	ThreadsNum          int
	Seed                int64
}

//NewCriterionFactory maps a criterion name to a constructor. Each worker gets
//its own instance from the factory.
func NewCriterionFactory(name string) (func() ucl.Criterion, error) {
	switch name {
	case "", "twomeans":
		return func() ucl.Criterion { return ucl.NewTwoMeans() }, nil
	case "fastbic":
		return func() ucl.Criterion { return ucl.NewFastBIC() }, nil
	}
	return nil, fmt.Errorf("unknown criterion %q: %w", name, ucl.ErrInvalidInput)
}

//Fit builds an unsupervised tree over the dataset.
func Fit(um UMatrix, params TreeParams) (*UnsupTree, error) {
	_, w := um.validatedDimensions()

	newCriterion, err := NewCriterionFactory(params.Criterion)
	if err != nil {
		return nil, err
	}
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}

	tree := &UnsupTree{NFeatures: w}
	splitter := NewSplitter(um, newCriterion, params.MinSamplesLeaf, params.ThreadsNum)
	rng := rand.New(rand.NewSource(params.Seed))

	h := Height(um.X)
	tree.buildNode(splitter, params, rng, 0, h, 0)
	log.Printf("fitted tree with %d nodes and %d leaves", len(tree.TreeNodes), len(tree.LeafNodes))
	return tree, nil
}

//nodeProjections draws the candidate projections for one node.
func nodeProjections(params TreeParams, rng *rand.Rand, nFeatures int) []Projection {
	if params.FeatureCombinations <= 0 {
		return AxisProjections(nFeatures)
	}
	nProjections := params.NProjections
	if nProjections < 1 {
		nProjections = nFeatures
	}
	return SampleProjections(rng, nFeatures, nProjections, params.FeatureCombinations)
}

//buildNode recurrently builds the subtree over the window [start, end) of the
//splitter's permutation and returns the array index of its root.
func (tree *UnsupTree) buildNode(splitter *Splitter, params TreeParams, rng *rand.Rand, start, end, currentDepth int) int {
	n := end - start

	depthAllowed := params.MaxDepth == 0 || currentDepth < params.MaxDepth
	if depthAllowed && n >= params.MinSamplesSplit {
		projections := nodeProjections(params, rng, tree.NFeatures)
		// The Fast-BIC baseline and its negated child scores live on different
		// scales, so the improvement gate only applies when the knob is set.
		if bestSplit, ok := splitter.BestSplit(projections, start, end); ok &&
			(params.MinImpurityDecrease <= 0 || bestSplit.Improvement >= params.MinImpurityDecrease) {
			treeNodeId := len(tree.TreeNodes)
			tree.TreeNodes = append(tree.TreeNodes, NewTreeNodeFromSplit(bestSplit, treeNodeId, n))

			mid := start + bestSplit.Pos
			leftNodeId := tree.buildNode(splitter, params, rng, start, mid, currentDepth+1)
			tree.TreeNodes[treeNodeId].LeftIndex = leftNodeId

			rightNodeId := tree.buildNode(splitter, params, rng, mid, end, currentDepth+1)
			tree.TreeNodes[treeNodeId].RightIndex = rightNodeId

			return treeNodeId
		}
	}

	treeNodeId := len(tree.TreeNodes)
	currentTreeNode := NewTreeNode()
	currentTreeNode.TreeNodeId = treeNodeId
	currentTreeNode.NumberOfObjects = n
	tree.TreeNodes = append(tree.TreeNodes, currentTreeNode)

	value, weightedN := splitter.NodeSummary(start, end)
	sampleIds := make([]int, n)
	copy(sampleIds, splitter.Perm()[start:end])

	leafNodeId := len(tree.LeafNodes)
	tree.TreeNodes[treeNodeId].LeafIndex = leafNodeId
	tree.LeafNodes = append(tree.LeafNodes, LeafNode{
		LeafNodeId:      leafNodeId,
		Value:           value,
		WeightedN:       weightedN,
		NumberOfObjects: n,
		SampleIds:       sampleIds,
	})
	return treeNodeId
}

//ApplyRow routes one row of x to a leaf and returns the leaf id.
func (tree *UnsupTree) ApplyRow(x *mat.Dense, row int) int {
	ind := 0
	for !tree.TreeNodes[ind].IsLeaf() {
		node := tree.TreeNodes[ind]
		if node.Proj.At(x, row) < node.Threshold {
			ind = node.LeftIndex
		} else {
			ind = node.RightIndex
		}
	}
	return tree.TreeNodes[ind].LeafIndex
}

//Apply routes every row of x to a leaf.
func (tree *UnsupTree) Apply(x *mat.Dense) []int {
	h, _ := x.Dims()
	leaves := make([]int, h)
	for p := 0; p < h; p++ {
		leaves[p] = tree.ApplyRow(x, p)
	}
	return leaves
}
