package utl

import (
	"sort"

	"github.com/jarrodmillman/unsuptree/ucl"
	"gonum.org/v1/gonum/mat"
)

//featureThreshold separates distinct projected values; boundaries between
//equal values are never candidate splits.
const featureThreshold = 1e-7

//CandidateSplit contains the result of scanning one projection over one node
//window.
type CandidateSplit struct {
	Proj      Projection
	Pos       int
	Threshold float64

	ImpurityParent float64
	ImpurityLeft   float64
	ImpurityRight  float64
	Improvement    float64
	NodeValue      float64

	WeightedNNode  float64
	WeightedNLeft  float64
	WeightedNRight float64

	proxy float64
	order []int
	Valid bool
}

//Splitter owns the shared index permutation and searches the best split of a
//node window among candidate projections. The criterion never selects the
//position; the splitter drives the sweep and the stopping rules.
type Splitter struct {
	x              *mat.Dense
	sampleWeight   []float64
	weightedNTotal float64
	perm           []int
	newCriterion   func() ucl.Criterion
	minSamplesLeaf int
	threadsNum     int
}

//NewSplitter prepares a splitter for one dataset. The permutation starts as
//the identity and is repartitioned in place as nodes are split.
func NewSplitter(um UMatrix, newCriterion func() ucl.Criterion, minSamplesLeaf, threadsNum int) *Splitter {
	h, _ := um.validatedDimensions()
	perm := make([]int, h)
	for p := range perm {
		perm[p] = p
	}
	if minSamplesLeaf < 1 {
		minSamplesLeaf = 1
	}
	if threadsNum < 1 {
		threadsNum = 1
	}
	return &Splitter{
		x:              um.X,
		sampleWeight:   um.SampleWeight,
		weightedNTotal: um.weightedTotal(),
		perm:           perm,
		newCriterion:   newCriterion,
		minSamplesLeaf: minSamplesLeaf,
		threadsNum:     threadsNum,
	}
}

//Perm exposes the shared permutation; samples of one node are contiguous.
func (sp *Splitter) Perm() []int { return sp.perm }

//scanProjection sweeps every admissible cut position of one projected column
//over the node window [start, end) and keeps the position with the smallest
//weighted child impurity. The scan works on its own sorted copy of the window
//and its own criterion instance, so concurrent scans share nothing mutable.
func (sp *Splitter) scanProjection(proj Projection, start, end int) CandidateSplit {
	h, _ := sp.x.Dims()
	column := make([]float64, h)
	proj.Materialize(sp.x, column)

	n := end - start
	order := make([]int, n)
	copy(order, sp.perm[start:end])
	sort.Slice(order, func(i, j int) bool {
		return column[order[i]] < column[order[j]]
	})

	crit := sp.newCriterion()
	crit.BindWeights(sp.sampleWeight, sp.weightedNTotal, order)
	HandleError(crit.BindNode(column, 0, n))

	candidate := CandidateSplit{Proj: proj, order: order}
	candidate.WeightedNNode = crit.WeightedNNode()

	parentImpurity, err := crit.NodeImpurity()
	HandleError(err)
	candidate.ImpurityParent = parentImpurity

	out := make([]float64, 1)
	HandleError(crit.NodeValue(out))
	candidate.NodeValue = out[0]

	for p := sp.minSamplesLeaf; p <= n-sp.minSamplesLeaf; p++ {
		if column[order[p]] <= column[order[p-1]]+featureThreshold {
			continue
		}

		HandleError(crit.AdvanceTo(p))
		impurityLeft, impurityRight, err := crit.ChildrenImpurity()
		HandleError(err)

		proxy := crit.WeightedNLeft()*impurityLeft + crit.WeightedNRight()*impurityRight
		if !candidate.Valid || proxy < candidate.proxy {
			candidate.Valid = true
			candidate.proxy = proxy
			candidate.Pos = p
			candidate.Threshold = (column[order[p-1]] + column[order[p]]) / 2
			candidate.ImpurityLeft = impurityLeft
			candidate.ImpurityRight = impurityRight
			candidate.WeightedNLeft = crit.WeightedNLeft()
			candidate.WeightedNRight = crit.WeightedNRight()
		}
	}

	if candidate.Valid {
		wNode := candidate.WeightedNNode
		candidate.Improvement = wNode / sp.weightedNTotal *
			(candidate.ImpurityParent -
				candidate.WeightedNRight/wNode*candidate.ImpurityRight -
				candidate.WeightedNLeft/wNode*candidate.ImpurityLeft)
	}
	return candidate
}

//BestSplit scans every candidate projection over the node window and selects
//the one with the smallest weighted child impurity, then repartitions the
//shared permutation so that the left child occupies [start, start+Pos).
//The second return value is false when no projection admits a valid split.
func (sp *Splitter) BestSplit(projections []Projection, start, end int) (CandidateSplit, bool) {
	result := make([]CandidateSplit, len(projections))

	if sp.threadsNum == 1 {
		for q := range projections {
			result[q] = sp.scanProjection(projections[q], start, end)
		}
	} else {
		taskPool := NewPool(sp.threadsNum)
		for q := range projections {
			scanFunc := func(localQ int) CandidateSplit {
				return sp.scanProjection(projections[localQ], start, end)
			}
			taskPool.AddTask(&TaskScanProjection{result, q, scanFunc})
		}
		taskPool.Close()
		taskPool.WaitAll()
	}

	firstTime := true
	bestIndex := 0
	for ind, currentSplit := range result {
		if currentSplit.Valid && (firstTime || currentSplit.proxy < result[bestIndex].proxy) {
			firstTime = false
			bestIndex = ind
		}
	}
	if firstTime {
		return CandidateSplit{}, false
	}

	best := result[bestIndex]
	copy(sp.perm[start:end], best.order)
	return best, true
}

//NodeSummary computes the representative value and the weighted count of a
//node window without scanning for a split; leaves are summarized this way.
func (sp *Splitter) NodeSummary(start, end int) (value, weightedN float64) {
	h, _ := sp.x.Dims()
	column := make([]float64, h)
	AxisProjection(0).Materialize(sp.x, column)

	crit := sp.newCriterion()
	crit.BindWeights(sp.sampleWeight, sp.weightedNTotal, sp.perm)
	HandleError(crit.BindNode(column, start, end))

	out := make([]float64, 1)
	HandleError(crit.NodeValue(out))
	return out[0], crit.WeightedNNode()
}
