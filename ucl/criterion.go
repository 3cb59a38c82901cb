//Package ucl implements unsupervised split criteria for tree partitioning.
//A criterion scores candidate binary splits of one sorted feature column by
//maintaining running weighted sums while the split cursor sweeps the node.
package ucl

import (
	"errors"
	"fmt"
)

var (
	//ErrNotInitialized is returned when a scoring operation runs before the required bind call.
	ErrNotInitialized = errors.New("criterion is not initialized")
	//ErrInvalidInput is returned for malformed bounds or mismatched array lengths.
	ErrInvalidInput = errors.New("invalid input")
)

//Criterion is the contract the split search relies on. TwoMeans and FastBIC
//both satisfy it on top of the shared NodeStats bookkeeping.
type Criterion interface {
	BindWeights(sampleWeight []float64, weightedNTotal float64, sampleIndices []int)
	BindNode(feature []float64, start, end int) error
	ResetToStart() error
	ResetToEnd() error
	AdvanceTo(newPos int) error
	WeightedSumOfSquares(lo, hi int, mean float64) (float64, error)
	NodeImpurity() (float64, error)
	ChildrenImpurity() (float64, float64, error)
	NodeValue(out []float64) error
	Pos() int
	Start() int
	End() int
	WeightedNTotal() float64
	WeightedNNode() float64
	WeightedNLeft() float64
	WeightedNRight() float64
}

//NodeStats owns the running aggregates of one node window over one feature
//column: the total weighted sum and the left/right sums of the tentative
//children on both sides of the split cursor. Moving the cursor one sample
//costs O(1); a full sweep over a node costs O(n).
//
//One NodeStats instance serves one worker. The weight vector and the index
//permutation are shared with the builder and never mutated here.
type NodeStats struct {
	sampleWeight   []float64
	sampleIndices  []int
	weightedNTotal float64

	feature []float64
	start   int
	end     int
	pos     int

	sumTotal float64
	sumLeft  float64
	sumRight float64

	weightedNNode  float64
	weightedNLeft  float64
	weightedNRight float64

	weightsBound bool
	nodeBound    bool
}

//BindWeights stores the shared sample weights and index permutation. It must
//be called once before any node is evaluated. A nil sampleWeight means unit
//weight for every sample.
func (s *NodeStats) BindWeights(sampleWeight []float64, weightedNTotal float64, sampleIndices []int) {
	s.sampleWeight = sampleWeight
	s.weightedNTotal = weightedNTotal
	s.sampleIndices = sampleIndices
	s.weightsBound = true
	s.nodeBound = false
}

func (s *NodeStats) weightOf(index int) float64 {
	if s.sampleWeight == nil {
		return 1.0
	}
	return s.sampleWeight[index]
}

//BindNode binds the feature column and the node window [start, end),
//recomputes sumTotal and the weighted node count from scratch and rests the
//cursor at start. Every statistic of a previous binding is overwritten.
func (s *NodeStats) BindNode(feature []float64, start, end int) error {
	if !s.weightsBound {
		return fmt.Errorf("bind node: weights are not bound: %w", ErrNotInitialized)
	}
	if start < 0 || start > end || end > len(s.sampleIndices) {
		return fmt.Errorf("bind node: window [%d, %d) out of range for %d indices: %w",
			start, end, len(s.sampleIndices), ErrInvalidInput)
	}

	sumTotal := 0.0
	weightedNNode := 0.0
	for p := start; p < end; p++ {
		index := s.sampleIndices[p]
		if index < 0 || index >= len(feature) {
			return fmt.Errorf("bind node: permutation refers to sample %d outside the feature column of length %d: %w",
				index, len(feature), ErrInvalidInput)
		}
		if s.sampleWeight != nil && index >= len(s.sampleWeight) {
			return fmt.Errorf("bind node: permutation refers to sample %d outside the weight vector of length %d: %w",
				index, len(s.sampleWeight), ErrInvalidInput)
		}
		w := s.weightOf(index)
		sumTotal += w * feature[index]
		weightedNNode += w
	}

	s.feature = feature
	s.start = start
	s.end = end
	s.sumTotal = sumTotal
	s.weightedNNode = weightedNNode
	s.nodeBound = true

	return s.ResetToStart()
}

//ResetToStart places the cursor at start: the left child is empty, the right
//child holds the whole node.
func (s *NodeStats) ResetToStart() error {
	if !s.nodeBound {
		return fmt.Errorf("reset to start: %w", ErrNotInitialized)
	}
	s.pos = s.start
	s.sumLeft = 0
	s.sumRight = s.sumTotal
	s.weightedNLeft = 0
	s.weightedNRight = s.weightedNNode
	return nil
}

//ResetToEnd is the mirror image: the left child holds the whole node.
func (s *NodeStats) ResetToEnd() error {
	if !s.nodeBound {
		return fmt.Errorf("reset to end: %w", ErrNotInitialized)
	}
	s.pos = s.end
	s.sumLeft = s.sumTotal
	s.sumRight = 0
	s.weightedNLeft = s.weightedNNode
	s.weightedNRight = 0
	return nil
}

//AdvanceTo moves the split cursor to newPos, updating the child sums
//incrementally. It sweeps forward from the current cursor or backward from
//the end after a reverse reset, whichever touches fewer samples, so that a
//monotone sweep over all positions stays linear in the node size. The right
//sums are always recomputed from the totals to keep the two children free of
//subtraction drift.
func (s *NodeStats) AdvanceTo(newPos int) error {
	if !s.nodeBound {
		return fmt.Errorf("advance: %w", ErrNotInitialized)
	}
	if newPos < s.start || newPos > s.end {
		return fmt.Errorf("advance: position %d outside window [%d, %d]: %w",
			newPos, s.start, s.end, ErrInvalidInput)
	}

	if newPos >= s.pos && newPos-s.pos <= s.end-newPos {
		for p := s.pos; p < newPos; p++ {
			index := s.sampleIndices[p]
			w := s.weightOf(index)
			s.sumLeft += w * s.feature[index]
			s.weightedNLeft += w
		}
	} else {
		if err := s.ResetToEnd(); err != nil {
			return err
		}
		for p := s.end - 1; p >= newPos; p-- {
			index := s.sampleIndices[p]
			w := s.weightOf(index)
			s.sumLeft -= w * s.feature[index]
			s.weightedNLeft -= w
		}
	}

	s.pos = newPos
	s.sumRight = s.sumTotal - s.sumLeft
	s.weightedNRight = s.weightedNNode - s.weightedNLeft
	return nil
}

//WeightedSumOfSquares computes sum w_i (x_i - mean)^2 over the index window
//[lo, hi) in one weighted pass.
func (s *NodeStats) WeightedSumOfSquares(lo, hi int, mean float64) (float64, error) {
	if !s.nodeBound {
		return 0, fmt.Errorf("weighted sum of squares: %w", ErrNotInitialized)
	}
	if lo < s.start || lo > hi || hi > s.end {
		return 0, fmt.Errorf("weighted sum of squares: window [%d, %d) outside node [%d, %d): %w",
			lo, hi, s.start, s.end, ErrInvalidInput)
	}
	ss := 0.0
	for p := lo; p < hi; p++ {
		index := s.sampleIndices[p]
		d := s.feature[index] - mean
		ss += s.weightOf(index) * d * d
	}
	return ss, nil
}

//NodeValue writes the node's representative statistic, the weighted feature
//sum over the whole node, into the caller-supplied slot.
func (s *NodeStats) NodeValue(out []float64) error {
	if !s.nodeBound {
		return fmt.Errorf("node value: %w", ErrNotInitialized)
	}
	if len(out) < 1 {
		return fmt.Errorf("node value: empty output buffer: %w", ErrInvalidInput)
	}
	out[0] = s.sumTotal
	return nil
}

//Pos returns the current split cursor.
func (s *NodeStats) Pos() int { return s.pos }

//Start returns the left boundary of the bound node window.
func (s *NodeStats) Start() int { return s.start }

//End returns the right boundary of the bound node window.
func (s *NodeStats) End() int { return s.end }

//SumTotal returns the weighted feature sum over the whole node.
func (s *NodeStats) SumTotal() float64 { return s.sumTotal }

//SumLeft returns the weighted feature sum over the tentative left child.
func (s *NodeStats) SumLeft() float64 { return s.sumLeft }

//SumRight returns the weighted feature sum over the tentative right child.
func (s *NodeStats) SumRight() float64 { return s.sumRight }

//WeightedNTotal returns the weighted sample count of the whole tree.
func (s *NodeStats) WeightedNTotal() float64 { return s.weightedNTotal }

//WeightedNNode returns the weighted sample count of the bound node.
func (s *NodeStats) WeightedNNode() float64 { return s.weightedNNode }

//WeightedNLeft returns the weighted sample count of the tentative left child.
func (s *NodeStats) WeightedNLeft() float64 { return s.weightedNLeft }

//WeightedNRight returns the weighted sample count of the tentative right child.
func (s *NodeStats) WeightedNRight() float64 { return s.weightedNRight }
