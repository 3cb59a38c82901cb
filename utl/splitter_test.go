package utl

import (
	"math"
	"testing"

	"github.com/jarrodmillman/unsuptree/ucl"
	"gonum.org/v1/gonum/mat"
)

func twoMeansFactory() ucl.Criterion { return ucl.NewTwoMeans() }
func fastBICFactory() ucl.Criterion  { return ucl.NewFastBIC() }

func bimodalMatrix() UMatrix {
	return UMatrix{X: mat.NewDense(6, 1, []float64{0, 0, 0, 100, 100, 100})}
}

func TestSplitterFindsBimodalBoundary(t *testing.T) {
	um := bimodalMatrix()
	splitter := NewSplitter(um, twoMeansFactory, 1, 1)

	best, ok := splitter.BestSplit(AxisProjections(1), 0, 6)
	if !ok {
		t.Fatalf("no valid split found on bimodal data")
	}
	if best.Pos != 3 {
		t.Fatalf("best position = %d, want 3", best.Pos)
	}
	if math.Abs(best.Threshold-50) > 1e-9 {
		t.Fatalf("threshold = %g, want 50", best.Threshold)
	}
	if best.ImpurityLeft > 1e-9 || best.ImpurityRight > 1e-9 {
		t.Fatalf("pure children scored (%g, %g), want zero variance", best.ImpurityLeft, best.ImpurityRight)
	}

	perm := splitter.Perm()
	for p := 0; p < 3; p++ {
		if um.X.At(perm[p], 0) != 0 {
			t.Fatalf("permutation slot %d holds sample %d from the wrong side", p, perm[p])
		}
	}
	for p := 3; p < 6; p++ {
		if um.X.At(perm[p], 0) != 100 {
			t.Fatalf("permutation slot %d holds sample %d from the wrong side", p, perm[p])
		}
	}
}

func TestSplitterFastBICFindsBimodalBoundary(t *testing.T) {
	splitter := NewSplitter(bimodalMatrix(), fastBICFactory, 1, 1)

	best, ok := splitter.BestSplit(AxisProjections(1), 0, 6)
	if !ok {
		t.Fatalf("no valid split found on bimodal data")
	}
	if best.Pos != 3 {
		t.Fatalf("best position = %d, want 3", best.Pos)
	}
	if math.Abs(best.Threshold-50) > 1e-9 {
		t.Fatalf("threshold = %g, want 50", best.Threshold)
	}
}

func TestSplitterRespectsMinSamplesLeaf(t *testing.T) {
	um := UMatrix{X: mat.NewDense(5, 1, []float64{0, 1, 2, 3, 100})}

	loose := NewSplitter(um, twoMeansFactory, 1, 1)
	best, ok := loose.BestSplit(AxisProjections(1), 0, 5)
	if !ok || best.Pos != 4 {
		t.Fatalf("minSamplesLeaf 1: best position = %d (valid %v), want 4", best.Pos, ok)
	}

	tight := NewSplitter(um, twoMeansFactory, 2, 1)
	best, ok = tight.BestSplit(AxisProjections(1), 0, 5)
	if !ok {
		t.Fatalf("minSamplesLeaf 2: no valid split")
	}
	if best.Pos != 3 {
		t.Fatalf("minSamplesLeaf 2: best position = %d, want 3", best.Pos)
	}
}

func TestSplitterParallelMatchesSerial(t *testing.T) {
	x := mat.NewDense(8, 3, nil)
	for p := 0; p < 8; p++ {
		x.Set(p, 0, float64(p))
		if p < 4 {
			x.Set(p, 1, 0)
		} else {
			x.Set(p, 1, 50)
		}
		x.Set(p, 2, 7)
	}
	um := UMatrix{X: x}

	serial := NewSplitter(um, twoMeansFactory, 1, 1)
	serialBest, serialOk := serial.BestSplit(AxisProjections(3), 0, 8)

	parallel := NewSplitter(um, twoMeansFactory, 1, 3)
	parallelBest, parallelOk := parallel.BestSplit(AxisProjections(3), 0, 8)

	if serialOk != parallelOk {
		t.Fatalf("serial valid %v, parallel valid %v", serialOk, parallelOk)
	}
	if serialBest.Pos != parallelBest.Pos || serialBest.Threshold != parallelBest.Threshold {
		t.Fatalf("serial split (%d, %g) differs from parallel split (%d, %g)",
			serialBest.Pos, serialBest.Threshold, parallelBest.Pos, parallelBest.Threshold)
	}
	if serialBest.Proj.Indices[0] != 1 {
		t.Fatalf("best projection reads feature %d, want the bimodal feature 1", serialBest.Proj.Indices[0])
	}
}

func TestSplitterUsesWeights(t *testing.T) {
	um := UMatrix{
		X:            mat.NewDense(4, 1, []float64{0, 0, 10, 10}),
		SampleWeight: []float64{2, 2, 2, 2},
	}
	splitter := NewSplitter(um, twoMeansFactory, 1, 1)

	best, ok := splitter.BestSplit(AxisProjections(1), 0, 4)
	if !ok || best.Pos != 2 {
		t.Fatalf("weighted bimodal split at position %d (valid %v), want 2", best.Pos, ok)
	}
	if math.Abs(best.WeightedNNode-8) > 1e-9 {
		t.Fatalf("weighted node count = %g, want 8", best.WeightedNNode)
	}
	if math.Abs(best.WeightedNLeft-4) > 1e-9 || math.Abs(best.WeightedNRight-4) > 1e-9 {
		t.Fatalf("weighted child counts = (%g, %g), want (4, 4)", best.WeightedNLeft, best.WeightedNRight)
	}
}
