package utl

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

func affinityAt(t *testing.T, affinity *tensor.Dense, p, q int) float64 {
	t.Helper()
	element, err := affinity.At(p, q)
	if err != nil {
		t.Fatalf("affinity at (%d, %d): %v", p, q, err)
	}
	return element.(float64)
}

func TestAffinityMatrixCounts(t *testing.T) {
	affinity := AffinityMatrix([]int{0, 0, 1})

	if got := affinityAt(t, affinity, 0, 1); got != 1 {
		t.Fatalf("samples sharing a leaf scored %g, want 1", got)
	}
	if got := affinityAt(t, affinity, 0, 2); got != 0 {
		t.Fatalf("samples in different leaves scored %g, want 0", got)
	}
	for p := 0; p < 3; p++ {
		if got := affinityAt(t, affinity, p, p); got != 1 {
			t.Fatalf("diagonal entry %d = %g, want 1", p, got)
		}
	}
}

func TestAccumulateAffinity(t *testing.T) {
	affinity := AffinityMatrix([]int{0, 0, 1, 1})
	AccumulateAffinity(affinity, []int{0, 1, 1, 1})

	if got := affinityAt(t, affinity, 0, 1); got != 1 {
		t.Fatalf("pair co-occurring once scored %g, want 1", got)
	}
	if got := affinityAt(t, affinity, 2, 3); got != 2 {
		t.Fatalf("pair co-occurring twice scored %g, want 2", got)
	}
	if got := affinityAt(t, affinity, 0, 2); got != 0 {
		t.Fatalf("pair never co-occurring scored %g, want 0", got)
	}
}

func TestAssignLabelsGroupsByLeaf(t *testing.T) {
	labels := AssignLabels(AffinityMatrix([]int{0, 0, 1, 1}), 2)

	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Fatalf("labels %v split a leaf", labels)
	}
	if labels[0] == labels[2] {
		t.Fatalf("labels %v merge the two leaves", labels)
	}
}

func TestAssignLabelsMergesWeakestLink(t *testing.T) {
	// Three leaves; leaves 1 and 2 co-occur in a second tree, so cutting at
	// two clusters must merge them and keep leaf 0 apart.
	affinity := AffinityMatrix([]int{0, 0, 1, 2})
	AccumulateAffinity(affinity, []int{0, 0, 1, 1})

	labels := AssignLabels(affinity, 2)
	if labels[0] != labels[1] {
		t.Fatalf("labels %v split the strongest pair", labels)
	}
	if labels[2] != labels[3] {
		t.Fatalf("labels %v keep the co-occurring leaves apart", labels)
	}
	if labels[0] == labels[2] {
		t.Fatalf("labels %v collapse everything into one cluster", labels)
	}
}

func TestProjectionMaterialize(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	proj := Projection{Indices: []int{0, 2}, Weights: []float64{1, -1}}

	out := make([]float64, 2)
	proj.Materialize(x, out)
	if out[0] != -2 || out[1] != -2 {
		t.Fatalf("materialized column %v, want [-2 -2]", out)
	}
	if got := proj.At(x, 1); got != -2 {
		t.Fatalf("projection at row 1 = %g, want -2", got)
	}
}
