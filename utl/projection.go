package utl

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//Projection is one candidate split direction: a sparse linear combination of
//the input features. An axis-aligned projection has a single index with unit
//weight; oblique projections combine a few features with signed weights.
type Projection struct {
	Indices []int     `json:"indices"`
	Weights []float64 `json:"weights"`
}

//AxisProjection returns the projection that reads feature j directly.
func AxisProjection(j int) Projection {
	return Projection{Indices: []int{j}, Weights: []float64{1.0}}
}

//At evaluates the projection on one row of the feature matrix.
func (pr Projection) At(x *mat.Dense, row int) float64 {
	val := 0.0
	for k, j := range pr.Indices {
		val += pr.Weights[k] * x.At(row, j)
	}
	return val
}

//Materialize fills out with the projected value of every row, producing the
//1-D feature column the criterion consumes.
func (pr Projection) Materialize(x *mat.Dense, out []float64) {
	h, _ := x.Dims()
	for p := 0; p < h; p++ {
		out[p] = pr.At(x, p)
	}
}

//SampleProjections draws nProjections sparse oblique projections over
//nFeatures input features. Each projection combines featureCombinations
//features on average, at least one, with weights drawn from {-1, +1}.
func SampleProjections(rng *rand.Rand, nFeatures, nProjections int, featureCombinations float64) []Projection {
	projections := make([]Projection, nProjections)
	for q := range projections {
		nnz := int(featureCombinations)
		if remainder := featureCombinations - float64(nnz); remainder > 0 && rng.Float64() < remainder {
			nnz++
		}
		if nnz < 1 {
			nnz = 1
		}
		if nnz > nFeatures {
			nnz = nFeatures
		}

		chosen := rng.Perm(nFeatures)[:nnz]
		weights := make([]float64, nnz)
		for k := range weights {
			if rng.Intn(2) == 0 {
				weights[k] = 1.0
			} else {
				weights[k] = -1.0
			}
		}
		projections[q] = Projection{Indices: chosen, Weights: weights}
	}
	return projections
}

//AxisProjections returns one axis-aligned projection per input feature.
func AxisProjections(nFeatures int) []Projection {
	projections := make([]Projection, nFeatures)
	for j := range projections {
		projections[j] = AxisProjection(j)
	}
	return projections
}
