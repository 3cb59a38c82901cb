package utl

import (
	"gorgonia.org/tensor"
)

//AffinityMatrix counts, for every pair of samples, how often they fall into
//the same leaf. For a single tree the counts are zero or one; the matrix is
//kept as counts so that several trees can be accumulated into the same cube.
func AffinityMatrix(leaves []int) *tensor.Dense {
	n := len(leaves)
	affinity := tensor.New(tensor.WithShape(n, n), tensor.Of(tensor.Float64))
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if leaves[p] == leaves[q] {
				HandleError(affinity.SetAt(1.0, p, q))
			}
		}
	}
	return affinity
}

//AccumulateAffinity adds the leaf co-occurrences of one more tree into an
//existing affinity matrix.
func AccumulateAffinity(affinity *tensor.Dense, leaves []int) {
	n := len(leaves)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if leaves[p] == leaves[q] {
				element, err := affinity.At(p, q)
				HandleError(err)
				HandleError(affinity.SetAt(element.(float64)+1.0, p, q))
			}
		}
	}
}

//AssignLabels groups samples into nClusters clusters by single-linkage
//agglomerative clustering of the affinity matrix: the pair of clusters with
//the highest affinity between any two members is merged first.
func AssignLabels(affinity *tensor.Dense, nClusters int) []int {
	shape := affinity.Shape()
	n := shape[0]
	if nClusters < 1 {
		nClusters = 1
	}

	labels := make([]int, n)
	clusters := make([][]int, n)
	for p := 0; p < n; p++ {
		clusters[p] = []int{p}
	}

	for len(clusters) > nClusters {
		bestA, bestB := -1, -1
		bestAffinity := 0.0
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				linkage := 0.0
				for _, p := range clusters[a] {
					for _, q := range clusters[b] {
						element, err := affinity.At(p, q)
						HandleError(err)
						if value := element.(float64); value > linkage {
							linkage = value
						}
					}
				}
				if bestA == -1 || linkage > bestAffinity {
					bestA, bestB = a, b
					bestAffinity = linkage
				}
			}
		}

		clusters[bestA] = append(clusters[bestA], clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	for label, members := range clusters {
		for _, p := range members {
			labels[p] = label
		}
	}
	return labels
}
