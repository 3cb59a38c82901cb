//Package utl builds unsupervised partitioning trees on top of the split
//criteria in package ucl: datasets, projections, the best-split search, the
//depth-first builder and the affinity-based cluster labels.
package utl

import (
	"log"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

//UMatrix holds one dataset for unsupervised fitting: the sample-by-feature
//matrix and an optional per-sample weight vector.
type UMatrix struct {
	X            *mat.Dense
	SampleWeight []float64
	Description  *string
}

//SetDescription sets a description used in log messages.
func (um *UMatrix) SetDescription(description string) {
	um.Description = &description
}

//ReadUMatrix reads the feature matrix and, when fileNameWeight is non-empty,
//the sample weights of a dataset.
func ReadUMatrix(fileNameX, fileNameWeight string) (um UMatrix) {
	log.Print("\ttry to load features <", fileNameX, ">")
	um.X = ReadNpy(fileNameX)

	if fileNameWeight != "" {
		log.Print("\ttry to load weights <", fileNameWeight, ">")
		weightMat := ReadNpy(fileNameWeight)
		h := Height(weightMat)
		um.SampleWeight = make([]float64, h)
		for p := 0; p < h; p++ {
			um.SampleWeight[p] = weightMat.At(p, 0)
		}
	}

	return
}

//ReadNpy reads the content of an npy file.
func ReadNpy(fileName string) (denseMat *mat.Dense) {
	f, err := os.Open(fileName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { HandleError(f.Close()) }()

	r, err := npyio.NewReader(f)
	if err != nil {
		log.Fatal(err)
	}

	denseMat = &mat.Dense{}
	HandleError(r.Read(denseMat))
	return
}

//validatedDimensions checks the consistency of the dataset arrays and returns
//the height (the number of samples) and the width (the number of features).
func (um UMatrix) validatedDimensions() (h, w int) {
	h, w = um.X.Dims()
	if um.SampleWeight != nil && len(um.SampleWeight) != h {
		log.Panicf("the weight length %d is not equal to the sample count %d", len(um.SampleWeight), h)
	}
	return h, w
}

//weightedTotal returns the total sample weight, the plain count when no
//weights are present.
func (um UMatrix) weightedTotal() float64 {
	h, _ := um.X.Dims()
	if um.SampleWeight == nil {
		return float64(h)
	}
	total := 0.0
	for _, w := range um.SampleWeight {
		total += w
	}
	return total
}

//Height returns the number of rows of a dense matrix.
func Height(m *mat.Dense) int {
	h, _ := m.Dims()
	return h
}

//HandleError panics on a non-nil error.
func HandleError(err error) {
	if err != nil {
		log.Panic(err)
	}
}
