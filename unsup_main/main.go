package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/jarrodmillman/unsuptree/utl"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	utl.HandleError(err)
	defer func() { utl.HandleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	utl.HandleError(decoder.Decode(out))
}

type FitConfig struct {
	FileNameX           string  `json:"filename_features"`
	FileNameWeight      string  `json:"filename_sample_weight"`
	FileNameModel       string  `json:"filename_model"`
	Criterion           string  `json:"criterion"`
	MaxDepth            int     `json:"max_depth"`
	MinSamplesSplit     int     `json:"min_samples_split"`
	MinSamplesLeaf      int     `json:"min_samples_leaf"`
	MinImpurityDecrease float64 `json:"min_impurity_decrease"`
	NProjections        int     `json:"n_projections"`
	FeatureCombinations float64 `json:"feature_combinations"`
	ThreadsNum          int     `json:"threads_num"`
	Seed                int64   `json:"seed"`
	NClusters           int     `json:"n_clusters"`
}

func fit(srcConfig string) {
	var fitConfig FitConfig
	decodeConfig(srcConfig, &fitConfig)

	log.Println("load features")
	um := utl.ReadUMatrix(fitConfig.FileNameX, fitConfig.FileNameWeight)

	params := utl.TreeParams{
		Criterion:           fitConfig.Criterion,
		MaxDepth:            fitConfig.MaxDepth,
		MinSamplesSplit:     fitConfig.MinSamplesSplit,
		MinSamplesLeaf:      fitConfig.MinSamplesLeaf,
		MinImpurityDecrease: fitConfig.MinImpurityDecrease,
		NProjections:        fitConfig.NProjections,
		FeatureCombinations: fitConfig.FeatureCombinations,
		ThreadsNum:          fitConfig.ThreadsNum,
		Seed:                fitConfig.Seed,
	}

	tree, err := utl.Fit(um, params)
	utl.HandleError(err)

	nClusters := fitConfig.NClusters
	if nClusters < 1 {
		nClusters = 2
	}
	leaves := tree.Apply(um.X)
	labels := utl.AssignLabels(utl.AffinityMatrix(leaves), nClusters)

	model := utl.Model{Tree: tree, Params: params, Labels: labels}
	model.Save(fitConfig.FileNameModel)
}

type PredictConfig struct {
	FileNameX      string `json:"filename_features"`
	FileNameModel  string `json:"filename_model"`
	FileNameLabels string `json:"filename_labels"`
	NClusters      int    `json:"n_clusters"`
}

func predict(srcConfig string) {
	var predictConfig PredictConfig
	decodeConfig(srcConfig, &predictConfig)

	x := utl.ReadNpy(predictConfig.FileNameX)
	model := utl.LoadModel(predictConfig.FileNameModel)

	nClusters := predictConfig.NClusters
	if nClusters < 1 {
		nClusters = 2
	}
	labels := model.Predict(x, nClusters)

	labelMat := mat.NewDense(len(labels), 1, nil)
	for p, label := range labels {
		labelMat.Set(p, 0, float64(label))
	}

	dst, err := os.Create(predictConfig.FileNameLabels)
	utl.HandleError(err)
	defer func() { utl.HandleError(dst.Close()) }()
	utl.HandleError(npyio.Write(dst, labelMat))
}

type GraphConfig struct {
	ModelFileName     string `json:"filename_model"`
	FigureType        string `json:"figure_type"`
	PicturesDirectory string `json:"pictures_directory"`
	DumpPrefix        string `json:"dump_prefix"`
}

func graph(srcConfig string) {
	var graphConfig GraphConfig
	decodeConfig(srcConfig, &graphConfig)

	model := utl.LoadModel(graphConfig.ModelFileName)
	model.RenderTree(graphConfig.DumpPrefix, graphConfig.FigureType, graphConfig.PicturesDirectory)
}

func main() {
	runMode := flag.String("mode", "fit", "you can select either 'fit', 'predict' or 'graph' modes")
	config := flag.String("config", "unsup_config.json", "a config file for the run of the program")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	flag.Parse()

	map[string]func(string){
		"fit":     fit,
		"predict": predict,
		"graph":   graph,
	}[*runMode](*config)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		utl.HandleError(err)
		defer func() { utl.HandleError(f.Close()) }()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
