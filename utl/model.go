package utl

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"gonum.org/v1/gonum/mat"
)

//Model wraps a fitted tree together with its fitting parameters and the
//affinity-derived cluster labels of the training set.
type Model struct {
	Tree   *UnsupTree
	Params TreeParams
	Labels []int
}

//Predict assigns cluster labels to the rows of x by clustering the leaf
//co-occurrence affinity of the fitted tree.
func (model Model) Predict(x *mat.Dense, nClusters int) []int {
	leaves := model.Tree.Apply(x)
	return AssignLabels(AffinityMatrix(leaves), nClusters)
}

//Save writes the model as indented JSON.
func (model Model) Save(filename string) {
	dest, err := os.Create(filename)
	if err != nil {
		log.Print("can't open file ", filename, " to write")
	}
	HandleError(err)
	defer func() { HandleError(dest.Close()) }()

	modelByteRepr, err := json.MarshalIndent(model, "", "  ")
	HandleError(err)

	_, err = dest.Write(modelByteRepr)
	HandleError(err)
}

//LoadModel reads a model saved by Save.
func LoadModel(filename string) (model Model) {
	source, err := os.Open(filename)
	HandleError(err)
	defer func() { HandleError(source.Close()) }()

	decoder := json.NewDecoder(source)
	HandleError(decoder.Decode(&model))
	return
}

//GetLeafDescription returns the description of a leaf node.
func (tree *UnsupTree) GetLeafDescription(ind int) string {
	return tree.LeafNodes[tree.TreeNodes[ind].LeafIndex].GraphDescription()
}

//GetNodeDescription returns the description of an internal node.
func (tree *UnsupTree) GetNodeDescription(ind int) string {
	return tree.TreeNodes[ind].GraphDescription()
}

func recurrentDraw(g *cgraph.Graph, tree *UnsupTree, nodeNumber int, parentNode *cgraph.Node) {
	currentNode, err := g.CreateNode(fmt.Sprint(tree.TreeNodes[nodeNumber].TreeNodeId))
	HandleError(err)

	if parentNode != nil {
		g.CreateEdge("", parentNode, currentNode)
	}

	if tree.TreeNodes[nodeNumber].IsLeaf() {
		currentNode.Set("label", tree.GetLeafDescription(nodeNumber))
		currentNode.Set("shape", "box")
	} else {
		currentNode.Set("label", tree.GetNodeDescription(nodeNumber))
		recurrentDraw(g, tree, tree.TreeNodes[nodeNumber].LeftIndex, currentNode)
		recurrentDraw(g, tree, tree.TreeNodes[nodeNumber].RightIndex, currentNode)
	}
}

//DrawGraph renders the tree as a graphviz graph.
func (tree *UnsupTree) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	HandleError(err)

	recurrentDraw(graph, tree, 0, nil)

	return graphViz, graph
}

//RenderTree writes a picture of the fitted tree.
func (model Model) RenderTree(dumpPrefix, figureType, picturesDirectory string) {
	graphvizType := map[string]graphviz.Format{
		"png": graphviz.PNG,
		"svg": graphviz.SVG,
		"jpg": graphviz.JPG,
	}[figureType]

	filename := fmt.Sprintf("%s.%s", dumpPrefix, figureType)
	graphViz, graph := model.Tree.DrawGraph()
	HandleError(graphViz.RenderFilename(graph, graphvizType, path.Join(picturesDirectory, filename)))
}
