package ucl

import "fmt"

//TwoMeans scores splits by the weighted variance of the node and of each
//tentative child. Minimizing the summed child variances over all contiguous
//cut points of the sorted column is the one-dimensional 2-means objective.
type TwoMeans struct {
	NodeStats
}

//NewTwoMeans returns an unbound two-means criterion.
func NewTwoMeans() *TwoMeans {
	return &TwoMeans{}
}

//NodeImpurity returns the weighted variance of the whole node.
func (c *TwoMeans) NodeImpurity() (float64, error) {
	if !c.nodeBound {
		return 0, fmt.Errorf("node impurity: %w", ErrNotInitialized)
	}
	mean := c.sumTotal / c.weightedNNode
	ss, err := c.WeightedSumOfSquares(c.start, c.end, mean)
	if err != nil {
		return 0, err
	}
	return ss / c.weightedNNode, nil
}

//ChildrenImpurity returns the weighted variance of the tentative left and
//right children at the current cursor. The cursor must lie strictly inside
//(start, end); a boundary cursor leaves one child empty and its variance
//undefined, which the split search never probes.
func (c *TwoMeans) ChildrenImpurity() (float64, float64, error) {
	if !c.nodeBound {
		return 0, 0, fmt.Errorf("children impurity: %w", ErrNotInitialized)
	}
	meanLeft := c.sumLeft / c.weightedNLeft
	meanRight := c.sumRight / c.weightedNRight

	ssLeft, err := c.WeightedSumOfSquares(c.start, c.pos, meanLeft)
	if err != nil {
		return 0, 0, err
	}
	ssRight, err := c.WeightedSumOfSquares(c.pos, c.end, meanRight)
	if err != nil {
		return 0, 0, err
	}
	return ssLeft / c.weightedNLeft, ssRight / c.weightedNRight, nil
}
