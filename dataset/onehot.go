package dataset

import (
	"github.com/pkg/errors"
)

// NumClasses is one more than the largest training label. A test label
// outside that range is an error rather than an invalid one-hot vector.
func NumClasses(train, test []int) (int, error) {
	if len(train) == 0 {
		return 0, errors.New("no training labels")
	}
	n := 0
	for i, l := range train {
		if l < 0 {
			return 0, errors.Errorf("train label %d is negative: %d", i, l)
		}
		n = max(n, l+1)
	}
	for i, l := range test {
		if l < 0 || l >= n {
			return 0, errors.Errorf("test label %d is %d, training labels only cover [0, %d)", i, l, n)
		}
	}
	return n, nil
}

func OneHot(labels []int, numClasses int) ([][]uint8, error) {
	ys := make([][]uint8, len(labels))
	for i, l := range labels {
		if l < 0 || l >= numClasses {
			return nil, errors.Errorf("label %d is %d, want [0, %d)", i, l, numClasses)
		}
		ys[i] = make([]uint8, numClasses)
		ys[i][l] = 1
	}
	return ys, nil
}
