package dataset

import (
	"github.com/pkg/errors"
	"github.com/sw965/tst/blas32/vectors"
	"github.com/sw965/tst/tensorset"
	"gonum.org/v1/gonum/blas/blas32"
)

const (
	TrainInputs = "train_inputs"
	TrainLabels = "train_labels"
	TestInputs  = "test_inputs"
	TestLabels  = "test_labels"
)

// Dataset holds the raw splits. Inputs are interleaved (H, W, C) pixels.
type Dataset struct {
	InputShape  tensorset.Shape
	TrainInputs []blas32.Vector
	TrainLabels []int
	TestInputs  []blas32.Vector
	TestLabels  []int
}

type Options struct {
	// Normalize scales each input split by its own maximum.
	Normalize bool
}

func (d Dataset) validate() error {
	if len(d.TrainInputs) != len(d.TrainLabels) {
		return errors.Errorf("%d train inputs but %d train labels", len(d.TrainInputs), len(d.TrainLabels))
	}
	if len(d.TestInputs) != len(d.TestLabels) {
		return errors.Errorf("%d test inputs but %d test labels", len(d.TestInputs), len(d.TestLabels))
	}
	if err := vectors.SameN(d.TrainInputs); err != nil {
		return errors.Wrap(err, TrainInputs)
	}
	if err := vectors.SameN(d.TestInputs); err != nil {
		return errors.Wrap(err, TestInputs)
	}
	return nil
}

// Tensors returns the four tensors in the order train_inputs, train_labels,
// test_inputs, test_labels. d is not modified.
func (d Dataset) Tensors(opts Options) ([]tensorset.Tensor, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	train := vectors.Clone(d.TrainInputs)
	test := vectors.Clone(d.TestInputs)
	if opts.Normalize {
		if err := Normalize(train, MaxValue(train)); err != nil {
			return nil, errors.Wrap(err, TrainInputs)
		}
		if err := Normalize(test, MaxValue(test)); err != nil {
			return nil, errors.Wrap(err, TestInputs)
		}
	}

	n, err := NumClasses(d.TrainLabels, d.TestLabels)
	if err != nil {
		return nil, err
	}
	trainLabels, err := OneHot(d.TrainLabels, n)
	if err != nil {
		return nil, errors.Wrap(err, TrainLabels)
	}
	testLabels, err := OneHot(d.TestLabels, n)
	if err != nil {
		return nil, errors.Wrap(err, TestLabels)
	}

	labelShape := tensorset.Shape{n}
	return []tensorset.Tensor{
		tensorset.NewTensorFromVectors(TrainInputs, d.InputShape, train),
		tensorset.NewTensor(TrainLabels, labelShape, trainLabels),
		tensorset.NewTensorFromVectors(TestInputs, d.InputShape, test),
		tensorset.NewTensor(TestLabels, labelShape, testLabels),
	}, nil
}
