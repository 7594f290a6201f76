package dataset

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/sw965/tst/tensorset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/blas/blas32"
)

// Files names the four idx files of a split dataset.
type Files struct {
	TrainImages string
	TrainLabels string
	TestImages  string
	TestLabels  string
}

var MNISTFiles = Files{
	TrainImages: "train-images-idx3-ubyte.gz",
	TrainLabels: "train-labels-idx1-ubyte.gz",
	TestImages:  "t10k-images-idx3-ubyte.gz",
	TestLabels:  "t10k-labels-idx1-ubyte.gz",
}

// Loader reads a dataset from local idx files. Fetching them is up to the caller.
type Loader struct {
	Dir    string
	Files  Files
	Logger *zap.SugaredLogger
}

func (l *Loader) Load() (Dataset, error) {
	if l.Logger == nil {
		l.Logger = zap.NewNop().Sugar()
	}
	trainImgs, trainShape, err := l.loadImages(l.Files.TrainImages)
	if err != nil {
		return Dataset{}, err
	}
	trainLabels, err := l.loadLabels(l.Files.TrainLabels)
	if err != nil {
		return Dataset{}, err
	}
	testImgs, testShape, err := l.loadImages(l.Files.TestImages)
	if err != nil {
		return Dataset{}, err
	}
	testLabels, err := l.loadLabels(l.Files.TestLabels)
	if err != nil {
		return Dataset{}, err
	}

	if !slices.Equal(trainShape, testShape) {
		return Dataset{}, errors.Errorf("train images are %v but test images are %v", trainShape, testShape)
	}
	l.Logger.Infof("Loaded %d train and %d test samples of shape %v", len(trainImgs), len(testImgs), trainShape)
	return Dataset{
		InputShape:  trainShape,
		TrainInputs: trainImgs,
		TrainLabels: trainLabels,
		TestInputs:  testImgs,
		TestLabels:  testLabels,
	}, nil
}

func (l *Loader) loadImages(name string) ([]blas32.Vector, tensorset.Shape, error) {
	path := filepath.Join(l.Dir, name)
	l.Logger.Debugf("Reading images from %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	imgs, shape, err := ReadIDXImages(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return imgs, shape, nil
}

func (l *Loader) loadLabels(name string) ([]int, error) {
	path := filepath.Join(l.Dir, name)
	l.Logger.Debugf("Reading labels from %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	labels, err := ReadIDXLabels(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return labels, nil
}
