package core

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"landslide-backend/internal/classifier"
	"landslide-backend/internal/dataset"
)

// managerArchive is the gob wire form of a Manager. The format is opaque to
// callers and carries everything needed to reconstruct predictive behavior
// exactly; no cross-version compatibility is promised.
type managerArchive struct {
	Spec    ModelSpec
	Params  map[string]any
	Classes []string
	Split   dataset.Split

	Classifier classifier.Classifier
	Fitted     bool

	TestPred []int
	LastPred []string
	Report   *Report
}

func init() {
	gob.Register(&classifier.RandomForest{})
	gob.Register(&classifier.SVM{})
	gob.Register(&classifier.GBM{})
}

// WriteArchive serializes the full manager state to w.
func (m *Manager) WriteArchive(w io.Writer) error {
	archive := managerArchive{
		Spec:       m.spec,
		Params:     m.params,
		Classes:    m.classes,
		Split:      m.split,
		Classifier: m.clf,
		Fitted:     m.fitted,
		TestPred:   m.testPred,
		LastPred:   m.lastPred,
		Report:     m.report,
	}
	if err := gob.NewEncoder(w).Encode(&archive); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	return nil
}

// ReadArchive reconstructs a Manager from a blob produced by WriteArchive.
func ReadArchive(r io.Reader) (*Manager, error) {
	var archive managerArchive
	if err := gob.NewDecoder(r).Decode(&archive); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	if archive.Classifier == nil || !archive.Spec.Kind.valid() {
		return nil, fmt.Errorf("%w: incomplete manager state", ErrCorruptArchive)
	}
	return &Manager{
		spec:     archive.Spec,
		params:   archive.Params,
		classes:  archive.Classes,
		split:    archive.Split,
		clf:      archive.Classifier,
		fitted:   archive.Fitted,
		testPred: archive.TestPred,
		lastPred: archive.LastPred,
		report:   archive.Report,
	}, nil
}

// Save writes the manager archive to a file.
func (m *Manager) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	if err := m.WriteArchive(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	return nil
}

// LoadManager reads a manager archive from a file.
func LoadManager(path string) (*Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer f.Close()
	return ReadArchive(f)
}
