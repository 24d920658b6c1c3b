package core

import "fmt"

// ModelKind selects the classifier family backing a Manager.
type ModelKind string

// Supported model kinds.
const (
	RandomForest ModelKind = "RandomForest"
	SVM          ModelKind = "SVM"
	GBM          ModelKind = "GBM"
)

// ParseModelKind converts an untrusted string into a ModelKind. Callers
// inside the module work with the closed constant set; this is the only
// place an unknown kind can appear.
func ParseModelKind(s string) (ModelKind, error) {
	switch kind := ModelKind(s); kind {
	case RandomForest, SVM, GBM:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedModelKind, s)
	}
}

func (k ModelKind) valid() bool {
	switch k {
	case RandomForest, SVM, GBM:
		return true
	}
	return false
}
