package core

import "errors"

// Validation and lifecycle failures surfaced by the Manager. All are
// detected eagerly at the call that received the invalid input; none leave
// partial state behind.
var (
	ErrUnsupportedModelKind  = errors.New("unsupported model kind")
	ErrDatasetNotFound       = errors.New("dataset not found")
	ErrInvalidTarget         = errors.New("invalid target column")
	ErrInvalidFeatureList    = errors.New("invalid feature list")
	ErrInvalidTestFraction   = errors.New("invalid test fraction")
	ErrInvalidHyperparameter = errors.New("invalid hyperparameter")
	ErrSchemaMismatch        = errors.New("schema mismatch")
	ErrModelNotFitted        = errors.New("model not fitted")
	ErrInvalidArgumentType   = errors.New("invalid argument type")
)

// Archive persistence failures.
var (
	ErrArchiveWrite    = errors.New("failed to write archive")
	ErrArchiveNotFound = errors.New("archive not found")
	ErrCorruptArchive  = errors.New("corrupt archive")
)
