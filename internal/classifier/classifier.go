package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Classifier is the contract shared by the supported model families. Fit
// trains on a row-major feature matrix with integer class labels; Predict
// returns one label per input row.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// ErrNotFitted is returned by Predict when Fit has not succeeded yet.
var ErrNotFitted = errors.New("classifier is not fitted")

// UnknownParamsError reports every hyperparameter name that the selected
// model family does not accept.
type UnknownParamsError struct {
	Names []string
}

func (e *UnknownParamsError) Error() string {
	return fmt.Sprintf("invalid hyperparameters found: %s", strings.Join(e.Names, ", "))
}

type paramSetter func(value any) error

// applyParams validates all names before applying any value, so a rejected
// set leaves the classifier untouched.
func applyParams(setters map[string]paramSetter, params map[string]any) error {
	var unknown []string
	for name := range params {
		if _, ok := setters[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownParamsError{Names: unknown}
	}
	for name, value := range params {
		if err := setters[name](value); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
	}
	return nil
}

func setInt(dst *int, value any) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("expected integer, got %v", v)
		}
		*dst = int(v)
	default:
		return fmt.Errorf("expected integer, got %T", value)
	}
	return nil
}

func setInt64(dst *int64, value any) error {
	var v int
	if err := setInt(&v, value); err != nil {
		return err
	}
	*dst = int64(v)
	return nil
}

func setFloat(dst *float64, value any) error {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
	return nil
}

func setBool(dst *bool, value any) error {
	v, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	*dst = v
	return nil
}

func checkTrainingData(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("empty feature matrix")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix has %d rows, labels have %d", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

func countClasses(y []int) int {
	max := 0
	for _, label := range y {
		if label > max {
			max = label
		}
	}
	return max + 1
}
