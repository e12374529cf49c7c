// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gotraj

import (
	"errors"
	"fmt"
)

var (
	// Sounding could not be parsed or failed validation
	ErrInvalidSounding = errors.New("invalid meteo data")

	// Interpolation needs two samples with distinct heights
	ErrInterpolationRange = errors.New("interpolation range error")

	// Integration did not reach a termination condition within SimOpt.MaxSteps
	ErrTerminationLimitExceeded = errors.New("termination limit exceeded")
)

// ValidationError reports a run input outside its physical bounds.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func invalid(field string, value float64, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
