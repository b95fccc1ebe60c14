// Package errs defines the error taxonomy shared by the scene exporter.
//
// Every failure raised while compiling a scene is a configuration or structural
// error. Components wrap one of the sentinels below with detail so callers can
// classify a failure with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Exporter error classes.
var (
	// ErrStructuralIndex reports non-contiguous or duplicated room and camera indices.
	ErrStructuralIndex = errors.New("structural index error")
	// ErrReference reports a room, header, camera or background image that cannot be resolved.
	ErrReference = errors.New("reference error")
	// ErrContinuity reports discontinuous actor cues and malformed camera splines.
	ErrContinuity = errors.New("continuity error")
	// ErrFormat reports malformed cutscene source text.
	ErrFormat = errors.New("format error")
	// ErrUnsupportedFeature reports a requested export the pipeline does not implement.
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrFieldOverflow reports a value that does not fit its packed bit field.
	ErrFieldOverflow = errors.New("field overflow")
)

// StructuralIndex returns an ErrStructuralIndex with a formatted detail.
func StructuralIndex(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructuralIndex, fmt.Sprintf(format, args...))
}

// Reference returns an ErrReference with a formatted detail.
func Reference(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReference, fmt.Sprintf(format, args...))
}

// Continuity returns an ErrContinuity with a formatted detail.
func Continuity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContinuity, fmt.Sprintf(format, args...))
}

// Format returns an ErrFormat with a formatted detail.
func Format(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// Unsupported returns an ErrUnsupportedFeature with a formatted detail.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFeature, fmt.Sprintf(format, args...))
}

// FieldOverflow returns an ErrFieldOverflow with a formatted detail.
func FieldOverflow(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFieldOverflow, fmt.Sprintf(format, args...))
}
