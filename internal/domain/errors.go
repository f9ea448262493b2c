package domain

import "fmt"

// ValidationError reports a required key column missing from an input.
type ValidationError struct {
	Source Source
	Label  string
	Column string
}

func (e *ValidationError) Error() string {
	label := e.Label
	if label == "" {
		label = string(e.Source)
	}
	return fmt.Sprintf("%s file needs '%s' column", label, e.Column)
}

// MalformedInputError reports an input table that could not be materialized.
type MalformedInputError struct {
	Source Source
	Ref    string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s input %q could not be read: %v", e.Source, e.Ref, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}
