package dining

import "fmt"

// NavigationError means the source page could not be reached or never
// finished loading. the previous dataset is retained.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ScriptExecutionError means the extraction routine failed inside the
// page context. the previous dataset is retained.
type ScriptExecutionError struct {
	Err error
}

func (e *ScriptExecutionError) Error() string {
	return fmt.Sprintf("extraction script: %v", e.Err)
}

func (e *ScriptExecutionError) Unwrap() error {
	return e.Err
}
