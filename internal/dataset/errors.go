package dataset

import "fmt"

// LoadError reports a failure to assemble the Dataset: a required file
// missing or unreadable, or a primary file whose header matches neither
// source shape. Loading is all-or-nothing; callers receiving a
// LoadError have no partial Dataset to fall back on.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	if e.Path != "" {
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load failed: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErrf(path, format string, args ...any) *LoadError {
	return &LoadError{Path: path, Err: fmt.Errorf(format, args...)}
}
