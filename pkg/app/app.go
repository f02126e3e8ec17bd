// Package app defines common runtime contracts shared by different
// executable entrypoints (e.g., API server, migration runner).
package app

// Runner represents a runnable application component.
type Runner interface {
	Run() error
}
