package scenes

import (
	"errors"

	"reverie/internal/services"
)

// MinCompileScenes is the smallest queue the compile workflow accepts.
const MinCompileScenes = 2

var (
	// ErrNotEnoughScenes is returned by Compile when the queue is shorter than
	// MinCompileScenes.
	ErrNotEnoughScenes = services.Wrap(services.ErrValidation, "scenes", "compile", "need at least 2 clips", nil)
	// ErrCompileInFlight is returned by Compile while another compile is running.
	ErrCompileInFlight = errors.New("scenes: compile already in progress")
)

// DetailError is implemented by compile failures that carry a server
// supplied explanation.
type DetailError interface {
	error
	ServerDetail() string
}

const genericCompileFailure = "Compilation failed"

// failureDetail picks the text shown after "Failed to compile story: ".
func failureDetail(err error) string {
	var detailed DetailError
	if errors.As(err, &detailed) {
		if detail := detailed.ServerDetail(); detail != "" {
			return detail
		}
		return genericCompileFailure
	}
	if err == nil || err.Error() == "" {
		return genericCompileFailure
	}
	return err.Error()
}
