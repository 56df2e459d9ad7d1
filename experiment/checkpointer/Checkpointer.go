// Package checkpointer implements periodic snapshots of approximator
// parameters, keyed by training iteration
package checkpointer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Serializable is an object whose state can be saved and restored
type Serializable interface {
	StateDict() ([]byte, error)
	LoadStateDict(data []byte) error
}

// Checkpointer checkpoints serializable objects based on the training
// iteration
type Checkpointer interface {
	Checkpoint(iteration int) error
}

// Save serializes object into filename. The data is written to a
// temporary file which is then renamed into place.
func Save(filename string, object Serializable) error {
	data, err := object.StateDict()
	if err != nil {
		return errors.Wrap(err, "save: could not serialize")
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.Wrap(err, "save")
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "save")
	}
	return errors.Wrap(os.Rename(tmp, filename), "save")
}

// Load restores object from a checkpoint written by Save
func Load(filename string, object Serializable) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "load: could not read checkpoint")
	}
	return errors.Wrapf(object.LoadStateDict(data), "load: %v", filename)
}
