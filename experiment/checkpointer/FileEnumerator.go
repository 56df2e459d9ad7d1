package checkpointer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Dir is the directory, inside a save folder, holding checkpoints
	Dir       = "apprfunc"
	prefix    = "apprfunc_"
	extension = ".gob"
)

// Filename returns the checkpoint filename for an iteration:
// dir/apprfunc/apprfunc_<iteration>.gob
func Filename(dir string, iteration int) string {
	return filepath.Join(dir, Dir, fmt.Sprintf("%v%v%v", prefix, iteration,
		extension))
}

// FilenameEnumerator returns a function which returns the checkpoint
// filename of an iteration inside the save folder dir
func FilenameEnumerator(dir string) func(iteration int) string {
	return func(iteration int) string {
		return Filename(dir, iteration)
	}
}

// Latest returns the checkpoint with the highest iteration inside the
// save folder dir
func Latest(dir string) (filename string, iteration int, err error) {
	entries, err := os.ReadDir(filepath.Join(dir, Dir))
	if err != nil {
		return "", 0, errors.Wrap(err, "latest")
	}

	iteration = -1
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) ||
			!strings.HasSuffix(name, extension) {
			continue
		}

		i, err := strconv.Atoi(strings.TrimSuffix(
			strings.TrimPrefix(name, prefix), extension))
		if err != nil {
			continue
		}
		if i > iteration {
			iteration = i
		}
	}

	if iteration < 0 {
		return "", 0, errors.Errorf("latest: no checkpoints in %v", dir)
	}
	return Filename(dir, iteration), iteration, nil
}
