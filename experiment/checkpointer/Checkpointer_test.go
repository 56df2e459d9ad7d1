package checkpointer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blob struct {
	data []byte
	err  error
}

func (b *blob) StateDict() ([]byte, error) { return b.data, b.err }

func (b *blob) LoadStateDict(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty")
	}
	b.data = append([]byte(nil), data...)
	return nil
}

func TestFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "apprfunc", "apprfunc_250.gob"),
		Filename("out", 250))
	assert.Equal(t, Filename("out", 7), FilenameEnumerator("out")(7))
}

func TestNStepCheckpointsAtMultiples(t *testing.T) {
	dir := t.TempDir()
	object := &blob{data: []byte("weights")}
	c := NewNStep(3, object, FilenameEnumerator(dir))

	for i := 1; i <= 10; i++ {
		require.NoError(t, c.Checkpoint(i))
	}

	for i := 1; i <= 10; i++ {
		err := Load(Filename(dir, i), &blob{})
		if i%3 == 0 {
			assert.NoError(t, err, i)
		} else {
			assert.Error(t, err, i)
		}
	}

	filename, iteration, err := Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, iteration)
	assert.Equal(t, Filename(dir, 9), filename)

	restored := &blob{}
	require.NoError(t, Load(filename, restored))
	assert.Equal(t, []byte("weights"), restored.data)
}

func TestSaveReportsSerializationError(t *testing.T) {
	err := Save(Filename(t.TempDir(), 1), &blob{err: errors.New("boom")})
	assert.Error(t, err)
}

func TestLatestWithoutCheckpoints(t *testing.T) {
	_, _, err := Latest(t.TempDir())
	assert.Error(t, err)
}
