package tracker

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushWritesScalars(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	require.NoError(t, err)

	tr.AddScalar(LossCritic, 0.5, 1)
	tr.AddScalar(LossCritic, 0.25, 2)
	tr.AddScalars(map[string]float64{BufferSize: 10}, 2)
	assert.Equal(t, 3, tr.Pending())

	scalars, err := LoadScalars(filepath.Join(dir, Filename))
	require.NoError(t, err)
	assert.Empty(t, scalars)

	require.NoError(t, tr.Flush())
	assert.Equal(t, 0, tr.Pending())

	scalars, err = LoadScalars(filepath.Join(dir, Filename))
	require.NoError(t, err)
	assert.Equal(t, []Scalar{
		{Tag: LossCritic, Step: 1, Value: 0.5},
		{Tag: LossCritic, Step: 2, Value: 0.25},
	}, scalars[LossCritic])
	assert.Equal(t, []Scalar{{Tag: BufferSize, Step: 2, Value: 10}},
		scalars[BufferSize])

	tr.AddScalar(EvaluationAverageReturn, 200, 3)
	require.NoError(t, tr.Close())

	scalars, err = LoadScalars(filepath.Join(dir, Filename))
	require.NoError(t, err)
	assert.Len(t, scalars[EvaluationAverageReturn], 1)
}

func TestLogIsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	for step := 1; step <= 2; step++ {
		tr, err := New(dir)
		require.NoError(t, err)
		tr.AddScalar(AlgTime, 1, step)
		require.NoError(t, tr.Close())
	}

	scalars, err := LoadScalars(filepath.Join(dir, Filename))
	require.NoError(t, err)
	assert.Len(t, scalars[AlgTime], 2)
}

func TestConcurrentAddScalar(t *testing.T) {
	tr, err := New(t.TempDir())
	require.NoError(t, err)
	defer tr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.AddScalar(EpisodeReturn, float64(j), i*100+j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 400, tr.Pending())
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	tr, err := New(dir)
	require.NoError(t, err)
	tr.AddScalar(LossActor, -1.5, 20)
	tr.AddScalar(LossActor, -1, 10)
	tr.AddScalar(SamplerTime, 3, 10)
	require.NoError(t, tr.Close())

	written, err := ExportCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "csv", "Loss-loss_actor.csv"),
		filepath.Join(dir, "csv", "Time-sampler_time.csv"),
	}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, "Step,Value\n10,-1\n20,-1.5\n", string(data))
}

func TestLoadScalarsRejectsCorruptLog(t *testing.T) {
	filename := filepath.Join(t.TempDir(), Filename)
	require.NoError(t, os.WriteFile(filename,
		[]byte("{\"tag\":\"a\",\"step\":1,\"value\":1}\nnot json\n"), 0o644))

	_, err := LoadScalars(filename)
	assert.Error(t, err)

	_, err = ExportCSV(t.TempDir())
	assert.Error(t, err)
}
