package experiment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Context holds the process-wide state of a training run: its logger,
// seeds, identifier, and save folder. It is created once, passed to
// the components that need it, and closed when the run ends.
type Context struct {
	RunID      string
	Seed       uint64
	SaveFolder string
	Logger     zerolog.Logger

	out     io.Writer
	logFile *os.File
}

// Seed offsets of the run's components. Sampler workers use
// SamplerSeedOffset + worker index.
const (
	BufferSeedOffset    uint64 = 1
	ApproxSeedOffset    uint64 = 2
	EvaluatorSeedOffset uint64 = 3
	SamplerSeedOffset   uint64 = 100
)

// NewContext returns a new Context. If saveFolder is empty, a folder
// is generated under results/ from the algorithm, environment, and the
// current time.
func NewContext(seed uint64, saveFolder, algorithm, envID string,
	console io.Writer, level zerolog.Level) *Context {
	runID := uuid.New().String()
	if saveFolder == "" {
		saveFolder = filepath.Join("results", algorithm+"_"+envID,
			time.Now().Format("060102-150405")+"-"+runID[:8])
	}

	var out io.Writer = io.Discard
	if console != nil {
		out = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	return &Context{
		RunID:      runID,
		Seed:       seed,
		SaveFolder: saveFolder,
		Logger:     logger,
		out:        out,
	}
}

// Setup creates the save folder and adds a JSON log file inside it
// to the Context's logger
func (c *Context) Setup() error {
	if err := os.MkdirAll(c.SaveFolder, 0o755); err != nil {
		return errors.Wrap(err, "setup: could not create save folder")
	}

	file, err := os.OpenFile(filepath.Join(c.SaveFolder, "train.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "setup: could not open log file")
	}
	c.logFile = file
	c.Logger = c.Logger.Output(zerolog.MultiLevelWriter(c.out, file))

	c.Logger.Info().
		Str("save_folder", c.SaveFolder).
		Uint64("seed", c.Seed).
		Msg("run started")
	return nil
}

// WorkerSeed returns the seed of a component, offset from the run seed
func (c *Context) WorkerSeed(offset uint64) uint64 {
	return c.Seed + offset
}

// Path returns the path of a file inside the save folder
func (c *Context) Path(elem ...string) string {
	return filepath.Join(append([]string{c.SaveFolder}, elem...)...)
}

// Close releases the resources held by the Context
func (c *Context) Close() error {
	if c.logFile == nil {
		return nil
	}
	c.Logger.Info().Msg("run finished")
	err := c.logFile.Close()
	c.logFile = nil
	c.Logger = c.Logger.Output(c.out)
	return errors.Wrap(err, "close")
}

func (c *Context) String() string {
	return fmt.Sprintf("Context | Run: %v  |  Seed: %v  |  Save Folder: %v",
		c.RunID, c.Seed, c.SaveFolder)
}
