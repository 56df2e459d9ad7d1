package checkpointer

// nStep implements checkpointing every N iterations
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename returns the filename to save the object in at some
	// iteration. To key checkpoints by iteration inside a save folder,
	// use FilenameEnumerator.
	filename func(iteration int) string
}

// NewNStep returns a checkpointer that checkpoints every n iterations
func NewNStep(n int, object Serializable,
	filename func(iteration int) string) Checkpointer {
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if iteration is a multiple of
// the interval
func (n *nStep) Checkpoint(iteration int) error {
	if n.interval > 0 && iteration%n.interval == 0 {
		return Save(n.filename(iteration), n.object)
	}
	return nil
}
