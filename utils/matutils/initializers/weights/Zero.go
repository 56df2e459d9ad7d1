package weights

// ZeroUV implements the distuv.Rander interface so that zero
// initialization can be accomplished through LinearUV
type ZeroUV struct{}

// NewZeroUV returns a new ZeroUV
func NewZeroUV() ZeroUV {
	return ZeroUV{}
}

// Rand draws a random number from the interval [0, 0]
func (z ZeroUV) Rand() float64 {
	return 0.0
}
