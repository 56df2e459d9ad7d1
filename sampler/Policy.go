package sampler

import (
	"sync/atomic"

	"github.com/samuelfneumann/gops/approximator"
)

// PolicyStore holds the most recently published policy snapshot. The
// trainer publishes, samplers load; both may run concurrently.
type PolicyStore struct {
	v atomic.Value
}

// NewPolicyStore returns a PolicyStore holding p
func NewPolicyStore(p approximator.Policy) *PolicyStore {
	s := &PolicyStore{}
	s.Publish(p)
	return s
}

// Publish replaces the stored policy
func (s *PolicyStore) Publish(p approximator.Policy) {
	s.v.Store(policyBox{p})
}

// Load returns the stored policy
func (s *PolicyStore) Load() approximator.Policy {
	box, _ := s.v.Load().(policyBox)
	return box.Policy
}

// policyBox gives every stored value the same concrete type, which
// atomic.Value requires
type policyBox struct {
	approximator.Policy
}
