package policy

import "sync"

// CourseIDSize is the width of course identifiers.
const CourseIDSize = 32

// Registry resolves the purchase policy for a course. The settlement
// engine only reads; Set/Remove belong to the catalog-management side.
type Registry interface {
	// Required returns the policy for the course, or ErrUnknownCourse.
	Required(courseID [CourseIDSize]byte) (*Policy, error)
}

// MemRegistry is an in-memory policy registry.
type MemRegistry struct {
	mu       sync.RWMutex
	policies map[[CourseIDSize]byte]Policy
}

// NewMemRegistry creates a new in-memory policy registry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{policies: make(map[[CourseIDSize]byte]Policy)}
}

// Compile-time interface check.
var _ Registry = (*MemRegistry)(nil)

// Required returns the policy for the course.
func (r *MemRegistry) Required(courseID [CourseIDSize]byte) (*Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pol, ok := r.policies[courseID]
	if !ok {
		return nil, ErrUnknownCourse
	}
	cp := pol
	return &cp, nil
}

// Set installs or replaces the policy for a course.
func (r *MemRegistry) Set(courseID [CourseIDSize]byte, pol *Policy) error {
	if err := validatePolicy(pol); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[courseID] = *pol
	return nil
}

// Remove deletes the policy for a course.
func (r *MemRegistry) Remove(courseID [CourseIDSize]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.policies[courseID]; !ok {
		return ErrUnknownCourse
	}
	delete(r.policies, courseID)
	return nil
}
