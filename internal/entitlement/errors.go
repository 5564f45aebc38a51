package entitlement

import (
	"errors"
	"fmt"
)

var (
	// ErrProfileMissing means the identity authenticated but has no
	// entitlement record.
	ErrProfileMissing = errors.New("user profile not found")

	// ErrCapabilityDenied is the sentinel all capability denials unwrap to.
	ErrCapabilityDenied = errors.New("capability denied")
)

// CapabilityError is a denial for a specific plan/capability pair. Its
// message is safe to return to API callers.
type CapabilityError struct {
	Plan       Plan
	Capability Capability
}

func (e *CapabilityError) Error() string {
	if e.Capability == CapabilityAPIAccess {
		return fmt.Sprintf("plan %s does not include API access", e.Plan)
	}
	return fmt.Sprintf("plan %s does not include capability %s", e.Plan, e.Capability)
}

func (e *CapabilityError) Unwrap() error { return ErrCapabilityDenied }
