package entitlement

import "fmt"

// Plan is a subscription tier. It controls feature access and daily
// generation quotas.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
	PlanAdmin   Plan = "admin"
)

func (p Plan) String() string { return string(p) }

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium, PlanAdmin:
		return true
	}
	return false
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// Capability is a named feature a plan may grant.
type Capability string

const (
	// CapabilityAPIAccess gates programmatic access through API keys.
	CapabilityAPIAccess Capability = "api_access"
)

// CheckCapability reports whether the plan grants the capability. The
// returned error unwraps to ErrCapabilityDenied and carries the
// user-facing reason.
func CheckCapability(plan Plan, cap Capability) error {
	switch cap {
	case CapabilityAPIAccess:
		if plan == PlanPremium || plan == PlanAdmin {
			return nil
		}
		return &CapabilityError{Plan: plan, Capability: cap}
	default:
		return &CapabilityError{Plan: plan, Capability: cap}
	}
}
