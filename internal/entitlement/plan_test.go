package entitlement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	for _, s := range []string{"free", "basic", "premium", "admin"} {
		p, err := ParsePlan(s)
		assert.NoError(t, err)
		assert.Equal(t, s, p.String())
	}

	_, err := ParsePlan("enterprise")
	assert.Error(t, err)
	_, err = ParsePlan("")
	assert.Error(t, err)
}

func TestCheckCapability_APIAccess(t *testing.T) {
	tests := []struct {
		plan    Plan
		allowed bool
	}{
		{PlanFree, false},
		{PlanBasic, false},
		{PlanPremium, true},
		{PlanAdmin, true},
	}

	for _, tt := range tests {
		err := CheckCapability(tt.plan, CapabilityAPIAccess)
		if tt.allowed {
			assert.NoError(t, err, "plan %s", tt.plan)
		} else {
			assert.ErrorIs(t, err, ErrCapabilityDenied, "plan %s", tt.plan)
		}
	}
}

func TestCapabilityError_Message(t *testing.T) {
	err := CheckCapability(PlanFree, CapabilityAPIAccess)
	assert.EqualError(t, err, "plan free does not include API access")

	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, PlanFree, capErr.Plan)
}
