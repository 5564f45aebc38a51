package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyLimitFor(t *testing.T) {
	s := AppSettings{
		FreeDailyLimit:    3,
		BasicDailyLimit:   25,
		PremiumDailyLimit: 200,
	}

	assert.Equal(t, 3, s.DailyLimitFor("free"))
	assert.Equal(t, 25, s.DailyLimitFor("basic"))
	assert.Equal(t, 200, s.DailyLimitFor("premium"))
	// admins get the premium allowance
	assert.Equal(t, 200, s.DailyLimitFor("admin"))
	// unknown plans fall back to the free tier
	assert.Equal(t, 3, s.DailyLimitFor("enterprise"))
	assert.Equal(t, 3, s.DailyLimitFor(""))
}
