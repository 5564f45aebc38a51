package models

import "time"

// AppSettings is the single-row global configuration table. When
// UnlimitedGenerationsForAll is set, quota checks are bypassed for every
// user regardless of plan.
type AppSettings struct {
	UnlimitedGenerationsForAll bool      `json:"unlimited_generations_for_all" db:"unlimited_generations_for_all"`
	HidePricingFeatures        bool      `json:"hide_pricing_features" db:"hide_pricing_features"`
	FreeDailyLimit             int       `json:"free_daily_limit" db:"free_daily_limit"`
	BasicDailyLimit            int       `json:"basic_daily_limit" db:"basic_daily_limit"`
	PremiumDailyLimit          int       `json:"premium_daily_limit" db:"premium_daily_limit"`
	UpdatedAt                  time.Time `json:"updated_at" db:"updated_at"`
}

// DailyLimitFor returns the configured daily generation allowance for a
// plan. Admin shares the premium allowance; the unlimited flag, not the
// limit, is what lifts caps.
func (s AppSettings) DailyLimitFor(plan string) int {
	switch plan {
	case "basic":
		return s.BasicDailyLimit
	case "premium", "admin":
		return s.PremiumDailyLimit
	default:
		return s.FreeDailyLimit
	}
}
