package decision

import "github.com/vigilcore/sentry/pkg/config"

// EffectiveThresholds is a flattened view of the scoring knobs in play for a
// given config, useful for audit logging and the debug/introspection
// endpoint without leaking the full ScreeningConfig struct shape.
type EffectiveThresholds struct {
	Profile      string  `json:"profile"`
	RiskHigh     float64 `json:"risk_high"`
	RiskMedium   float64 `json:"risk_medium"`
	StrongMatch  float64 `json:"strong_match"`
	TINDOBGateOn bool    `json:"tin_dob_gate_enabled"`
}

// Thresholds extracts the EffectiveThresholds view from cfg.
func Thresholds(cfg *config.ScreeningConfig) EffectiveThresholds {
	return EffectiveThresholds{
		Profile:      cfg.Profile,
		RiskHigh:     cfg.ThrHigh,
		RiskMedium:   cfg.ThrMedium,
		StrongMatch:  cfg.StrongMatchThreshold,
		TINDOBGateOn: cfg.RequireTINDOBGate,
	}
}
