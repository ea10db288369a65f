package policy

import "greendrake/commentguard/internal/models"

// ShouldBypass reports whether an actor holding caps may skip the comment challenge.
// The form-state endpoint and the submission controller must both decide through
// this function.
func ShouldBypass(cfg models.PolicyConfig, caps models.CapabilitySet) bool {
	if !cfg.ShowInComments {
		return true
	}
	return cfg.BypassForRegisteredUsers && cfg.MinimumBypassLevel != "" && caps.Has(cfg.MinimumBypassLevel)
}

// ErrorMessage returns the display text for a verification error code, or "" when the
// code has no user-facing message.
func ErrorMessage(cfg models.PolicyConfig, code string) string {
	switch code {
	case models.CodeNoInputResponse:
		return cfg.NoResponseErrorText
	case models.CodeIncorrectSolution:
		return cfg.IncorrectResponseErrorText
	case models.CodeServiceNotReachable:
		return cfg.ServiceErrorText
	default:
		return ""
	}
}
