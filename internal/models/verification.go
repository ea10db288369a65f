package models

// Error codes carried in VerificationResult and in the rerror redirect parameter.
const (
	CodeNoInputResponse       = "no-input-response"
	CodeIncorrectSolution     = "incorrect-captcha-sol"
	CodeServiceNotReachable   = "recaptcha-not-reachable"
	CodeInvalidSitePrivateKey = "invalid-site-private-key"
	CodeInvalidRequestCookie  = "invalid-request-cookie"
	CodeVerifyParamsIncorrect = "verify-params-incorrect"
)

// KnownErrorCodes are the codes accepted back from a redirect query string.
var KnownErrorCodes = []string{
	CodeNoInputResponse,
	CodeIncorrectSolution,
	CodeServiceNotReachable,
	CodeInvalidSitePrivateKey,
	CodeInvalidRequestCookie,
	CodeVerifyParamsIncorrect,
}

// IsKnownErrorCode reports whether code is one of KnownErrorCodes.
func IsKnownErrorCode(code string) bool {
	for _, c := range KnownErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}

// VerificationResult is the verdict of a challenge check.
type VerificationResult struct {
	IsValid   bool   `json:"is_valid"`
	ErrorCode string `json:"error_code,omitempty"`
}
