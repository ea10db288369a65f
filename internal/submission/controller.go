package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/captcha"
	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/policy"
)

var (
	ErrNoResponse        = errors.New("captcha response missing")
	ErrIncorrectResponse = errors.New("captcha response incorrect")
)

// Request is one form submission as seen by the controller.
type Request struct {
	ChallengeToken    string
	ResponseToken     string
	OriginAddress     string
	SubmissionID      string
	ContentKind       models.ContentKind
	ActorCapabilities models.CapabilitySet
}

// Decision is the controller's verdict for a submission. A rejected decision carries
// the error code for the redirect step and the held status the comment is stored with.
type Decision struct {
	Accept    bool
	Bypassed  bool
	ErrorCode string
	Status    models.CommentStatus
	// Err is set when the verdict was forced by a verifier failure.
	Err error
}

// VerificationError is a user-facing verification failure on the registration form.
type VerificationError struct {
	Code    string
	Message string
	err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%v (%s)", e.err, e.Code)
}

func (e *VerificationError) Unwrap() error {
	return e.err
}

// Controller runs the bypass check and challenge verification for submissions.
type Controller struct {
	verifier captcha.IRecaptchaVerifier
}

func NewController(verifier captcha.IRecaptchaVerifier) *Controller {
	return &Controller{verifier: verifier}
}

// HandleSubmission decides whether a comment is accepted. Bypassing actors and
// trackbacks or pingbacks are accepted without verification. Verifier failures
// reject the comment.
func (c *Controller) HandleSubmission(ctx context.Context, req Request, cfg models.PolicyConfig) Decision {
	if policy.ShouldBypass(cfg, req.ActorCapabilities) {
		return Decision{Accept: true, Bypassed: true, Status: models.CommentStatusApproved}
	}
	if !req.ContentKind.IsTopLevel() {
		return Decision{Accept: true, Bypassed: true, Status: models.CommentStatusApproved}
	}

	result, err := c.verifier.Verify(ctx, cfg.PrivateKey, req.OriginAddress, req.ChallengeToken, req.ResponseToken)
	if err != nil {
		code := models.CodeServiceNotReachable
		if !errors.Is(err, captcha.ErrVerificationService) {
			code = models.CodeVerifyParamsIncorrect
		}
		log.Warn().Err(err).Str("remote_ip", req.OriginAddress).Str("error_code", code).Msg("Comment verification failed closed")
		return reject(code, err)
	}
	if result.IsValid {
		return Decision{Accept: true, Status: models.CommentStatusApproved}
	}

	code := result.ErrorCode
	if code == "" {
		code = models.CodeIncorrectSolution
	}
	return reject(code, nil)
}

func reject(code string, err error) Decision {
	return Decision{Accept: false, ErrorCode: code, Status: models.CommentStatusSpam, Err: err}
}

// CheckRegistration verifies the challenge on the registration form. It returns nil
// when verification passes or is disabled, and a *VerificationError otherwise.
func (c *Controller) CheckRegistration(ctx context.Context, req Request, cfg models.PolicyConfig) error {
	if !cfg.ShowInRegistration {
		return nil
	}
	if req.ResponseToken == "" {
		return &VerificationError{Code: models.CodeNoInputResponse, Message: cfg.NoResponseErrorText, err: ErrNoResponse}
	}

	result, err := c.verifier.Verify(ctx, cfg.PrivateKey, req.OriginAddress, req.ChallengeToken, req.ResponseToken)
	if err != nil {
		log.Warn().Err(err).Str("remote_ip", req.OriginAddress).Msg("Registration verification failed closed")
		return &VerificationError{Code: models.CodeServiceNotReachable, Message: cfg.ServiceErrorText, err: err}
	}
	if result.IsValid {
		return nil
	}
	if result.ErrorCode == models.CodeNoInputResponse {
		return &VerificationError{Code: result.ErrorCode, Message: cfg.NoResponseErrorText, err: ErrNoResponse}
	}
	return &VerificationError{Code: result.ErrorCode, Message: cfg.IncorrectResponseErrorText, err: ErrIncorrectResponse}
}
