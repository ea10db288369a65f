package captcha

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/config"
	"greendrake/commentguard/internal/models"
)

// ErrVerificationService marks transport, status and reply-format failures of the
// verify endpoint. Callers must not treat it as a pass.
var ErrVerificationService = errors.New("recaptcha verification service error")

// ErrMissingRemoteIP is returned when no origin address was supplied.
var ErrMissingRemoteIP = errors.New("remote ip is required for recaptcha verification")

// maxReplyBytes bounds how much of the verify reply is read.
const maxReplyBytes = 4 << 10

// IRecaptchaVerifier checks a challenge/response pair against the reCAPTCHA service.
type IRecaptchaVerifier interface {
	Verify(ctx context.Context, privateKey, remoteIP, challenge, response string) (models.VerificationResult, error)
}

// recaptchaVerifier implements IRecaptchaVerifier.
type recaptchaVerifier struct {
	verifyURL  string
	httpClient *http.Client
}

// NewRecaptchaVerifier creates a verifier that posts to the configured verify URL.
func NewRecaptchaVerifier(cfg *config.Config) IRecaptchaVerifier {
	timeout := cfg.RecaptchaVerifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &recaptchaVerifier{
		verifyURL:  cfg.RecaptchaVerifyURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify calls the verify endpoint. Empty responses and challenges are answered
// locally without a network call.
func (v *recaptchaVerifier) Verify(ctx context.Context, privateKey, remoteIP, challenge, response string) (models.VerificationResult, error) {
	if response == "" {
		return models.VerificationResult{IsValid: false, ErrorCode: models.CodeNoInputResponse}, nil
	}
	if remoteIP == "" {
		return models.VerificationResult{}, ErrMissingRemoteIP
	}
	if challenge == "" {
		return models.VerificationResult{IsValid: false, ErrorCode: models.CodeIncorrectSolution}, nil
	}

	form := url.Values{}
	form.Set("privatekey", privateKey)
	form.Set("remoteip", remoteIP)
	form.Set("challenge", challenge)
	form.Set("response", response)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("%w: failed to create request: %v", ErrVerificationService, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Error calling reCAPTCHA verify endpoint")
		return models.VerificationResult{}, fmt.Errorf("%w: failed to contact verify endpoint: %v", ErrVerificationService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("%w: failed to read reply: %v", ErrVerificationService, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("reCAPTCHA verify endpoint returned non-OK status")
		return models.VerificationResult{}, fmt.Errorf("%w: verify endpoint returned status %d", ErrVerificationService, resp.StatusCode)
	}

	result, err := parseReply(string(body))
	if err != nil {
		log.Warn().Err(err).Str("body", string(body)).Msg("Malformed reCAPTCHA verify reply")
		return models.VerificationResult{}, err
	}
	if !result.IsValid {
		log.Info().Str("error_code", result.ErrorCode).Str("remote_ip", remoteIP).Msg("reCAPTCHA verification unsuccessful")
	}
	return result, nil
}

// parseReply decodes the two-line verify reply: "true" or "false", then an error code.
func parseReply(body string) (models.VerificationResult, error) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}

	if len(lines) == 0 {
		return models.VerificationResult{}, fmt.Errorf("%w: empty reply", ErrVerificationService)
	}
	switch lines[0] {
	case "true":
		return models.VerificationResult{IsValid: true}, nil
	case "false":
		if len(lines) < 2 || lines[1] == "" {
			return models.VerificationResult{}, fmt.Errorf("%w: negative reply without error code", ErrVerificationService)
		}
		return models.VerificationResult{IsValid: false, ErrorCode: lines[1]}, nil
	default:
		return models.VerificationResult{}, fmt.Errorf("%w: unexpected verdict %q", ErrVerificationService, lines[0])
	}
}
