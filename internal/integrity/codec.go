// Package integrity binds comment ids to keyed tokens so a recovery link cannot be
// forged for a comment the server never rejected.
package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// messagePrefix separates comment-recovery tokens from any other use of the same key.
const messagePrefix = "commentguard/recovery/v1:"

// ErrEmptySecret is returned by NewCodec when no secret is configured.
var ErrEmptySecret = errors.New("integrity secret is empty")

// ComputeToken returns the hex HMAC-SHA256 of submissionID under secret.
func ComputeToken(secret []byte, submissionID string) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(messagePrefix))
	_, _ = mac.Write([]byte(submissionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyToken reports whether candidate is the token for submissionID under secret.
func VerifyToken(secret []byte, submissionID, candidate string) bool {
	provided, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}
	expected, _ := hex.DecodeString(ComputeToken(secret, submissionID))
	return hmac.Equal(expected, provided)
}

// Codec holds the process-wide recovery secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

func (c *Codec) ComputeToken(submissionID string) string {
	return ComputeToken(c.secret, submissionID)
}

func (c *Codec) VerifyToken(submissionID, candidate string) bool {
	return VerifyToken(c.secret, submissionID, candidate)
}
