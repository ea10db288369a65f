package submission

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greendrake/commentguard/internal/captcha"
	"greendrake/commentguard/internal/models"
)

// MockRecaptchaVerifier
type MockRecaptchaVerifier struct {
	mock.Mock
}

func (m *MockRecaptchaVerifier) Verify(ctx context.Context, privateKey, remoteIP, challenge, response string) (models.VerificationResult, error) {
	args := m.Called(ctx, privateKey, remoteIP, challenge, response)
	return args.Get(0).(models.VerificationResult), args.Error(1)
}

func testPolicy() models.PolicyConfig {
	cfg := models.DefaultPolicy()
	cfg.PrivateKey = "priv"
	cfg.MinimumBypassLevel = models.CapEditPosts
	return cfg
}

func anonymousRequest() Request {
	return Request{
		ChallengeToken: "chal",
		ResponseToken:  "resp",
		OriginAddress:  "5.6.7.8",
		ContentKind:    models.KindComment,
	}
}

func TestHandleSubmission_BypassSkipsVerification(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)

	req := anonymousRequest()
	req.ActorCapabilities = models.NewCapabilitySet("read", "edit_posts")

	d := c.HandleSubmission(context.Background(), req, testPolicy())

	assert.True(t, d.Accept)
	assert.True(t, d.Bypassed)
	assert.Equal(t, models.CommentStatusApproved, d.Status)
	assert.Empty(t, d.ErrorCode)
	verifier.AssertNotCalled(t, "Verify")
}

func TestHandleSubmission_DisabledSkipsVerification(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	cfg := testPolicy()
	cfg.ShowInComments = false

	d := c.HandleSubmission(context.Background(), anonymousRequest(), cfg)

	assert.True(t, d.Accept)
	verifier.AssertNotCalled(t, "Verify")
}

func TestHandleSubmission_AuxiliaryContentSkipsVerification(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)

	for _, kind := range []models.ContentKind{models.KindTrackback, models.KindPingback} {
		req := anonymousRequest()
		req.ContentKind = kind
		d := c.HandleSubmission(context.Background(), req, testPolicy())
		assert.True(t, d.Accept, kind)
	}
	verifier.AssertNotCalled(t, "Verify")
}

func TestHandleSubmission_Valid(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	verifier.On("Verify", mock.Anything, "priv", "5.6.7.8", "chal", "resp").Return(models.VerificationResult{IsValid: true}, nil)

	d := c.HandleSubmission(context.Background(), anonymousRequest(), testPolicy())

	assert.True(t, d.Accept)
	assert.False(t, d.Bypassed)
	assert.Equal(t, models.CommentStatusApproved, d.Status)
	verifier.AssertExpectations(t)
}

func TestHandleSubmission_InvalidIsHeldWithCode(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	verifier.On("Verify", mock.Anything, "priv", "5.6.7.8", "chal", "resp").
		Return(models.VerificationResult{IsValid: false, ErrorCode: models.CodeIncorrectSolution}, nil)

	d := c.HandleSubmission(context.Background(), anonymousRequest(), testPolicy())

	assert.False(t, d.Accept)
	assert.Equal(t, models.CodeIncorrectSolution, d.ErrorCode)
	assert.Equal(t, models.CommentStatusSpam, d.Status)
	assert.NoError(t, d.Err)
}

func TestHandleSubmission_InvalidWithoutCode(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.VerificationResult{IsValid: false}, nil)

	d := c.HandleSubmission(context.Background(), anonymousRequest(), testPolicy())

	assert.False(t, d.Accept)
	assert.Equal(t, models.CodeIncorrectSolution, d.ErrorCode)
}

func TestHandleSubmission_ServiceErrorFailsClosed(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	serviceErr := fmt.Errorf("%w: timeout", captcha.ErrVerificationService)
	verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.VerificationResult{}, serviceErr)

	d := c.HandleSubmission(context.Background(), anonymousRequest(), testPolicy())

	assert.False(t, d.Accept)
	assert.Equal(t, models.CodeServiceNotReachable, d.ErrorCode)
	assert.Equal(t, models.CommentStatusSpam, d.Status)
	assert.ErrorIs(t, d.Err, captcha.ErrVerificationService)
}

func TestHandleSubmission_OtherVerifierErrorFailsClosed(t *testing.T) {
	verifier := new(MockRecaptchaVerifier)
	c := NewController(verifier)
	verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.VerificationResult{}, captcha.ErrMissingRemoteIP)

	d := c.HandleSubmission(context.Background(), anonymousRequest(), testPolicy())

	assert.False(t, d.Accept)
	assert.Equal(t, models.CodeVerifyParamsIncorrect, d.ErrorCode)
}

func TestCheckRegistration(t *testing.T) {
	cfg := testPolicy()

	t.Run("disabled", func(t *testing.T) {
		verifier := new(MockRecaptchaVerifier)
		off := cfg
		off.ShowInRegistration = false
		assert.NoError(t, NewController(verifier).CheckRegistration(context.Background(), anonymousRequest(), off))
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("no response", func(t *testing.T) {
		verifier := new(MockRecaptchaVerifier)
		req := anonymousRequest()
		req.ResponseToken = ""
		err := NewController(verifier).CheckRegistration(context.Background(), req, cfg)

		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, ErrNoResponse)
		assert.Equal(t, cfg.NoResponseErrorText, verr.Message)
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("incorrect", func(t *testing.T) {
		verifier := new(MockRecaptchaVerifier)
		verifier.On("Verify", mock.Anything, "priv", "5.6.7.8", "chal", "resp").
			Return(models.VerificationResult{IsValid: false, ErrorCode: models.CodeIncorrectSolution}, nil)
		err := NewController(verifier).CheckRegistration(context.Background(), anonymousRequest(), cfg)

		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, ErrIncorrectResponse)
		assert.Equal(t, cfg.IncorrectResponseErrorText, verr.Message)
	})

	t.Run("service error", func(t *testing.T) {
		verifier := new(MockRecaptchaVerifier)
		verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.VerificationResult{}, captcha.ErrVerificationService)
		err := NewController(verifier).CheckRegistration(context.Background(), anonymousRequest(), cfg)

		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, captcha.ErrVerificationService)
		assert.Equal(t, cfg.ServiceErrorText, verr.Message)
	})

	t.Run("valid", func(t *testing.T) {
		verifier := new(MockRecaptchaVerifier)
		verifier.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(models.VerificationResult{IsValid: true}, nil)
		assert.NoError(t, NewController(verifier).CheckRegistration(context.Background(), anonymousRequest(), cfg))
	})
}
