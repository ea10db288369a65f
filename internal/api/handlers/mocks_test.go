package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/policy"
)

// --- Mocks ---

// MockPolicyService
type MockPolicyService struct {
	mock.Mock
}

func (m *MockPolicyService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockPolicyService) Current() models.PolicyConfig {
	args := m.Called()
	return args.Get(0).(models.PolicyConfig)
}
func (m *MockPolicyService) Update(ctx context.Context, raw policy.RawOptions) (models.PolicyConfig, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(models.PolicyConfig), args.Error(1)
}
func (m *MockPolicyService) SubscribeToChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	args := m.Called(ctx, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}
func (m *MockCommentService) TakeHeld(ctx context.Context, id string) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}
func (m *MockCommentService) PurgeHeldBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCommentService) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRecaptchaVerifier
type MockRecaptchaVerifier struct {
	mock.Mock
}

func (m *MockRecaptchaVerifier) Verify(ctx context.Context, privateKey, remoteIP, challenge, response string) (models.VerificationResult, error) {
	args := m.Called(ctx, privateKey, remoteIP, challenge, response)
	return args.Get(0).(models.VerificationResult), args.Error(1)
}
