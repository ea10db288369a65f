package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/policy"
)

// MockOptionStore
type MockOptionStore struct {
	mock.Mock
}

func (m *MockOptionStore) GetPolicy(ctx context.Context) (*models.PolicyConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyConfig), args.Error(1)
}

func (m *MockOptionStore) PutPolicy(ctx context.Context, cfg models.PolicyConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockOptionStore) GetLegacy(ctx context.Context) (*models.LegacyOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LegacyOptions), args.Error(1)
}

func (m *MockOptionStore) DeleteLegacy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestPolicyService_LoadsStoredPolicy(t *testing.T) {
	store := new(MockOptionStore)
	stored := models.DefaultPolicy()
	stored.PublicKey = "pub"
	stored.CommentsTheme = models.ThemeClean
	store.On("GetPolicy", mock.Anything).Return(&stored, nil)

	svc := NewPolicyService(store, nil)

	assert.Equal(t, stored, svc.Current())
	store.AssertNotCalled(t, "PutPolicy", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetLegacy", mock.Anything)
}

func TestPolicyService_BootstrapsDefaults(t *testing.T) {
	store := new(MockOptionStore)
	store.On("GetPolicy", mock.Anything).Return(nil, ErrOptionNotFound)
	store.On("GetLegacy", mock.Anything).Return(nil, ErrOptionNotFound)
	store.On("PutPolicy", mock.Anything, models.DefaultPolicy()).Return(nil)

	svc := NewPolicyService(store, nil)

	assert.Equal(t, models.DefaultPolicy(), svc.Current())
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "DeleteLegacy", mock.Anything)
}

func TestPolicyService_MigratesLegacyOnce(t *testing.T) {
	store := new(MockOptionStore)
	legacy := &models.LegacyOptions{PubKey: "old-pub", PrivKey: "old-priv", ReComments: 1, ReBypassLevel: "read", ReTheme: "white", ReThemeReg: "red", ReLang: "es", ReTabIndex: 3}
	expected := policy.FromLegacy(*legacy)

	store.On("GetPolicy", mock.Anything).Return(nil, ErrOptionNotFound)
	store.On("GetLegacy", mock.Anything).Return(legacy, nil)
	store.On("PutPolicy", mock.Anything, expected).Return(nil).Once()
	store.On("DeleteLegacy", mock.Anything).Return(nil).Once()

	svc := NewPolicyService(store, nil)

	assert.Equal(t, expected, svc.Current())
	store.AssertExpectations(t)
}

func TestPolicyService_LoadFailureKeepsDefaults(t *testing.T) {
	store := new(MockOptionStore)
	store.On("GetPolicy", mock.Anything).Return(nil, assert.AnError)

	svc := NewPolicyService(store, nil)

	assert.Equal(t, models.DefaultPolicy(), svc.Current())
}

func TestPolicyService_UpdateValidatesAgainstCurrent(t *testing.T) {
	store := new(MockOptionStore)
	stored := models.DefaultPolicy()
	stored.CommentsTheme = models.ThemeBlackGlass
	store.On("GetPolicy", mock.Anything).Return(&stored, nil)
	store.On("PutPolicy", mock.Anything, mock.AnythingOfType("models.PolicyConfig")).Return(nil)

	svc := NewPolicyService(store, nil)
	updated, err := svc.Update(context.Background(), policy.RawOptions{
		"public_key":       " new-pub ",
		"show_in_comments": "1",
		"comments_theme":   "neon",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-pub", updated.PublicKey)
	assert.Equal(t, models.ThemeBlackGlass, updated.CommentsTheme)
	assert.Equal(t, updated, svc.Current())
}

func TestPolicyService_UpdateStoreErrorKeepsCurrent(t *testing.T) {
	store := new(MockOptionStore)
	stored := models.DefaultPolicy()
	store.On("GetPolicy", mock.Anything).Return(&stored, nil)
	store.On("PutPolicy", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := NewPolicyService(store, nil)
	_, err := svc.Update(context.Background(), policy.RawOptions{"public_key": "x"})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, stored, svc.Current())
}
