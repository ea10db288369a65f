package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/models"
	"greendrake/commentguard/internal/policy"
)

// IPolicyService provides the current reCAPTCHA policy and validated updates to it.
type IPolicyService interface {
	Load(ctx context.Context) error
	Current() models.PolicyConfig
	Update(ctx context.Context, raw policy.RawOptions) (models.PolicyConfig, error)
	SubscribeToChanges(ctx context.Context) error
}

const policyUpdateChannel = "policy_updates"

// policyService implements IPolicyService.
type policyService struct {
	store   IOptionStore
	rdb     *redis.Client
	current models.PolicyConfig
	mutex   sync.RWMutex
}

// NewPolicyService creates a PolicyService, loads the stored policy and, when Redis
// is configured, listens for updates made by other instances.
func NewPolicyService(store IOptionStore, rdb *redis.Client) IPolicyService {
	s := &policyService{
		store:   store,
		rdb:     rdb,
		current: models.DefaultPolicy(),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to load reCAPTCHA policy from DB. Using defaults")
	}
	if rdb != nil {
		go func() {
			if err := s.SubscribeToChanges(context.Background()); err != nil {
				log.Error().Err(err).Msg("Policy Pub/Sub listener stopped")
			}
		}()
	}
	return s
}

// Load reads the stored policy into the cache. When no canonical record exists it is
// created once, from the legacy record if one is present, otherwise from defaults.
func (s *policyService) Load(ctx context.Context) error {
	cfg, err := s.store.GetPolicy(ctx)
	if errors.Is(err, ErrOptionNotFound) {
		cfg, err = s.bootstrap(ctx)
	}
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.current = *cfg
	s.mutex.Unlock()
	log.Debug().Bool("show_in_comments", cfg.ShowInComments).Msg("Loaded reCAPTCHA policy.")
	return nil
}

func (s *policyService) bootstrap(ctx context.Context) (*models.PolicyConfig, error) {
	cfg := models.DefaultPolicy()
	migrated := false

	legacy, err := s.store.GetLegacy(ctx)
	switch {
	case err == nil:
		cfg = policy.FromLegacy(*legacy)
		migrated = true
	case errors.Is(err, ErrOptionNotFound):
	default:
		// best-effort import: fall back to defaults
		log.Warn().Err(err).Msg("Failed to read legacy reCAPTCHA options, using defaults")
	}

	if err := s.store.PutPolicy(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to store initial policy: %w", err)
	}
	if migrated {
		if err := s.store.DeleteLegacy(ctx); err != nil {
			log.Warn().Err(err).Msg("Migrated legacy reCAPTCHA options but could not delete them")
		}
		log.Info().Msg("Migrated legacy reCAPTCHA options.")
	}
	return &cfg, nil
}

// Current returns a copy of the cached policy.
func (s *policyService) Current() models.PolicyConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// Update validates raw against the current policy, stores the result and notifies
// other instances.
func (s *policyService) Update(ctx context.Context, raw policy.RawOptions) (models.PolicyConfig, error) {
	validated := policy.Validate(raw, s.Current())

	if err := s.store.PutPolicy(ctx, validated); err != nil {
		return models.PolicyConfig{}, err
	}

	s.mutex.Lock()
	s.current = validated
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, policyUpdateChannel, models.PolicyOptionName).Err(); err != nil {
			log.Warn().Err(err).Msg("Failed to publish policy update notification")
		}
	}

	log.Info().Msg("Updated reCAPTCHA policy.")
	return validated, nil
}

// SubscribeToChanges reloads the policy whenever another instance publishes an update.
func (s *policyService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		log.Info().Msg("Redis client not configured, cannot subscribe to policy changes.")
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, policyUpdateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to receive confirmation from Redis Pub/Sub subscription: %w", err)
	}

	ch := pubsub.Channel()
	log.Info().Str("channel", policyUpdateChannel).Msg("Subscribed to Redis channel for policy updates")

	for msg := range ch {
		log.Debug().Str("channel", msg.Channel).Str("payload", msg.Payload).Msg("Received policy update notification")
		if err := s.Load(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to reload policy after notification")
		}
	}

	log.Info().Msg("Policy Pub/Sub listener stopped.")
	return nil
}
