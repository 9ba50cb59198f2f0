package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/repository"
)

const defaultPresenceInterval = 30 * time.Second

// PresenceService keeps the online flag of identities fresh from client heartbeats.
type PresenceService interface {
	Heartbeat(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string)
	IsOnline(ctx context.Context, userID string) (dto.PresenceResponse, error)
}

type presenceService struct {
	profiles repository.ProfileRepository
	cache    *redis.Client
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPresenceService constructs the presence tracker. A heartbeat stays valid for two intervals.
func NewPresenceService(profiles repository.ProfileRepository, cache *redis.Client, interval time.Duration, logger zerolog.Logger) PresenceService {
	if interval <= 0 {
		interval = defaultPresenceInterval
	}
	return &presenceService{
		profiles: profiles,
		cache:    cache,
		ttl:      2 * interval,
		logger:   logger.With().Str("component", "presence_service").Logger(),
		now:      time.Now,
	}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (s *presenceService) Heartbeat(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUnauthorized
	}

	now := s.now().UTC()
	if err := s.profiles.SetPresence(ctx, userID, true, now); err != nil {
		return persistenceError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, presenceKey(userID), now.Format(time.RFC3339), s.ttl).Err(); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to store presence key")
		}
	}
	return nil
}

// MarkOffline is best effort. Failures are logged and not retried.
func (s *presenceService) MarkOffline(ctx context.Context, userID string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	if err := s.profiles.SetPresence(ctx, userID, false, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to mark user offline")
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, presenceKey(userID)).Err(); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to clear presence key")
		}
	}
}

func (s *presenceService) IsOnline(ctx context.Context, userID string) (dto.PresenceResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.PresenceResponse{}, invalidInput("user id is required")
	}
	response := dto.PresenceResponse{UserID: userID}

	if s.cache != nil {
		value, err := s.cache.Get(ctx, presenceKey(userID)).Result()
		switch {
		case err == nil:
			response.Online = true
			if seen, parseErr := time.Parse(time.RFC3339, value); parseErr == nil {
				response.LastSeenAt = &seen
			}
			return response, nil
		case !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read presence key")
		}
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.PresenceResponse{}, persistenceError(err)
	}

	response.LastSeenAt = profile.LastSeenAt
	response.Online = profile.IsOnline && profile.LastSeenAt != nil && s.now().Sub(*profile.LastSeenAt) <= s.ttl
	return response, nil
}
