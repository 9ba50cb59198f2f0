package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/repository"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	leaderboardCacheTTL     = time.Minute
)

// ScoreSubmission records one finished quiz. Resubmitting a quiz only counts an improvement on the best score.
type ScoreSubmission struct {
	QuizID string
	Score  int
	Total  int
}

// LeaderboardService accumulates quiz results and serves the ranked board.
type LeaderboardService interface {
	SubmitScore(ctx context.Context, userID string, submission ScoreSubmission) (dto.LeaderboardEntryResponse, error)
	Top(ctx context.Context, limit int) (dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	repo     repository.LeaderboardRepository
	users    repository.UserRepository
	profiles repository.ProfileRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLeaderboardService constructs the leaderboard service.
func NewLeaderboardService(repo repository.LeaderboardRepository, users repository.UserRepository, profiles repository.ProfileRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) LeaderboardService {
	if ttl <= 0 {
		ttl = leaderboardCacheTTL
	}
	return &leaderboardService{
		repo:     repo,
		users:    users,
		profiles: profiles,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
		now:      time.Now,
	}
}

func leaderboardCacheKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

func (s *leaderboardService) SubmitScore(ctx context.Context, userID string, submission ScoreSubmission) (dto.LeaderboardEntryResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.LeaderboardEntryResponse{}, ErrUnauthorized
	}
	if strings.TrimSpace(submission.QuizID) == "" {
		return dto.LeaderboardEntryResponse{}, invalidInput("quiz id is required")
	}
	if submission.Total <= 0 || submission.Score < 0 || submission.Score > submission.Total {
		return dto.LeaderboardEntryResponse{}, invalidInput("score must be between 0 and total")
	}

	percentage := math.Round(float64(submission.Score)/float64(submission.Total)*10000) / 100
	entry, err := s.repo.RecordAttempt(ctx, repository.QuizAttempt{
		UserID:      userID,
		DisplayName: s.displayName(ctx, userID),
		QuizID:      strings.TrimSpace(submission.QuizID),
		Score:       submission.Score,
		Total:       submission.Total,
		Percentage:  percentage,
		At:          s.now().UTC(),
	})
	if err != nil {
		return dto.LeaderboardEntryResponse{}, persistenceError(err)
	}

	s.invalidate(ctx)
	s.logger.Info().
		Str("user_id", userID).
		Str("quiz_id", submission.QuizID).
		Int("score", submission.Score).
		Int("total", submission.Total).
		Msg("quiz score recorded")

	return dto.NewLeaderboardEntryResponse(0, entry), nil
}

func (s *leaderboardService) Top(ctx context.Context, limit int) (dto.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	cacheKey := leaderboardCacheKey(limit)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	entries, err := s.repo.Top(ctx, limit)
	if err != nil {
		return dto.LeaderboardResponse{}, persistenceError(err)
	}

	response := dto.LeaderboardResponse{
		Entries:     make([]dto.LeaderboardEntryResponse, 0, len(entries)),
		GeneratedAt: s.now().UTC(),
	}
	for i, entry := range entries {
		response.Entries = append(response.Entries, dto.NewLeaderboardEntryResponse(i+1, entry))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return response, nil
}

func (s *leaderboardService) displayName(ctx context.Context, userID string) string {
	if s.profiles != nil {
		if profile, err := s.profiles.Get(ctx, userID); err == nil && strings.TrimSpace(profile.Username) != "" {
			return profile.Username
		}
	}
	if s.users != nil {
		if user, err := s.users.FindByID(ctx, userID); err == nil {
			return user.DisplayLabel()
		}
	}
	return dto.UnknownActorLabel
}

func (s *leaderboardService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, "leaderboard:top:*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan leaderboard cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}
