package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/observability"
	"github.com/noah-isme/lumora-api/internal/repository"
)

// Ad-gate progress states.
const (
	AdGateNotStarted = "not_started"
	AdGateStageOne   = "stage_one"
	AdGateStageTwo   = "stage_two"
	AdGateUnlocked   = "unlocked"
)

const (
	defaultAdGateDwell = 30 * time.Second
	// stage tokens stay redeemable this long after the dwell elapses.
	adGateRedeemWindow = 15 * time.Minute
)

var (
	// ErrDwellNotElapsed indicates a stage was completed before its dwell time passed.
	ErrDwellNotElapsed = fmt.Errorf("%w: dwell time has not elapsed", ErrInvalidInput)
	// ErrStageOutOfOrder indicates stage two was attempted before stage one was recorded.
	ErrStageOutOfOrder = fmt.Errorf("%w: stage one must be completed first", ErrInvalidInput)
	// ErrInvalidGateToken indicates the stage token is malformed, expired or issued for another stage or user.
	ErrInvalidGateToken = fmt.Errorf("%w: invalid stage token", ErrInvalidInput)
)

// GateStatus is the binary answer of CheckStatus.
type GateStatus int

const (
	GateLocked GateStatus = iota
	GateUnlocked
)

func (s GateStatus) String() string {
	if s == GateUnlocked {
		return "unlocked"
	}
	return "locked"
}

// AdGateService tracks progress through the two-stage watch-then-unlock flow.
type AdGateService interface {
	RecordProgress(ctx context.Context, userID string, stage1Done, stage2Done bool) (models.AdViewState, error)
	CheckStatus(ctx context.Context, userID string) (GateStatus, error)
	Status(ctx context.Context, userID string) (dto.AdGateStatusResponse, error)
	StartStage(ctx context.Context, userID string, stage int) (dto.AdGateStageResponse, error)
	CompleteStage(ctx context.Context, userID string, stage int, token string) (dto.AdGateStatusResponse, error)
}

type stageClaims struct {
	Stage int `json:"stage"`
	jwt.RegisteredClaims
}

type adGateService struct {
	repo   repository.AdViewRepository
	secret []byte
	dwell  time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewAdGateService constructs the ad-gate tracker. Stage tokens are signed with secret.
func NewAdGateService(repo repository.AdViewRepository, secret string, dwell time.Duration, logger zerolog.Logger) AdGateService {
	if dwell <= 0 {
		dwell = defaultAdGateDwell
	}
	return &adGateService{
		repo:   repo,
		secret: []byte(secret),
		dwell:  dwell,
		logger: logger.With().Str("component", "ad_gate_service").Logger(),
		now:    time.Now,
	}
}

func (s *adGateService) RecordProgress(ctx context.Context, userID string, stage1Done, stage2Done bool) (models.AdViewState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.AdViewState{}, ErrUnauthorized
	}

	watchedAt := s.now().UTC()
	state := models.AdViewState{
		UserID:        userID,
		Video1Watched: stage1Done,
		Video2Watched: stage2Done,
		LastWatchedAt: &watchedAt,
	}
	if err := s.repo.Upsert(ctx, &state); err != nil {
		return models.AdViewState{}, persistenceError(err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Bool("video_1_watched", stage1Done).
		Bool("video_2_watched", stage2Done).
		Msg("ad gate progress recorded")
	return state, nil
}

func (s *adGateService) CheckStatus(ctx context.Context, userID string) (GateStatus, error) {
	state, found, err := s.load(ctx, userID)
	if err != nil {
		return GateLocked, err
	}
	if !found || !state.Unlocked() {
		return GateLocked, nil
	}
	return GateUnlocked, nil
}

func (s *adGateService) Status(ctx context.Context, userID string) (dto.AdGateStatusResponse, error) {
	state, found, err := s.load(ctx, userID)
	if err != nil {
		return dto.AdGateStatusResponse{}, err
	}
	return buildGateStatus(state, found), nil
}

func (s *adGateService) StartStage(ctx context.Context, userID string, stage int) (dto.AdGateStageResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.AdGateStageResponse{}, ErrUnauthorized
	}
	if stage != 1 && stage != 2 {
		return dto.AdGateStageResponse{}, invalidInput("stage must be 1 or 2")
	}

	if stage == 2 {
		state, found, err := s.load(ctx, userID)
		if err != nil {
			return dto.AdGateStageResponse{}, err
		}
		if !found || !state.Video1Watched {
			return dto.AdGateStageResponse{}, ErrStageOutOfOrder
		}
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	claims := stageClaims{
		Stage: stage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{models.AdGateTokenAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.dwell + adGateRedeemWindow)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.AdGateStageResponse{}, fmt.Errorf("sign stage token: %w", err)
	}

	observability.AdGateTransitions().WithLabelValues(stageLabel(stage), "start").Inc()

	return dto.AdGateStageResponse{
		Stage:        stage,
		Token:        token,
		StartedAt:    issuedAt,
		AvailableAt:  issuedAt.Add(s.dwell),
		DwellSeconds: int(s.dwell / time.Second),
	}, nil
}

func (s *adGateService) CompleteStage(ctx context.Context, userID string, stage int, token string) (dto.AdGateStatusResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.AdGateStatusResponse{}, ErrUnauthorized
	}
	if stage != 1 && stage != 2 {
		return dto.AdGateStatusResponse{}, invalidInput("stage must be 1 or 2")
	}

	claims, err := s.parseStageToken(token)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Int("stage", stage).Msg("rejected stage token")
		return dto.AdGateStatusResponse{}, ErrInvalidGateToken
	}
	if claims.Subject != userID || claims.Stage != stage || claims.IssuedAt == nil {
		return dto.AdGateStatusResponse{}, ErrInvalidGateToken
	}
	if s.now().Sub(claims.IssuedAt.Time) < s.dwell {
		observability.AdGateTransitions().WithLabelValues(stageLabel(stage), "too_early").Inc()
		return dto.AdGateStatusResponse{}, ErrDwellNotElapsed
	}

	state, found, err := s.load(ctx, userID)
	if err != nil {
		return dto.AdGateStatusResponse{}, err
	}

	stage1, stage2 := state.Video1Watched, state.Video2Watched
	switch stage {
	case 1:
		stage1 = true
	case 2:
		if !found || !state.Video1Watched {
			return dto.AdGateStatusResponse{}, ErrStageOutOfOrder
		}
		stage2 = true
	}

	updated, err := s.RecordProgress(ctx, userID, stage1, stage2)
	if err != nil {
		return dto.AdGateStatusResponse{}, err
	}

	observability.AdGateTransitions().WithLabelValues(stageLabel(stage), "complete").Inc()
	return buildGateStatus(updated, true), nil
}

func (s *adGateService) parseStageToken(token string) (*stageClaims, error) {
	claims := &stageClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(models.AdGateTokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

func (s *adGateService) load(ctx context.Context, userID string) (models.AdViewState, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.AdViewState{}, false, ErrUnauthorized
	}

	state, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AdViewState{}, false, nil
		}
		return models.AdViewState{}, false, persistenceError(err)
	}
	return state, true, nil
}

func buildGateStatus(state models.AdViewState, found bool) dto.AdGateStatusResponse {
	response := dto.AdGateStatusResponse{
		Video1Watched: state.Video1Watched,
		Video2Watched: state.Video2Watched,
		LastWatchedAt: state.LastWatchedAt,
	}

	switch {
	case !found:
		response.State = AdGateNotStarted
		response.NextStage = 1
	case state.Unlocked():
		response.State = AdGateUnlocked
		response.Unlocked = true
	case state.Video1Watched:
		response.State = AdGateStageTwo
		response.NextStage = 2
	default:
		response.State = AdGateStageOne
		response.NextStage = 1
	}
	return response
}

func stageLabel(stage int) string {
	return fmt.Sprintf("stage_%d", stage)
}
