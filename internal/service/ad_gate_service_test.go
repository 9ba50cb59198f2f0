package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newAdGateFixture(t *testing.T) (AdGateService, *fakeClock) {
	t.Helper()
	db := setupServiceDB(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewAdGateService(repository.NewAdViewRepository(db), "gate-secret", 30*time.Second, testLogger())
	svc.(*adGateService).now = clock.Now
	return svc, clock
}

func TestAdGateRecordProgressLockedThenUnlocked(t *testing.T) {
	svc, _ := newAdGateFixture(t)
	ctx := context.Background()

	status, err := svc.CheckStatus(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, GateLocked, status)

	_, err = svc.RecordProgress(ctx, "u1", true, false)
	require.NoError(t, err)
	status, err = svc.CheckStatus(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, GateLocked, status)

	_, err = svc.RecordProgress(ctx, "u1", true, true)
	require.NoError(t, err)
	status, err = svc.CheckStatus(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, GateUnlocked, status)
}

func TestAdGateRecordProgressUpdatesInPlace(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAdGateService(repository.NewAdViewRepository(db), "gate-secret", 0, testLogger())

	_, err := svc.RecordProgress(context.Background(), "u1", true, false)
	require.NoError(t, err)
	_, err = svc.RecordProgress(context.Background(), "u1", true, true)
	require.NoError(t, err)

	require.Equal(t, int64(1), countRows(t, db, &models.AdViewState{}))
}

func TestAdGateStagesEnforceDwell(t *testing.T) {
	svc, clock := newAdGateFixture(t)
	ctx := context.Background()

	status, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, AdGateNotStarted, status.State)
	require.Equal(t, 1, status.NextStage)

	_, err = svc.StartStage(ctx, "u1", 2)
	require.ErrorIs(t, err, ErrStageOutOfOrder)

	stage1, err := svc.StartStage(ctx, "u1", 1)
	require.NoError(t, err)
	require.Equal(t, 30, stage1.DwellSeconds)
	require.Equal(t, clock.now.Add(30*time.Second), stage1.AvailableAt)

	clock.Advance(10 * time.Second)
	_, err = svc.CompleteStage(ctx, "u1", 1, stage1.Token)
	require.ErrorIs(t, err, ErrDwellNotElapsed)

	clock.Advance(20 * time.Second)
	status, err = svc.CompleteStage(ctx, "u1", 1, stage1.Token)
	require.NoError(t, err)
	require.Equal(t, AdGateStageTwo, status.State)
	require.False(t, status.Unlocked)

	stage2, err := svc.StartStage(ctx, "u1", 2)
	require.NoError(t, err)

	clock.Advance(29 * time.Second)
	_, err = svc.CompleteStage(ctx, "u1", 2, stage2.Token)
	require.ErrorIs(t, err, ErrDwellNotElapsed)

	clock.Advance(time.Second)
	status, err = svc.CompleteStage(ctx, "u1", 2, stage2.Token)
	require.NoError(t, err)
	require.Equal(t, AdGateUnlocked, status.State)
	require.True(t, status.Unlocked)

	gate, err := svc.CheckStatus(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, GateUnlocked, gate)
}

func TestAdGateRejectsForeignTokens(t *testing.T) {
	svc, clock := newAdGateFixture(t)
	ctx := context.Background()

	stage1, err := svc.StartStage(ctx, "u1", 1)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	_, err = svc.CompleteStage(ctx, "u2", 1, stage1.Token)
	require.ErrorIs(t, err, ErrInvalidGateToken)

	_, err = svc.CompleteStage(ctx, "u1", 2, stage1.Token)
	require.ErrorIs(t, err, ErrInvalidGateToken)

	_, err = svc.CompleteStage(ctx, "u1", 1, "not-a-token")
	require.ErrorIs(t, err, ErrInvalidGateToken)

	other := NewAdGateService(nil, "another-secret", 30*time.Second, testLogger())
	other.(*adGateService).now = clock.Now
	forged, err := other.StartStage(ctx, "u1", 1)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.CompleteStage(ctx, "u1", 1, forged.Token)
	require.ErrorIs(t, err, ErrInvalidGateToken)

	clock.Advance(time.Hour)
	_, err = svc.CompleteStage(ctx, "u1", 1, stage1.Token)
	require.ErrorIs(t, err, ErrInvalidGateToken)
}

func TestAdGateRequiresStageAudience(t *testing.T) {
	svc, clock := newAdGateFixture(t)
	ctx := context.Background()

	stage1, err := svc.StartStage(ctx, "u1", 1)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(stage1.Token, jwt.MapClaims{})
	require.NoError(t, err)
	audience, err := parsed.Claims.GetAudience()
	require.NoError(t, err)
	require.Equal(t, jwt.ClaimStrings{models.AdGateTokenAudience}, audience)

	session, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"stage": 1,
		"iat":   clock.now.Unix(),
		"exp":   clock.now.Add(time.Hour).Unix(),
	}).SignedString([]byte("gate-secret"))
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.CompleteStage(ctx, "u1", 1, session)
	require.ErrorIs(t, err, ErrInvalidGateToken)
}
