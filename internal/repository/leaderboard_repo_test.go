package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/models"
)

func attempt(userID, quizID string, score, total int) QuizAttempt {
	return QuizAttempt{
		UserID:      userID,
		DisplayName: "user " + userID,
		QuizID:      quizID,
		Score:       score,
		Total:       total,
		Percentage:  float64(score*100) / float64(total),
		At:          time.Now().UTC(),
	}
}

func TestLeaderboardRepositoryRecordAttemptAccumulatesAndRanks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)
	ctx := context.Background()

	_, err := repo.RecordAttempt(ctx, attempt("u1", "q1", 5, 10))
	require.NoError(t, err)
	_, err = repo.RecordAttempt(ctx, attempt("u2", "q1", 9, 10))
	require.NoError(t, err)
	entry, err := repo.RecordAttempt(ctx, attempt("u1", "q2", 10, 10))
	require.NoError(t, err)
	require.Equal(t, 15, entry.TotalScore)
	require.Equal(t, 2, entry.QuizzesTaken)
	require.Equal(t, 100.0, entry.BestPercentage)

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, entry.TotalScore, stored.TotalScore)

	top, err := repo.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "u1", top[0].UserID)
	require.Equal(t, "u2", top[1].UserID)
}

func TestLeaderboardRepositoryResubmissionCountsOnlyImprovement(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)
	ctx := context.Background()

	for _, score := range []int{6, 4, 6, 9, 2} {
		_, err := repo.RecordAttempt(ctx, attempt("u1", "q1", score, 10))
		require.NoError(t, err)
	}

	entry, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 9, entry.TotalScore)
	require.Equal(t, 1, entry.QuizzesTaken)
	require.Equal(t, 90.0, entry.BestPercentage)

	var result models.QuizResult
	require.NoError(t, db.Where("user_id = ? AND quiz_id = ?", "u1", "q1").Take(&result).Error)
	require.Equal(t, 9, result.BestScore)
	require.Equal(t, 5, result.Attempts)
}

func TestLeaderboardRepositoryConcurrentAttemptsAllCount(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	repo := NewLeaderboardRepository(db)
	ctx := context.Background()

	const quizzes = 12
	var wg sync.WaitGroup
	errs := make(chan error, quizzes)
	for i := 0; i < quizzes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.RecordAttempt(ctx, attempt("u1", fmt.Sprintf("q%d", i), 1, 1))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entry, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, quizzes, entry.TotalScore)
	require.Equal(t, quizzes, entry.QuizzesTaken)
}
