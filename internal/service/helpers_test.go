package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func testUser() *domain.User {
	return &domain.User{
		ID:                    uuid.New(),
		Email:                 "dreamer@example.com",
		HashedPassword:        "correct horse battery",
		SubscriptionPlan:      domain.PlanFree,
		CulturalBackground:    domain.CultureKorean,
		PreferredAnalysisType: domain.AnalysisBalanced,
	}
}

func testDream(userID uuid.UUID, body string, daysAgo int) *domain.Dream {
	d := domain.NewDream(userID, time.Now().AddDate(0, 0, -daysAgo))
	d.BodyText = body
	return d
}

func intPtr(v int) *int { return &v }
