package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dreamColumnNames = []string{
	"id", "user_id", "dream_date", "title", "body_text", "audio_file_path", "lucidity_level",
	"emotion_tags", "analysis_status", "is_shared", "dream_type", "sleep_quality", "dream_duration",
	"location", "characters", "symbols", "created_at", "updated_at",
}

func addDreamRow(rows *sqlmock.Rows, d *domain.Dream, emotions, characters, symbols string) *sqlmock.Rows {
	return rows.AddRow(d.ID.String(), d.UserID.String(), d.DreamDate, d.Title, d.BodyText, "",
		int64(4), emotions, string(d.AnalysisStatus), false, string(d.DreamType), nil, nil,
		d.Location, characters, symbols, d.CreatedAt, d.UpdatedAt)
}

func TestPostgresDreamStore_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("inserts arrays", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		d := domain.NewDream(uuid.New(), time.Now())
		d.Title = "바다"
		d.BodyText = "물에서 수영하는 꿈"
		d.EmotionTags = []string{"calm"}
		d.Symbols = []string{"물"}

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dreams")).
			WithArgs(d.ID, d.UserID, d.DreamDate, "바다", "물에서 수영하는 꿈", nil, nil,
				[]string{"calm"}, "pending", false, nil, nil, nil, nil,
				[]string{}, []string{"물"}, d.CreatedAt, d.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(ctx, d))
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dreams")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		err := s.Create(ctx, domain.NewDream(uuid.New(), time.Now()))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("invalid dream never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		d := domain.NewDream(uuid.New(), time.Now())
		d.EmotionTags = []string{"hungry"}

		assert.ErrorIs(t, s.Create(ctx, d), domain.ErrInvalidEmotionTag)
	})
}

func TestPostgresDreamStore_GetByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("scans arrays and nullable ints", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		d := domain.NewDream(uuid.New(), time.Now())
		d.DreamType = domain.DreamTypeLucid

		mock.ExpectQuery(regexp.QuoteMeta("FROM dreams WHERE id = $1")).
			WithArgs(d.ID).
			WillReturnRows(addDreamRow(sqlmock.NewRows(dreamColumnNames), d,
				`["happy","calm"]`, `["엄마"]`, `[]`))

		got, err := s.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
		assert.Equal(t, []string{"happy", "calm"}, got.EmotionTags)
		assert.Equal(t, []string{"엄마"}, got.Characters)
		assert.Equal(t, []string{}, got.Symbols)
		require.NotNil(t, got.LucidityLevel)
		assert.Equal(t, 4, *got.LucidityLevel)
		assert.Nil(t, got.SleepQuality)
		assert.Equal(t, domain.DreamTypeLucid, got.DreamType)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM dreams WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(dreamColumnNames))

		_, err := s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrDreamNotFound)
	})
}

func TestPostgresDreamStore_List(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresDreamStore(db, discardLogger())
	userID := uuid.New()
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE user_id = $1 AND dream_date >= $2 AND dream_type = $3 AND $4 = ANY(emotion_tags)")).
		WithArgs(userID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "nightmare", "fearful",
			store.DefaultListLimit, 0).
		WillReturnRows(sqlmock.NewRows(dreamColumnNames))

	dreams, err := s.List(context.Background(), userID, store.DreamFilter{
		StartDate: &start,
		DreamType: domain.DreamTypeNightmare,
		Emotion:   "fearful",
		Skip:      -3,
	})
	require.NoError(t, err)
	assert.Empty(t, dreams)
	assert.NotNil(t, dreams)
}

func TestPostgresDreamStore_Search(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresDreamStore(db, discardLogger())
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("(title ILIKE $2 OR body_text ILIKE $2)")).
		WithArgs(userID, `%100\%%`, 5).
		WillReturnRows(sqlmock.NewRows(dreamColumnNames))

	_, err := s.Search(context.Background(), userID, "100%", 5)
	require.NoError(t, err)
}

func TestPostgresDreamStore_UpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		assert.ErrorIs(t, s.UpdateStatus(ctx, uuid.New(), "done"), domain.ErrInvalidAnalysisState)
	})

	t.Run("missing dream", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE dreams SET analysis_status = $1")).
			WithArgs("processing", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdateStatus(ctx, id, domain.AnalysisStatusProcessing), store.ErrDreamNotFound)
	})
}

func TestPostgresDreamStore_History(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero limit skips the query", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		dreams, err := s.History(ctx, uuid.New(), 0)
		require.NoError(t, err)
		assert.Empty(t, dreams)
	})

	t.Run("newest first with body text", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresDreamStore(db, discardLogger())
		userID := uuid.New()
		newer := domain.NewDream(userID, time.Now())
		older := domain.NewDream(userID, time.Now().AddDate(0, 0, -1))

		rows := sqlmock.NewRows(dreamColumnNames)
		addDreamRow(rows, newer, `[]`, `[]`, `[]`)
		addDreamRow(rows, older, `[]`, `[]`, `[]`)
		mock.ExpectQuery(regexp.QuoteMeta("body_text IS NOT NULL")).
			WithArgs(userID, 50).
			WillReturnRows(rows)

		dreams, err := s.History(ctx, userID, 50)
		require.NoError(t, err)
		require.Len(t, dreams, 2)
		assert.Equal(t, newer.ID, dreams[0].ID)
	})
}

func TestPostgresDreamStore_CountAnalysesSince(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresDreamStore(db, discardLogger())
	userID := uuid.New()
	since := domain.MonthStart(time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("analysis_status IN ('processing', 'completed')")).
		WithArgs(userID, since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.CountAnalysesSince(context.Background(), userID, since)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPostgresDreamStore_Stats(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresDreamStore(db, discardLogger())
	userID := uuid.New()
	// Wednesday
	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER")).
		WithArgs(userID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "month", "week", "lucidity", "sleep"}).
			AddRow(12, 4, 2, 3.5, nil))
	mock.ExpectQuery(regexp.QuoteMeta("unnest(emotion_tags)")).
		WithArgs(userID, topTagLimit).
		WillReturnRows(sqlmock.NewRows([]string{"tag", "n"}).AddRow("anxious", 5).AddRow("calm", 2))
	mock.ExpectQuery(regexp.QuoteMeta("unnest(symbols)")).
		WithArgs(userID, topTagLimit).
		WillReturnRows(sqlmock.NewRows([]string{"tag", "n"}))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY dream_type")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"dream_type", "count"}).AddRow("lucid", 3).AddRow("normal", 9))

	stats, err := s.Stats(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalDreams)
	assert.Equal(t, 4, stats.DreamsThisMonth)
	assert.Equal(t, 2, stats.DreamsThisWeek)
	require.NotNil(t, stats.AverageLucidity)
	assert.InDelta(t, 3.5, *stats.AverageLucidity, 1e-9)
	assert.Nil(t, stats.AverageSleepQuality)
	assert.Equal(t, []store.TagCount{{Value: "anxious", Count: 5}, {Value: "calm", Count: 2}}, stats.MostCommonEmotions)
	assert.Empty(t, stats.MostCommonSymbols)
	assert.Equal(t, map[string]int{"lucid": 3, "normal": 9}, stats.DreamTypeDistribution)
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `50\% off\_now \\ ok`, escapeLike(`50% off_now \ ok`))
}
