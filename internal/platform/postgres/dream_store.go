package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

const dreamColumns = `id, user_id, dream_date, COALESCE(title, ''), COALESCE(body_text, ''),
	COALESCE(audio_file_path, ''), lucidity_level, array_to_json(emotion_tags), analysis_status,
	is_shared, COALESCE(dream_type, ''), sleep_quality, dream_duration, COALESCE(location, ''),
	array_to_json(characters), array_to_json(symbols), created_at, updated_at`

// topTagLimit is how many emotions and symbols Stats reports.
const topTagLimit = 5

// PostgresDreamStore implements store.DreamStore.
type PostgresDreamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDreamStore creates a dream store on db. A nil logger uses slog.Default().
func NewPostgresDreamStore(db store.DBTX, logger *slog.Logger) *PostgresDreamStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDreamStore{
		db:     db,
		logger: logger.With(slog.String("component", "dream_store")),
	}
}

var _ store.DreamStore = (*PostgresDreamStore)(nil)

// WithTx implements store.DreamStore.
func (s *PostgresDreamStore) WithTx(tx *sql.Tx) store.DreamStore {
	return &PostgresDreamStore{db: tx, logger: s.logger}
}

// Create implements store.DreamStore.
func (s *PostgresDreamStore) Create(ctx context.Context, dream *domain.Dream) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := dream.Validate(); err != nil {
		log.Debug("dream validation failed during create",
			slog.String("error", err.Error()),
			slog.String("dream_id", dream.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dreams (id, user_id, dream_date, title, body_text, audio_file_path,
			lucidity_level, emotion_tags, analysis_status, is_shared, dream_type, sleep_quality,
			dream_duration, location, characters, symbols, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		dream.ID,
		dream.UserID,
		dream.DreamDate,
		nullString(dream.Title),
		nullString(dream.BodyText),
		nullString(dream.AudioFilePath),
		nullInt(dream.LucidityLevel),
		nonNil(dream.EmotionTags),
		string(dream.AnalysisStatus),
		dream.IsShared,
		nullString(string(dream.DreamType)),
		nullInt(dream.SleepQuality),
		nullInt(dream.DreamDuration),
		nullString(dream.Location),
		nonNil(dream.Characters),
		nonNil(dream.Symbols),
		dream.CreatedAt,
		dream.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, dream.UserID)
		}
		log.Error("failed to create dream",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", dream.ID.String()))
		return MapError(err)
	}

	log.Info("dream created",
		slog.String("dream_id", dream.ID.String()),
		slog.String("user_id", dream.UserID.String()))
	return nil
}

// GetByID implements store.DreamStore.
func (s *PostgresDreamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dream, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dreamColumns+` FROM dreams WHERE id = $1`, id)
	dream, err := scanDream(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDreamNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get dream",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", id.String()))
		return nil, MapError(err)
	}
	return dream, nil
}

// Update implements store.DreamStore.
func (s *PostgresDreamStore) Update(ctx context.Context, dream *domain.Dream) error {
	if err := dream.Validate(); err != nil {
		return err
	}
	dream.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE dreams
		SET dream_date = $1, title = $2, body_text = $3, lucidity_level = $4, emotion_tags = $5,
			analysis_status = $6, is_shared = $7, dream_type = $8, sleep_quality = $9,
			dream_duration = $10, location = $11, characters = $12, symbols = $13, updated_at = $14
		WHERE id = $15`,
		dream.DreamDate,
		nullString(dream.Title),
		nullString(dream.BodyText),
		nullInt(dream.LucidityLevel),
		nonNil(dream.EmotionTags),
		string(dream.AnalysisStatus),
		dream.IsShared,
		nullString(string(dream.DreamType)),
		nullInt(dream.SleepQuality),
		nullInt(dream.DreamDuration),
		nullString(dream.Location),
		nonNil(dream.Characters),
		nonNil(dream.Symbols),
		dream.UpdatedAt,
		dream.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update dream",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", dream.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDreamNotFound)
}

// UpdateStatus implements store.DreamStore.
func (s *PostgresDreamStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error {
	probe := domain.Dream{AnalysisStatus: domain.AnalysisStatusPending}
	if err := probe.UpdateStatus(status); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE dreams SET analysis_status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update dream status",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDreamNotFound)
}

// Delete implements store.DreamStore.
func (s *PostgresDreamStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dreams WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete dream",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDreamNotFound)
}

// List implements store.DreamStore.
func (s *PostgresDreamStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.DreamFilter,
) ([]*domain.Dream, error) {
	skip, limit := clampPage(filter.Skip, filter.Limit, store.DefaultListLimit)

	var (
		where = []string{"user_id = $1"}
		args  = []any{userID}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.StartDate != nil {
		add("dream_date >= $%d", domain.TruncateToDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		add("dream_date <= $%d", domain.TruncateToDate(*filter.EndDate))
	}
	if filter.DreamType != "" {
		add("dream_type = $%d", string(filter.DreamType))
	}
	if filter.Emotion != "" {
		add("$%d = ANY(emotion_tags)", filter.Emotion)
	}
	args = append(args, limit, skip)

	query := fmt.Sprintf(`SELECT %s FROM dreams WHERE %s
		ORDER BY dream_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		dreamColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	return s.queryDreams(ctx, "list", query, args...)
}

// Search implements store.DreamStore.
func (s *PostgresDreamStore) Search(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]*domain.Dream, error) {
	_, limit = clampPage(0, limit, store.DefaultListLimit)
	pattern := "%" + escapeLike(query) + "%"
	return s.queryDreams(ctx, "search", `
		SELECT `+dreamColumns+` FROM dreams
		WHERE user_id = $1 AND (title ILIKE $2 OR body_text ILIKE $2)
		ORDER BY dream_date DESC, created_at DESC
		LIMIT $3`,
		userID, pattern, limit)
}

// Since implements store.DreamStore.
func (s *PostgresDreamStore) Since(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Dream, error) {
	return s.queryDreams(ctx, "since", `
		SELECT `+dreamColumns+` FROM dreams
		WHERE user_id = $1 AND dream_date >= $2
		ORDER BY dream_date DESC, created_at DESC`,
		userID, domain.TruncateToDate(from))
}

// History implements store.DreamStore.
func (s *PostgresDreamStore) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Dream, error) {
	if limit <= 0 {
		return []*domain.Dream{}, nil
	}
	return s.queryDreams(ctx, "history", `
		SELECT `+dreamColumns+` FROM dreams
		WHERE user_id = $1 AND body_text IS NOT NULL AND body_text <> ''
		ORDER BY dream_date DESC, created_at DESC
		LIMIT $2`,
		userID, limit)
}

// CountAnalysesSince implements store.DreamStore.
func (s *PostgresDreamStore) CountAnalysesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM dreams
		WHERE user_id = $1 AND analysis_status IN ('processing', 'completed') AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count analyses",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// Stats implements store.DreamStore.
func (s *PostgresDreamStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*store.DreamStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	today := domain.TruncateToDate(now)
	monthStart := domain.MonthStart(today)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	var (
		stats        store.DreamStats
		lucidity     sql.NullFloat64
		sleepQuality sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE dream_date >= $2),
			COUNT(*) FILTER (WHERE dream_date >= $3),
			AVG(lucidity_level)::float8,
			AVG(sleep_quality)::float8
		FROM dreams WHERE user_id = $1`,
		userID, monthStart, weekStart,
	).Scan(&stats.TotalDreams, &stats.DreamsThisMonth, &stats.DreamsThisWeek, &lucidity, &sleepQuality)
	if err != nil {
		log.Error("failed to aggregate dream stats",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	stats.AverageLucidity = floatPtrFrom(lucidity)
	stats.AverageSleepQuality = floatPtrFrom(sleepQuality)

	if stats.MostCommonEmotions, err = s.topTags(ctx, userID, "emotion_tags"); err != nil {
		return nil, err
	}
	if stats.MostCommonSymbols, err = s.topTags(ctx, userID, "symbols"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT dream_type, COUNT(*) FROM dreams
		WHERE user_id = $1 AND dream_type IS NOT NULL
		GROUP BY dream_type`, userID)
	if err != nil {
		log.Error("failed to aggregate dream types", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer closeRows(log, rows)

	stats.DreamTypeDistribution = map[string]int{}
	for rows.Next() {
		var (
			dreamType string
			count     int
		)
		if err := rows.Scan(&dreamType, &count); err != nil {
			return nil, MapError(err)
		}
		stats.DreamTypeDistribution[dreamType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return &stats, nil
}

// topTags counts the values of an array column; column is never user input.
func (s *PostgresDreamStore) topTags(ctx context.Context, userID uuid.UUID, column string) ([]store.TagCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT tag, COUNT(*) AS n
		FROM dreams, unnest(%s) AS tag
		WHERE user_id = $1
		GROUP BY tag
		ORDER BY n DESC, tag
		LIMIT $2`, column), userID, topTagLimit)
	if err != nil {
		log.Error("failed to aggregate tags",
			slog.String("column", column),
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer closeRows(log, rows)
	return scanTagCounts(rows)
}

func (s *PostgresDreamStore) queryDreams(ctx context.Context, op, query string, args ...any) ([]*domain.Dream, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query dreams",
			slog.String("op", op),
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer closeRows(log, rows)

	dreams := []*domain.Dream{}
	for rows.Next() {
		dream, err := scanDream(rows)
		if err != nil {
			log.Error("failed to scan dream row",
				slog.String("op", op),
				slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		dreams = append(dreams, dream)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return dreams, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDream(row rowScanner) (*domain.Dream, error) {
	var (
		d                                domain.Dream
		status, dreamType                string
		lucidity, sleepQuality, duration sql.NullInt32
		emotions, characters, symbols    textList
	)
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.DreamDate,
		&d.Title,
		&d.BodyText,
		&d.AudioFilePath,
		&lucidity,
		&emotions,
		&status,
		&d.IsShared,
		&dreamType,
		&sleepQuality,
		&duration,
		&d.Location,
		&characters,
		&symbols,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.AnalysisStatus = domain.AnalysisStatus(status)
	d.DreamType = domain.DreamType(dreamType)
	d.LucidityLevel = intPtrFrom(lucidity)
	d.SleepQuality = intPtrFrom(sleepQuality)
	d.DreamDuration = intPtrFrom(duration)
	d.EmotionTags = []string(emotions)
	d.Characters = []string(characters)
	d.Symbols = []string(symbols)
	return &d, nil
}

func scanTagCounts(rows *sql.Rows) ([]store.TagCount, error) {
	counts := []store.TagCount{}
	for rows.Next() {
		var tc store.TagCount
		if err := rows.Scan(&tc.Value, &tc.Count); err != nil {
			return nil, MapError(err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return counts, nil
}

func closeRows(log *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", redact.Error(err)))
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
