package repository

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	quizQuestionsTable = "quiz_questions"
	quizPlayersTable   = "quiz_players"
	quizSessionsTable  = "quiz_sessions"
)

// QuizQuestionRepository stores the question bank.
type QuizQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuizQuestionRepository(pool *pgxpool.Pool) *QuizQuestionRepository {
	return &QuizQuestionRepository{pool: pool}
}

// List filters by search over the prompt and by tag when tag is not empty.
func (r *QuizQuestionRepository) List(ctx context.Context, p ListParams, tag string) ([]model.QuizQuestion, int, error) {
	p = p.Normalize()
	args := p.args()
	args["tag"] = tag
	where := `WHERE (@search::text = '' OR prompt ILIKE '%' || @search || '%') AND (@tag::text = '' OR @tag = ANY(tags))`

	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM quiz_questions `+where, args)
	if err != nil {
		return nil, 0, err
	}

	questions, err := queryAll[model.QuizQuestion](ctx, r.pool,
		`SELECT * FROM quiz_questions `+where+` ORDER BY created_at ASC LIMIT @limit OFFSET @offset`,
		args,
	)
	if err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *QuizQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizQuestion, error) {
	return queryOne[model.QuizQuestion](ctx, r.pool, quizQuestionsTable, `SELECT * FROM quiz_questions WHERE id = $1`, id)
}

// GetByIDs returns the questions that exist among ids, in no particular order.
func (r *QuizQuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.QuizQuestion, error) {
	return queryAll[model.QuizQuestion](ctx, r.pool, `SELECT * FROM quiz_questions WHERE id = ANY($1)`, nonNil(ids))
}

func (r *QuizQuestionRepository) Create(ctx context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error) {
	return queryOne[model.QuizQuestion](ctx, r.pool, quizQuestionsTable, `
		INSERT INTO quiz_questions (kind, prompt, media_url, options, correct_index, correct_value, points, time_limit_seconds, tags)
		VALUES (@kind, @prompt, @media_url, @options, @correct_index, @correct_value, @points, @time_limit_seconds, @tags)
		RETURNING *`,
		questionArgs(q),
	)
}

func (r *QuizQuestionRepository) Update(ctx context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error) {
	args := questionArgs(q)
	args["id"] = q.ID

	return queryOne[model.QuizQuestion](ctx, r.pool, quizQuestionsTable, `
		UPDATE quiz_questions SET
			kind = @kind,
			prompt = @prompt,
			media_url = @media_url,
			options = @options,
			correct_index = @correct_index,
			correct_value = @correct_value,
			points = @points,
			time_limit_seconds = @time_limit_seconds,
			tags = @tags
		WHERE id = @id
		RETURNING *`,
		args,
	)
}

func (r *QuizQuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, quizQuestionsTable, `DELETE FROM quiz_questions WHERE id = $1`, id)
}

func questionArgs(q *model.QuizQuestion) pgx.NamedArgs {
	return pgx.NamedArgs{
		"kind":               string(q.Kind),
		"prompt":             q.Prompt,
		"media_url":          q.MediaURL,
		"options":            nonNil(q.Options),
		"correct_index":      q.CorrectIndex,
		"correct_value":      q.CorrectValue,
		"points":             q.Points,
		"time_limit_seconds": q.TimeLimitSeconds,
		"tags":               nonNil(q.Tags),
	}
}

// QuizPlayerRepository stores the player roster.
type QuizPlayerRepository struct {
	pool *pgxpool.Pool
}

func NewQuizPlayerRepository(pool *pgxpool.Pool) *QuizPlayerRepository {
	return &QuizPlayerRepository{pool: pool}
}

func (r *QuizPlayerRepository) List(ctx context.Context) ([]model.QuizPlayer, error) {
	return queryAll[model.QuizPlayer](ctx, r.pool, `SELECT * FROM quiz_players ORDER BY display_name ASC`)
}

func (r *QuizPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizPlayer, error) {
	return queryOne[model.QuizPlayer](ctx, r.pool, quizPlayersTable, `SELECT * FROM quiz_players WHERE id = $1`, id)
}

func (r *QuizPlayerRepository) Create(ctx context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error) {
	return queryOne[model.QuizPlayer](ctx, r.pool, quizPlayersTable, `
		INSERT INTO quiz_players (display_name, avatar_url)
		VALUES ($1, $2)
		RETURNING *`,
		p.DisplayName, p.AvatarURL,
	)
}

func (r *QuizPlayerRepository) Update(ctx context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error) {
	return queryOne[model.QuizPlayer](ctx, r.pool, quizPlayersTable, `
		UPDATE quiz_players SET display_name = $2, avatar_url = $3
		WHERE id = $1
		RETURNING *`,
		p.ID, p.DisplayName, p.AvatarURL,
	)
}

func (r *QuizPlayerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, quizPlayersTable, `DELETE FROM quiz_players WHERE id = $1`, id)
}

// QuizSessionRepository stores sessions, their engine snapshot and which
// one is active.
type QuizSessionRepository struct {
	pool *pgxpool.Pool
}

func NewQuizSessionRepository(pool *pgxpool.Pool) *QuizSessionRepository {
	return &QuizSessionRepository{pool: pool}
}

func (r *QuizSessionRepository) List(ctx context.Context) ([]model.QuizSession, error) {
	return queryAll[model.QuizSession](ctx, r.pool, `SELECT * FROM quiz_sessions ORDER BY created_at DESC`)
}

func (r *QuizSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizSession, error) {
	return queryOne[model.QuizSession](ctx, r.pool, quizSessionsTable, `SELECT * FROM quiz_sessions WHERE id = $1`, id)
}

// GetActive returns the session currently loaded in the engine.
func (r *QuizSessionRepository) GetActive(ctx context.Context) (*model.QuizSession, error) {
	return queryOne[model.QuizSession](ctx, r.pool, quizSessionsTable, `SELECT * FROM quiz_sessions WHERE is_active`)
}

func (r *QuizSessionRepository) Create(ctx context.Context, s *model.QuizSession) (*model.QuizSession, error) {
	return queryOne[model.QuizSession](ctx, r.pool, quizSessionsTable, `
		INSERT INTO quiz_sessions (title, question_ids)
		VALUES ($1, $2)
		RETURNING *`,
		s.Title, nonNil(s.QuestionIDs),
	)
}

// Update changes title and questions. The engine state is only written by
// SaveState.
func (r *QuizSessionRepository) Update(ctx context.Context, s *model.QuizSession) (*model.QuizSession, error) {
	return queryOne[model.QuizSession](ctx, r.pool, quizSessionsTable, `
		UPDATE quiz_sessions SET title = $2, question_ids = $3
		WHERE id = $1
		RETURNING *`,
		s.ID, s.Title, nonNil(s.QuestionIDs),
	)
}

// SaveState stores the engine snapshot of session id.
func (r *QuizSessionRepository) SaveState(ctx context.Context, id uuid.UUID, state json.RawMessage) error {
	return execOne(ctx, r.pool, quizSessionsTable, `UPDATE quiz_sessions SET state = $2 WHERE id = $1`, id, state)
}

// SetActive makes id the only active session.
func (r *QuizSessionRepository) SetActive(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE quiz_sessions SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
			return err
		}
		return execOne(ctx, tx, quizSessionsTable, `UPDATE quiz_sessions SET is_active = TRUE WHERE id = $1`, id)
	})
}

// ClearActive deactivates every session.
func (r *QuizSessionRepository) ClearActive(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE quiz_sessions SET is_active = FALSE WHERE is_active`)
	return err
}

func (r *QuizSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, quizSessionsTable, `DELETE FROM quiz_sessions WHERE id = $1`, id)
}
