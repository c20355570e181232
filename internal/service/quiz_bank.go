package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/quiz"
	"github.com/google/uuid"
)

// QuizBankService manages the question bank, the player roster and the
// sessions built from them.
type QuizBankService struct {
	questions QuestionStore
	players   PlayerStore
	sessions  SessionStore
}

func NewQuizBankService(questions QuestionStore, players PlayerStore, sessions SessionStore) *QuizBankService {
	return &QuizBankService{questions: questions, players: players, sessions: sessions}
}

// --- questions

func (s *QuizBankService) ListQuestions(ctx context.Context, p *model.ListQuestionsPayload) (*model.PaginatedResponse[model.QuizQuestion], error) {
	params := listParams(&p.ListPayload)

	questions, total, err := s.questions.List(ctx, params, p.Tag)
	if err != nil {
		return nil, err
	}

	res := model.NewPaginatedResponse(questions, params.Page, params.Limit, total)
	return &res, nil
}

func (s *QuizBankService) GetQuestion(ctx context.Context, id uuid.UUID) (*model.QuizQuestion, error) {
	return s.questions.GetByID(ctx, id)
}

func (s *QuizBankService) CreateQuestion(ctx context.Context, p *model.CreateQuestionPayload) (*model.QuizQuestion, error) {
	q := p.Question()
	if err := checkQuestion(q); err != nil {
		return nil, err
	}
	return s.questions.Create(ctx, q)
}

func (s *QuizBankService) UpdateQuestion(ctx context.Context, p *model.UpdateQuestionPayload) (*model.QuizQuestion, error) {
	q := p.Question()
	if err := checkQuestion(q); err != nil {
		return nil, err
	}
	return s.questions.Update(ctx, q)
}

func (s *QuizBankService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.questions.Delete(ctx, id)
}

// checkQuestion applies the per-kind rules of the quiz engine so a stored
// question can always be loaded.
func checkQuestion(q *model.QuizQuestion) error {
	if err := quiz.ValidateQuestion(*q); err != nil {
		return badRequest("QUIZ_QUESTION_INVALID", err.Error())
	}
	return nil
}

// --- players

func (s *QuizBankService) ListPlayers(ctx context.Context) ([]model.QuizPlayer, error) {
	return s.players.List(ctx)
}

func (s *QuizBankService) GetPlayer(ctx context.Context, id uuid.UUID) (*model.QuizPlayer, error) {
	return s.players.GetByID(ctx, id)
}

func (s *QuizBankService) CreatePlayer(ctx context.Context, p *model.PlayerPayload) (*model.QuizPlayer, error) {
	player := p.Player()
	player.ID = uuid.Nil
	return s.players.Create(ctx, player)
}

func (s *QuizBankService) UpdatePlayer(ctx context.Context, p *model.PlayerPayload) (*model.QuizPlayer, error) {
	if p.ID == uuid.Nil {
		return nil, badRequest("QUIZ_PLAYER_ID_REQUIRED", "A player id is required")
	}
	return s.players.Update(ctx, p.Player())
}

func (s *QuizBankService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	return s.players.Delete(ctx, id)
}

// --- sessions

func (s *QuizBankService) ListSessions(ctx context.Context) ([]model.QuizSession, error) {
	return s.sessions.List(ctx)
}

func (s *QuizBankService) GetSession(ctx context.Context, id uuid.UUID) (*model.QuizSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *QuizBankService) CreateSession(ctx context.Context, p *model.SessionPayload) (*model.QuizSession, error) {
	if _, err := sessionQuestions(ctx, s.questions, p.QuestionIDs); err != nil {
		return nil, err
	}
	session := p.Session()
	session.ID = uuid.Nil
	return s.sessions.Create(ctx, session)
}

func (s *QuizBankService) UpdateSession(ctx context.Context, p *model.SessionPayload) (*model.QuizSession, error) {
	if p.ID == uuid.Nil {
		return nil, badRequest("QUIZ_SESSION_ID_REQUIRED", "A session id is required")
	}
	if _, err := sessionQuestions(ctx, s.questions, p.QuestionIDs); err != nil {
		return nil, err
	}
	return s.sessions.Update(ctx, p.Session())
}

// DeleteSession refuses to delete the session loaded in the engine.
func (s *QuizBankService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session.IsActive {
		return conflict("QUIZ_SESSION_ACTIVE", "End the quiz before deleting its session")
	}
	return s.sessions.Delete(ctx, id)
}

// sessionQuestions loads ids in session order. Every id must exist; a
// question may appear more than once.
func sessionQuestions(ctx context.Context, questions QuestionStore, ids []uuid.UUID) ([]model.QuizQuestion, error) {
	found, err := questions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.QuizQuestion, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	ordered := make([]model.QuizQuestion, 0, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, q)
	}

	if len(missing) > 0 {
		return nil, badRequest("QUIZ_QUESTIONS_MISSING",
			fmt.Sprintf("%d question(s) do not exist (first: %s)", len(missing), missing[0]))
	}
	return ordered, nil
}
