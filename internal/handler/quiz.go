package handler

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/quiz"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// QuizHandler serves the question bank, the player roster, sessions and the
// live quiz.
type QuizHandler struct {
	Handler
	bank *service.QuizBankService
	quiz *service.QuizService
}

func NewQuizHandler(s *server.Server, bank *service.QuizBankService, quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{Handler: NewHandler(s), bank: bank, quiz: quizService}
}

// Question bank

func (h *QuizHandler) ListQuestions(c echo.Context, p *model.ListQuestionsPayload) (*model.PaginatedResponse[model.QuizQuestion], error) {
	return h.bank.ListQuestions(c.Request().Context(), p)
}

func (h *QuizHandler) GetQuestion(c echo.Context, p *model.IDPayload) (*model.QuizQuestion, error) {
	return h.bank.GetQuestion(c.Request().Context(), p.ID)
}

func (h *QuizHandler) CreateQuestion(c echo.Context, p *model.CreateQuestionPayload) (*model.QuizQuestion, error) {
	return h.bank.CreateQuestion(c.Request().Context(), p)
}

func (h *QuizHandler) UpdateQuestion(c echo.Context, p *model.UpdateQuestionPayload) (*model.QuizQuestion, error) {
	return h.bank.UpdateQuestion(c.Request().Context(), p)
}

func (h *QuizHandler) DeleteQuestion(c echo.Context, p *model.IDPayload) error {
	return h.bank.DeleteQuestion(c.Request().Context(), p.ID)
}

// Players

func (h *QuizHandler) ListPlayers(c echo.Context, _ *model.EmptyPayload) ([]model.QuizPlayer, error) {
	return h.bank.ListPlayers(c.Request().Context())
}

func (h *QuizHandler) GetPlayer(c echo.Context, p *model.IDPayload) (*model.QuizPlayer, error) {
	return h.bank.GetPlayer(c.Request().Context(), p.ID)
}

func (h *QuizHandler) CreatePlayer(c echo.Context, p *model.PlayerPayload) (*model.QuizPlayer, error) {
	return h.bank.CreatePlayer(c.Request().Context(), p)
}

func (h *QuizHandler) UpdatePlayer(c echo.Context, p *model.PlayerPayload) (*model.QuizPlayer, error) {
	return h.bank.UpdatePlayer(c.Request().Context(), p)
}

func (h *QuizHandler) DeletePlayer(c echo.Context, p *model.IDPayload) error {
	return h.bank.DeletePlayer(c.Request().Context(), p.ID)
}

// Sessions

func (h *QuizHandler) ListSessions(c echo.Context, _ *model.EmptyPayload) ([]model.QuizSession, error) {
	return h.bank.ListSessions(c.Request().Context())
}

func (h *QuizHandler) GetSession(c echo.Context, p *model.IDPayload) (*model.QuizSession, error) {
	return h.bank.GetSession(c.Request().Context(), p.ID)
}

func (h *QuizHandler) CreateSession(c echo.Context, p *model.SessionPayload) (*model.QuizSession, error) {
	return h.bank.CreateSession(c.Request().Context(), p)
}

func (h *QuizHandler) UpdateSession(c echo.Context, p *model.SessionPayload) (*model.QuizSession, error) {
	return h.bank.UpdateSession(c.Request().Context(), p)
}

func (h *QuizHandler) DeleteSession(c echo.Context, p *model.IDPayload) error {
	return h.bank.DeleteSession(c.Request().Context(), p.ID)
}

// Live quiz

func (h *QuizHandler) GetState(c echo.Context, _ *model.EmptyPayload) (quiz.View, error) {
	return h.quiz.View(), nil
}

func (h *QuizHandler) Load(c echo.Context, p *model.LoadQuizPayload) (*quiz.View, error) {
	return h.quiz.Load(c.Request().Context(), p.SessionID)
}

func (h *QuizHandler) Unload(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.Unload(c.Request().Context())
}

func (h *QuizHandler) ShowQuestion(c echo.Context, p *model.ShowQuestionPayload) (*quiz.View, error) {
	return h.quiz.ShowQuestion(c.Request().Context(), p)
}

func (h *QuizHandler) OpenAnswers(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.OpenAnswers(c.Request().Context())
}

func (h *QuizHandler) SubmitAnswer(c echo.Context, p *model.SubmitAnswerPayload) (*quiz.View, error) {
	return h.quiz.Submit(c.Request().Context(), p)
}

func (h *QuizHandler) Lock(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.Lock(c.Request().Context())
}

func (h *QuizHandler) Reveal(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.Reveal(c.Request().Context())
}

func (h *QuizHandler) Award(c echo.Context, p *model.AwardPayload) (*quiz.View, error) {
	return h.quiz.Award(c.Request().Context(), p)
}

func (h *QuizHandler) ApplyScores(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.ApplyScores(c.Request().Context())
}

func (h *QuizHandler) End(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.End(c.Request().Context())
}

func (h *QuizHandler) Reset(c echo.Context, _ *model.EmptyPayload) (*quiz.View, error) {
	return h.quiz.Reset(c.Request().Context())
}

func (h *QuizHandler) Join(c echo.Context, p *model.PlayerRefPayload) (*quiz.View, error) {
	return h.quiz.Join(c.Request().Context(), p)
}

func (h *QuizHandler) Leave(c echo.Context, p *model.PlayerRefPayload) (*quiz.View, error) {
	return h.quiz.Leave(c.Request().Context(), p)
}

func (h *QuizHandler) AdjustScore(c echo.Context, p *model.AdjustScorePayload) (*quiz.View, error) {
	return h.quiz.AdjustScore(c.Request().Context(), p)
}

func (h *QuizHandler) GetLeaderboard(c echo.Context, _ *model.EmptyPayload) ([]quiz.Player, error) {
	return h.quiz.Leaderboard(), nil
}

// ExportLeaderboard renders the leaderboard as CSV, ranked as displayed.
func (h *QuizHandler) ExportLeaderboard(c echo.Context, _ *model.EmptyPayload) ([]byte, error) {
	return leaderboardCSV(h.quiz.Leaderboard())
}

func leaderboardCSV(players []quiz.Player) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"rank", "player_id", "display_name", "score"}); err != nil {
		return nil, err
	}
	for i, p := range players {
		record := []string{strconv.Itoa(i + 1), p.ID.String(), p.DisplayName, strconv.Itoa(p.Score)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
