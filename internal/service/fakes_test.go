package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/repository"
	"github.com/deppfellow/obs-live-suite/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError %d %s, got %v", status, code, err)
	}
	if httpErr.Status != status {
		t.Fatalf("status = %d, want %d (%s)", httpErr.Status, status, httpErr.Message)
	}
	if code != "" && httpErr.Code != code {
		t.Fatalf("code = %q, want %q", httpErr.Code, code)
	}
}

// ------------------------------------------------------------------ tables

type memTable[T any] struct {
	mu    sync.Mutex
	table string
	base  func(*T) *model.Base
	rows  []T
}

func (m *memTable[T]) init(table string, base func(*T) *model.Base, rows []T) {
	m.table = table
	m.base = base
	for i := range rows {
		m.create(&rows[i])
	}
}

func (m *memTable[T]) all() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T{}, m.rows...)
}

func (m *memTable[T]) get(id uuid.UUID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.base(&m.rows[i]).ID == id {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, sqlerr.WrapNotFound(m.table, pgx.ErrNoRows)
}

func (m *memTable[T]) create(row *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.base(row)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.rows = append(m.rows, *row)
	out := *row
	return &out, nil
}

func (m *memTable[T]) update(row *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.base(row).ID
	for i := range m.rows {
		if m.base(&m.rows[i]).ID == id {
			m.base(row).CreatedAt = m.base(&m.rows[i]).CreatedAt
			m.base(row).UpdatedAt = time.Now()
			m.rows[i] = *row
			out := *row
			return &out, nil
		}
	}
	return nil, sqlerr.WrapNotFound(m.table, pgx.ErrNoRows)
}

func (m *memTable[T]) mutate(id uuid.UUID, fn func(*T)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.base(&m.rows[i]).ID == id {
			fn(&m.rows[i])
			return nil
		}
	}
	return sqlerr.WrapNotFound(m.table, pgx.ErrNoRows)
}

func (m *memTable[T]) delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.base(&m.rows[i]).ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return sqlerr.WrapNotFound(m.table, pgx.ErrNoRows)
}

type fakeGuests struct{ memTable[model.Guest] }

func newFakeGuests(rows ...model.Guest) *fakeGuests {
	f := &fakeGuests{}
	f.init("guests", func(g *model.Guest) *model.Base { return &g.Base }, rows)
	return f
}

func (f *fakeGuests) List(_ context.Context, _ repository.ListParams) ([]model.Guest, int, error) {
	rows := f.all()
	return rows, len(rows), nil
}
func (f *fakeGuests) GetByID(_ context.Context, id uuid.UUID) (*model.Guest, error) { return f.get(id) }
func (f *fakeGuests) Create(_ context.Context, g *model.Guest) (*model.Guest, error) {
	return f.create(g)
}
func (f *fakeGuests) Update(_ context.Context, g *model.Guest) (*model.Guest, error) {
	return f.update(g)
}
func (f *fakeGuests) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakePosters struct{ memTable[model.Poster] }

func newFakePosters(rows ...model.Poster) *fakePosters {
	f := &fakePosters{}
	f.init("posters", func(p *model.Poster) *model.Base { return &p.Base }, rows)
	return f
}

func (f *fakePosters) List(_ context.Context, _ repository.ListParams) ([]model.Poster, int, error) {
	rows := f.all()
	return rows, len(rows), nil
}
func (f *fakePosters) ListEnabled(_ context.Context) ([]model.Poster, error) {
	var out []model.Poster
	for _, p := range f.all() {
		if p.IsEnabled {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakePosters) GetByID(_ context.Context, id uuid.UUID) (*model.Poster, error) {
	return f.get(id)
}
func (f *fakePosters) Create(_ context.Context, p *model.Poster) (*model.Poster, error) {
	return f.create(p)
}
func (f *fakePosters) Update(_ context.Context, p *model.Poster) (*model.Poster, error) {
	return f.update(p)
}
func (f *fakePosters) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakeThemes struct{ memTable[model.Theme] }

func newFakeThemes(rows ...model.Theme) *fakeThemes {
	f := &fakeThemes{}
	f.init("themes", func(t *model.Theme) *model.Base { return &t.Base }, rows)
	return f
}

func (f *fakeThemes) List(_ context.Context) ([]model.Theme, error) { return f.all(), nil }
func (f *fakeThemes) GetByID(_ context.Context, id uuid.UUID) (*model.Theme, error) {
	return f.get(id)
}
func (f *fakeThemes) GetDefault(_ context.Context) (*model.Theme, error) {
	for _, t := range f.all() {
		if t.IsDefault {
			return &t, nil
		}
	}
	return nil, sqlerr.WrapNotFound("themes", pgx.ErrNoRows)
}
func (f *fakeThemes) Create(_ context.Context, t *model.Theme) (*model.Theme, error) {
	return f.create(t)
}
func (f *fakeThemes) Update(_ context.Context, t *model.Theme) (*model.Theme, error) {
	return f.update(t)
}
func (f *fakeThemes) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakeProfiles struct{ memTable[model.Profile] }

func newFakeProfiles(rows ...model.Profile) *fakeProfiles {
	f := &fakeProfiles{}
	f.init("profiles", func(p *model.Profile) *model.Base { return &p.Base }, rows)
	return f
}

func (f *fakeProfiles) List(_ context.Context) ([]model.Profile, error) { return f.all(), nil }
func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	return f.get(id)
}
func (f *fakeProfiles) GetActive(_ context.Context) (*model.Profile, error) {
	for _, p := range f.all() {
		if p.IsActive {
			return &p, nil
		}
	}
	return nil, sqlerr.WrapNotFound("profiles", pgx.ErrNoRows)
}
func (f *fakeProfiles) Create(_ context.Context, p *model.Profile) (*model.Profile, error) {
	return f.create(p)
}
func (f *fakeProfiles) Update(_ context.Context, p *model.Profile) (*model.Profile, error) {
	current, err := f.get(p.ID)
	if err != nil {
		return nil, err
	}
	p.IsActive = current.IsActive
	return f.update(p)
}
func (f *fakeProfiles) Activate(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if _, err := f.get(id); err != nil {
		return nil, err
	}
	for _, p := range f.all() {
		f.mutate(p.ID, func(row *model.Profile) { row.IsActive = row.ID == id })
	}
	return f.get(id)
}
func (f *fakeProfiles) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakePlaylists struct{ memTable[model.Playlist] }

func newFakePlaylists(rows ...model.Playlist) *fakePlaylists {
	f := &fakePlaylists{}
	f.init("playlists", func(p *model.Playlist) *model.Base { return &p.Base }, rows)
	return f
}

func (f *fakePlaylists) List(_ context.Context) ([]model.Playlist, error) { return f.all(), nil }
func (f *fakePlaylists) GetByID(_ context.Context, id uuid.UUID) (*model.Playlist, error) {
	return f.get(id)
}
func (f *fakePlaylists) Create(_ context.Context, p *model.Playlist) (*model.Playlist, error) {
	return f.create(p)
}
func (f *fakePlaylists) Update(_ context.Context, p *model.Playlist) (*model.Playlist, error) {
	return f.update(p)
}
func (f *fakePlaylists) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakeQuestions struct{ memTable[model.QuizQuestion] }

func newFakeQuestions(rows ...model.QuizQuestion) *fakeQuestions {
	f := &fakeQuestions{}
	f.init("quiz_questions", func(q *model.QuizQuestion) *model.Base { return &q.Base }, rows)
	return f
}

func (f *fakeQuestions) List(_ context.Context, _ repository.ListParams, tag string) ([]model.QuizQuestion, int, error) {
	var out []model.QuizQuestion
	for _, q := range f.all() {
		if tag == "" || containsString(q.Tags, tag) {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}
func (f *fakeQuestions) GetByID(_ context.Context, id uuid.UUID) (*model.QuizQuestion, error) {
	return f.get(id)
}
func (f *fakeQuestions) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.QuizQuestion, error) {
	var out []model.QuizQuestion
	for _, q := range f.all() {
		for _, id := range ids {
			if q.ID == id {
				out = append(out, q)
			}
		}
	}
	return out, nil
}
func (f *fakeQuestions) Create(_ context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error) {
	return f.create(q)
}
func (f *fakeQuestions) Update(_ context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error) {
	return f.update(q)
}
func (f *fakeQuestions) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakePlayers struct{ memTable[model.QuizPlayer] }

func newFakePlayers(rows ...model.QuizPlayer) *fakePlayers {
	f := &fakePlayers{}
	f.init("quiz_players", func(p *model.QuizPlayer) *model.Base { return &p.Base }, rows)
	return f
}

func (f *fakePlayers) List(_ context.Context) ([]model.QuizPlayer, error) { return f.all(), nil }
func (f *fakePlayers) GetByID(_ context.Context, id uuid.UUID) (*model.QuizPlayer, error) {
	return f.get(id)
}
func (f *fakePlayers) Create(_ context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error) {
	return f.create(p)
}
func (f *fakePlayers) Update(_ context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error) {
	return f.update(p)
}
func (f *fakePlayers) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakeSessions struct {
	memTable[model.QuizSession]
	saves int
}

func newFakeSessions(rows ...model.QuizSession) *fakeSessions {
	f := &fakeSessions{}
	f.init("quiz_sessions", func(s *model.QuizSession) *model.Base { return &s.Base }, rows)
	return f
}

func (f *fakeSessions) List(_ context.Context) ([]model.QuizSession, error) { return f.all(), nil }
func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*model.QuizSession, error) {
	return f.get(id)
}
func (f *fakeSessions) GetActive(_ context.Context) (*model.QuizSession, error) {
	for _, s := range f.all() {
		if s.IsActive {
			return &s, nil
		}
	}
	return nil, sqlerr.WrapNotFound("quiz_sessions", pgx.ErrNoRows)
}
func (f *fakeSessions) Create(_ context.Context, s *model.QuizSession) (*model.QuizSession, error) {
	return f.create(s)
}
func (f *fakeSessions) Update(_ context.Context, s *model.QuizSession) (*model.QuizSession, error) {
	return f.update(s)
}
func (f *fakeSessions) SaveState(_ context.Context, id uuid.UUID, state json.RawMessage) error {
	f.saves++
	return f.mutate(id, func(s *model.QuizSession) { s.State = append(json.RawMessage(nil), state...) })
}
func (f *fakeSessions) SetActive(_ context.Context, id uuid.UUID) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	for _, s := range f.all() {
		f.mutate(s.ID, func(row *model.QuizSession) { row.IsActive = row.ID == id })
	}
	return nil
}
func (f *fakeSessions) ClearActive(_ context.Context) error {
	for _, s := range f.all() {
		f.mutate(s.ID, func(row *model.QuizSession) { row.IsActive = false })
	}
	return nil
}
func (f *fakeSessions) Delete(_ context.Context, id uuid.UUID) error { return f.delete(id) }

type fakeSettings struct {
	mu   sync.Mutex
	rows map[string]model.Setting
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: make(map[string]model.Setting)}
}

func (f *fakeSettings) List(_ context.Context) ([]model.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Setting, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	return out, nil
}
func (f *fakeSettings) Get(_ context.Context, key string) (*model.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[key]
	if !ok {
		return nil, sqlerr.WrapNotFound("settings", pgx.ErrNoRows)
	}
	return &s, nil
}
func (f *fakeSettings) Put(_ context.Context, key string, value json.RawMessage) (*model.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := model.Setting{Key: key, Value: append(json.RawMessage(nil), value...), UpdatedAt: time.Now()}
	f.rows[key] = s
	return &s, nil
}
func (f *fakeSettings) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[key]; !ok {
		return sqlerr.WrapNotFound("settings", pgx.ErrNoRows)
	}
	delete(f.rows, key)
	return nil
}

// ----------------------------------------------------------------- runtime

type published struct {
	Channel hub.Channel
	Type    string
	Payload any
}

type fakeHub struct {
	mu     sync.Mutex
	events []published
}

func (h *fakeHub) Publish(_ context.Context, channel hub.Channel, typ string, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, published{Channel: channel, Type: typ, Payload: payload})
	return nil
}

func (h *fakeHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

func (h *fakeHub) count(typ string) int {
	n := 0
	for _, t := range h.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func (h *fakeHub) last(typ string) (published, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.events) - 1; i >= 0; i-- {
		if h.events[i].Type == typ {
			return h.events[i], true
		}
	}
	return published{}, false
}

type scheduledTask struct {
	task  *asynq.Task
	delay time.Duration
}

// fakeJobs records scheduled tasks; tests fire them with run.
type fakeJobs struct {
	mu        sync.Mutex
	handlers  map[string]asynq.HandlerFunc
	scheduled []scheduledTask
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{handlers: make(map[string]asynq.HandlerFunc)}
}

func (j *fakeJobs) Handle(taskType string, handler asynq.HandlerFunc) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.handlers[taskType] = handler
}

func (j *fakeJobs) Schedule(_ context.Context, task *asynq.Task, delay time.Duration) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.scheduled = append(j.scheduled, scheduledTask{task: task, delay: delay})
	return nil
}

func (j *fakeJobs) ofType(taskType string) []scheduledTask {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []scheduledTask
	for _, s := range j.scheduled {
		if s.task.Type() == taskType {
			out = append(out, s)
		}
	}
	return out
}

func (j *fakeJobs) run(t *testing.T, st scheduledTask) {
	t.Helper()
	j.mu.Lock()
	handler := j.handlers[st.task.Type()]
	j.mu.Unlock()
	if handler == nil {
		t.Fatalf("no handler for %s", st.task.Type())
	}
	if err := handler(context.Background(), st.task); err != nil {
		t.Fatalf("task %s: %v", st.task.Type(), err)
	}
}

type fakePeriodic struct {
	mu   sync.Mutex
	jobs map[string]time.Duration
	fns  map[string]func()
}

func newFakePeriodic() *fakePeriodic {
	return &fakePeriodic{jobs: make(map[string]time.Duration), fns: make(map[string]func())}
}

func (p *fakePeriodic) Every(name string, interval time.Duration, fn func()) error {
	if interval < time.Second {
		return errors.New("interval must be at least 1s")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs[name] = interval
	p.fns[name] = fn
	return nil
}

func (p *fakePeriodic) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.jobs, name)
	delete(p.fns, name)
}

func (p *fakePeriodic) Has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.jobs[name]
	return ok
}

func (p *fakePeriodic) tick(t *testing.T, name string) {
	t.Helper()
	p.mu.Lock()
	fn := p.fns[name]
	p.mu.Unlock()
	if fn == nil {
		t.Fatalf("periodic job %q not registered", name)
	}
	fn()
}

type fakeOBS struct {
	mu         sync.Mutex
	connected  bool
	url        string
	password   string
	connects   int
	connectErr error
	scene      string
	streaming  bool
}

func (f *fakeOBS) Status() obs.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return obs.Status{Connected: f.connected, URL: f.url}
}

func (f *fakeOBS) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeOBS) Connect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeOBS) Reconfigure(url, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	f.password = password
}

func (f *fakeOBS) GetSceneList(_ context.Context) (*obs.SceneList, error) {
	if !f.Connected() {
		return nil, obs.ErrNotConnected
	}
	return &obs.SceneList{CurrentProgramSceneName: f.scene}, nil
}

func (f *fakeOBS) SetCurrentProgramScene(_ context.Context, sceneName string) error {
	if !f.Connected() {
		return obs.ErrNotConnected
	}
	if sceneName == "missing" {
		return &obs.RequestError{RequestType: "SetCurrentProgramScene", Code: 600, Comment: "No source was found"}
	}
	f.mu.Lock()
	f.scene = sceneName
	f.mu.Unlock()
	return nil
}

func (f *fakeOBS) GetStreamStatus(_ context.Context) (*obs.OutputStatus, error) {
	if !f.Connected() {
		return nil, obs.ErrNotConnected
	}
	return &obs.OutputStatus{OutputActive: f.streaming}, nil
}

func (f *fakeOBS) StartStream(_ context.Context) error {
	if !f.Connected() {
		return obs.ErrNotConnected
	}
	f.streaming = true
	return nil
}

func (f *fakeOBS) StopStream(_ context.Context) error {
	if !f.Connected() {
		return obs.ErrNotConnected
	}
	f.streaming = false
	return nil
}

func (f *fakeOBS) GetRecordStatus(_ context.Context) (*obs.OutputStatus, error) {
	if !f.Connected() {
		return nil, obs.ErrNotConnected
	}
	return &obs.OutputStatus{}, nil
}

func (f *fakeOBS) StartRecord(_ context.Context) error {
	if !f.Connected() {
		return obs.ErrNotConnected
	}
	return nil
}

func (f *fakeOBS) StopRecord(_ context.Context) error {
	if !f.Connected() {
		return obs.ErrNotConnected
	}
	return nil
}
