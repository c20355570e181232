package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/lib/scheduler"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/repository"
	"github.com/google/uuid"
)

// The interfaces below are satisfied by the repository package.

// GuestStore is implemented by repository.GuestRepository.
type GuestStore interface {
	List(ctx context.Context, p repository.ListParams) ([]model.Guest, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Guest, error)
	Create(ctx context.Context, g *model.Guest) (*model.Guest, error)
	Update(ctx context.Context, g *model.Guest) (*model.Guest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PosterStore is implemented by repository.PosterRepository.
type PosterStore interface {
	List(ctx context.Context, p repository.ListParams) ([]model.Poster, int, error)
	ListEnabled(ctx context.Context) ([]model.Poster, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Poster, error)
	Create(ctx context.Context, p *model.Poster) (*model.Poster, error)
	Update(ctx context.Context, p *model.Poster) (*model.Poster, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ThemeStore is implemented by repository.ThemeRepository.
type ThemeStore interface {
	List(ctx context.Context) ([]model.Theme, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Theme, error)
	GetDefault(ctx context.Context) (*model.Theme, error)
	Create(ctx context.Context, t *model.Theme) (*model.Theme, error)
	Update(ctx context.Context, t *model.Theme) (*model.Theme, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileStore is implemented by repository.ProfileRepository.
type ProfileStore interface {
	List(ctx context.Context) ([]model.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetActive(ctx context.Context) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Update(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Activate(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlaylistStore is implemented by repository.PlaylistRepository.
type PlaylistStore interface {
	List(ctx context.Context) ([]model.Playlist, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
	Create(ctx context.Context, p *model.Playlist) (*model.Playlist, error)
	Update(ctx context.Context, p *model.Playlist) (*model.Playlist, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionStore is implemented by repository.QuizQuestionRepository.
type QuestionStore interface {
	List(ctx context.Context, p repository.ListParams, tag string) ([]model.QuizQuestion, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizQuestion, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.QuizQuestion, error)
	Create(ctx context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error)
	Update(ctx context.Context, q *model.QuizQuestion) (*model.QuizQuestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlayerStore is implemented by repository.QuizPlayerRepository.
type PlayerStore interface {
	List(ctx context.Context) ([]model.QuizPlayer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizPlayer, error)
	Create(ctx context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error)
	Update(ctx context.Context, p *model.QuizPlayer) (*model.QuizPlayer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionStore is implemented by repository.QuizSessionRepository.
type SessionStore interface {
	List(ctx context.Context) ([]model.QuizSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizSession, error)
	GetActive(ctx context.Context) (*model.QuizSession, error)
	Create(ctx context.Context, s *model.QuizSession) (*model.QuizSession, error)
	Update(ctx context.Context, s *model.QuizSession) (*model.QuizSession, error)
	SaveState(ctx context.Context, id uuid.UUID, state json.RawMessage) error
	SetActive(ctx context.Context, id uuid.UUID) error
	ClearActive(ctx context.Context) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingStore is implemented by repository.SettingsRepository.
type SettingStore interface {
	List(ctx context.Context) ([]model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*model.Setting, error)
	Delete(ctx context.Context, key string) error
}

// OBSClient is the part of *obs.Client the services use.
type OBSClient interface {
	Status() obs.Status
	Connected() bool
	Connect(ctx context.Context) error
	Reconfigure(url, password string)
	GetSceneList(ctx context.Context) (*obs.SceneList, error)
	SetCurrentProgramScene(ctx context.Context, sceneName string) error
	GetStreamStatus(ctx context.Context) (*obs.OutputStatus, error)
	StartStream(ctx context.Context) error
	StopStream(ctx context.Context) error
	GetRecordStatus(ctx context.Context) (*obs.OutputStatus, error)
	StartRecord(ctx context.Context) error
	StopRecord(ctx context.Context) error
}

var (
	_ GuestStore    = (*repository.GuestRepository)(nil)
	_ PosterStore   = (*repository.PosterRepository)(nil)
	_ ThemeStore    = (*repository.ThemeRepository)(nil)
	_ ProfileStore  = (*repository.ProfileRepository)(nil)
	_ PlaylistStore = (*repository.PlaylistRepository)(nil)
	_ QuestionStore = (*repository.QuizQuestionRepository)(nil)
	_ PlayerStore   = (*repository.QuizPlayerRepository)(nil)
	_ SessionStore  = (*repository.QuizSessionRepository)(nil)
	_ SettingStore  = (*repository.SettingsRepository)(nil)
	_ OBSClient     = (*obs.Client)(nil)
)

// Periodic runs named jobs on an interval. *scheduler.Scheduler satisfies it.
type Periodic interface {
	Every(name string, interval time.Duration, fn func()) error
	Remove(name string)
	Has(name string) bool
}

var _ Periodic = (*scheduler.Scheduler)(nil)
