package repository

import (
	"github.com/deppfellow/obs-live-suite/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Guests        *GuestRepository
	Posters       *PosterRepository
	Themes        *ThemeRepository
	Profiles      *ProfileRepository
	Playlists     *PlaylistRepository
	QuizQuestions *QuizQuestionRepository
	QuizPlayers   *QuizPlayerRepository
	QuizSessions  *QuizSessionRepository
	Settings      *SettingsRepository
}

// NewRepositories builds every repository over the shared pool on s.DB.
func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool

	return &Repositories{
		Guests:        NewGuestRepository(pool),
		Posters:       NewPosterRepository(pool),
		Themes:        NewThemeRepository(pool),
		Profiles:      NewProfileRepository(pool),
		Playlists:     NewPlaylistRepository(pool),
		QuizQuestions: NewQuizQuestionRepository(pool),
		QuizPlayers:   NewQuizPlayerRepository(pool),
		QuizSessions:  NewQuizSessionRepository(pool),
		Settings:      NewSettingsRepository(pool),
	}
}
