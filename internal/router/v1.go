package router

import (
	"net/http"

	"github.com/deppfellow/obs-live-suite/internal/handler"
	"github.com/deppfellow/obs-live-suite/internal/middleware"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/labstack/echo/v4"
)

func registerV1Routes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	jsonLimit := m.BodyLimit.JSON()

	registerCatalogRoutes(v1, h, jsonLimit)
	registerOverlayRoutes(v1.Group("/overlays", jsonLimit), h.Overlay)
	registerMediaRoutes(v1.Group("/media", jsonLimit), h.Media)
	registerQuizRoutes(v1.Group("/quiz", jsonLimit), h.Quiz)
	registerOBSRoutes(v1.Group("/obs", jsonLimit), h.OBS)
	registerSettingRoutes(v1.Group("/settings", jsonLimit), h.Settings)

	assets := v1.Group("/assets")
	assets.GET("", handler.Handle(h.Assets.Handler, h.Assets.ListAssets, http.StatusOK, &model.EmptyPayload{}))
	assets.POST("", h.Assets.UploadAsset, m.BodyLimit.Upload())
	assets.DELETE("/*", handler.HandleNoContent(h.Assets.Handler, h.Assets.DeleteAsset, http.StatusNoContent, &model.AssetNamePayload{}))

	actions := v1.Group("/actions", jsonLimit)
	actions.GET("", handler.Handle(h.Actions.Handler, h.Actions.ListActions, http.StatusOK, &model.EmptyPayload{}))
	actions.POST("/:action", handler.Handle(h.Actions.Handler, h.Actions.Dispatch, http.StatusOK, &model.ActionPayload{}))
}

// registerCatalogRoutes registers the CRUD resources: guests, posters,
// themes, profiles and playlists.
func registerCatalogRoutes(v1 *echo.Group, h *handler.Handlers, jsonLimit echo.MiddlewareFunc) {
	guests := v1.Group("/guests", jsonLimit)
	guests.GET("", handler.Handle(h.Guests.Handler, h.Guests.ListGuests, http.StatusOK, &model.ListPayload{}))
	guests.POST("", handler.Handle(h.Guests.Handler, h.Guests.CreateGuest, http.StatusCreated, &model.CreateGuestPayload{}))
	guests.GET("/:id", handler.Handle(h.Guests.Handler, h.Guests.GetGuest, http.StatusOK, &model.IDPayload{}))
	guests.PUT("/:id", handler.Handle(h.Guests.Handler, h.Guests.UpdateGuest, http.StatusOK, &model.UpdateGuestPayload{}))
	guests.DELETE("/:id", handler.HandleNoContent(h.Guests.Handler, h.Guests.DeleteGuest, http.StatusNoContent, &model.IDPayload{}))

	posters := v1.Group("/posters", jsonLimit)
	posters.GET("", handler.Handle(h.Posters.Handler, h.Posters.ListPosters, http.StatusOK, &model.ListPayload{}))
	posters.POST("", handler.Handle(h.Posters.Handler, h.Posters.CreatePoster, http.StatusCreated, &model.CreatePosterPayload{}))
	posters.GET("/:id", handler.Handle(h.Posters.Handler, h.Posters.GetPoster, http.StatusOK, &model.IDPayload{}))
	posters.PUT("/:id", handler.Handle(h.Posters.Handler, h.Posters.UpdatePoster, http.StatusOK, &model.UpdatePosterPayload{}))
	posters.DELETE("/:id", handler.HandleNoContent(h.Posters.Handler, h.Posters.DeletePoster, http.StatusNoContent, &model.IDPayload{}))

	themes := v1.Group("/themes", jsonLimit)
	themes.GET("", handler.Handle(h.Themes.Handler, h.Themes.ListThemes, http.StatusOK, &model.EmptyPayload{}))
	themes.POST("", handler.Handle(h.Themes.Handler, h.Themes.CreateTheme, http.StatusCreated, &model.CreateThemePayload{}))
	themes.GET("/:id", handler.Handle(h.Themes.Handler, h.Themes.GetTheme, http.StatusOK, &model.IDPayload{}))
	themes.PUT("/:id", handler.Handle(h.Themes.Handler, h.Themes.UpdateTheme, http.StatusOK, &model.UpdateThemePayload{}))
	themes.DELETE("/:id", handler.HandleNoContent(h.Themes.Handler, h.Themes.DeleteTheme, http.StatusNoContent, &model.IDPayload{}))

	profiles := v1.Group("/profiles", jsonLimit)
	profiles.GET("", handler.Handle(h.Profiles.Handler, h.Profiles.ListProfiles, http.StatusOK, &model.EmptyPayload{}))
	profiles.POST("", handler.Handle(h.Profiles.Handler, h.Profiles.CreateProfile, http.StatusCreated, &model.CreateProfilePayload{}))
	profiles.GET("/active", handler.Handle(h.Profiles.Handler, h.Profiles.GetActiveProfile, http.StatusOK, &model.EmptyPayload{}))
	profiles.GET("/:id", handler.Handle(h.Profiles.Handler, h.Profiles.GetProfile, http.StatusOK, &model.IDPayload{}))
	profiles.PUT("/:id", handler.Handle(h.Profiles.Handler, h.Profiles.UpdateProfile, http.StatusOK, &model.UpdateProfilePayload{}))
	profiles.DELETE("/:id", handler.HandleNoContent(h.Profiles.Handler, h.Profiles.DeleteProfile, http.StatusNoContent, &model.IDPayload{}))
	profiles.POST("/:id/activate", handler.Handle(h.Profiles.Handler, h.Profiles.ActivateProfile, http.StatusOK, &model.IDPayload{}))

	playlists := v1.Group("/playlists", jsonLimit)
	playlists.GET("", handler.Handle(h.Playlists.Handler, h.Playlists.ListPlaylists, http.StatusOK, &model.EmptyPayload{}))
	playlists.POST("", handler.Handle(h.Playlists.Handler, h.Playlists.CreatePlaylist, http.StatusCreated, &model.CreatePlaylistPayload{}))
	playlists.GET("/:id", handler.Handle(h.Playlists.Handler, h.Playlists.GetPlaylist, http.StatusOK, &model.IDPayload{}))
	playlists.PUT("/:id", handler.Handle(h.Playlists.Handler, h.Playlists.UpdatePlaylist, http.StatusOK, &model.UpdatePlaylistPayload{}))
	playlists.DELETE("/:id", handler.HandleNoContent(h.Playlists.Handler, h.Playlists.DeletePlaylist, http.StatusNoContent, &model.IDPayload{}))
}

func registerOverlayRoutes(g *echo.Group, h *handler.OverlayHandler) {
	g.GET("/state", handler.Handle(h.Handler, h.GetState, http.StatusOK, &model.EmptyPayload{}))

	g.POST("/lower/show", handler.Handle(h.Handler, h.ShowLowerThird, http.StatusOK, &model.ShowLowerThirdPayload{}))
	g.POST("/lower/hide", handler.Handle(h.Handler, h.HideLowerThird, http.StatusOK, &model.EmptyPayload{}))

	g.POST("/poster/show", handler.Handle(h.Handler, h.ShowPoster, http.StatusOK, &model.ShowPosterPayload{}))
	g.POST("/poster/hide", handler.Handle(h.Handler, h.HidePoster, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/poster/next", handler.Handle(h.Handler, h.NextPoster, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/poster/rotation/start", handler.Handle(h.Handler, h.StartRotation, http.StatusOK, &model.StartRotationPayload{}))
	g.POST("/poster/rotation/stop", handler.Handle(h.Handler, h.StopRotation, http.StatusOK, &model.EmptyPayload{}))

	g.POST("/countdown/start", handler.Handle(h.Handler, h.StartCountdown, http.StatusOK, &model.StartCountdownPayload{}))
	g.POST("/countdown/pause", handler.Handle(h.Handler, h.PauseCountdown, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/countdown/resume", handler.Handle(h.Handler, h.ResumeCountdown, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/countdown/reset", handler.Handle(h.Handler, h.ResetCountdown, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/countdown/add", handler.Handle(h.Handler, h.AddCountdown, http.StatusOK, &model.AddCountdownPayload{}))
}

func registerMediaRoutes(g *echo.Group, h *handler.MediaHandler) {
	g.GET("/state", handler.Handle(h.Handler, h.GetState, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/load", handler.Handle(h.Handler, h.Load, http.StatusOK, &model.LoadPlaylistPayload{}))
	g.POST("/play", handler.Handle(h.Handler, h.Play, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/pause", handler.Handle(h.Handler, h.Pause, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/next", handler.Handle(h.Handler, h.Next, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/previous", handler.Handle(h.Handler, h.Previous, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/select", handler.Handle(h.Handler, h.Select, http.StatusOK, &model.SelectMediaPayload{}))
}

func registerQuizRoutes(g *echo.Group, h *handler.QuizHandler) {
	questions := g.Group("/questions")
	questions.GET("", handler.Handle(h.Handler, h.ListQuestions, http.StatusOK, &model.ListQuestionsPayload{}))
	questions.POST("", handler.Handle(h.Handler, h.CreateQuestion, http.StatusCreated, &model.CreateQuestionPayload{}))
	questions.GET("/:id", handler.Handle(h.Handler, h.GetQuestion, http.StatusOK, &model.IDPayload{}))
	questions.PUT("/:id", handler.Handle(h.Handler, h.UpdateQuestion, http.StatusOK, &model.UpdateQuestionPayload{}))
	questions.DELETE("/:id", handler.HandleNoContent(h.Handler, h.DeleteQuestion, http.StatusNoContent, &model.IDPayload{}))

	players := g.Group("/players")
	players.GET("", handler.Handle(h.Handler, h.ListPlayers, http.StatusOK, &model.EmptyPayload{}))
	players.POST("", handler.Handle(h.Handler, h.CreatePlayer, http.StatusCreated, &model.PlayerPayload{}))
	players.GET("/:id", handler.Handle(h.Handler, h.GetPlayer, http.StatusOK, &model.IDPayload{}))
	players.PUT("/:id", handler.Handle(h.Handler, h.UpdatePlayer, http.StatusOK, &model.PlayerPayload{}))
	players.DELETE("/:id", handler.HandleNoContent(h.Handler, h.DeletePlayer, http.StatusNoContent, &model.IDPayload{}))

	sessions := g.Group("/sessions")
	sessions.GET("", handler.Handle(h.Handler, h.ListSessions, http.StatusOK, &model.EmptyPayload{}))
	sessions.POST("", handler.Handle(h.Handler, h.CreateSession, http.StatusCreated, &model.SessionPayload{}))
	sessions.GET("/:id", handler.Handle(h.Handler, h.GetSession, http.StatusOK, &model.IDPayload{}))
	sessions.PUT("/:id", handler.Handle(h.Handler, h.UpdateSession, http.StatusOK, &model.SessionPayload{}))
	sessions.DELETE("/:id", handler.HandleNoContent(h.Handler, h.DeleteSession, http.StatusNoContent, &model.IDPayload{}))

	g.GET("/state", handler.Handle(h.Handler, h.GetState, http.StatusOK, &model.EmptyPayload{}))
	g.GET("/leaderboard", handler.Handle(h.Handler, h.GetLeaderboard, http.StatusOK, &model.EmptyPayload{}))
	g.GET("/leaderboard.csv", handler.HandleFile(h.Handler, h.ExportLeaderboard, http.StatusOK, &model.EmptyPayload{}, "leaderboard.csv", "text/csv"))

	g.POST("/load", handler.Handle(h.Handler, h.Load, http.StatusOK, &model.LoadQuizPayload{}))
	g.POST("/unload", handler.Handle(h.Handler, h.Unload, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/question", handler.Handle(h.Handler, h.ShowQuestion, http.StatusOK, &model.ShowQuestionPayload{}))
	g.POST("/open", handler.Handle(h.Handler, h.OpenAnswers, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/answers", handler.Handle(h.Handler, h.SubmitAnswer, http.StatusOK, &model.SubmitAnswerPayload{}))
	g.POST("/lock", handler.Handle(h.Handler, h.Lock, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/reveal", handler.Handle(h.Handler, h.Reveal, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/award", handler.Handle(h.Handler, h.Award, http.StatusOK, &model.AwardPayload{}))
	g.POST("/score", handler.Handle(h.Handler, h.ApplyScores, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/end", handler.Handle(h.Handler, h.End, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/reset", handler.Handle(h.Handler, h.Reset, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/join", handler.Handle(h.Handler, h.Join, http.StatusOK, &model.PlayerRefPayload{}))
	g.POST("/leave", handler.Handle(h.Handler, h.Leave, http.StatusOK, &model.PlayerRefPayload{}))
	g.POST("/adjust", handler.Handle(h.Handler, h.AdjustScore, http.StatusOK, &model.AdjustScorePayload{}))
}

func registerOBSRoutes(g *echo.Group, h *handler.OBSHandler) {
	g.GET("/status", handler.Handle(h.Handler, h.GetStatus, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/reconnect", handler.Handle(h.Handler, h.Reconnect, http.StatusOK, &model.EmptyPayload{}))

	g.GET("/scenes", handler.Handle(h.Handler, h.ListScenes, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/scene", handler.HandleNoContent(h.Handler, h.SetScene, http.StatusNoContent, &model.SetScenePayload{}))

	g.GET("/stream", handler.Handle(h.Handler, h.GetStreamStatus, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/stream/start", handler.HandleNoContent(h.Handler, h.StartStream, http.StatusNoContent, &model.EmptyPayload{}))
	g.POST("/stream/stop", handler.HandleNoContent(h.Handler, h.StopStream, http.StatusNoContent, &model.EmptyPayload{}))

	g.GET("/record", handler.Handle(h.Handler, h.GetRecordStatus, http.StatusOK, &model.EmptyPayload{}))
	g.POST("/record/start", handler.HandleNoContent(h.Handler, h.StartRecord, http.StatusNoContent, &model.EmptyPayload{}))
	g.POST("/record/stop", handler.HandleNoContent(h.Handler, h.StopRecord, http.StatusNoContent, &model.EmptyPayload{}))
}

func registerSettingRoutes(g *echo.Group, h *handler.SettingHandler) {
	g.GET("", handler.Handle(h.Handler, h.ListSettings, http.StatusOK, &model.EmptyPayload{}))
	g.GET("/obs", handler.Handle(h.Handler, h.GetOBSSettings, http.StatusOK, &model.EmptyPayload{}))
	g.PUT("/obs", handler.Handle(h.Handler, h.PutOBSSettings, http.StatusOK, &model.OBSSettings{}))
	g.GET("/:key", handler.Handle(h.Handler, h.GetSetting, http.StatusOK, &model.SettingKeyPayload{}))
	g.PUT("/:key", handler.Handle(h.Handler, h.PutSetting, http.StatusOK, &model.PutSettingPayload{}))
	g.DELETE("/:key", handler.HandleNoContent(h.Handler, h.DeleteSetting, http.StatusNoContent, &model.SettingKeyPayload{}))
}
