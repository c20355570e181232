package service

import (
	"context"
	"errors"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/lib/obs"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/sqlerr"
	"github.com/rs/zerolog"
)

// OBSService exposes OBS control to the API. Every call needs a live
// connection and fails with 503 otherwise.
type OBSService struct {
	client   OBSClient
	settings SettingStore
	defaults *config.OBSConfig
	logger   *zerolog.Logger
}

func NewOBSService(client OBSClient, settings SettingStore, defaults *config.OBSConfig, logger *zerolog.Logger) *OBSService {
	return &OBSService{client: client, settings: settings, defaults: defaults, logger: logger}
}

func (s *OBSService) Status() obs.Status {
	return s.client.Status()
}

func (s *OBSService) Scenes(ctx context.Context) (*obs.SceneList, error) {
	if err := s.requireConnected(); err != nil {
		return nil, err
	}
	scenes, err := s.client.GetSceneList(ctx)
	return scenes, obsError(err)
}

func (s *OBSService) SetScene(ctx context.Context, p *model.SetScenePayload) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	return obsError(s.client.SetCurrentProgramScene(ctx, p.SceneName))
}

func (s *OBSService) StreamStatus(ctx context.Context) (*obs.OutputStatus, error) {
	if err := s.requireConnected(); err != nil {
		return nil, err
	}
	status, err := s.client.GetStreamStatus(ctx)
	return status, obsError(err)
}

func (s *OBSService) StartStream(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	return obsError(s.client.StartStream(ctx))
}

func (s *OBSService) StopStream(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	return obsError(s.client.StopStream(ctx))
}

func (s *OBSService) RecordStatus(ctx context.Context) (*obs.OutputStatus, error) {
	if err := s.requireConnected(); err != nil {
		return nil, err
	}
	status, err := s.client.GetRecordStatus(ctx)
	return status, obsError(err)
}

func (s *OBSService) StartRecord(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	return obsError(s.client.StartRecord(ctx))
}

func (s *OBSService) StopRecord(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	return obsError(s.client.StopRecord(ctx))
}

// Reconnect drops the current connection and dials again with the stored
// "obs" setting, or the config defaults when there is none.
func (s *OBSService) Reconnect(ctx context.Context) (obs.Status, error) {
	settings, err := s.ConnectionSettings(ctx)
	if err != nil {
		return obs.Status{}, err
	}

	s.client.Reconfigure(settings.URL, settings.Password)
	s.logger.Info().Str("url", settings.URL).Msg("OBS reconnect requested")

	// Without auto-connect no background loop picks the new target up.
	if !s.defaults.AutoConnect {
		if err := s.client.Connect(ctx); err != nil {
			s.logger.Warn().Err(err).Str("url", settings.URL).Msg("OBS connect failed")
			return s.client.Status(), errs.NewServiceUnavailableError("Could not connect to OBS: "+err.Error(), true)
		}
	}

	return s.client.Status(), nil
}

// ApplyStored points the client at the stored "obs" setting without
// dialing. It runs at boot, before the reconnect loop starts.
func (s *OBSService) ApplyStored(ctx context.Context) error {
	settings, err := s.ConnectionSettings(ctx)
	if err != nil {
		return err
	}
	s.client.Reconfigure(settings.URL, settings.Password)
	return nil
}

// ConnectionSettings resolves the URL and password to dial.
func (s *OBSService) ConnectionSettings(ctx context.Context) (model.OBSSettings, error) {
	fallback := model.OBSSettings{URL: s.defaults.URL, Password: s.defaults.Password}

	setting, err := s.settings.Get(ctx, model.SettingKeyOBS)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return fallback, nil
		}
		return model.OBSSettings{}, err
	}

	stored, err := decodeOBSSettings(setting.Value)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored OBS settings are invalid, using config")
		return fallback, nil
	}
	return *stored, nil
}

func (s *OBSService) requireConnected() error {
	if !s.client.Connected() {
		return errs.NewServiceUnavailableError("OBS is not connected", true)
	}
	return nil
}

// obsError maps client errors to client-facing errors.
func obsError(err error) error {
	if err == nil {
		return nil
	}

	var reqErr *obs.RequestError
	switch {
	case errors.As(err, &reqErr):
		return badRequest("OBS_REQUEST_FAILED", reqErr.Error())
	case errors.Is(err, obs.ErrNotConnected):
		return errs.NewServiceUnavailableError("OBS is not connected", true)
	case errors.Is(err, obs.ErrRequestTimeout):
		return errs.NewServiceUnavailableError("OBS did not answer in time", true)
	}
	return err
}
