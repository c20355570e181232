package service

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/rs/zerolog"
)

// maskedPassword replaces stored passwords in responses.
const maskedPassword = "********"

// SettingService stores free-form JSON settings. The "obs" key is typed:
// it is validated on write and reconnects OBS when it changes.
type SettingService struct {
	settings SettingStore
	obs      *OBSService
	logger   *zerolog.Logger
}

func NewSettingService(settings SettingStore, obsService *OBSService, logger *zerolog.Logger) *SettingService {
	return &SettingService{settings: settings, obs: obsService, logger: logger}
}

func (s *SettingService) List(ctx context.Context) ([]model.Setting, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range settings {
		settings[i] = mask(settings[i])
	}
	return settings, nil
}

func (s *SettingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	masked := mask(*setting)
	return &masked, nil
}

// Put upserts key. Writing "obs" validates the document and reconnects.
func (s *SettingService) Put(ctx context.Context, key string, value json.RawMessage) (*model.Setting, error) {
	if key == model.SettingKeyOBS {
		settings, err := decodeOBSSettings(value)
		if err != nil {
			return nil, err
		}
		return s.PutOBS(ctx, settings)
	}

	setting, err := s.settings.Put(ctx, key, value)
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// Delete removes key. Removing "obs" reconnects with the config defaults.
func (s *SettingService) Delete(ctx context.Context, key string) error {
	if err := s.settings.Delete(ctx, key); err != nil {
		return err
	}
	if key == model.SettingKeyOBS {
		s.reconnect(ctx)
	}
	return nil
}

// GetOBS returns the effective OBS connection settings, password masked.
func (s *SettingService) GetOBS(ctx context.Context) (*model.OBSSettings, error) {
	settings, err := s.obs.ConnectionSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Password != "" {
		settings.Password = maskedPassword
	}
	return &settings, nil
}

// PutOBS stores the OBS connection settings and reconnects. Sending the
// masked password back keeps the stored one.
func (s *SettingService) PutOBS(ctx context.Context, settings *model.OBSSettings) (*model.Setting, error) {
	if settings.Password == maskedPassword {
		current, err := s.obs.ConnectionSettings(ctx)
		if err != nil {
			return nil, err
		}
		settings.Password = current.Password
	}

	value, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	setting, err := s.settings.Put(ctx, model.SettingKeyOBS, value)
	if err != nil {
		return nil, err
	}

	s.reconnect(ctx)

	masked := mask(*setting)
	return &masked, nil
}

// reconnect applies new OBS settings. A failed connect is reported through
// the OBS status, not as a failed save.
func (s *SettingService) reconnect(ctx context.Context) {
	if _, err := s.obs.Reconnect(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("OBS reconnect after settings change failed")
	}
}

// decodeOBSSettings parses and validates an "obs" setting document.
func decodeOBSSettings(value json.RawMessage) (*model.OBSSettings, error) {
	var settings model.OBSSettings
	if err := json.Unmarshal(value, &settings); err != nil {
		return nil, badRequest("SETTING_INVALID", "The obs setting must be an object with url and password")
	}
	if err := validation.Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// mask hides the OBS password in a setting returned to clients.
func mask(setting model.Setting) model.Setting {
	if setting.Key != model.SettingKeyOBS {
		return setting
	}

	var fields map[string]any
	if err := json.Unmarshal(setting.Value, &fields); err != nil {
		return setting
	}
	if pw, ok := fields["password"].(string); ok && pw != "" {
		fields["password"] = maskedPassword
	}
	if value, err := json.Marshal(fields); err == nil {
		setting.Value = value
	}
	return setting
}
