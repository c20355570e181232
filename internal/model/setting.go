package model

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/validation"
)

// Setting is a key/value JSON document.
type Setting struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// SettingKeyOBS stores OBSSettings.
const SettingKeyOBS = "obs"

// OBSSettings overrides the obs block of the config at runtime.
type OBSSettings struct {
	URL      string `json:"url" validate:"required,url"`
	Password string `json:"password" validate:"max=200"`
}

func (s *OBSSettings) Validate() error {
	return validation.Struct(s)
}

// SettingKeyPayload binds the :key path parameter.
type SettingKeyPayload struct {
	Key string `param:"key" json:"-" validate:"required,settingkey"`
}

func (p *SettingKeyPayload) Validate() error {
	return validation.Struct(p)
}

// PutSettingPayload is the body of PUT /settings/:key. The body is the value.
type PutSettingPayload struct {
	Key   string          `param:"key" json:"-" validate:"required,settingkey"`
	Value json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the whole body as the setting value.
func (p *PutSettingPayload) UnmarshalJSON(b []byte) error {
	p.Value = append(json.RawMessage(nil), b...)
	return nil
}

func (p *PutSettingPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if len(p.Value) == 0 || !json.Valid(p.Value) {
		return validation.CustomValidationErrors{{Field: "value", Message: "must be a JSON document"}}
	}
	return nil
}
