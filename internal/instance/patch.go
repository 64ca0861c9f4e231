package instance

import (
	"equipd/internal/apperr"
	"equipd/internal/models"
)

// Patch-объекты: nil — поле не задано. Таймеры экземпляра
// меняются только переходами статуса (transitions.go), не patch-ом.

type DevicePatch struct {
	Name             *string              `json:"name"`
	Model            *string              `json:"model"`
	MaintainInterval *int                 `json:"maintain_interval"`
	Unicode          *string              `json:"unicode"`
	TotalDuration    *int                 `json:"total_duration"`
	Status           *models.DeviceStatus `json:"status"`
}

func (p DevicePatch) updates() (map[string]any, error) {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Model != nil {
		u["model"] = *p.Model
	}
	if p.MaintainInterval != nil {
		u["maintain_interval"] = *p.MaintainInterval
	}
	if p.Unicode != nil {
		u["unicode"] = *p.Unicode
	}
	if p.TotalDuration != nil {
		u["total_duration"] = *p.TotalDuration
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, apperr.InvalidArgument("unknown device status %q", *p.Status)
		}
		u["status"] = *p.Status
	}
	return u, nil
}

type SubsystemPatch struct {
	Name             *string `json:"name"`
	MaintainInterval *int    `json:"maintain_interval"`
}

func (p SubsystemPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.MaintainInterval != nil {
		u["maintain_interval"] = *p.MaintainInterval
	}
	return u
}

type ComponentPatch struct {
	Name             *string `json:"name"`
	Model            *string `json:"model"`
	MaintainInterval *int    `json:"maintain_interval"`
}

func (p ComponentPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.Model != nil {
		u["model"] = *p.Model
	}
	if p.MaintainInterval != nil {
		u["maintain_interval"] = *p.MaintainInterval
	}
	return u
}
