package catalog

// Patch-объекты: nil — поле не задано, его не трогаем.
// Присутствие поля отличается от нулевого значения явно.

type DeviceInfoPatch struct {
	Name             *string `json:"name"`
	Model            *string `json:"model"`
	MaintainInterval *int    `json:"maintain_interval"`
}

func (p DeviceInfoPatch) updates() map[string]any {
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

type SubsystemInfoPatch struct {
	Name             *string `json:"name"`
	MaintainInterval *int    `json:"maintain_interval"`
}

func (p SubsystemInfoPatch) updates() map[string]any {
	u := map[string]any{}
	if p.Name != nil {
		u["name"] = *p.Name
	}
	if p.MaintainInterval != nil {
		u["maintain_interval"] = *p.MaintainInterval
	}
	return u
}

type ComponentInfoPatch struct {
	Name             *string `json:"name"`
	Model            *string `json:"model"`
	MaintainInterval *int    `json:"maintain_interval"`
}

func (p ComponentInfoPatch) updates() map[string]any {
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
