package models

import "time"

// Base — общие поля всех таблиц (без soft delete: жёсткое удаление,
// иначе уникальные индексы связок отравляются мёртвыми строками).
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"create_at"`
	UpdatedAt time.Time `json:"update_at"`
}

// DeviceInfo — шаблон устройства (корень каталога).
type DeviceInfo struct {
	Base
	Name             string `gorm:"type:varchar(255);index" json:"name"`
	Model            string `gorm:"type:varchar(255)" json:"model"`
	MaintainInterval int    `json:"maintain_interval"`
}

// SubsystemInfo — шаблон подсистемы, крепится к DeviceInfo (N:N).
type SubsystemInfo struct {
	Base
	Name             string `gorm:"type:varchar(255);index" json:"name"`
	MaintainInterval int    `json:"maintain_interval"`
}

// ComponentInfo — шаблон компонента, крепится к SubsystemInfo (N:N).
type ComponentInfo struct {
	Base
	Name             string `gorm:"type:varchar(255);index" json:"name"`
	Model            string `gorm:"type:varchar(255)" json:"model"`
	MaintainInterval int    `json:"maintain_interval"`
}

// DeviceInfoSubsystemInfo — связка устройство-шаблон ↔ подсистема-шаблон.
// Пара уникальна: повторный attach — Conflict.
type DeviceInfoSubsystemInfo struct {
	Base
	DeviceInfoID    uint `gorm:"not null;uniqueIndex:ux_devinfo_subinfo" json:"device_info_id"`
	SubsystemInfoID uint `gorm:"not null;uniqueIndex:ux_devinfo_subinfo" json:"subsystem_info_id"`
}

func (DeviceInfoSubsystemInfo) TableName() string { return "device_info_subsystem_info" }

// SubsystemInfoComponentInfo — связка подсистема-шаблон ↔ компонент-шаблон,
// скоупится парой (device_info_id, subsystem_info_id) и несёт quantity.
type SubsystemInfoComponentInfo struct {
	Base
	DeviceInfoID    uint `gorm:"not null;uniqueIndex:ux_subinfo_cominfo" json:"device_info_id"`
	SubsystemInfoID uint `gorm:"not null;uniqueIndex:ux_subinfo_cominfo" json:"subsystem_info_id"`
	ComponentInfoID uint `gorm:"not null;uniqueIndex:ux_subinfo_cominfo" json:"component_info_id"`
	Quantity        int  `gorm:"not null" json:"quantity"`
}

func (SubsystemInfoComponentInfo) TableName() string { return "subsystem_info_component_info" }
