package models

import "time"

type DeviceStatus string

const (
	StatusRunning   DeviceStatus = "Running"
	StatusStopped   DeviceStatus = "Stopped"
	StatusBreakdown DeviceStatus = "Breakdown"
)

func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusBreakdown:
		return true
	}
	return false
}

// Device — физический экземпляр. Поля шаблона копируются при
// инстанцировании, дальше живут своей жизнью.
type Device struct {
	Base
	Name             string       `gorm:"type:varchar(255);index" json:"name"`
	Model            string       `gorm:"type:varchar(255)" json:"model"`
	MaintainInterval int          `json:"maintain_interval"`
	Unicode          string       `gorm:"type:varchar(64);uniqueIndex" json:"unicode"`
	LastStartAt      *time.Time   `json:"last_start_at"`
	LastStopAt       *time.Time   `json:"last_stop_at"`
	TotalDuration    int          `json:"total_duration"`
	Status           DeviceStatus `gorm:"type:varchar(16);index" json:"status"`
}

// Subsystem принадлежит ровно одному Device.
type Subsystem struct {
	Base
	Name             string `gorm:"type:varchar(255);index" json:"name"`
	MaintainInterval int    `json:"maintain_interval"`
	DeviceID         uint   `gorm:"not null;index" json:"device_id"`
}

// Component принадлежит ровно одной Subsystem.
type Component struct {
	Base
	Name             string `gorm:"type:varchar(255);index" json:"name"`
	Model            string `gorm:"type:varchar(255)" json:"model"`
	MaintainInterval int    `json:"maintain_interval"`
	SubsystemID      uint   `gorm:"not null;index" json:"subsystem_id"`
}
