package instance

import (
	"time"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// подменяется в тестах
var nowFunc = time.Now

// Переходы статуса устройства. Каждый — read-modify-write
// в одной транзакции, таймеры и наработка считаются здесь.

// StartDevice: Stopped/Breakdown → Running, ставит last_start_at.
func (s *GormStore) StartDevice(id uint) error {
	return s.transition(id, func(d *models.Device) error {
		if d.Status == models.StatusRunning {
			return apperr.InvalidArgument("device %d is already running", id)
		}
		now := nowFunc()
		d.Status = models.StatusRunning
		d.LastStartAt = &now
		return nil
	})
}

// StopDevice: Running → Stopped, ставит last_stop_at, копит наработку.
func (s *GormStore) StopDevice(id uint) error {
	return s.transition(id, func(d *models.Device) error {
		if d.Status != models.StatusRunning {
			return apperr.InvalidArgument("device %d is not running", id)
		}
		now := nowFunc()
		if d.LastStartAt != nil {
			d.TotalDuration += int(now.Sub(*d.LastStartAt).Seconds())
		}
		d.Status = models.StatusStopped
		d.LastStopAt = &now
		return nil
	})
}

// ReportBreakdown: из любого статуса; если работало — наработка копится.
func (s *GormStore) ReportBreakdown(id uint) error {
	return s.transition(id, func(d *models.Device) error {
		now := nowFunc()
		if d.Status == models.StatusRunning && d.LastStartAt != nil {
			d.TotalDuration += int(now.Sub(*d.LastStartAt).Seconds())
			d.LastStopAt = &now
		}
		d.Status = models.StatusBreakdown
		return nil
	})
}

func (s *GormStore) transition(id uint, apply func(*models.Device) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.First(&d, id).Error; err != nil {
			return dbErr(err, "device %d", id)
		}
		if err := apply(&d); err != nil {
			return err
		}
		if err := tx.Model(&models.Device{}).Where("id = ?", d.ID).
			Updates(map[string]any{
				"status":         d.Status,
				"last_start_at":  d.LastStartAt,
				"last_stop_at":   d.LastStopAt,
				"total_duration": d.TotalDuration,
			}).Error; err != nil {
			return dbErr(err, "transition device %d", id)
		}
		return nil
	})
}
