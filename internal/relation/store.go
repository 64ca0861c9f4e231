package relation

import (
	"errors"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// Store — связки шаблонов. Дубликат пары/тройки отбивается
// уникальным индексом и приходит сюда как Conflict.
type Store interface {
	AttachSubsystemTemplate(devInfoID, subInfoID uint) error
	DetachSubsystemTemplate(devInfoID, subInfoID uint) (int64, error)
	DetachAllComponentTemplates(devInfoID, subInfoID uint) (int64, error)
	AttachComponentTemplate(devInfoID, subInfoID, comInfoID uint, quantity int) error
	DetachComponentTemplate(devInfoID, subInfoID, comInfoID uint) (int64, error)
	WithTx(tx *gorm.DB) Store
}

type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) WithTx(tx *gorm.DB) Store { return &GormStore{db: tx} }

func (s *GormStore) AttachSubsystemTemplate(devInfoID, subInfoID uint) error {
	link := models.DeviceInfoSubsystemInfo{
		DeviceInfoID:    devInfoID,
		SubsystemInfoID: subInfoID,
	}
	if err := s.db.Create(&link).Error; err != nil {
		return dbErr(err, "attach subsystem_info %d to device_info %d", subInfoID, devInfoID)
	}
	return nil
}

func (s *GormStore) DetachSubsystemTemplate(devInfoID, subInfoID uint) (int64, error) {
	res := s.db.
		Where("device_info_id = ? AND subsystem_info_id = ?", devInfoID, subInfoID).
		Delete(&models.DeviceInfoSubsystemInfo{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "detach subsystem_info %d from device_info %d", subInfoID, devInfoID)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) DetachAllComponentTemplates(devInfoID, subInfoID uint) (int64, error) {
	res := s.db.
		Where("device_info_id = ? AND subsystem_info_id = ?", devInfoID, subInfoID).
		Delete(&models.SubsystemInfoComponentInfo{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "detach component_infos of (%d,%d)", devInfoID, subInfoID)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) AttachComponentTemplate(devInfoID, subInfoID, comInfoID uint, quantity int) error {
	link := models.SubsystemInfoComponentInfo{
		DeviceInfoID:    devInfoID,
		SubsystemInfoID: subInfoID,
		ComponentInfoID: comInfoID,
		Quantity:        quantity,
	}
	if err := s.db.Create(&link).Error; err != nil {
		return dbErr(err, "attach component_info %d to (%d,%d)", comInfoID, devInfoID, subInfoID)
	}
	return nil
}

func (s *GormStore) DetachComponentTemplate(devInfoID, subInfoID, comInfoID uint) (int64, error) {
	res := s.db.
		Where("device_info_id = ? AND subsystem_info_id = ? AND component_info_id = ?",
			devInfoID, subInfoID, comInfoID).
		Delete(&models.SubsystemInfoComponentInfo{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "detach component_info %d from (%d,%d)", comInfoID, devInfoID, subInfoID)
	}
	return res.RowsAffected, nil
}

func dbErr(err error, format string, args ...any) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(format, args...)
	default:
		return apperr.Storage(format+": %v", append(args, err)...)
	}
}
