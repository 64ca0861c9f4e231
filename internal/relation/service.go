package relation

import (
	"strings"

	"equipd/internal/apperr"
	"equipd/internal/catalog"
	"equipd/internal/instance"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// Service — жизненный цикл связок и инстанцирование дерева
// устройства из дерева шаблона. Композиция сторов; многошаговые
// записи идут в одной транзакции.
type Service struct {
	db        *gorm.DB
	catalog   catalog.Store
	relations Store
	instances instance.Store
	assembler *catalog.Assembler
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:        db,
		catalog:   catalog.NewStore(db),
		relations: NewStore(db),
		instances: instance.NewStore(db),
		assembler: catalog.NewAssembler(db),
	}
}

// AttachSubsystemInfo: оба шаблона должны существовать (NotFound
// пробрасывается), потом вставка связки. Дубликат — Conflict.
func (s *Service) AttachSubsystemInfo(devInfoID, subInfoID uint) error {
	if _, err := s.catalog.GetDeviceInfo(devInfoID); err != nil {
		return err
	}
	if _, err := s.catalog.GetSubsystemInfo(subInfoID); err != nil {
		return err
	}
	return s.relations.AttachSubsystemTemplate(devInfoID, subInfoID)
}

// RemoveSubsystemInfo снимает связку и каскадом убирает все
// компонент-связки этой пары. Оба шага в одной транзакции,
// полуприменённое состояние наружу не видно.
func (s *Service) RemoveSubsystemInfo(devInfoID, subInfoID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rs := s.relations.WithTx(tx)
		if _, err := rs.DetachSubsystemTemplate(devInfoID, subInfoID); err != nil {
			return err
		}
		if _, err := rs.DetachAllComponentTemplates(devInfoID, subInfoID); err != nil {
			return apperr.Internal("cascade detach of (%d,%d): %v", devInfoID, subInfoID, err)
		}
		return nil
	})
}

func (s *Service) AttachComponentInfo(devInfoID, subInfoID, comInfoID uint, quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidArgument("quantity must be positive, got %d", quantity)
	}
	if _, err := s.catalog.GetSubsystemInfo(subInfoID); err != nil {
		return err
	}
	if _, err := s.catalog.GetComponentInfo(comInfoID); err != nil {
		return err
	}
	return s.relations.AttachComponentTemplate(devInfoID, subInfoID, comInfoID, quantity)
}

func (s *Service) RemoveComponentInfo(devInfoID, subInfoID, comInfoID uint) error {
	_, err := s.relations.DetachComponentTemplate(devInfoID, subInfoID, comInfoID)
	return err
}

// InstantiateDevice копирует дерево шаблона в дерево экземпляров:
// одно устройство, по подсистеме на каждую прикреплённую SubsystemInfo,
// по компоненту на каждую прикреплённую ComponentInfo. Quantity в
// количество строк не разворачивается. Вся запись — одна транзакция.
func (s *Service) InstantiateDevice(devInfoID uint, unicode string) (uint, error) {
	unicode = strings.TrimSpace(unicode)
	if unicode == "" {
		return 0, apperr.InvalidArgument("unicode must not be empty")
	}

	detail, err := s.assembler.Detail(devInfoID)
	if err != nil {
		return 0, err
	}

	var deviceID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		is := s.instances.WithTx(tx)
		deviceID, err = is.InsertDevice(models.Device{
			Name:             detail.Name,
			Model:            detail.Model,
			MaintainInterval: detail.MaintainInterval,
			Unicode:          unicode,
			Status:           models.StatusStopped,
		})
		if err != nil {
			return err
		}
		for _, si := range detail.SubsystemInfos {
			subID, err := is.InsertSubsystem(models.Subsystem{
				Name:             si.Name,
				MaintainInterval: si.MaintainInterval,
				DeviceID:         deviceID,
			})
			if err != nil {
				return err
			}
			for _, ci := range si.ComponentInfos {
				if _, err := is.InsertComponent(models.Component{
					Name:             ci.Name,
					Model:            ci.Model,
					MaintainInterval: ci.MaintainInterval,
					SubsystemID:      subID,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deviceID, nil
}

// RemoveDevice удаляет экземпляр со всем поддеревом владения —
// сироты не остаются. Одна транзакция.
func (s *Service) RemoveDevice(deviceID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var subIDs []uint
		if err := tx.Model(&models.Subsystem{}).
			Where("device_id = ?", deviceID).
			Pluck("id", &subIDs).Error; err != nil {
			return apperr.Storage("subsystems of device %d: %v", deviceID, err)
		}
		if len(subIDs) > 0 {
			if err := tx.Where("subsystem_id IN ?", subIDs).
				Delete(&models.Component{}).Error; err != nil {
				return apperr.Storage("components of device %d: %v", deviceID, err)
			}
			if err := tx.Where("device_id = ?", deviceID).
				Delete(&models.Subsystem{}).Error; err != nil {
				return apperr.Storage("subsystems of device %d: %v", deviceID, err)
			}
		}
		res := tx.Delete(&models.Device{}, deviceID)
		if res.Error != nil {
			return apperr.Storage("device %d: %v", deviceID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("device %d", deviceID)
		}
		return nil
	})
}
