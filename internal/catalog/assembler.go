package catalog

import (
	"equipd/internal/models"

	"gorm.io/gorm"
)

// SubsystemInfoDetail — подсистема-шаблон со списком прикреплённых
// компонент-шаблонов (quantity из связки).
type SubsystemInfoDetail struct {
	models.SubsystemInfo
	ComponentInfos []ComponentInfoAttachment `json:"component_infos"`
}

// DeviceInfoDetail — полное поддерево шаблона устройства.
type DeviceInfoDetail struct {
	models.DeviceInfo
	SubsystemInfos []SubsystemInfoDetail `json:"subsystem_infos"`
}

// Assembler собирает поддерево шаблона из плоских выборок по связкам:
// по одному запросу на уровень, без запроса-на-родителя.
type Assembler struct {
	db *gorm.DB
}

func NewAssembler(db *gorm.DB) *Assembler { return &Assembler{db: db} }

func (a *Assembler) WithTx(tx *gorm.DB) *Assembler { return &Assembler{db: tx} }

func (a *Assembler) Detail(devInfoID uint) (*DeviceInfoDetail, error) {
	var root models.DeviceInfo
	if err := a.db.First(&root, devInfoID).Error; err != nil {
		return nil, dbErr(err, "device_info %d", devInfoID)
	}

	// связки подсистем, в порядке прикрепления
	var subLinks []models.DeviceInfoSubsystemInfo
	if err := a.db.Where("device_info_id = ?", devInfoID).
		Order("id ASC").Find(&subLinks).Error; err != nil {
		return nil, dbErr(err, "subsystem links of device_info %d", devInfoID)
	}

	subIDs := make([]uint, 0, len(subLinks))
	for _, l := range subLinks {
		subIDs = append(subIDs, l.SubsystemInfoID)
	}
	subByID := map[uint]models.SubsystemInfo{}
	if len(subIDs) > 0 {
		var subs []models.SubsystemInfo
		if err := a.db.Where("id IN ?", subIDs).Find(&subs).Error; err != nil {
			return nil, dbErr(err, "subsystem_infos of device_info %d", devInfoID)
		}
		for _, si := range subs {
			subByID[si.ID] = si
		}
	}

	// связки компонентов всего поддерева одной выборкой
	var comLinks []models.SubsystemInfoComponentInfo
	if err := a.db.Where("device_info_id = ?", devInfoID).
		Order("id ASC").Find(&comLinks).Error; err != nil {
		return nil, dbErr(err, "component links of device_info %d", devInfoID)
	}

	comIDs := make([]uint, 0, len(comLinks))
	for _, l := range comLinks {
		comIDs = append(comIDs, l.ComponentInfoID)
	}
	comByID := map[uint]models.ComponentInfo{}
	if len(comIDs) > 0 {
		var coms []models.ComponentInfo
		if err := a.db.Where("id IN ?", comIDs).Find(&coms).Error; err != nil {
			return nil, dbErr(err, "component_infos of device_info %d", devInfoID)
		}
		for _, ci := range coms {
			comByID[ci.ID] = ci
		}
	}

	// группировка компонентов по подсистеме, порядок связок сохраняется
	comsBySub := map[uint][]ComponentInfoAttachment{}
	for _, l := range comLinks {
		ci, ok := comByID[l.ComponentInfoID]
		if !ok {
			continue // связка на удалённый шаблон
		}
		comsBySub[l.SubsystemInfoID] = append(comsBySub[l.SubsystemInfoID],
			ComponentInfoAttachment{ComponentInfo: ci, Quantity: l.Quantity})
	}

	detail := &DeviceInfoDetail{
		DeviceInfo:     root,
		SubsystemInfos: make([]SubsystemInfoDetail, 0, len(subLinks)),
	}
	for _, l := range subLinks {
		si, ok := subByID[l.SubsystemInfoID]
		if !ok {
			continue
		}
		coms := comsBySub[si.ID]
		if coms == nil {
			coms = []ComponentInfoAttachment{}
		}
		detail.SubsystemInfos = append(detail.SubsystemInfos, SubsystemInfoDetail{
			SubsystemInfo:  si,
			ComponentInfos: coms,
		})
	}
	return detail, nil
}
