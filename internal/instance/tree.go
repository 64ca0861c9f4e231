package instance

import (
	"equipd/internal/models"
)

// Сборка дерева из плоских выборок: по одному IN-запросу на уровень
// вниз по владению, группировка по внешнему ключу с сохранением
// порядка родителей. Родители без детей получают пустые списки.

func (s *GormStore) loadDeviceTrees(devices []models.Device) ([]DeviceTree, error) {
	out := make([]DeviceTree, 0, len(devices))
	if len(devices) == 0 {
		return out, nil
	}

	deviceIDs := make([]uint, 0, len(devices))
	for _, d := range devices {
		deviceIDs = append(deviceIDs, d.ID)
	}
	var subs []models.Subsystem
	if err := s.db.Where("device_id IN ?", deviceIDs).
		Order("id ASC").Find(&subs).Error; err != nil {
		return nil, dbErr(err, "subsystems of devices")
	}

	comsBySub, err := s.componentsOf(subs)
	if err != nil {
		return nil, err
	}

	subsByDevice := map[uint][]SubsystemTree{}
	for _, sub := range subs {
		subsByDevice[sub.DeviceID] = append(subsByDevice[sub.DeviceID], SubsystemTree{
			Subsystem:  sub,
			Components: orEmpty(comsBySub[sub.ID]),
		})
	}

	for _, d := range devices {
		out = append(out, DeviceTree{
			Device:     d,
			Subsystems: orEmptySubs(subsByDevice[d.ID]),
		})
	}
	return out, nil
}

func (s *GormStore) loadSubsystemDetails(subs []models.Subsystem) ([]SubsystemDetail, error) {
	out := make([]SubsystemDetail, 0, len(subs))
	if len(subs) == 0 {
		return out, nil
	}

	deviceIDs := make([]uint, 0, len(subs))
	for _, sub := range subs {
		deviceIDs = append(deviceIDs, sub.DeviceID)
	}
	var devices []models.Device
	if err := s.db.Where("id IN ?", deviceIDs).Find(&devices).Error; err != nil {
		return nil, dbErr(err, "devices of subsystems")
	}
	deviceByID := make(map[uint]models.Device, len(devices))
	for _, d := range devices {
		deviceByID[d.ID] = d
	}

	comsBySub, err := s.componentsOf(subs)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		out = append(out, SubsystemDetail{
			Subsystem:  sub,
			Device:     deviceByID[sub.DeviceID],
			Components: orEmpty(comsBySub[sub.ID]),
		})
	}
	return out, nil
}

func (s *GormStore) componentsOf(subs []models.Subsystem) (map[uint][]models.Component, error) {
	grouped := map[uint][]models.Component{}
	if len(subs) == 0 {
		return grouped, nil
	}
	subIDs := make([]uint, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
	}
	var coms []models.Component
	if err := s.db.Where("subsystem_id IN ?", subIDs).
		Order("id ASC").Find(&coms).Error; err != nil {
		return nil, dbErr(err, "components of subsystems")
	}
	for _, c := range coms {
		grouped[c.SubsystemID] = append(grouped[c.SubsystemID], c)
	}
	return grouped, nil
}

func orEmpty(list []models.Component) []models.Component {
	if list == nil {
		return []models.Component{}
	}
	return list
}

func orEmptySubs(list []SubsystemTree) []SubsystemTree {
	if list == nil {
		return []SubsystemTree{}
	}
	return list
}
