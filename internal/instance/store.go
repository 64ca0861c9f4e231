package instance

import (
	"errors"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// SubsystemTree — подсистема с принадлежащими компонентами.
type SubsystemTree struct {
	models.Subsystem
	Components []models.Component `json:"components"`
}

// DeviceTree — устройство с полным поддеревом владения.
type DeviceTree struct {
	models.Device
	Subsystems []SubsystemTree `json:"subsystems"`
}

// SubsystemDetail — подсистема с родительским устройством и компонентами.
type SubsystemDetail struct {
	models.Subsystem
	Device     models.Device      `json:"device"`
	Components []models.Component `json:"components"`
}

// Store — агрегат экземпляров. Точечные и списочные выборки
// возвращают поддеревья, не плоские строки.
type Store interface {
	InsertDevice(in models.Device) (uint, error)
	BulkInsertDevices(list []models.Device) (int64, error)
	DeleteDevice(id uint) (int64, error)
	BulkDeleteDevices(f DeviceFilter) (int64, error)
	UpdateDevice(id uint, p DevicePatch) (int64, error)
	GetDevice(id uint) (*DeviceTree, error)
	QueryDevices(f DeviceFilter) ([]DeviceTree, int64, error)
	DeviceExists(id uint) (bool, error)
	StartDevice(id uint) error
	StopDevice(id uint) error
	ReportBreakdown(id uint) error

	InsertSubsystem(in models.Subsystem) (uint, error)
	BulkInsertSubsystems(list []models.Subsystem) (int64, error)
	DeleteSubsystem(id uint) (int64, error)
	BulkDeleteSubsystems(f SubsystemFilter) (int64, error)
	UpdateSubsystem(id uint, p SubsystemPatch) (int64, error)
	GetSubsystem(id uint) (*SubsystemDetail, error)
	QuerySubsystems(f SubsystemFilter) ([]SubsystemDetail, int64, error)
	SubsystemExists(id uint) (bool, error)

	InsertComponent(in models.Component) (uint, error)
	BulkInsertComponents(list []models.Component) (int64, error)
	DeleteComponent(id uint) (int64, error)
	BulkDeleteComponents(f ComponentFilter) (int64, error)
	UpdateComponent(id uint, p ComponentPatch) (int64, error)
	GetComponent(id uint) (*models.Component, error)
	QueryComponents(f ComponentFilter) ([]models.Component, int64, error)
	ComponentExists(id uint) (bool, error)

	WithTx(tx *gorm.DB) Store
}

type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) WithTx(tx *gorm.DB) Store { return &GormStore{db: tx} }

// ── Device ──────────────────────────────────────────────────

func (s *GormStore) InsertDevice(in models.Device) (uint, error) {
	if in.Status == "" {
		in.Status = models.StatusStopped
	}
	if !in.Status.Valid() {
		return 0, apperr.InvalidArgument("unknown device status %q", in.Status)
	}
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert device")
	}
	return in.ID, nil
}

func (s *GormStore) BulkInsertDevices(list []models.Device) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	for i := range list {
		if list[i].Status == "" {
			list[i].Status = models.StatusStopped
		}
		if !list[i].Status.Valid() {
			return 0, apperr.InvalidArgument("unknown device status %q", list[i].Status)
		}
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&list).Error
	})
	if err != nil {
		return 0, dbErr(err, "bulk insert device")
	}
	return int64(len(list)), nil
}

func (s *GormStore) DeleteDevice(id uint) (int64, error) {
	res := s.db.Delete(&models.Device{}, id)
	if res.Error != nil {
		return 0, dbErr(res.Error, "delete device")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) BulkDeleteDevices(f DeviceFilter) (int64, error) {
	if !f.hasDeleteConditions() {
		return 0, apperr.InvalidArgument("bulk delete device: filter is empty")
	}
	res := s.db.Scopes(f.deleteScope()).Delete(&models.Device{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "bulk delete device")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UpdateDevice(id uint, p DevicePatch) (int64, error) {
	u, err := p.updates()
	if err != nil {
		return 0, err
	}
	return s.patchRow(&models.Device{}, id, u, "update device")
}

func (s *GormStore) GetDevice(id uint) (*DeviceTree, error) {
	var d models.Device
	if err := s.db.First(&d, id).Error; err != nil {
		return nil, dbErr(err, "device %d", id)
	}
	trees, err := s.loadDeviceTrees([]models.Device{d})
	if err != nil {
		return nil, err
	}
	return &trees[0], nil
}

func (s *GormStore) QueryDevices(f DeviceFilter) ([]DeviceTree, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	var devices []models.Device
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Device{}).Scopes(f.scope()).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.scope(), f.pageScope()).Order("id ASC").Find(&devices).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query devices")
	}
	trees, err := s.loadDeviceTrees(devices)
	if err != nil {
		return nil, 0, err
	}
	return trees, total, nil
}

func (s *GormStore) DeviceExists(id uint) (bool, error) {
	var n int64
	if err := s.db.Model(&models.Device{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbErr(err, "exists device %d", id)
	}
	return n > 0, nil
}

// ── Subsystem ───────────────────────────────────────────────

func (s *GormStore) InsertSubsystem(in models.Subsystem) (uint, error) {
	var n int64
	if err := s.db.Model(&models.Device{}).Where("id = ?", in.DeviceID).Count(&n).Error; err != nil {
		return 0, dbErr(err, "insert subsystem")
	}
	if n == 0 {
		return 0, apperr.NotFound("device %d", in.DeviceID)
	}
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert subsystem")
	}
	return in.ID, nil
}

// BulkInsertSubsystems — одна вставка в транзакции, как у устройств;
// перед записью проверяются все родительские устройства.
func (s *GormStore) BulkInsertSubsystems(list []models.Subsystem) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids := distinctParents(list, func(sub models.Subsystem) uint { return sub.DeviceID })
		var n int64
		if err := tx.Model(&models.Device{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(ids) {
			return apperr.NotFound("bulk insert subsystem: parent device missing")
		}
		return tx.Create(&list).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, err
		}
		return 0, dbErr(err, "bulk insert subsystem")
	}
	return int64(len(list)), nil
}

func (s *GormStore) DeleteSubsystem(id uint) (int64, error) {
	res := s.db.Delete(&models.Subsystem{}, id)
	if res.Error != nil {
		return 0, dbErr(res.Error, "delete subsystem")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) BulkDeleteSubsystems(f SubsystemFilter) (int64, error) {
	if !f.hasDeleteConditions() {
		return 0, apperr.InvalidArgument("bulk delete subsystem: filter is empty")
	}
	res := s.db.Scopes(f.deleteScope()).Delete(&models.Subsystem{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "bulk delete subsystem")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UpdateSubsystem(id uint, p SubsystemPatch) (int64, error) {
	return s.patchRow(&models.Subsystem{}, id, p.updates(), "update subsystem")
}

func (s *GormStore) GetSubsystem(id uint) (*SubsystemDetail, error) {
	var sub models.Subsystem
	if err := s.db.First(&sub, id).Error; err != nil {
		return nil, dbErr(err, "subsystem %d", id)
	}
	details, err := s.loadSubsystemDetails([]models.Subsystem{sub})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *GormStore) QuerySubsystems(f SubsystemFilter) ([]SubsystemDetail, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	var subs []models.Subsystem
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subsystem{}).Scopes(f.scope()).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.scope(), f.pageScope()).Order("id ASC").Find(&subs).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query subsystems")
	}
	details, err := s.loadSubsystemDetails(subs)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (s *GormStore) SubsystemExists(id uint) (bool, error) {
	var n int64
	if err := s.db.Model(&models.Subsystem{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbErr(err, "exists subsystem %d", id)
	}
	return n > 0, nil
}

// ── Component ───────────────────────────────────────────────

func (s *GormStore) InsertComponent(in models.Component) (uint, error) {
	var n int64
	if err := s.db.Model(&models.Subsystem{}).Where("id = ?", in.SubsystemID).Count(&n).Error; err != nil {
		return 0, dbErr(err, "insert component")
	}
	if n == 0 {
		return 0, apperr.NotFound("subsystem %d", in.SubsystemID)
	}
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert component")
	}
	return in.ID, nil
}

func (s *GormStore) BulkInsertComponents(list []models.Component) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids := distinctParents(list, func(c models.Component) uint { return c.SubsystemID })
		var n int64
		if err := tx.Model(&models.Subsystem{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if int(n) != len(ids) {
			return apperr.NotFound("bulk insert component: parent subsystem missing")
		}
		return tx.Create(&list).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, err
		}
		return 0, dbErr(err, "bulk insert component")
	}
	return int64(len(list)), nil
}

func (s *GormStore) DeleteComponent(id uint) (int64, error) {
	res := s.db.Delete(&models.Component{}, id)
	if res.Error != nil {
		return 0, dbErr(res.Error, "delete component")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) BulkDeleteComponents(f ComponentFilter) (int64, error) {
	if !f.hasDeleteConditions() {
		return 0, apperr.InvalidArgument("bulk delete component: filter is empty")
	}
	res := s.db.Scopes(f.deleteScope()).Delete(&models.Component{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "bulk delete component")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UpdateComponent(id uint, p ComponentPatch) (int64, error) {
	return s.patchRow(&models.Component{}, id, p.updates(), "update component")
}

func (s *GormStore) GetComponent(id uint) (*models.Component, error) {
	var c models.Component
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, dbErr(err, "component %d", id)
	}
	return &c, nil
}

func (s *GormStore) QueryComponents(f ComponentFilter) ([]models.Component, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.Component{}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Component{}).Scopes(f.scope()).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.scope(), f.pageScope()).Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query components")
	}
	return out, total, nil
}

func (s *GormStore) ComponentExists(id uint) (bool, error) {
	var n int64
	if err := s.db.Model(&models.Component{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbErr(err, "exists component %d", id)
	}
	return n > 0, nil
}

// ── общие helpers ───────────────────────────────────────────

func distinctParents[T any](list []T, parent func(T) uint) []uint {
	seen := map[uint]bool{}
	ids := make([]uint, 0, len(list))
	for _, in := range list {
		id := parent(in)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *GormStore) patchRow(model any, id uint, updates map[string]any, op string) (int64, error) {
	if len(updates) == 0 {
		var n int64
		if err := s.db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return 0, dbErr(err, "%s", op)
		}
		return n, nil
	}
	res := s.db.Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return 0, dbErr(res.Error, "%s", op)
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
