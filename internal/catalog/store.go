package catalog

import (
	"errors"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// Filter — условия выборки по каталогу. Name/Model в Query — подстрока,
// в BulkDelete — точное совпадение. Интервал полуоткрытый: [begin, end).
// Size <= 0 — без пагинации, страницы с единицы.
type Filter struct {
	Name                  string
	Model                 string
	MaintainIntervalBegin *int
	MaintainIntervalEnd   *int
	Page                  int
	Size                  int
}

func (f Filter) queryScope(hasModel bool) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name LIKE ?", "%"+f.Name+"%")
		}
		if hasModel && f.Model != "" {
			q = q.Where("model LIKE ?", "%"+f.Model+"%")
		}
		return f.intervalScope()(q)
	}
}

func (f Filter) deleteScope(hasModel bool) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name = ?", f.Name)
		}
		if hasModel && f.Model != "" {
			q = q.Where("model = ?", f.Model)
		}
		return f.intervalScope()(q)
	}
}

func (f Filter) intervalScope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

func (f Filter) pageScope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Size <= 0 {
			return q
		}
		page := f.Page
		if page < 1 {
			page = 1
		}
		return q.Offset((page - 1) * f.Size).Limit(f.Size)
	}
}

func (f Filter) validate() error {
	if f.Size < 0 {
		return apperr.InvalidArgument("page size must be positive, got %d", f.Size)
	}
	return nil
}

// hasDeleteConditions — массовое удаление без единого условия запрещено,
// иначе пустой фильтр стирал бы всю таблицу.
func (f Filter) hasDeleteConditions(hasModel bool) bool {
	if f.Name != "" || (hasModel && f.Model != "") {
		return true
	}
	return f.MaintainIntervalBegin != nil || f.MaintainIntervalEnd != nil
}

// ComponentInfoAttachment — компонент-шаблон вместе с quantity из связки.
type ComponentInfoAttachment struct {
	models.ComponentInfo
	Quantity int `json:"quantity"`
}

// Store — каталожный агрегат: CRUD трёх шаблонных сущностей
// плюс выборки через таблицы связок.
type Store interface {
	InsertDeviceInfo(in models.DeviceInfo) (uint, error)
	BulkInsertDeviceInfos(list []models.DeviceInfo) (int64, error)
	DeleteDeviceInfo(id uint) (int64, error)
	BulkDeleteDeviceInfos(f Filter) (int64, error)
	UpdateDeviceInfo(id uint, p DeviceInfoPatch) (int64, error)
	GetDeviceInfo(id uint) (*models.DeviceInfo, error)
	QueryDeviceInfos(f Filter) ([]models.DeviceInfo, int64, error)
	DeviceInfoExists(id uint) (bool, error)

	InsertSubsystemInfo(in models.SubsystemInfo) (uint, error)
	BulkInsertSubsystemInfos(list []models.SubsystemInfo) (int64, error)
	DeleteSubsystemInfo(id uint) (int64, error)
	BulkDeleteSubsystemInfos(f Filter) (int64, error)
	UpdateSubsystemInfo(id uint, p SubsystemInfoPatch) (int64, error)
	GetSubsystemInfo(id uint) (*models.SubsystemInfo, error)
	QuerySubsystemInfos(f Filter) ([]models.SubsystemInfo, int64, error)
	SubsystemInfoExists(id uint) (bool, error)

	InsertComponentInfo(in models.ComponentInfo) (uint, error)
	BulkInsertComponentInfos(list []models.ComponentInfo) (int64, error)
	DeleteComponentInfo(id uint) (int64, error)
	BulkDeleteComponentInfos(f Filter) (int64, error)
	UpdateComponentInfo(id uint, p ComponentInfoPatch) (int64, error)
	GetComponentInfo(id uint) (*models.ComponentInfo, error)
	QueryComponentInfos(f Filter) ([]models.ComponentInfo, int64, error)
	ComponentInfoExists(id uint) (bool, error)

	QueryDeviceInfosBySubsystemInfo(subInfoID uint, f Filter) ([]models.DeviceInfo, int64, error)
	QuerySubsystemInfosByDeviceInfo(devInfoID uint, f Filter) ([]models.SubsystemInfo, int64, error)
	QueryComponentInfosByPair(devInfoID, subInfoID uint, f Filter) ([]ComponentInfoAttachment, int64, error)

	WithTx(tx *gorm.DB) Store
}

type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) WithTx(tx *gorm.DB) Store { return &GormStore{db: tx} }

// ── DeviceInfo ──────────────────────────────────────────────

func (s *GormStore) InsertDeviceInfo(in models.DeviceInfo) (uint, error) {
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert device_info")
	}
	return in.ID, nil
}

func (s *GormStore) BulkInsertDeviceInfos(list []models.DeviceInfo) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	// одна вставка в транзакции: частичный провал откатывает всё
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&list).Error
	})
	if err != nil {
		return 0, dbErr(err, "bulk insert device_info")
	}
	return int64(len(list)), nil
}

// DeleteDeviceInfo удаляет шаблон вместе со всеми его связками:
// сперва связки компонентов под ним, затем связки подсистем, затем сама строка.
func (s *GormStore) DeleteDeviceInfo(id uint) (int64, error) {
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_info_id = ?", id).
			Delete(&models.SubsystemInfoComponentInfo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_info_id = ?", id).
			Delete(&models.DeviceInfoSubsystemInfo{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.DeviceInfo{}, id)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, dbErr(err, "delete device_info")
	}
	return affected, nil
}

func (s *GormStore) BulkDeleteDeviceInfos(f Filter) (int64, error) {
	if !f.hasDeleteConditions(true) {
		return 0, apperr.InvalidArgument("bulk delete device_info: filter is empty")
	}
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.DeviceInfo{}).Scopes(f.deleteScope(true)).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("device_info_id IN ?", ids).
			Delete(&models.SubsystemInfoComponentInfo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_info_id IN ?", ids).
			Delete(&models.DeviceInfoSubsystemInfo{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.DeviceInfo{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, dbErr(err, "bulk delete device_info")
	}
	return affected, nil
}

func (s *GormStore) UpdateDeviceInfo(id uint, p DeviceInfoPatch) (int64, error) {
	return s.patchRow(&models.DeviceInfo{}, id, p.updates(), "update device_info")
}

func (s *GormStore) GetDeviceInfo(id uint) (*models.DeviceInfo, error) {
	var m models.DeviceInfo
	if err := s.db.First(&m, id).Error; err != nil {
		return nil, dbErr(err, "device_info %d", id)
	}
	return &m, nil
}

func (s *GormStore) QueryDeviceInfos(f Filter) ([]models.DeviceInfo, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.DeviceInfo{}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeviceInfo{}).Scopes(f.queryScope(true)).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.queryScope(true), f.pageScope()).Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query device_info")
	}
	return out, total, nil
}

func (s *GormStore) DeviceInfoExists(id uint) (bool, error) {
	return s.exists(&models.DeviceInfo{}, id, "device_info")
}

// ── SubsystemInfo ───────────────────────────────────────────

func (s *GormStore) InsertSubsystemInfo(in models.SubsystemInfo) (uint, error) {
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert subsystem_info")
	}
	return in.ID, nil
}

func (s *GormStore) BulkInsertSubsystemInfos(list []models.SubsystemInfo) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&list).Error
	})
	if err != nil {
		return 0, dbErr(err, "bulk insert subsystem_info")
	}
	return int64(len(list)), nil
}

func (s *GormStore) DeleteSubsystemInfo(id uint) (int64, error) {
	res := s.db.Delete(&models.SubsystemInfo{}, id)
	if res.Error != nil {
		return 0, dbErr(res.Error, "delete subsystem_info")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) BulkDeleteSubsystemInfos(f Filter) (int64, error) {
	if !f.hasDeleteConditions(false) {
		return 0, apperr.InvalidArgument("bulk delete subsystem_info: filter is empty")
	}
	res := s.db.Scopes(f.deleteScope(false)).Delete(&models.SubsystemInfo{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "bulk delete subsystem_info")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UpdateSubsystemInfo(id uint, p SubsystemInfoPatch) (int64, error) {
	return s.patchRow(&models.SubsystemInfo{}, id, p.updates(), "update subsystem_info")
}

func (s *GormStore) GetSubsystemInfo(id uint) (*models.SubsystemInfo, error) {
	var m models.SubsystemInfo
	if err := s.db.First(&m, id).Error; err != nil {
		return nil, dbErr(err, "subsystem_info %d", id)
	}
	return &m, nil
}

func (s *GormStore) QuerySubsystemInfos(f Filter) ([]models.SubsystemInfo, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.SubsystemInfo{}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SubsystemInfo{}).Scopes(f.queryScope(false)).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.queryScope(false), f.pageScope()).Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query subsystem_info")
	}
	return out, total, nil
}

func (s *GormStore) SubsystemInfoExists(id uint) (bool, error) {
	return s.exists(&models.SubsystemInfo{}, id, "subsystem_info")
}

// ── ComponentInfo ───────────────────────────────────────────

func (s *GormStore) InsertComponentInfo(in models.ComponentInfo) (uint, error) {
	if err := s.db.Create(&in).Error; err != nil {
		return 0, dbErr(err, "insert component_info")
	}
	return in.ID, nil
}

func (s *GormStore) BulkInsertComponentInfos(list []models.ComponentInfo) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&list).Error
	})
	if err != nil {
		return 0, dbErr(err, "bulk insert component_info")
	}
	return int64(len(list)), nil
}

func (s *GormStore) DeleteComponentInfo(id uint) (int64, error) {
	res := s.db.Delete(&models.ComponentInfo{}, id)
	if res.Error != nil {
		return 0, dbErr(res.Error, "delete component_info")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) BulkDeleteComponentInfos(f Filter) (int64, error) {
	if !f.hasDeleteConditions(true) {
		return 0, apperr.InvalidArgument("bulk delete component_info: filter is empty")
	}
	res := s.db.Scopes(f.deleteScope(true)).Delete(&models.ComponentInfo{})
	if res.Error != nil {
		return 0, dbErr(res.Error, "bulk delete component_info")
	}
	return res.RowsAffected, nil
}

func (s *GormStore) UpdateComponentInfo(id uint, p ComponentInfoPatch) (int64, error) {
	return s.patchRow(&models.ComponentInfo{}, id, p.updates(), "update component_info")
}

func (s *GormStore) GetComponentInfo(id uint) (*models.ComponentInfo, error) {
	var m models.ComponentInfo
	if err := s.db.First(&m, id).Error; err != nil {
		return nil, dbErr(err, "component_info %d", id)
	}
	return &m, nil
}

func (s *GormStore) QueryComponentInfos(f Filter) ([]models.ComponentInfo, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.ComponentInfo{}
	var total int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ComponentInfo{}).Scopes(f.queryScope(true)).Count(&total).Error; err != nil {
			return err
		}
		return tx.Scopes(f.queryScope(true), f.pageScope()).Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query component_info")
	}
	return out, total, nil
}

func (s *GormStore) ComponentInfoExists(id uint) (bool, error) {
	return s.exists(&models.ComponentInfo{}, id, "component_info")
}

// ── выборки по связкам ──────────────────────────────────────

func (s *GormStore) QueryDeviceInfosBySubsystemInfo(subInfoID uint, f Filter) ([]models.DeviceInfo, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.DeviceInfo{}
	var total int64
	base := func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.DeviceInfo{}).
			Joins("JOIN device_info_subsystem_info dsi ON dsi.device_info_id = device_infos.id").
			Where("dsi.subsystem_info_id = ?", subInfoID).
			Scopes(joinScope("device_infos", f, true))
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := base(tx).Count(&total).Error; err != nil {
			return err
		}
		return base(tx).Scopes(f.pageScope()).Order("device_infos.id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query device_info by subsystem_info %d", subInfoID)
	}
	return out, total, nil
}

func (s *GormStore) QuerySubsystemInfosByDeviceInfo(devInfoID uint, f Filter) ([]models.SubsystemInfo, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []models.SubsystemInfo{}
	var total int64
	base := func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.SubsystemInfo{}).
			Joins("JOIN device_info_subsystem_info dsi ON dsi.subsystem_info_id = subsystem_infos.id").
			Where("dsi.device_info_id = ?", devInfoID).
			Scopes(joinScope("subsystem_infos", f, false))
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := base(tx).Count(&total).Error; err != nil {
			return err
		}
		return base(tx).Scopes(f.pageScope()).Order("subsystem_infos.id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query subsystem_info by device_info %d", devInfoID)
	}
	return out, total, nil
}

func (s *GormStore) QueryComponentInfosByPair(devInfoID, subInfoID uint, f Filter) ([]ComponentInfoAttachment, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}
	out := []ComponentInfoAttachment{}
	var total int64
	base := func(tx *gorm.DB) *gorm.DB {
		return tx.Table("component_infos").
			Joins("JOIN subsystem_info_component_info sic ON sic.component_info_id = component_infos.id").
			Where("sic.device_info_id = ? AND sic.subsystem_info_id = ?", devInfoID, subInfoID).
			Scopes(joinScope("component_infos", f, true))
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := base(tx).Count(&total).Error; err != nil {
			return err
		}
		return base(tx).
			Select("component_infos.*, sic.quantity AS quantity").
			Scopes(f.pageScope()).
			Order("component_infos.id ASC").
			Scan(&out).Error
	})
	if err != nil {
		return nil, 0, dbErr(err, "query component_info by pair (%d,%d)", devInfoID, subInfoID)
	}
	return out, total, nil
}

// joinScope — фильтр с квалификацией колонок именем таблицы,
// иначе join-запросы неоднозначны.
func joinScope(table string, f Filter, hasModel bool) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where(table+".name LIKE ?", "%"+f.Name+"%")
		}
		if hasModel && f.Model != "" {
			q = q.Where(table+".model LIKE ?", "%"+f.Model+"%")
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where(table+".maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where(table+".maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

// ── общие helpers ───────────────────────────────────────────

// patchRow применяет только присутствующие поля. Пустой patch —
// существующая строка считается затронутой (affected=1), отсутствующая — 0.
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

func (s *GormStore) exists(model any, id uint, name string) (bool, error) {
	var n int64
	if err := s.db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, dbErr(err, "exists %s %d", name, id)
	}
	return n > 0, nil
}

// dbErr сводит ошибку gorm к виду из apperr.
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
