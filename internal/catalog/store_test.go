package catalog

import (
	"path/filepath"
	"testing"

	"equipd/internal/apperr"
	"equipd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DeviceInfo{},
		&models.SubsystemInfo{},
		&models.ComponentInfo{},
		&models.DeviceInfoSubsystemInfo{},
		&models.SubsystemInfoComponentInfo{},
	))
	return db
}

func intp(v int) *int { return &v }

func TestDeviceInfoCRUD(t *testing.T) {
	s := NewStore(testDB(t))

	id, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "press", Model: "P-100", MaintainInterval: 30})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.GetDeviceInfo(id)
	require.NoError(t, err)
	assert.Equal(t, "press", got.Name)
	assert.Equal(t, "P-100", got.Model)
	assert.Equal(t, 30, got.MaintainInterval)

	ok, err := s.DeviceInfoExists(id)
	require.NoError(t, err)
	assert.True(t, ok)

	// patch трогает только присутствующие поля
	model := "P-200"
	n, err := s.UpdateDeviceInfo(id, DeviceInfoPatch{Model: &model})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err = s.GetDeviceInfo(id)
	require.NoError(t, err)
	assert.Equal(t, "press", got.Name)
	assert.Equal(t, "P-200", got.Model)

	n, err = s.DeleteDeviceInfo(id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.GetDeviceInfo(id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	ok, err = s.DeviceInfoExists(id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeviceInfoNoopUpdate(t *testing.T) {
	s := NewStore(testDB(t))

	id, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "lathe", Model: "L-1", MaintainInterval: 7})
	require.NoError(t, err)

	before, err := s.GetDeviceInfo(id)
	require.NoError(t, err)

	// пустой patch: строка есть — affected=1, поля не тронуты
	n, err := s.UpdateDeviceInfo(id, DeviceInfoPatch{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	after, err := s.GetDeviceInfo(id)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Model, after.Model)
	assert.Equal(t, before.MaintainInterval, after.MaintainInterval)

	n, err = s.UpdateDeviceInfo(9999, DeviceInfoPatch{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestIntervalFilterHalfOpen(t *testing.T) {
	s := NewStore(testDB(t))

	for _, iv := range []int{10, 20, 30} {
		_, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "d", Model: "m", MaintainInterval: iv})
		require.NoError(t, err)
	}

	// [10, 20): ровно одна строка, верхняя граница исключается
	items, total, err := s.QueryDeviceInfos(Filter{
		MaintainIntervalBegin: intp(10),
		MaintainIntervalEnd:   intp(20),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].MaintainInterval)
}

func TestSubstringFilter(t *testing.T) {
	s := NewStore(testDB(t))

	for _, name := range []string{"hydraulic press", "drill press", "lathe"} {
		_, err := s.InsertDeviceInfo(models.DeviceInfo{Name: name, Model: "m"})
		require.NoError(t, err)
	}

	items, total, err := s.QueryDeviceInfos(Filter{Name: "press"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func TestPaginationStability(t *testing.T) {
	s := NewStore(testDB(t))

	for i := 0; i < 7; i++ {
		_, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "d", Model: "m", MaintainInterval: i})
		require.NoError(t, err)
	}

	all, total, err := s.QueryDeviceInfos(Filter{}) // Size=0 — без пагинации
	require.NoError(t, err)
	require.EqualValues(t, 7, total)
	require.Len(t, all, 7)

	var paged []models.DeviceInfo
	for page := 1; page <= 3; page++ {
		items, pt, err := s.QueryDeviceInfos(Filter{Page: page, Size: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 7, pt, "total не зависит от страницы")
		paged = append(paged, items...)
	}
	require.Len(t, paged, 7)
	for i := range all {
		assert.Equal(t, all[i].ID, paged[i].ID, "страницы — непрерывные срезы общей выборки")
	}
}

func TestQueryNegativeSize(t *testing.T) {
	s := NewStore(testDB(t))
	_, _, err := s.QueryDeviceInfos(Filter{Size: -1})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestBulkInsertAllOrNothing(t *testing.T) {
	s := NewStore(testDB(t))

	// дубль первичного ключа внутри пачки валит всю вставку
	list := []models.DeviceInfo{
		{Base: models.Base{ID: 1}, Name: "a", Model: "m"},
		{Base: models.Base{ID: 1}, Name: "b", Model: "m"},
	}
	_, err := s.BulkInsertDeviceInfos(list)
	require.Error(t, err)

	_, total, err := s.QueryDeviceInfos(Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "после отката не должно остаться ни одной строки")
}

func TestBulkDeleteExactMatch(t *testing.T) {
	s := NewStore(testDB(t))

	for _, m := range []string{"A", "A", "B"} {
		_, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "d", Model: m, MaintainInterval: 5})
		require.NoError(t, err)
	}

	n, err := s.BulkDeleteDeviceInfos(Filter{Model: "A"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, total, err := s.QueryDeviceInfos(Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestSubsystemInfoAndComponentInfoCRUD(t *testing.T) {
	s := NewStore(testDB(t))

	sid, err := s.InsertSubsystemInfo(models.SubsystemInfo{Name: "cooling", MaintainInterval: 14})
	require.NoError(t, err)
	si, err := s.GetSubsystemInfo(sid)
	require.NoError(t, err)
	assert.Equal(t, "cooling", si.Name)

	cid, err := s.InsertComponentInfo(models.ComponentInfo{Name: "pump", Model: "PM-3", MaintainInterval: 7})
	require.NoError(t, err)
	ci, err := s.GetComponentInfo(cid)
	require.NoError(t, err)
	assert.Equal(t, "PM-3", ci.Model)

	n, err := s.BulkInsertComponentInfos([]models.ComponentInfo{
		{Name: "hose", Model: "H-1"},
		{Name: "valve", Model: "V-9"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, total, err := s.QueryComponentInfos(Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestDeleteDeviceInfoCascadesAttachments(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "lathe", Model: "L-2", MaintainInterval: 30})
	require.NoError(t, err)
	si, err := s.InsertSubsystemInfo(models.SubsystemInfo{Name: "spindle", MaintainInterval: 10})
	require.NoError(t, err)
	ci, err := s.InsertComponentInfo(models.ComponentInfo{Name: "bearing", Model: "B-1", MaintainInterval: 5})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.DeviceInfoSubsystemInfo{DeviceInfoID: d, SubsystemInfoID: si}).Error)
	require.NoError(t, db.Create(&models.SubsystemInfoComponentInfo{
		DeviceInfoID: d, SubsystemInfoID: si, ComponentInfoID: ci, Quantity: 2,
	}).Error)

	n, err := s.DeleteDeviceInfo(d)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var links int64
	require.NoError(t, db.Model(&models.DeviceInfoSubsystemInfo{}).
		Where("device_info_id = ?", d).Count(&links).Error)
	assert.Zero(t, links)
	require.NoError(t, db.Model(&models.SubsystemInfoComponentInfo{}).
		Where("device_info_id = ?", d).Count(&links).Error)
	assert.Zero(t, links)

	// шаблоны по ту сторону связок остаются
	_, err = s.GetSubsystemInfo(si)
	require.NoError(t, err)
	_, err = s.GetComponentInfo(ci)
	require.NoError(t, err)

	subs, total, err := s.QuerySubsystemInfosByDeviceInfo(d, Filter{})
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Zero(t, total)
}

func TestBulkDeleteDeviceInfosCascadesAttachments(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d1, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "mill", Model: "X", MaintainInterval: 1})
	require.NoError(t, err)
	d2, err := s.InsertDeviceInfo(models.DeviceInfo{Name: "press", Model: "Y", MaintainInterval: 1})
	require.NoError(t, err)
	si, err := s.InsertSubsystemInfo(models.SubsystemInfo{Name: "drive"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.DeviceInfoSubsystemInfo{DeviceInfoID: d1, SubsystemInfoID: si}).Error)
	require.NoError(t, db.Create(&models.DeviceInfoSubsystemInfo{DeviceInfoID: d2, SubsystemInfoID: si}).Error)

	n, err := s.BulkDeleteDeviceInfos(Filter{Model: "X"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var links int64
	require.NoError(t, db.Model(&models.DeviceInfoSubsystemInfo{}).
		Where("device_info_id = ?", d1).Count(&links).Error)
	assert.Zero(t, links)
	// связка второго шаблона не задета
	require.NoError(t, db.Model(&models.DeviceInfoSubsystemInfo{}).
		Where("device_info_id = ?", d2).Count(&links).Error)
	assert.EqualValues(t, 1, links)
}

func TestBulkDeleteEmptyFilterRejected(t *testing.T) {
	s := NewStore(testDB(t))

	_, err := s.BulkDeleteDeviceInfos(Filter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	// page/size условиями не считаются
	_, err = s.BulkDeleteSubsystemInfos(Filter{Page: 1, Size: 10})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = s.BulkDeleteComponentInfos(Filter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
