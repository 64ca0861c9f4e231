package instance

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
	dsn := filepath.Join(t.TempDir(), "instance.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Device{},
		&models.Subsystem{},
		&models.Component{},
	))
	return db
}

func intp(v int) *int { return &v }

func mustDevice(t *testing.T, s *GormStore, name, unicode string, interval int) uint {
	t.Helper()
	id, err := s.InsertDevice(models.Device{
		Name: name, Model: "M", MaintainInterval: interval, Unicode: unicode,
	})
	require.NoError(t, err)
	return id
}

func mustSubsystem(t *testing.T, s *GormStore, deviceID uint, name string) uint {
	t.Helper()
	id, err := s.InsertSubsystem(models.Subsystem{Name: name, DeviceID: deviceID})
	require.NoError(t, err)
	return id
}

func mustComponent(t *testing.T, s *GormStore, subID uint, name string) uint {
	t.Helper()
	id, err := s.InsertComponent(models.Component{Name: name, Model: "C", SubsystemID: subID})
	require.NoError(t, err)
	return id
}

type triple struct{ dev, sub, com uint }

// наивный обход: по запросу на родителя, эталон для сборки дерева
func naiveTriples(t *testing.T, db *gorm.DB, devices []models.Device) []triple {
	t.Helper()
	var out []triple
	for _, d := range devices {
		var subs []models.Subsystem
		require.NoError(t, db.Where("device_id = ?", d.ID).Order("id ASC").Find(&subs).Error)
		if len(subs) == 0 {
			out = append(out, triple{dev: d.ID})
			continue
		}
		for _, sub := range subs {
			var coms []models.Component
			require.NoError(t, db.Where("subsystem_id = ?", sub.ID).Order("id ASC").Find(&coms).Error)
			if len(coms) == 0 {
				out = append(out, triple{dev: d.ID, sub: sub.ID})
				continue
			}
			for _, c := range coms {
				out = append(out, triple{dev: d.ID, sub: sub.ID, com: c.ID})
			}
		}
	}
	return out
}

func flatten(trees []DeviceTree) []triple {
	var out []triple
	for _, d := range trees {
		if len(d.Subsystems) == 0 {
			out = append(out, triple{dev: d.ID})
			continue
		}
		for _, sub := range d.Subsystems {
			if len(sub.Components) == 0 {
				out = append(out, triple{dev: d.ID, sub: sub.ID})
				continue
			}
			for _, c := range sub.Components {
				out = append(out, triple{dev: d.ID, sub: sub.ID, com: c.ID})
			}
		}
	}
	return out
}

func TestTreeReconstructionMatchesNaive(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	// d1 → {s11 → {c111, c112}, s12 → {}}, d2 → {}, d3 → {s31 → {c311}}
	d1 := mustDevice(t, s, "press", "SN-1", 10)
	d2 := mustDevice(t, s, "lathe", "SN-2", 20)
	d3 := mustDevice(t, s, "mill", "SN-3", 30)
	s11 := mustSubsystem(t, s, d1, "hydraulics")
	mustSubsystem(t, s, d1, "frame")
	s31 := mustSubsystem(t, s, d3, "spindle")
	mustComponent(t, s, s11, "pump")
	mustComponent(t, s, s11, "hose")
	mustComponent(t, s, s31, "bearing")
	_ = d2

	var devices []models.Device
	require.NoError(t, db.Order("id ASC").Find(&devices).Error)

	trees, total, err := s.QueryDevices(DeviceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	assert.Equal(t, naiveTriples(t, db, devices), flatten(trees))

	// повторный вызов на неизменных данных даёт тот же порядок
	trees2, _, err := s.QueryDevices(DeviceFilter{})
	require.NoError(t, err)
	assert.Equal(t, flatten(trees), flatten(trees2))
}

func TestGetDeviceTree(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d := mustDevice(t, s, "press", "SN-9", 10)
	sub := mustSubsystem(t, s, d, "hydraulics")
	c := mustComponent(t, s, sub, "pump")

	tree, err := s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, d, tree.ID)
	require.Len(t, tree.Subsystems, 1)
	assert.Equal(t, sub, tree.Subsystems[0].ID)
	require.Len(t, tree.Subsystems[0].Components, 1)
	assert.Equal(t, c, tree.Subsystems[0].Components[0].ID)

	_, err = s.GetDevice(777)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeviceWithoutChildrenHasEmptySlices(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d := mustDevice(t, s, "bare", "SN-0", 1)
	tree, err := s.GetDevice(d)
	require.NoError(t, err)
	assert.NotNil(t, tree.Subsystems)
	assert.Empty(t, tree.Subsystems)
}

func TestSubsystemDetail(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d := mustDevice(t, s, "press", "SN-4", 10)
	sub := mustSubsystem(t, s, d, "hydraulics")
	mustComponent(t, s, sub, "pump")

	detail, err := s.GetSubsystem(sub)
	require.NoError(t, err)
	assert.Equal(t, sub, detail.ID)
	assert.Equal(t, d, detail.Device.ID)
	assert.Equal(t, "press", detail.Device.Name)
	require.Len(t, detail.Components, 1)

	list, total, err := s.QuerySubsystems(SubsystemFilter{DeviceID: d})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, d, list[0].Device.ID)
}

func TestDevicePaginationStability(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	for i := 0; i < 7; i++ {
		mustDevice(t, s, "d", "SN-P"+string(rune('a'+i)), i)
	}

	all, total, err := s.QueryDevices(DeviceFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 7, total)

	var paged []DeviceTree
	for page := 1; page <= 4; page++ {
		items, _, err := s.QueryDevices(DeviceFilter{Page: page, Size: 2})
		require.NoError(t, err)
		paged = append(paged, items...)
	}
	require.Len(t, paged, 7)
	for i := range all {
		assert.Equal(t, all[i].ID, paged[i].ID)
	}
}

func TestDeviceIntervalFilter(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	mustDevice(t, s, "a", "SN-a", 10)
	mustDevice(t, s, "b", "SN-b", 20)
	mustDevice(t, s, "c", "SN-c", 30)

	items, total, err := s.QueryDevices(DeviceFilter{
		MaintainIntervalBegin: intp(10),
		MaintainIntervalEnd:   intp(20),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].MaintainInterval)
}

func TestDeviceStatusFilter(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	running := mustDevice(t, s, "a", "SN-r", 1)
	mustDevice(t, s, "b", "SN-s", 1)
	require.NoError(t, s.StartDevice(running))

	items, total, err := s.QueryDevices(DeviceFilter{Status: models.StatusRunning})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, running, items[0].ID)

	_, _, err = s.QueryDevices(DeviceFilter{Status: "Exploded"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestDeviceNoopUpdate(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d := mustDevice(t, s, "press", "SN-5", 10)
	before, err := s.GetDevice(d)
	require.NoError(t, err)

	n, err := s.UpdateDevice(d, DevicePatch{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	after, err := s.GetDevice(d)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Unicode, after.Unicode)
	assert.Equal(t, before.Status, after.Status)

	n, err = s.UpdateDevice(424242, DevicePatch{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestInsertSubsystemRequiresDevice(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	_, err := s.InsertSubsystem(models.Subsystem{Name: "orphan", DeviceID: 999})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInsertDeviceDuplicateUnicode(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	mustDevice(t, s, "a", "SN-DUP", 1)
	_, err := s.InsertDevice(models.Device{Name: "b", Model: "M", Unicode: "SN-DUP"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestBulkInsertSubsystemsAllOrNothing(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	dev := mustDevice(t, s, "cnc", "SN-BLK-1", 30)

	n, err := s.BulkInsertSubsystems([]models.Subsystem{
		{Name: "axis-x", DeviceID: dev},
		{Name: "axis-y", DeviceID: dev},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ok, err := s.SubsystemExists(1)
	require.NoError(t, err)
	assert.True(t, ok)

	// один отсутствующий родитель валит всю пачку
	_, err = s.BulkInsertSubsystems([]models.Subsystem{
		{Name: "axis-z", DeviceID: dev},
		{Name: "ghost", DeviceID: 999},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var total int64
	require.NoError(t, db.Model(&models.Subsystem{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestBulkInsertComponentsAllOrNothing(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	dev := mustDevice(t, s, "cnc", "SN-BLK-2", 30)
	sub := mustSubsystem(t, s, dev, "spindle")

	n, err := s.BulkInsertComponents([]models.Component{
		{Name: "bearing", Model: "B", SubsystemID: sub},
		{Name: "belt", Model: "B", SubsystemID: sub},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ok, err := s.ComponentExists(1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.ComponentExists(999)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.BulkInsertComponents([]models.Component{
		{Name: "motor", Model: "M", SubsystemID: 999},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var total int64
	require.NoError(t, db.Model(&models.Component{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestBulkDeleteInstancesExactMatch(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	d1 := mustDevice(t, s, "doomed", "SN-BD-1", 5)
	mustDevice(t, s, "kept", "SN-BD-2", 5)
	sub := mustSubsystem(t, s, d1, "sub-a")
	mustSubsystem(t, s, d1, "sub-b")
	mustComponent(t, s, sub, "com-a")

	n, err := s.BulkDeleteComponents(ComponentFilter{SubsystemID: sub})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.BulkDeleteSubsystems(SubsystemFilter{DeviceID: d1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.BulkDeleteDevices(DeviceFilter{Name: "doomed"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var total int64
	require.NoError(t, db.Model(&models.Device{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestBulkDeleteInstancesEmptyFilterRejected(t *testing.T) {
	s := NewStore(testDB(t))

	_, err := s.BulkDeleteDevices(DeviceFilter{Page: 1, Size: 10})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = s.BulkDeleteSubsystems(SubsystemFilter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = s.BulkDeleteComponents(ComponentFilter{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
