package instance

import (
	"equipd/internal/apperr"
	"equipd/internal/models"

	"gorm.io/gorm"
)

// DeviceFilter: name/model — подстрока, unicode/status — точное,
// числовые границы полуоткрытые [begin, end).
type DeviceFilter struct {
	Name                  string
	Model                 string
	Unicode               string
	Status                models.DeviceStatus
	MaintainIntervalBegin *int
	MaintainIntervalEnd   *int
	TotalDurationBegin    *int
	TotalDurationEnd      *int
	Page                  int
	Size                  int
}

func (f DeviceFilter) scope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name LIKE ?", "%"+f.Name+"%")
		}
		if f.Model != "" {
			q = q.Where("model LIKE ?", "%"+f.Model+"%")
		}
		if f.Unicode != "" {
			q = q.Where("unicode = ?", f.Unicode)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		if f.TotalDurationBegin != nil {
			q = q.Where("total_duration >= ?", *f.TotalDurationBegin)
		}
		if f.TotalDurationEnd != nil {
			q = q.Where("total_duration < ?", *f.TotalDurationEnd)
		}
		return q
	}
}

// deleteScope — для массового удаления name/model сравниваются точно.
func (f DeviceFilter) deleteScope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name = ?", f.Name)
		}
		if f.Model != "" {
			q = q.Where("model = ?", f.Model)
		}
		if f.Unicode != "" {
			q = q.Where("unicode = ?", f.Unicode)
		}
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		if f.TotalDurationBegin != nil {
			q = q.Where("total_duration >= ?", *f.TotalDurationBegin)
		}
		if f.TotalDurationEnd != nil {
			q = q.Where("total_duration < ?", *f.TotalDurationEnd)
		}
		return q
	}
}

func (f DeviceFilter) hasDeleteConditions() bool {
	if f.Name != "" || f.Model != "" || f.Unicode != "" || f.Status != "" {
		return true
	}
	return f.MaintainIntervalBegin != nil || f.MaintainIntervalEnd != nil ||
		f.TotalDurationBegin != nil || f.TotalDurationEnd != nil
}

func (f DeviceFilter) pageScope() func(*gorm.DB) *gorm.DB {
	return pageScope(f.Page, f.Size)
}

func (f DeviceFilter) validate() error {
	if f.Size < 0 {
		return apperr.InvalidArgument("page size must be positive, got %d", f.Size)
	}
	if f.Status != "" && !f.Status.Valid() {
		return apperr.InvalidArgument("unknown device status %q", f.Status)
	}
	return nil
}

type SubsystemFilter struct {
	Name                  string
	DeviceID              uint
	MaintainIntervalBegin *int
	MaintainIntervalEnd   *int
	Page                  int
	Size                  int
}

func (f SubsystemFilter) scope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name LIKE ?", "%"+f.Name+"%")
		}
		if f.DeviceID != 0 {
			q = q.Where("device_id = ?", f.DeviceID)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

func (f SubsystemFilter) deleteScope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name = ?", f.Name)
		}
		if f.DeviceID != 0 {
			q = q.Where("device_id = ?", f.DeviceID)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

func (f SubsystemFilter) hasDeleteConditions() bool {
	if f.Name != "" || f.DeviceID != 0 {
		return true
	}
	return f.MaintainIntervalBegin != nil || f.MaintainIntervalEnd != nil
}

func (f SubsystemFilter) pageScope() func(*gorm.DB) *gorm.DB {
	return pageScope(f.Page, f.Size)
}

func (f SubsystemFilter) validate() error {
	if f.Size < 0 {
		return apperr.InvalidArgument("page size must be positive, got %d", f.Size)
	}
	return nil
}

type ComponentFilter struct {
	Name                  string
	Model                 string
	SubsystemID           uint
	MaintainIntervalBegin *int
	MaintainIntervalEnd   *int
	Page                  int
	Size                  int
}

func (f ComponentFilter) scope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name LIKE ?", "%"+f.Name+"%")
		}
		if f.Model != "" {
			q = q.Where("model LIKE ?", "%"+f.Model+"%")
		}
		if f.SubsystemID != 0 {
			q = q.Where("subsystem_id = ?", f.SubsystemID)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

func (f ComponentFilter) deleteScope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Name != "" {
			q = q.Where("name = ?", f.Name)
		}
		if f.Model != "" {
			q = q.Where("model = ?", f.Model)
		}
		if f.SubsystemID != 0 {
			q = q.Where("subsystem_id = ?", f.SubsystemID)
		}
		if f.MaintainIntervalBegin != nil {
			q = q.Where("maintain_interval >= ?", *f.MaintainIntervalBegin)
		}
		if f.MaintainIntervalEnd != nil {
			q = q.Where("maintain_interval < ?", *f.MaintainIntervalEnd)
		}
		return q
	}
}

func (f ComponentFilter) hasDeleteConditions() bool {
	if f.Name != "" || f.Model != "" || f.SubsystemID != 0 {
		return true
	}
	return f.MaintainIntervalBegin != nil || f.MaintainIntervalEnd != nil
}

func (f ComponentFilter) pageScope() func(*gorm.DB) *gorm.DB {
	return pageScope(f.Page, f.Size)
}

func (f ComponentFilter) validate() error {
	if f.Size < 0 {
		return apperr.InvalidArgument("page size must be positive, got %d", f.Size)
	}
	return nil
}

func pageScope(page, size int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if size <= 0 {
			return q
		}
		if page < 1 {
			page = 1
		}
		return q.Offset((page - 1) * size).Limit(size)
	}
}
