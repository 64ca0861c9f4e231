package instance

import (
	"net/http"

	"equipd/internal/httpx"
	"equipd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct {
	store Store
}

func NewHTTP(store Store) *HTTP { return &HTTP{store: store} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/devices", h.createDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/bulk", h.bulkCreateDevices).Methods(http.MethodPost)
	api.HandleFunc("/devices", h.queryDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", h.bulkDeleteDevices).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{id}", h.getDevice).Methods(http.MethodGet)
	api.HandleFunc("/devices/{id}", h.updateDevice).Methods(http.MethodPatch)
	api.HandleFunc("/devices/{id}", h.deleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{id}/start", h.startDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/stop", h.stopDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/breakdown", h.reportBreakdown).Methods(http.MethodPost)

	api.HandleFunc("/subsystems", h.createSubsystem).Methods(http.MethodPost)
	api.HandleFunc("/subsystems/bulk", h.bulkCreateSubsystems).Methods(http.MethodPost)
	api.HandleFunc("/subsystems", h.querySubsystems).Methods(http.MethodGet)
	api.HandleFunc("/subsystems", h.bulkDeleteSubsystems).Methods(http.MethodDelete)
	api.HandleFunc("/subsystems/{id}", h.getSubsystem).Methods(http.MethodGet)
	api.HandleFunc("/subsystems/{id}", h.updateSubsystem).Methods(http.MethodPatch)
	api.HandleFunc("/subsystems/{id}", h.deleteSubsystem).Methods(http.MethodDelete)

	api.HandleFunc("/components", h.createComponent).Methods(http.MethodPost)
	api.HandleFunc("/components/bulk", h.bulkCreateComponents).Methods(http.MethodPost)
	api.HandleFunc("/components", h.queryComponents).Methods(http.MethodGet)
	api.HandleFunc("/components", h.bulkDeleteComponents).Methods(http.MethodDelete)
	api.HandleFunc("/components/{id}", h.getComponent).Methods(http.MethodGet)
	api.HandleFunc("/components/{id}", h.updateComponent).Methods(http.MethodPatch)
	api.HandleFunc("/components/{id}", h.deleteComponent).Methods(http.MethodDelete)
}

type pageResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func deviceFilterFromQuery(r *http.Request) (DeviceFilter, error) {
	var f DeviceFilter
	q := r.URL.Query()
	f.Name = q.Get("name")
	f.Model = q.Get("model")
	f.Unicode = q.Get("unicode")
	f.Status = models.DeviceStatus(q.Get("status"))
	var err error
	if f.MaintainIntervalBegin, err = httpx.QueryInt(r, "maintain_interval_begin"); err != nil {
		return f, err
	}
	if f.MaintainIntervalEnd, err = httpx.QueryInt(r, "maintain_interval_end"); err != nil {
		return f, err
	}
	if f.TotalDurationBegin, err = httpx.QueryInt(r, "total_duration_begin"); err != nil {
		return f, err
	}
	if f.TotalDurationEnd, err = httpx.QueryInt(r, "total_duration_end"); err != nil {
		return f, err
	}
	if f.Page, err = httpx.QueryIntDefault(r, "page", 1); err != nil {
		return f, err
	}
	if f.Size, err = httpx.QueryIntDefault(r, "size", 10); err != nil {
		return f, err
	}
	return f, nil
}

func subsystemFilterFromQuery(r *http.Request) (SubsystemFilter, error) {
	var f SubsystemFilter
	f.Name = r.URL.Query().Get("name")
	var err error
	var devID *int
	if devID, err = httpx.QueryInt(r, "device_id"); err != nil {
		return f, err
	}
	if devID != nil && *devID > 0 {
		f.DeviceID = uint(*devID)
	}
	if f.MaintainIntervalBegin, err = httpx.QueryInt(r, "maintain_interval_begin"); err != nil {
		return f, err
	}
	if f.MaintainIntervalEnd, err = httpx.QueryInt(r, "maintain_interval_end"); err != nil {
		return f, err
	}
	if f.Page, err = httpx.QueryIntDefault(r, "page", 1); err != nil {
		return f, err
	}
	if f.Size, err = httpx.QueryIntDefault(r, "size", 10); err != nil {
		return f, err
	}
	return f, nil
}

func componentFilterFromQuery(r *http.Request) (ComponentFilter, error) {
	var f ComponentFilter
	q := r.URL.Query()
	f.Name = q.Get("name")
	f.Model = q.Get("model")
	var err error
	var subID *int
	if subID, err = httpx.QueryInt(r, "subsystem_id"); err != nil {
		return f, err
	}
	if subID != nil && *subID > 0 {
		f.SubsystemID = uint(*subID)
	}
	if f.MaintainIntervalBegin, err = httpx.QueryInt(r, "maintain_interval_begin"); err != nil {
		return f, err
	}
	if f.MaintainIntervalEnd, err = httpx.QueryInt(r, "maintain_interval_end"); err != nil {
		return f, err
	}
	if f.Page, err = httpx.QueryIntDefault(r, "page", 1); err != nil {
		return f, err
	}
	if f.Size, err = httpx.QueryIntDefault(r, "size", 10); err != nil {
		return f, err
	}
	return f, nil
}

// ── Device ──────────────────────────────────────────────────

func (h *HTTP) createDevice(w http.ResponseWriter, r *http.Request) {
	var in models.Device
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertDevice(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateDevices(w http.ResponseWriter, r *http.Request) {
	var list []models.Device
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertDevices(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) queryDevices(w http.ResponseWriter, r *http.Request) {
	f, err := deviceFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryDevices(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteDevices(w http.ResponseWriter, r *http.Request) {
	f, err := deviceFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteDevices(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	tree, err := h.store.GetDevice(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tree)
}

func (h *HTTP) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p DevicePatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateDevice(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteDevice(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) startDevice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.store.StartDevice)
}

func (h *HTTP) stopDevice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.store.StopDevice)
}

func (h *HTTP) reportBreakdown(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.store.ReportBreakdown)
}

func (h *HTTP) transition(w http.ResponseWriter, r *http.Request, op func(uint) error) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	if err := op(id); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	tree, err := h.store.GetDevice(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tree)
}

// ── Subsystem ───────────────────────────────────────────────

func (h *HTTP) createSubsystem(w http.ResponseWriter, r *http.Request) {
	var in models.Subsystem
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertSubsystem(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateSubsystems(w http.ResponseWriter, r *http.Request) {
	var list []models.Subsystem
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertSubsystems(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) querySubsystems(w http.ResponseWriter, r *http.Request) {
	f, err := subsystemFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QuerySubsystems(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteSubsystems(w http.ResponseWriter, r *http.Request) {
	f, err := subsystemFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteSubsystems(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) getSubsystem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	d, err := h.store.GetSubsystem(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *HTTP) updateSubsystem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p SubsystemPatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateSubsystem(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteSubsystem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteSubsystem(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

// ── Component ───────────────────────────────────────────────

func (h *HTTP) createComponent(w http.ResponseWriter, r *http.Request) {
	var in models.Component
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertComponent(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateComponents(w http.ResponseWriter, r *http.Request) {
	var list []models.Component
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertComponents(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) queryComponents(w http.ResponseWriter, r *http.Request) {
	f, err := componentFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryComponents(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteComponents(w http.ResponseWriter, r *http.Request) {
	f, err := componentFilterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteComponents(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) getComponent(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	c, err := h.store.GetComponent(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *HTTP) updateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p ComponentPatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateComponent(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteComponent(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteComponent(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}
