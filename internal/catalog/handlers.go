package catalog

import (
	"net/http"

	"equipd/internal/httpx"
	"equipd/internal/models"

	"github.com/gorilla/mux"
)

type HTTP struct {
	store     Store
	assembler *Assembler
}

func NewHTTP(store Store, assembler *Assembler) *HTTP {
	return &HTTP{store: store, assembler: assembler}
}

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/catalog").Subrouter()

	api.HandleFunc("/device-infos", h.createDeviceInfo).Methods(http.MethodPost)
	api.HandleFunc("/device-infos/bulk", h.bulkCreateDeviceInfos).Methods(http.MethodPost)
	api.HandleFunc("/device-infos", h.queryDeviceInfos).Methods(http.MethodGet)
	api.HandleFunc("/device-infos", h.bulkDeleteDeviceInfos).Methods(http.MethodDelete)
	api.HandleFunc("/device-infos/{id}", h.getDeviceInfo).Methods(http.MethodGet)
	api.HandleFunc("/device-infos/{id}", h.updateDeviceInfo).Methods(http.MethodPatch)
	api.HandleFunc("/device-infos/{id}", h.deleteDeviceInfo).Methods(http.MethodDelete)
	api.HandleFunc("/device-infos/{id}/detail", h.deviceInfoDetail).Methods(http.MethodGet)
	api.HandleFunc("/device-infos/{id}/subsystem-infos", h.subsystemInfosByDeviceInfo).Methods(http.MethodGet)
	api.HandleFunc("/device-infos/{id}/subsystem-infos/{sid}/component-infos", h.componentInfosByPair).Methods(http.MethodGet)

	api.HandleFunc("/subsystem-infos", h.createSubsystemInfo).Methods(http.MethodPost)
	api.HandleFunc("/subsystem-infos/bulk", h.bulkCreateSubsystemInfos).Methods(http.MethodPost)
	api.HandleFunc("/subsystem-infos", h.querySubsystemInfos).Methods(http.MethodGet)
	api.HandleFunc("/subsystem-infos", h.bulkDeleteSubsystemInfos).Methods(http.MethodDelete)
	api.HandleFunc("/subsystem-infos/{id}", h.getSubsystemInfo).Methods(http.MethodGet)
	api.HandleFunc("/subsystem-infos/{id}", h.updateSubsystemInfo).Methods(http.MethodPatch)
	api.HandleFunc("/subsystem-infos/{id}", h.deleteSubsystemInfo).Methods(http.MethodDelete)
	api.HandleFunc("/subsystem-infos/{id}/device-infos", h.deviceInfosBySubsystemInfo).Methods(http.MethodGet)

	api.HandleFunc("/component-infos", h.createComponentInfo).Methods(http.MethodPost)
	api.HandleFunc("/component-infos/bulk", h.bulkCreateComponentInfos).Methods(http.MethodPost)
	api.HandleFunc("/component-infos", h.queryComponentInfos).Methods(http.MethodGet)
	api.HandleFunc("/component-infos", h.bulkDeleteComponentInfos).Methods(http.MethodDelete)
	api.HandleFunc("/component-infos/{id}", h.getComponentInfo).Methods(http.MethodGet)
	api.HandleFunc("/component-infos/{id}", h.updateComponentInfo).Methods(http.MethodPatch)
	api.HandleFunc("/component-infos/{id}", h.deleteComponentInfo).Methods(http.MethodDelete)
}

// filterFromQuery: name/model — подстрока, интервал полуоткрытый,
// page/size с дефолтами как у исходного API.
func filterFromQuery(r *http.Request) (Filter, error) {
	var f Filter
	f.Name = r.URL.Query().Get("name")
	f.Model = r.URL.Query().Get("model")
	var err error
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

type pageResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

// ── DeviceInfo ──────────────────────────────────────────────

func (h *HTTP) createDeviceInfo(w http.ResponseWriter, r *http.Request) {
	var in models.DeviceInfo
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertDeviceInfo(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateDeviceInfos(w http.ResponseWriter, r *http.Request) {
	var list []models.DeviceInfo
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertDeviceInfos(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) queryDeviceInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryDeviceInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteDeviceInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteDeviceInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *HTTP) getDeviceInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	m, err := h.store.GetDeviceInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *HTTP) updateDeviceInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p DeviceInfoPatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateDeviceInfo(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteDeviceInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteDeviceInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deviceInfoDetail(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	detail, err := h.assembler.Detail(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}

func (h *HTTP) subsystemInfosByDeviceInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QuerySubsystemInfosByDeviceInfo(id, f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) deviceInfosBySubsystemInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryDeviceInfosBySubsystemInfo(id, f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) componentInfosByPair(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	sid, err := httpx.UintVar(r, "sid")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryComponentInfosByPair(id, sid, f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

// ── SubsystemInfo ───────────────────────────────────────────

func (h *HTTP) createSubsystemInfo(w http.ResponseWriter, r *http.Request) {
	var in models.SubsystemInfo
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertSubsystemInfo(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateSubsystemInfos(w http.ResponseWriter, r *http.Request) {
	var list []models.SubsystemInfo
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertSubsystemInfos(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) querySubsystemInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QuerySubsystemInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteSubsystemInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteSubsystemInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *HTTP) getSubsystemInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	m, err := h.store.GetSubsystemInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *HTTP) updateSubsystemInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p SubsystemInfoPatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateSubsystemInfo(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteSubsystemInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteSubsystemInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

// ── ComponentInfo ───────────────────────────────────────────

func (h *HTTP) createComponentInfo(w http.ResponseWriter, r *http.Request) {
	var in models.ComponentInfo
	if err := httpx.DecodeBody(r, &in); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.store.InsertComponentInfo(in)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) bulkCreateComponentInfos(w http.ResponseWriter, r *http.Request) {
	var list []models.ComponentInfo
	if err := httpx.DecodeBody(r, &list); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkInsertComponentInfos(list)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]int64{"inserted": n})
}

func (h *HTTP) queryComponentInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	items, total, err := h.store.QueryComponentInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: items, Total: total})
}

func (h *HTTP) bulkDeleteComponentInfos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.BulkDeleteComponentInfos(f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *HTTP) getComponentInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	m, err := h.store.GetComponentInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *HTTP) updateComponentInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var p ComponentInfoPatch
	if err := httpx.DecodeBody(r, &p); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.UpdateComponentInfo(id, p)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}

func (h *HTTP) deleteComponentInfo(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	n, err := h.store.DeleteComponentInfo(id)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"affected": n})
}
