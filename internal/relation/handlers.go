package relation

import (
	"net/http"

	"equipd/internal/httpx"

	"github.com/gorilla/mux"
)

type HTTP struct {
	svc *Service
}

func NewHTTP(svc *Service) *HTTP { return &HTTP{svc: svc} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/catalog/device-infos/{id}/subsystem-infos/{sid}",
		h.attachSubsystemInfo).Methods(http.MethodPost)
	api.HandleFunc("/catalog/device-infos/{id}/subsystem-infos/{sid}",
		h.removeSubsystemInfo).Methods(http.MethodDelete)
	api.HandleFunc("/catalog/device-infos/{id}/subsystem-infos/{sid}/component-infos/{cid}",
		h.attachComponentInfo).Methods(http.MethodPost)
	api.HandleFunc("/catalog/device-infos/{id}/subsystem-infos/{sid}/component-infos/{cid}",
		h.removeComponentInfo).Methods(http.MethodDelete)

	api.HandleFunc("/devices/instantiate", h.instantiateDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/tree", h.removeDeviceTree).Methods(http.MethodDelete)
}

func (h *HTTP) attachSubsystemInfo(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.AttachSubsystemInfo(id, sid); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *HTTP) removeSubsystemInfo(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.RemoveSubsystemInfo(id, sid); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) attachComponentInfo(w http.ResponseWriter, r *http.Request) {
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
	cid, err := httpx.UintVar(r, "cid")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := httpx.DecodeBody(r, &body); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	if err := h.svc.AttachComponentInfo(id, sid, cid, body.Quantity); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *HTTP) removeComponentInfo(w http.ResponseWriter, r *http.Request) {
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
	cid, err := httpx.UintVar(r, "cid")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	if err := h.svc.RemoveComponentInfo(id, sid, cid); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) instantiateDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceInfoID uint   `json:"device_info_id"`
		Unicode      string `json:"unicode"`
	}
	if err := httpx.DecodeBody(r, &body); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	id, err := h.svc.InstantiateDevice(body.DeviceInfoID, body.Unicode)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (h *HTTP) removeDeviceTree(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UintVar(r, "id")
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	if err := h.svc.RemoveDevice(id); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
