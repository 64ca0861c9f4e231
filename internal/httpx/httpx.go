package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"equipd/internal/apperr"
	"equipd/internal/logs"

	"github.com/gorilla/mux"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErr сводит вид ошибки к HTTP-статусу:
// NotFound→404, Conflict→409, InvalidArgument→400, остальное→500.
func WriteErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logs.Logger.Errorf("request failed: %v", err)
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func UintVar(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.InvalidArgument("path param %s must be a positive integer", name)
	}
	return uint(v), nil
}

// QueryInt: nil — параметр не задан.
func QueryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("query param %s must be an integer", name)
	}
	return &v, nil
}

func QueryIntDefault(r *http.Request, name string, def int) (int, error) {
	p, err := QueryInt(r, name)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return def, nil
	}
	return *p, nil
}

func DecodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidArgument("malformed JSON body: %v", err)
	}
	return nil
}
