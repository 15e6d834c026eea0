package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/vmouse/internal/config"
)

// SettingsService reads and updates the live-tunable settings.
type SettingsService interface {
	Settings() map[string]string
	UpdateSettings(values map[string]string) error
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	service SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(s SettingsService) *SettingsHandler {
	return &SettingsHandler{service: s}
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
	Keys     []string          `json:"keys"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Settings: h.service.Settings(),
		Keys:     config.SettingKeys(),
	})
}

// update accepts a flat JSON object. Numbers and booleans are accepted
// alongside strings.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	values := make(map[string]string, len(body))
	for k, v := range body {
		switch v := v.(type) {
		case string:
			values[k] = v
		case float64, bool:
			values[k] = fmt.Sprint(v)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Setting %s must be a string, number or boolean", k))
			return
		}
	}

	if err := h.service.UpdateSettings(values); err != nil {
		if errors.Is(err, config.ErrInvalidSetting) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	h.get(w)
}
