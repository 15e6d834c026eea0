package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/vmouse/internal/plugin"
)

// Controller switches gesture control on and off.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// EnabledHandler serves GET and PUT /api/enabled.
type EnabledHandler struct {
	control Controller
}

// NewEnabledHandler creates a new EnabledHandler.
func NewEnabledHandler(c Controller) *EnabledHandler {
	return &EnabledHandler{control: c}
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

func (h *EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var body enabledBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Body must be {\"enabled\": true|false}")
			return
		}
		h.control.SetEnabled(*body.Enabled)
	default:
		methodNotAllowed(w)
		return
	}

	enabled := h.control.IsEnabled()
	writeJSON(w, http.StatusOK, enabledBody{Enabled: &enabled})
}

// PluginsHandler serves GET /api/plugins and POST /api/plugins to rescan
// the plugin directory.
type PluginsHandler struct {
	manager *plugin.Manager
}

// NewPluginsHandler creates a new PluginsHandler.
func NewPluginsHandler(m *plugin.Manager) *PluginsHandler {
	return &PluginsHandler{manager: m}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func (h *PluginsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := h.manager.Discover(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to discover plugins")
			return
		}
	default:
		methodNotAllowed(w)
		return
	}

	resp := listPluginsResponse{Plugins: []pluginResponse{}}
	for _, p := range h.manager.List() {
		resp.Plugins = append(resp.Plugins, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     p.Manifest.Actions,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
