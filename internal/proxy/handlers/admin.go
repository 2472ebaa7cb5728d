package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ikignosis/sopy/internal/admin"
)

// The /admin REST surface is a thin adapter: every call is translated 1:1
// into an admin-channel command sent over the socket. The handlers never
// touch the config store directly, so REST callers and raw socket callers go
// through the same dispatcher and the same rebuild guarantees.

// sendAdminCommand performs one socket exchange and converts failures to the
// gateway's error shape: transport failure -> 500, command failure -> 400.
// Returns nil if an error response has already been written.
func sendAdminCommand(w http.ResponseWriter, client *admin.Client, cmd admin.Command) admin.Response {
	resp, err := client.Send(cmd)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error communicating with admin socket: "+err.Error())
		return nil
	}
	if !resp.IsSuccess() {
		writeDetail(w, http.StatusBadRequest, resp.Message())
		return nil
	}
	return resp
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// decodeBody parses a JSON request body into dst, reporting a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// ===== /admin/auth =====

// AddAuthHandler handles POST /admin/auth.
func AddAuthHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			Credentials string `json:"credentials"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		resp := sendAdminCommand(w, client, admin.Command{
			Command:     "add_admin_auth",
			Name:        &body.Name,
			Credentials: &body.Credentials,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// RemoveAuthHandler handles DELETE /admin/auth/{name}.
func RemoveAuthHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		resp := sendAdminCommand(w, client, admin.Command{
			Command: "remove_admin_auth",
			Name:    &name,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// ListAuthHandler handles GET /admin/auth.
func ListAuthHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := sendAdminCommand(w, client, admin.Command{Command: "list_admin_auth"})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"auth_names": resp["auth_names"]})
	}
}

// GetAuthHandler handles GET /admin/auth/{name}.
func GetAuthHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		resp := sendAdminCommand(w, client, admin.Command{
			Command: "get_admin_auth",
			Name:    &name,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{
			"name":        resp["name"],
			"credentials": resp["credentials"],
		})
	}
}

// ===== /admin/backend =====

// AddBackendHandler handles POST /admin/backend.
func AddBackendHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Provider string `json:"provider"`
			URL      string `json:"url"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		resp := sendAdminCommand(w, client, admin.Command{
			Command:  "add_backend",
			Provider: &body.Provider,
			URL:      &body.URL,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// RemoveBackendHandler handles DELETE /admin/backend?provider=&url=.
func RemoveBackendHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := r.URL.Query().Get("provider")
		url := r.URL.Query().Get("url")
		resp := sendAdminCommand(w, client, admin.Command{
			Command:  "remove_backend",
			Provider: &provider,
			URL:      &url,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// ListBackendsHandler handles GET /admin/backend.
func ListBackendsHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := sendAdminCommand(w, client, admin.Command{Command: "list_backends"})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"backends": resp["backends"]})
	}
}

// GetBackendHandler handles GET /admin/backend/{provider}.
func GetBackendHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		resp := sendAdminCommand(w, client, admin.Command{
			Command:  "get_backend",
			Provider: &provider,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{
			"provider": resp["provider"],
			"urls":     resp["urls"],
		})
	}
}

// ===== /admin/model_mapping =====

// AddModelMappingHandler handles POST /admin/model_mapping.
func AddModelMappingHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ModelName string `json:"model_name"`
			Provider  string `json:"provider"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		resp := sendAdminCommand(w, client, admin.Command{
			Command:   "add_model_mapping",
			ModelName: &body.ModelName,
			Provider:  &body.Provider,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// RemoveModelMappingHandler handles DELETE /admin/model_mapping/{model_name}.
func RemoveModelMappingHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelName := chi.URLParam(r, "model_name")
		resp := sendAdminCommand(w, client, admin.Command{
			Command:   "remove_model_mapping",
			ModelName: &modelName,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"message": resp.Message()})
	}
}

// ListModelMappingsHandler handles GET /admin/model_mapping.
func ListModelMappingsHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := sendAdminCommand(w, client, admin.Command{Command: "list_model_mappings"})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{"mappings": resp["mappings"]})
	}
}

// GetModelMappingHandler handles GET /admin/model_mapping/{model_name}.
func GetModelMappingHandler(client *admin.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelName := chi.URLParam(r, "model_name")
		resp := sendAdminCommand(w, client, admin.Command{
			Command:   "get_model_mapping",
			ModelName: &modelName,
		})
		if resp == nil {
			return
		}
		writeJSON(w, map[string]interface{}{
			"model_name": resp["model_name"],
			"provider":   resp["provider"],
		})
	}
}
