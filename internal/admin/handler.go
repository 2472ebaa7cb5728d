package admin

import (
	"errors"
	"fmt"
	"log"

	"github.com/ikignosis/sopy/internal/db"
	"github.com/ikignosis/sopy/internal/routetable"
)

// Handler dispatches admin commands against the config store. Every mutating
// command that changes routing state rebuilds the route table before its
// response is produced, so a success response guarantees the table reflects
// the mutation.
type Handler struct {
	store *db.Store
	table *routetable.Table
}

// NewHandler builds a dispatcher over the given store and route table.
func NewHandler(store *db.Store, table *routetable.Table) *Handler {
	return &Handler{store: store, table: table}
}

// Dispatch processes one command envelope and returns the response envelope.
// Unknown commands and store failures are reported in the envelope; Dispatch
// never panics the caller's connection.
func (h *Handler) Dispatch(cmd Command) Response {
	switch cmd.Command {
	// Admin authentication commands (for backend providers)
	case "add_admin_auth":
		return h.addAdminAuth(cmd)
	case "remove_admin_auth":
		return h.removeAdminAuth(cmd)
	case "list_admin_auth":
		return h.listAdminAuth()
	case "get_admin_auth":
		return h.getAdminAuth(cmd)

	// User API key commands (for client-facing API keys)
	case "add_user_api_key":
		return h.addUserAPIKey(cmd)
	case "remove_user_api_key":
		return h.removeUserAPIKey(cmd)
	case "list_user_api_keys":
		return h.listUserAPIKeys()
	case "get_user_api_key":
		return h.getUserAPIKey(cmd)
	case "activate_user_api_key":
		return h.setUserAPIKeyActive(cmd, true)
	case "deactivate_user_api_key":
		return h.setUserAPIKeyActive(cmd, false)

	// Backend commands
	case "add_backend":
		return h.addBackend(cmd)
	case "remove_backend":
		return h.removeBackend(cmd)
	case "list_backends":
		return h.listBackends()
	case "get_backend":
		return h.getBackend(cmd)

	// Model mapping commands
	case "add_model_mapping":
		return h.addModelMapping(cmd)
	case "remove_model_mapping":
		return h.removeModelMapping(cmd)
	case "list_model_mappings":
		return h.listModelMappings()
	case "get_model_mapping":
		return h.getModelMapping(cmd)

	default:
		return errorResp(fmt.Sprintf("Unknown command: %s", cmd.Command))
	}
}

func missingField(field string) Response {
	return errorResp(fmt.Sprintf("Missing required field: '%s'", field))
}

func storeError(err error) Response {
	return errorResp(fmt.Sprintf("Database error: %v", err))
}

// rebuild refreshes the route table after a successful mutation. A rebuild
// failure is reported to the admin caller; the store write has already
// committed and the next successful rebuild will pick it up.
func (h *Handler) rebuild() error {
	if err := h.table.Rebuild(h.store); err != nil {
		log.Printf("⚠️ Route table rebuild failed: %v", err)
		return err
	}
	return nil
}

// ===== Admin credentials =====

func (h *Handler) addAdminAuth(cmd Command) Response {
	if cmd.Name == nil {
		return missingField("name")
	}
	if cmd.Credentials == nil {
		return missingField("credentials")
	}
	if err := h.store.PutCredential(*cmd.Name, *cmd.Credentials); err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Authentication credentials for '%s' added successfully", *cmd.Name))
}

func (h *Handler) removeAdminAuth(cmd Command) Response {
	if cmd.Name == nil {
		return missingField("name")
	}
	err := h.store.DeleteCredential(*cmd.Name)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No credentials found for '%s'", *cmd.Name))
	}
	if err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Authentication credentials for '%s' removed", *cmd.Name))
}

func (h *Handler) listAdminAuth() Response {
	names, err := h.store.ListCredentialNames()
	if err != nil {
		return storeError(err)
	}
	if names == nil {
		names = []string{}
	}
	return Response{"status": "success", "auth_names": names}
}

func (h *Handler) getAdminAuth(cmd Command) Response {
	if cmd.Name == nil {
		return missingField("name")
	}
	credentials, err := h.store.GetCredential(*cmd.Name)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No credentials found for '%s'", *cmd.Name))
	}
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "name": *cmd.Name, "credentials": credentials}
}

// ===== User API keys =====

func (h *Handler) addUserAPIKey(cmd Command) Response {
	if cmd.APIKey == nil || *cmd.APIKey == "" {
		return errorResp("API key is required")
	}
	err := h.store.CreateUserAPIKey(*cmd.APIKey, cmd.Description)
	if errors.Is(err, db.ErrDuplicateKey) {
		return errorResp("API key already exists")
	}
	if err != nil {
		return storeError(err)
	}
	return success("User API key added successfully")
}

func (h *Handler) removeUserAPIKey(cmd Command) Response {
	if cmd.APIKey == nil {
		return missingField("api_key")
	}
	err := h.store.DeleteUserAPIKey(*cmd.APIKey)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp("No user API key found")
	}
	if err != nil {
		return storeError(err)
	}
	return success("User API key removed")
}

func (h *Handler) listUserAPIKeys() Response {
	keys, err := h.store.ListUserAPIKeys()
	if err != nil {
		return storeError(err)
	}
	list := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		list = append(list, map[string]interface{}{
			"id":          k.ID,
			"api_key":     k.APIKey,
			"description": k.Description,
			"created_at":  k.CreatedAt,
			"is_active":   k.IsActive,
		})
	}
	return Response{"status": "success", "user_api_keys": list}
}

func (h *Handler) getUserAPIKey(cmd Command) Response {
	if cmd.ID == nil {
		return missingField("id")
	}
	key, err := h.store.GetUserAPIKey(*cmd.ID)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No user API key found with ID %d", *cmd.ID))
	}
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "user_api_key": map[string]interface{}{
		"id":          key.ID,
		"api_key":     key.APIKey,
		"description": key.Description,
		"created_at":  key.CreatedAt,
		"is_active":   key.IsActive,
	}}
}

func (h *Handler) setUserAPIKeyActive(cmd Command, active bool) Response {
	if cmd.ID == nil {
		return missingField("id")
	}
	err := h.store.SetUserAPIKeyActive(*cmd.ID, active)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No user API key found with ID %d", *cmd.ID))
	}
	if err != nil {
		return storeError(err)
	}
	if active {
		return success("User API key activated")
	}
	return success("User API key deactivated")
}

// ===== Backends =====

func (h *Handler) addBackend(cmd Command) Response {
	if cmd.Provider == nil {
		return missingField("provider")
	}
	if cmd.URL == nil {
		return missingField("url")
	}
	if _, err := h.store.AddBackend(*cmd.Provider, *cmd.URL); err != nil {
		return storeError(err)
	}
	if err := h.rebuild(); err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Backend URL for '%s' added successfully", *cmd.Provider))
}

func (h *Handler) removeBackend(cmd Command) Response {
	if cmd.Provider == nil {
		return missingField("provider")
	}
	if cmd.URL == nil {
		return missingField("url")
	}
	err := h.store.RemoveBackend(*cmd.Provider, *cmd.URL)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No backend URL found for '%s'", *cmd.Provider))
	}
	if err != nil {
		return storeError(err)
	}
	if err := h.rebuild(); err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Backend URL for '%s' removed", *cmd.Provider))
}

func (h *Handler) listBackends() Response {
	backends, err := h.store.ListBackends()
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "backends": backends}
}

func (h *Handler) getBackend(cmd Command) Response {
	if cmd.Provider == nil {
		return missingField("provider")
	}
	urls, err := h.store.GetBackendURLs(*cmd.Provider)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No backends found for '%s'", *cmd.Provider))
	}
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "provider": *cmd.Provider, "urls": urls}
}

// ===== Model mappings =====

func (h *Handler) addModelMapping(cmd Command) Response {
	if cmd.ModelName == nil {
		return missingField("model_name")
	}
	if cmd.Provider == nil {
		return missingField("provider")
	}
	if err := h.store.PutModelMapping(*cmd.ModelName, *cmd.Provider); err != nil {
		return storeError(err)
	}
	if err := h.rebuild(); err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Model '%s' mapped to provider '%s' successfully", *cmd.ModelName, *cmd.Provider))
}

func (h *Handler) removeModelMapping(cmd Command) Response {
	if cmd.ModelName == nil {
		return missingField("model_name")
	}
	err := h.store.DeleteModelMapping(*cmd.ModelName)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No model mapping found for '%s'", *cmd.ModelName))
	}
	if err != nil {
		return storeError(err)
	}
	if err := h.rebuild(); err != nil {
		return storeError(err)
	}
	return success(fmt.Sprintf("Model mapping for '%s' removed", *cmd.ModelName))
}

func (h *Handler) listModelMappings() Response {
	mappings, err := h.store.ListModelMappings()
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "mappings": mappings}
}

func (h *Handler) getModelMapping(cmd Command) Response {
	if cmd.ModelName == nil {
		return missingField("model_name")
	}
	provider, err := h.store.GetModelMapping(*cmd.ModelName)
	if errors.Is(err, db.ErrNotFound) {
		return errorResp(fmt.Sprintf("No mapping found for model '%s'", *cmd.ModelName))
	}
	if err != nil {
		return storeError(err)
	}
	return Response{"status": "success", "model_name": *cmd.ModelName, "provider": provider}
}
