package admin

import (
	"path/filepath"
	"testing"

	"github.com/ikignosis/sopy/internal/db"
	"github.com/ikignosis/sopy/internal/routetable"
)

func newTestHandler(t *testing.T) (*Handler, *db.Store, *routetable.Table) {
	t.Helper()
	database, err := db.InitDB(filepath.Join(t.TempDir(), "sopy_admin.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	store := db.NewStore(database)
	table := routetable.New()
	return NewHandler(store, table), store, table
}

func str(s string) *string { return &s }
func id(n uint) *uint      { return &n }

func TestDispatchUnknownCommand(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := h.Dispatch(Command{Command: "frobnicate"})
	if resp.IsSuccess() {
		t.Fatalf("unknown command must fail")
	}
	if resp.Message() != "Unknown command: frobnicate" {
		t.Errorf("unexpected message: %q", resp.Message())
	}
}

func TestDispatchMissingFields(t *testing.T) {
	h, _, _ := newTestHandler(t)

	cases := []struct {
		cmd     Command
		message string
	}{
		{Command{Command: "add_admin_auth"}, "Missing required field: 'name'"},
		{Command{Command: "add_admin_auth", Name: str("x")}, "Missing required field: 'credentials'"},
		{Command{Command: "get_admin_auth"}, "Missing required field: 'name'"},
		{Command{Command: "add_backend"}, "Missing required field: 'provider'"},
		{Command{Command: "add_backend", Provider: str("p")}, "Missing required field: 'url'"},
		{Command{Command: "add_model_mapping"}, "Missing required field: 'model_name'"},
		{Command{Command: "add_model_mapping", ModelName: str("m")}, "Missing required field: 'provider'"},
		{Command{Command: "get_user_api_key"}, "Missing required field: 'id'"},
		{Command{Command: "add_user_api_key"}, "API key is required"},
	}
	for _, tc := range cases {
		resp := h.Dispatch(tc.cmd)
		if resp.IsSuccess() {
			t.Errorf("%s: expected failure", tc.cmd.Command)
			continue
		}
		if resp.Message() != tc.message {
			t.Errorf("%s: expected %q, got %q", tc.cmd.Command, tc.message, resp.Message())
		}
	}
}

func TestAdminAuthLifecycle(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := h.Dispatch(Command{Command: "add_admin_auth", Name: str("acme"), Credentials: str("secret")})
	if !resp.IsSuccess() {
		t.Fatalf("add_admin_auth failed: %s", resp.Message())
	}

	resp = h.Dispatch(Command{Command: "get_admin_auth", Name: str("acme")})
	if !resp.IsSuccess() || resp["credentials"] != "secret" {
		t.Fatalf("get_admin_auth: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "list_admin_auth"})
	names, ok := resp["auth_names"].([]string)
	if !ok || len(names) != 1 || names[0] != "acme" {
		t.Fatalf("list_admin_auth: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "remove_admin_auth", Name: str("acme")})
	if !resp.IsSuccess() {
		t.Fatalf("remove_admin_auth failed: %s", resp.Message())
	}

	resp = h.Dispatch(Command{Command: "remove_admin_auth", Name: str("acme")})
	if resp.IsSuccess() || resp.Message() != "No credentials found for 'acme'" {
		t.Errorf("second remove: %v", resp)
	}
}

func TestUserAPIKeyCommands(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := h.Dispatch(Command{Command: "add_user_api_key", APIKey: str("sk-abc"), Description: "test key"})
	if !resp.IsSuccess() {
		t.Fatalf("add_user_api_key failed: %s", resp.Message())
	}

	resp = h.Dispatch(Command{Command: "add_user_api_key", APIKey: str("sk-abc")})
	if resp.IsSuccess() || resp.Message() != "API key already exists" {
		t.Fatalf("duplicate add: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "list_user_api_keys"})
	keys, ok := resp["user_api_keys"].([]map[string]interface{})
	if !ok || len(keys) != 1 {
		t.Fatalf("list_user_api_keys: %v", resp)
	}
	keyID := keys[0]["id"].(uint)

	resp = h.Dispatch(Command{Command: "deactivate_user_api_key", ID: id(keyID)})
	if !resp.IsSuccess() || resp.Message() != "User API key deactivated" {
		t.Fatalf("deactivate: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "get_user_api_key", ID: id(keyID)})
	key := resp["user_api_key"].(map[string]interface{})
	if key["is_active"].(bool) {
		t.Errorf("expected key inactive after deactivate")
	}

	resp = h.Dispatch(Command{Command: "activate_user_api_key", ID: id(9999)})
	if resp.IsSuccess() || resp.Message() != "No user API key found with ID 9999" {
		t.Errorf("activate absent id: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "remove_user_api_key", APIKey: str("sk-abc")})
	if !resp.IsSuccess() {
		t.Fatalf("remove_user_api_key failed: %s", resp.Message())
	}
	resp = h.Dispatch(Command{Command: "remove_user_api_key", APIKey: str("sk-abc")})
	if resp.IsSuccess() || resp.Message() != "No user API key found" {
		t.Errorf("second remove: %v", resp)
	}
}

func TestMutatingCommandsRebuildBeforeResponse(t *testing.T) {
	h, _, table := newTestHandler(t)

	resp := h.Dispatch(Command{Command: "add_backend", Provider: str("acme"), URL: str("http://h1:9000")})
	if !resp.IsSuccess() {
		t.Fatalf("add_backend failed: %s", resp.Message())
	}
	resp = h.Dispatch(Command{Command: "add_model_mapping", ModelName: str("demo-model"), Provider: str("acme")})
	if !resp.IsSuccess() {
		t.Fatalf("add_model_mapping failed: %s", resp.Message())
	}

	// By the time the success response exists, the table must route the model.
	url, ok := table.Resolve("demo-model")
	if !ok || url != "http://h1:9000" {
		t.Fatalf("route table not rebuilt before response: %v %v", url, ok)
	}

	resp = h.Dispatch(Command{Command: "remove_model_mapping", ModelName: str("demo-model")})
	if !resp.IsSuccess() {
		t.Fatalf("remove_model_mapping failed: %s", resp.Message())
	}
	if _, ok := table.Resolve("demo-model"); ok {
		t.Errorf("route table still routes removed mapping")
	}
}

func TestNonMutatingCommandsDoNotRebuild(t *testing.T) {
	h, store, table := newTestHandler(t)

	h.Dispatch(Command{Command: "add_backend", Provider: str("acme"), URL: str("http://h1:9000")})
	h.Dispatch(Command{Command: "add_model_mapping", ModelName: str("demo-model"), Provider: str("acme")})

	// Write to the store behind the dispatcher's back, then run reads only.
	store.PutModelMapping("sneaky", "acme")
	h.Dispatch(Command{Command: "list_backends"})
	h.Dispatch(Command{Command: "list_model_mappings"})
	h.Dispatch(Command{Command: "get_backend", Provider: str("acme")})

	if _, ok := table.Resolve("sneaky"); ok {
		t.Errorf("read-only commands must not trigger a rebuild")
	}
}

func TestRemoveBackendAbsentDoesNotRebuild(t *testing.T) {
	h, _, _ := newTestHandler(t)

	resp := h.Dispatch(Command{Command: "remove_backend", Provider: str("acme"), URL: str("http://h1:9000")})
	if resp.IsSuccess() || resp.Message() != "No backend URL found for 'acme'" {
		t.Errorf("remove absent backend: %v", resp)
	}
}

func TestBackendAndMappingQueries(t *testing.T) {
	h, _, _ := newTestHandler(t)

	h.Dispatch(Command{Command: "add_backend", Provider: str("acme"), URL: str("http://h1:9000")})
	h.Dispatch(Command{Command: "add_backend", Provider: str("acme"), URL: str("http://h2:9000")})
	h.Dispatch(Command{Command: "add_model_mapping", ModelName: str("demo-model"), Provider: str("acme")})

	resp := h.Dispatch(Command{Command: "get_backend", Provider: str("acme")})
	urls, ok := resp["urls"].([]string)
	if !ok || len(urls) != 2 || urls[0] != "http://h1:9000" {
		t.Fatalf("get_backend: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "get_backend", Provider: str("ghost")})
	if resp.IsSuccess() || resp.Message() != "No backends found for 'ghost'" {
		t.Errorf("get absent backend: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "list_backends"})
	backends, ok := resp["backends"].(map[string][]string)
	if !ok || len(backends["acme"]) != 2 {
		t.Fatalf("list_backends: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "get_model_mapping", ModelName: str("demo-model")})
	if !resp.IsSuccess() || resp["provider"] != "acme" {
		t.Fatalf("get_model_mapping: %v", resp)
	}

	resp = h.Dispatch(Command{Command: "get_model_mapping", ModelName: str("ghost")})
	if resp.IsSuccess() || resp.Message() != "No mapping found for model 'ghost'" {
		t.Errorf("get absent mapping: %v", resp)
	}
}
