package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ikignosis/sopy/internal/logging"
	"github.com/ikignosis/sopy/internal/routetable"
	"github.com/ikignosis/sopy/internal/upstream"
	"github.com/ikignosis/sopy/internal/util"
)

// modelsCreatedEpoch is the fixed "created" timestamp reported by /v1/models.
const modelsCreatedEpoch = 1677610602

// modelsOwnedBy is the fixed "owned_by" value reported by /v1/models.
const modelsOwnedBy = "sopy"

// Defaults applied to generation parameters the caller omits.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 150
)

// ChatCompletionRequest is the accepted subset of the OpenAI chat-completion
// payload. Pointer fields distinguish "omitted" from zero so defaults apply
// only when the caller left them out.
type ChatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []map[string]string `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
	Stream      *bool               `json:"stream,omitempty"`
}

// backendRequest is the normalized payload forwarded to the resolved backend.
type backendRequest struct {
	Model       string              `json:"model"`
	Messages    []map[string]string `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

// writeDetail writes a structured error body in the gateway's error shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// ChatCompletionsHandler handles POST /v1/chat/completions: resolve the model
// through the route table, forward the payload to the backend's
// /chat/completions, relay the backend's JSON verbatim.
func ChatCompletionsHandler(table *routetable.Table, client *upstream.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		ctx := logging.WithRequestID(r.Context(), requestID)

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("⚠️ [%s] Chat completion parse error: %v", requestID, err)
			writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}

		backendURL, ok := table.Resolve(req.Model)
		if !ok {
			writeDetail(w, http.StatusNotFound, fmt.Sprintf("Model '%s' not found", req.Model))
			return
		}
		log.Printf("🗺️ [%s] Routing model %s -> %s", requestID, req.Model, backendURL)

		payload := backendRequest{
			Model:       req.Model,
			Messages:    req.Messages,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		}
		if req.Temperature != nil {
			payload.Temperature = *req.Temperature
		}
		if req.MaxTokens != nil {
			payload.MaxTokens = *req.MaxTokens
		}
		if req.Stream != nil {
			payload.Stream = *req.Stream
		}

		body, err := json.Marshal(payload)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Error forwarding request to backend: "+err.Error())
			return
		}

		if IsVerbose() {
			log.Printf("📤 [VERBOSE] [%s] Forwarding to %s:\n%s", requestID, backendURL, util.TruncateBytes(body))
		}

		status, respBody, err := client.ForwardChatCompletion(ctx, backendURL, body, r.Header.Get("Authorization"))
		if err != nil {
			switch err.(type) {
			case *upstream.BadResponseError:
				log.Printf("⚠️ [%s] Backend returned non-JSON response: %v", requestID, err)
				writeDetail(w, http.StatusInternalServerError, "Error parsing backend response: "+err.Error())
			default:
				log.Printf("⚠️ [%s] Backend unreachable: %v", requestID, err)
				writeDetail(w, http.StatusInternalServerError, "Error forwarding request to backend: "+err.Error())
			}
			return
		}

		if IsVerbose() {
			log.Printf("📥 [VERBOSE] [%s] Backend response (status %d):\n%s", requestID, status, util.TruncateBytes(respBody))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(respBody)
	}
}

// ModelsListHandler handles GET /v1/models with the route table's current
// model catalog.
func ModelsListHandler(table *routetable.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := table.Models()
		data := make([]map[string]interface{}, 0, len(models))
		for _, name := range models {
			data = append(data, map[string]interface{}{
				"id":       name,
				"object":   "model",
				"created":  modelsCreatedEpoch,
				"owned_by": modelsOwnedBy,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
		})
	}
}

// RootHandler handles GET /.
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Hello World"})
	}
}

// HelloHandler handles GET /hello/{name}.
func HelloHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Hello " + name})
	}
}
