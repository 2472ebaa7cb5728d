package admin

// Command is the envelope exchanged over the admin channel: one JSON object
// per connection, dispatched on the "command" field. Optional fields are
// pointers so the dispatcher can tell "absent" from "empty".
type Command struct {
	Command string `json:"command"`

	// add/remove/get_admin_auth
	Name        *string `json:"name,omitempty"`
	Credentials *string `json:"credentials,omitempty"`

	// user API key commands
	APIKey      *string `json:"api_key,omitempty"`
	Description string  `json:"description,omitempty"`
	ID          *uint   `json:"id,omitempty"`

	// backend commands
	Provider *string `json:"provider,omitempty"`
	URL      *string `json:"url,omitempty"`

	// model mapping commands
	ModelName *string `json:"model_name,omitempty"`
}

// Response is a JSON envelope: {"status":"success",...} or
// {"status":"error","message":...}. Kept as a map because each command
// returns its own payload fields.
type Response map[string]interface{}

func success(message string) Response {
	return Response{"status": "success", "message": message}
}

func errorResp(message string) Response {
	return Response{"status": "error", "message": message}
}

// IsSuccess reports whether the envelope carries status "success".
func (r Response) IsSuccess() bool {
	return r["status"] == "success"
}

// Message returns the "message" field, if any.
func (r Response) Message() string {
	msg, _ := r["message"].(string)
	return msg
}
