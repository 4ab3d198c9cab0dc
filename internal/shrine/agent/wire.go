package agent

import (
	"encoding/json"
	"net/http"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// PutPasswordRequest is the body of PUT /passwords.
type PutPasswordRequest struct {
	UUID     string `json:"uuid"`
	Password string `json:"password"`
}

// PutKeyRequest is the body of PUT /keys/{path}/{key}.
type PutKeyRequest struct {
	Secret string `json:"secret"`
	Mode   string `json:"mode"`
}

// SecretResponse is the body of a successful GET /keys/{path}/{key}.
type SecretResponse struct {
	Value     string  `json:"value"`
	Mode      string  `json:"mode"`
	CreatedBy string  `json:"created_by"`
	CreatedAt string  `json:"created_at"`
	UpdatedBy *string `json:"updated_by,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

func secretToResponse(s *domain.Secret) SecretResponse {
	resp := SecretResponse{
		Value:     s.Value.Base64(),
		Mode:      s.Mode.String(),
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt.Format(timeLayout),
	}
	if s.UpdatedBy != nil {
		resp.UpdatedBy = s.UpdatedBy
	}
	if s.UpdatedAt != nil {
		formatted := s.UpdatedAt.Format(timeLayout)
		resp.UpdatedAt = &formatted
	}
	return resp
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// agentError is the agent's tagged-enum error body: Kind selects which of
// the named fields are populated (File and Key for KeyNotFound, one field
// for every other kind).
type agentError struct {
	Kind   string
	Path   string
	UUID   string
	File   string
	Key    string
	Reason string
}

// MarshalJSON renders the error as a single-key object, e.g.
// {"Unauthorized": "<uuid>"} or {"KeyNotFound": {"file": "...", "key":
// "..."}}, matching the agent's tagged-enum wire shape.
func (e agentError) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case "FileNotFound", "Read", "Write", "Io":
		return json.Marshal(map[string]string{e.Kind: e.Path})
	case "Unauthorized", "Forbidden":
		return json.Marshal(map[string]string{e.Kind: e.UUID})
	case "KeyNotFound":
		return json.Marshal(map[string]any{
			e.Kind: map[string]string{"file": e.File, "key": e.Key},
		})
	case "Regex":
		return json.Marshal(map[string]string{e.Kind: e.Reason})
	default:
		return json.Marshal(map[string]string{"Agent": e.Reason})
	}
}

func statusFor(kind string) int {
	switch kind {
	case "FileNotFound", "KeyNotFound":
		return http.StatusNotFound
	case "Read", "Write", "Io":
		return http.StatusInternalServerError
	case "Unauthorized":
		return http.StatusUnauthorized
	case "Forbidden":
		return http.StatusForbidden
	case "Regex":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
