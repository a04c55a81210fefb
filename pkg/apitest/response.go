package apitest

import (
	"encoding/json"
	"net/http"
)

// Violation mirrors one entry of a validation error body.
type Violation struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func missingField(loc ...any) Violation {
	return Violation{Loc: loc, Msg: "field required", Type: "value_error.missing"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeViolations(w http.ResponseWriter, vs ...Violation) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": vs})
}
