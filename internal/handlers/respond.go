package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError emits the JSON error shape every endpoint uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// validateRequest runs struct validation and, on failure, returns a message
// enumerating the offending fields.
func validateRequest(req interface{}) (string, bool) {
	err := validate.Struct(req)
	if err == nil {
		return "", true
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid request", false
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "Missing or invalid fields: " + strings.Join(fields, ", "), false
}
