package utils

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/yt-summary/errors"
	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	RespondWithJSON(w, statusCode, errorBody{Error: message})
}

// RespondWithError writes err as JSON. AppErrors keep their status and
// user-facing message; anything else becomes a 500 with a generic message.
func RespondWithError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.Internal("RespondWithError", err, "服务器内部错误")
	}
	RespondWithJSON(w, appErr.Code(), errorBody{
		Error: appErr.Message,
		Hint:  appErr.Hint,
		Kind:  appErr.Kind.String(),
	})
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}
