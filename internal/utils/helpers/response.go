package helpers

import (
	"encoding/json"
	"net/http"

	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Error("Failed to encode JSON response", zap.Int("status", status), zap.Error(err))
	}
}

func Error(w http.ResponseWriter, status int, kind apperr.Kind, msg string) {
	JSON(w, status, ErrorResponse{Error: true, Message: msg, Code: string(kind)})
}

// AppError writes err using its kind. Internal causes never reach the body.
func AppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	Error(w, apperr.HTTPStatus(kind), kind, apperr.PublicMessage(err))
}
