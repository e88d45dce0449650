package http

import (
	"net/http"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps every error kind to a response status.
func statusFor(kind scenario.Kind) int {
	switch kind {
	case scenario.KindInvalidRequest:
		return http.StatusBadRequest
	case scenario.KindNotFound:
		return http.StatusNotFound
	case scenario.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case scenario.KindConflict:
		return http.StatusConflict
	case scenario.KindMalformedDocument:
		return http.StatusUnprocessableEntity
	case scenario.KindUnauthorized, scenario.KindUpstreamUnavailable:
		return http.StatusBadGateway
	case scenario.KindConfiguration, scenario.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := scenario.KindOf(err)
	writeErrorCode(w, statusFor(kind), kind.String(), err.Error())
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, errorResponse{Error: errorBody{Code: code, Message: message}})
}
