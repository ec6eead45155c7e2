package common

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HttpResponse is the envelope every api endpoint responds with
type HttpResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func GetNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SendHttpFailResponse(w, r, http.StatusNotFound, "not found", fmt.Errorf("endpoint[%s] not found", r.URL.Path))
	}
}

// SendHttpFailResponse writes the failure envelope; when a cause is
// provided its message travels in the data field so clients can show
// something more specific than the summary
func SendHttpFailResponse(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	message string,
	cause ...error,
) {
	log := r.Context().Value(HttpContextLogger).(HttpRequestLogger)
	log(LogLevelError, message)
	response := HttpResponse{
		Data:    "generic_error",
		Message: message,
		Success: false,
	}
	if len(cause) > 0 {
		response.Data = cause[0].Error()
	}
	writeHttpResponse(w, statusCode, response)
}

func SendHttpSuccessResponse(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	message string,
	data ...any,
) {
	response := HttpResponse{
		Message: message,
		Success: true,
	}
	if len(data) > 0 {
		response.Data = data[0]
	}
	writeHttpResponse(w, statusCode, response)
}

func writeHttpResponse(w http.ResponseWriter, statusCode int, response HttpResponse) {
	body, _ := json.Marshal(response)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}
