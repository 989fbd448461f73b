package response

import "net/http"

// CodeMsgMap holds the default client message for each status the API emits.
var CodeMsgMap = map[int]string{
	http.StatusOK:                  "OK",
	http.StatusCreated:             "Created",
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusConflict:            "Conflict",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusGatewayTimeout:      "Gateway Timeout",
	http.StatusInternalServerError: "Internal Server Error",
}

func MsgFor(status int) string {
	if m, ok := CodeMsgMap[status]; ok {
		return m
	}
	return http.StatusText(status)
}
