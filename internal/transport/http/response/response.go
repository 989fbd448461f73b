package response

// Resp is the envelope of every JSON reply. Failures carry only a message,
// plus per-field details for validation errors.
type Resp struct {
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(msg string, data any) Resp {
	return Resp{Message: msg, Data: data}
}

// Error builds a failure reply; an empty msg falls back to the status text.
func Error(status int, customMsg string) Resp {
	msg := MsgFor(status)
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Message: msg}
}

func Invalid(details map[string]string) Resp {
	return Resp{Message: "validation failed", Errors: details}
}
