package response

// Response is the envelope for every JSON API reply.
type Response struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

const (
	statusOk    = "OK"
	statusError = "Error"
)

func Ok(data interface{}) Response {
	return Response{
		Status: statusOk,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: statusError,
		Error:  msg,
	}
}
