/*
Package response uniform JSON envelope for the HTTP API.

HTTP status mapping lives here and nowhere else. Internal errors are logged
with their chain and returned as "internal server error"; every response
carries the request id.

	success: { success: true, data: {...}, message: "...", code: 200, request_id: "..." }
	failure: { success: false, error: "ERROR_CODE", reason: "DOMAIN_REASON", message: "...", code: 4xx/5xx, request_id: "..." }
*/
package response

// RequestIDKey gin context key for the request id
const RequestIDKey = "request_id"

// Response common envelope
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// ListResponse envelope for collections; Count is len(Data)
type ListResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Count     int         `json:"count"`
	Message   string      `json:"message"`
	Code      int         `json:"code"`
	RequestID string      `json:"request_id,omitempty"`
}
