package errors

import "net/http"

// ApiError is the stable error shape the transport layer returns to callers.
// Detail (stack traces, key material, plaintext) is never included; the
// message comes from the code's Info, not from the wrapped error chain.
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ApiResponse is the stable failure envelope for the transport layer.
type ApiResponse struct {
	Success bool      `json:"success"`
	Error   *ApiError `json:"error,omitempty"`
}

// StatusCode maps a domain error to the HTTP status the transport layer
// should return.  Unrecognized errors map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Err
	if !As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case InvalidParameter, InvalidPublicId, InvalidFieldMask, EmptyFieldMask, InvalidTimeStamp, PasswordTooShort:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case RecordNotFound:
		return http.StatusNotFound
	case VersionMismatch, NotUnique:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ToApiResponse converts a domain error to the masked, stable response shape.
// The wrapped error chain is intentionally dropped: only the code's canonical
// message crosses the boundary.
func ToApiResponse(err error) ApiResponse {
	if err == nil {
		return ApiResponse{Success: true}
	}
	code := Unknown
	var e *Err
	if As(err, &e) {
		code = e.Code
	}
	return ApiResponse{
		Success: false,
		Error: &ApiError{
			Code:    code.Info().Kind.String(),
			Message: code.Info().Message,
		},
	}
}
