package response

// 业务码直接沿用 HTTP 语义，成功为 0
const (
	CodeOK            = 0
	CodeBadRequest    = 400
	CodeUnauthorized  = 401
	CodeForbidden     = 403
	CodeNotFound      = 404
	CodeConflict      = 409
	CodeTooLarge      = 413
	CodeUnprocessable = 422
	CodeTooMany       = 429
	CodeServerError   = 500
	CodeUnavailable   = 503
	CodeTimeout       = 504
)

var codeMsg = map[int]string{
	CodeOK:            "OK",
	CodeBadRequest:    "Bad Request",
	CodeUnauthorized:  "Unauthorized",
	CodeForbidden:     "Forbidden",
	CodeNotFound:      "Not Found",
	CodeConflict:      "Conflict",
	CodeTooLarge:      "Request Entity Too Large",
	CodeUnprocessable: "Unprocessable Entity",
	CodeTooMany:       "Too Many Requests",
	CodeServerError:   "Internal Server Error",
	CodeUnavailable:   "Service Unavailable",
	CodeTimeout:       "Gateway Timeout",
}

// Message is the default text for code.
func Message(code int) string {
	if m, ok := codeMsg[code]; ok {
		return m
	}
	return codeMsg[CodeServerError]
}

// Status is the HTTP status that carries code.
func Status(code int) int {
	if code == CodeOK {
		return 200
	}
	if code >= 400 && code < 600 {
		return code
	}
	return 500
}
