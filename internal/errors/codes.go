package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidTimeout  ErrorCode = "invalid_timeout"
	ErrMissingToken    ErrorCode = "missing_auth_token"
	ErrInvalidPlatform ErrorCode = "invalid_platform"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Resource errors
	ErrResourceBusy      ErrorCode = "resource_busy"
	ErrResourceNotFound  ErrorCode = "resource_not_found"
	ErrResourceExhausted ErrorCode = "resource_exhausted"

	// Capability errors
	ErrCapabilityUnavailable ErrorCode = "capability_unavailable"
	ErrUnknownAction         ErrorCode = "unknown_action"
	ErrUnauthorized          ErrorCode = "unauthorized"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrExecutionFailed  ErrorCode = "execution_failed"
	ErrParseFailed      ErrorCode = "parse_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Server errors
	ErrServe ErrorCode = "serve_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:              "Internal error occurred",
	ErrInvalidArgument:       "Invalid argument provided",
	ErrNotImplemented:        "Operation not implemented",
	ErrUnavailable:           "Service unavailable",
	ErrInvalidConfig:         "Invalid configuration",
	ErrMissingConfig:         "Missing configuration",
	ErrBindFlags:             "Failed to bind flags",
	ErrReadConfig:            "Failed to read configuration",
	ErrInvalidTimeout:        "Invalid timeout value",
	ErrMissingToken:          "Auth token must be configured",
	ErrInvalidPlatform:       "Unsupported platform",
	ErrInvalidLogLevel:       "Invalid log level",
	ErrInitFailed:            "Initialization failed",
	ErrShutdownFailed:        "Shutdown failed",
	ErrAlreadyRunning:        "Another instance is already running",
	ErrResourceBusy:          "Resource is busy",
	ErrResourceNotFound:      "Resource not found",
	ErrResourceExhausted:     "Resource exhausted",
	ErrCapabilityUnavailable: "Capability unavailable",
	ErrUnknownAction:         "Unknown action",
	ErrUnauthorized:          "Unauthorized",
	ErrOperationFailed:       "Operation failed",
	ErrExecutionFailed:       "Command execution failed",
	ErrParseFailed:           "Failed to parse command output",
	ErrTimeout:               "Operation timed out",
	ErrInvalidOperation:      "Invalid operation",
	ErrServe:                 "HTTP server failed",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
