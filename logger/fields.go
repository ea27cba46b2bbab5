package logger

import "time"

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldService   = "service"
	FieldAction    = "action"
	FieldHost      = "host"
	FieldRequestID = "request_id"
	FieldAttempt   = "attempt"
	FieldStatus    = "status"
	FieldKind      = "kind"
	FieldCode      = "code"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldBackoff   = "backoff_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("action", "DeleteDBInstance", "status", 200))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(action string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldAction: action,
		FieldError:  err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(action string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldAction:   action,
		FieldDuration: d.Milliseconds(),
	}
}
