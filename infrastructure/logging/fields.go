package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/domain/template"
	"github.com/felixgeelhaar/notify-go/infrastructure/phone"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for dispatch logging.

// DispatchID adds the dispatch correlation ID.
func DispatchID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("dispatch_id", id)
	}
}

// Template adds a template kind field.
func Template(k template.Kind) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("template", string(k))
	}
}

// Gate adds the gating flag field.
func Gate(f preference.Flag) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("gate", string(f))
	}
}

// UserID adds a user ID field.
func UserID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("user_id", id)
	}
}

// Address adds a channel address with all but its last four digits masked.
func Address(addr string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("address", phone.Mask(addr))
	}
}

// Attempted adds the attempted send count.
func Attempted(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("attempted", n)
	}
}

// Sent adds the successful send count.
func Sent(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("sent", n)
	}
}

// Failed adds the failed send count.
func Failed(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("failed", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an integer field with custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
