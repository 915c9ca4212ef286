package template

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // fixed location must resolve on hosts without zoneinfo

	"github.com/felixgeelhaar/notify-go/domain/event"
)

// Placeholder fills any slot whose value is missing or blank.
const Placeholder = "-"

// LocationName is the fixed location dates and times are rendered in.
const LocationName = "Australia/Sydney"

const (
	dateLayout  = "02/01/2006"
	clockLayout = "3:04 PM"
	isoDate     = "2006-01-02"
)

var location = func() *time.Location {
	loc, err := time.LoadLocation(LocationName)
	if err != nil {
		return time.UTC
	}
	return loc
}()

type slot func(event.Attributes) any

func field(name string) slot {
	return func(a event.Attributes) any { return a.Get(name) }
}

func format(name string, fn func(any) string) slot {
	return func(a event.Attributes) any { return fn(a.Get(name)) }
}

var builders = map[Kind][]slot{
	KindStageCompleted: {
		field(event.AttrProject),
		field(event.AttrClient),
		field(event.AttrLot),
		field(event.AttrStageName),
		field(event.AttrStatus),
	},
	KindMaterialsToOrderUpdate: {
		field(event.AttrStatus),
		field(event.AttrProject),
		field(event.AttrLot),
		field(event.AttrClient),
	},
	KindSupplierStatementAdded: {
		field(event.AttrSupplier),
		field(event.AttrPeriod),
		format(event.AttrAmount, Currency),
		format(event.AttrDueDate, Date),
	},
	KindStockTransactionCreated: {
		field(event.AttrItem),
		field(event.AttrTransactionType),
		format(event.AttrQuantity, Quantity),
		field(event.AttrDimensions),
	},
	KindInstallerAssigned: {
		field(event.AttrInstaller),
		field(event.AttrProject),
		field(event.AttrLot),
		field(event.AttrLink),
	},
	KindMeetingConfirmation: {
		format(event.AttrTitle, str),
		format(event.AttrProjects, func(v any) string { return strings.Join(texts(v), ", ") }),
		field(event.AttrLotClient),
		format(event.AttrDate, Date),
		format(event.AttrTime, Clock),
		format(event.AttrParticipants, func(v any) string {
			if p := texts(v); len(p) > 0 {
				return p[0]
			}
			return ""
		}),
		format(event.AttrParticipants, func(v any) string {
			if p := texts(v); len(p) > 1 {
				return strings.Join(p[1:], ", ")
			}
			return ""
		}),
		field(event.AttrNotes),
	},
}

// Build renders the positional parameters of kind from event attributes.
// The result always has exactly kind.Arity() non-empty entries; blank or
// missing values become Placeholder. Unknown kinds yield nil.
func Build(kind Kind, attrs event.Attributes) []string {
	slots, ok := builders[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = orPlaceholder(str(s(attrs)))
	}
	return out
}

// Currency renders numeric amounts as dollars with two decimals.
// Non-numeric text passes through trimmed.
func Currency(v any) string {
	if f, ok := number(v); ok {
		return fmt.Sprintf("$%.2f", f)
	}
	return strings.TrimSpace(str(v))
}

// Date renders a time.Time, an ISO date or an RFC 3339 timestamp as
// DD/MM/YYYY in the fixed location. Other text passes through trimmed.
func Date(v any) string {
	if t, ok := instant(v); ok {
		return t.In(location).Format(dateLayout)
	}
	s := strings.TrimSpace(str(v))
	if d, err := time.ParseInLocation(isoDate, s, location); err == nil {
		return d.Format(dateLayout)
	}
	return s
}

// Clock renders a time.Time or RFC 3339 timestamp as a 12-hour clock
// time in the fixed location. Other text passes through trimmed.
func Clock(v any) string {
	if t, ok := instant(v); ok {
		return t.In(location).Format(clockLayout)
	}
	return strings.TrimSpace(str(v))
}

// Quantity renders numbers without trailing zeros.
func Quantity(v any) string {
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.TrimSpace(str(v))
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func instant(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return *x, true
	case string:
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(x))
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// str renders a scalar as text. Nil becomes the empty string.
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.In(location).Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return str(*x)
	case []string:
		return strings.Join(x, ", ")
	case []any:
		return strings.Join(texts(x), ", ")
	default:
		if nilPointer(x) {
			return ""
		}
		if sv, ok := x.(fmt.Stringer); ok {
			return sv.String()
		}
		return fmt.Sprint(x)
	}
}

// nilPointer reports whether v holds a typed nil pointer.
func nilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// texts flattens a list-like value into its non-blank entries.
func texts(v any) []string {
	var raw []string
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		raw = x
	case []any:
		raw = make([]string, 0, len(x))
		for _, item := range x {
			raw = append(raw, str(item))
		}
	default:
		raw = []string{str(x)}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
