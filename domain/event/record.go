package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Record is the loosely-typed form of an event as emitted by request
// handlers: a tag, an optional explicit template name and open fields.
type Record struct {
	// Kind is the event tag. Empty is legal.
	Kind string `json:"kind,omitempty"`
	// Template is an optional explicit template name.
	Template string `json:"template,omitempty"`
	// Fields holds the event attributes.
	Fields map[string]any `json:"fields,omitempty"`
}

// ParseRecord decodes a JSON record. The document must be a JSON object;
// kind and template must be strings and fields an object when present.
// Numbers are kept as json.Number so amounts keep their precision.
func ParseRecord(raw []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Record{}, fmt.Errorf("%w: unexpected data after the top-level value", ErrMalformedRecord)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%w: expected a JSON object, got %s", ErrMalformedRecord, jsonType(doc))
	}

	var rec Record
	if v, present := obj["kind"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return Record{}, fmt.Errorf("%w: kind must be a string", ErrMalformedRecord)
		}
		rec.Kind = s
	}
	if v, present := obj["template"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return Record{}, fmt.Errorf("%w: template must be a string", ErrMalformedRecord)
		}
		rec.Template = s
	}
	if v, present := obj["fields"]; present && v != nil {
		fields, ok := v.(map[string]any)
		if !ok {
			return Record{}, fmt.Errorf("%w: fields must be an object", ErrMalformedRecord)
		}
		rec.Fields = fields
	}

	return rec, nil
}

// Event decodes the record into its event variant.
func (r Record) Event() Event {
	return Decode(Kind(r.Kind), r.Fields)
}

// aliases lists the accepted alternative names per canonical attribute,
// in lookup order.
var aliases = map[string][]string{
	AttrStageName:       {"stage_name", "stage"},
	AttrDueDate:         {"due_date"},
	AttrItem:            {"description"},
	AttrTransactionType: {"transaction_type", "type"},
	AttrInstaller:       {"installer_name"},
	AttrLink:            {"url"},
	AttrLotClient:       {"lot_client"},
	AttrDate:            {"start"},
	AttrTime:            {"start"},
}

// Decode maps a kind and open fields onto the matching event variant.
// Fields are looked up by canonical name first, then by alias.
// Unrecognised kinds, including the empty kind, decode to Unknown with
// aliased fields also copied under their canonical names.
func Decode(kind Kind, fields map[string]any) Event {
	f := Attributes(fields)

	switch Kind(strings.TrimSpace(string(kind))) {
	case KindStageUpdate:
		return StageUpdate{
			Project:   text(pick(f, AttrProject)),
			Client:    text(pick(f, AttrClient)),
			Lot:       text(pick(f, AttrLot)),
			StageName: text(pick(f, AttrStageName)),
			Status:    text(pick(f, AttrStatus)),
		}
	case KindMaterialOrder:
		return MaterialOrder{
			Status:  text(pick(f, AttrStatus)),
			Project: text(pick(f, AttrProject)),
			Lot:     text(pick(f, AttrLot)),
			Client:  text(pick(f, AttrClient)),
		}
	case KindSupplierStatement:
		return SupplierStatement{
			Supplier: text(pick(f, AttrSupplier)),
			Period:   text(pick(f, AttrPeriod)),
			Amount:   pick(f, AttrAmount),
			DueDate:  pick(f, AttrDueDate),
		}
	case KindStockTransaction:
		return StockTransaction{
			Item:       text(pick(f, AttrItem)),
			Type:       text(pick(f, AttrTransactionType)),
			Quantity:   pick(f, AttrQuantity),
			Dimensions: text(pick(f, AttrDimensions)),
		}
	case KindInstallerAssignment:
		return InstallerAssignment{
			Installer: text(pick(f, AttrInstaller)),
			Project:   text(pick(f, AttrProject)),
			Lot:       text(pick(f, AttrLot)),
			Link:      text(pick(f, AttrLink)),
		}
	case KindMeetingConfirmation:
		return MeetingConfirmation{
			Title:        text(pick(f, AttrTitle)),
			Projects:     list(pick(f, AttrProjects)),
			LotClient:    text(pick(f, AttrLotClient)),
			Date:         pick(f, AttrDate),
			Time:         pick(f, AttrTime),
			Participants: list(pick(f, AttrParticipants)),
			Notes:        text(pick(f, AttrNotes)),
		}
	default:
		return Unknown{Tag: string(kind), Fields: canonical(fields)}
	}
}

// pick returns the value under name, falling back to its aliases.
func pick(f Attributes, name string) any {
	if v := f.Get(name); v != nil {
		return v
	}
	for _, alias := range aliases[name] {
		if v := f.Get(alias); v != nil {
			return v
		}
	}
	return nil
}

// canonical returns a copy of fields where every canonical name that is
// absent takes its aliased value. The input map is left untouched.
func canonical(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	f := Attributes(fields)
	for name := range aliases {
		if f.Get(name) != nil {
			continue
		}
		if v := pick(f, name); v != nil {
			out[name] = v
		}
	}
	return out
}

// text renders scalar values as strings. Nil becomes the empty string.
func text(v any) string {
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
	default:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ""
		}
		if sv, ok := x.(fmt.Stringer); ok {
			return sv.String()
		}
		return fmt.Sprint(x)
	}
}

// list accepts a []string, a []any of scalars or a single scalar.
func list(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, text(item))
		}
		return out
	default:
		return []string{text(x)}
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
