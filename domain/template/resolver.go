package template

import (
	"strings"

	"github.com/felixgeelhaar/notify-go/domain/event"
	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// orderedMarker in a material-order status selects the ordered gate.
const orderedMarker = "Ordered"

// Resolution is the outcome of resolving an event to a template.
type Resolution struct {
	// Kind is the resolved template. Empty when nothing matched.
	Kind Kind `json:"template,omitempty"`
	// Gate is the preference flag recipients must have enabled.
	// Empty when the template has no gate for this event.
	Gate preference.Flag `json:"gate,omitempty"`
	// Matched is false when no template applies to the event.
	Matched bool `json:"matched"`
}

// HasGate reports whether the resolution carries a gating flag.
func (r Resolution) HasGate() bool {
	return r.Gate != ""
}

// Resolve picks the template for ev and the flag that gates it.
//
// An explicit kind wins over inference from the event variant; the gate is
// still derived from the event through that kind's gating rule. Unknown
// events without an explicit kind resolve to nothing, which is not an error.
func Resolve(ev event.Event, explicit *Kind) Resolution {
	ev, _ = event.Value(ev)
	var kind Kind
	switch {
	case explicit != nil && explicit.Valid():
		kind = *explicit
	case ev != nil:
		kind = inferKind(ev)
	}
	if kind == "" {
		return Resolution{}
	}

	var attrs event.Attributes
	if ev != nil {
		attrs = ev.Attributes()
	}
	return Resolution{
		Kind:    kind,
		Gate:    gateFor(kind, attrs),
		Matched: true,
	}
}

func inferKind(ev event.Event) Kind {
	switch ev.(type) {
	case event.StageUpdate:
		return KindStageCompleted
	case event.MaterialOrder:
		return KindMaterialsToOrderUpdate
	case event.SupplierStatement:
		return KindSupplierStatementAdded
	case event.StockTransaction:
		return KindStockTransactionCreated
	case event.InstallerAssignment:
		return KindInstallerAssigned
	case event.MeetingConfirmation:
		return KindMeetingConfirmation
	default:
		return ""
	}
}

func gateFor(kind Kind, attrs event.Attributes) preference.Flag {
	switch kind {
	case KindStageCompleted:
		f, ok := preference.StageFlag(str(attrs.Get(event.AttrStageName)))
		if !ok {
			return ""
		}
		return f
	case KindMaterialsToOrderUpdate:
		if strings.Contains(str(attrs.Get(event.AttrStatus)), orderedMarker) {
			return preference.FlagMaterialToOrderOrdered
		}
		return preference.FlagMaterialToOrder
	case KindSupplierStatementAdded:
		return preference.FlagSupplierStatements
	case KindStockTransactionCreated:
		return preference.FlagStockTransactions
	case KindInstallerAssigned:
		return preference.FlagAssignInstaller
	case KindMeetingConfirmation:
		return preference.FlagMeeting
	default:
		return ""
	}
}
