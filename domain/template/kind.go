// Package template provides the outbound message templates: the fixed set
// of template kinds, the rules choosing a kind and gating flag for an event,
// and the builders that turn event attributes into positional parameters.
package template

import (
	"fmt"
	"strings"
)

// Kind identifies one of the pre-approved outbound message templates.
type Kind string

// Template kinds.
const (
	KindStageCompleted          Kind = "stage-completed"
	KindMaterialsToOrderUpdate  Kind = "materials-to-order-update"
	KindSupplierStatementAdded  Kind = "supplier-statement-added"
	KindStockTransactionCreated Kind = "stock-transaction-created"
	KindInstallerAssigned       Kind = "installer-assigned"
	KindMeetingConfirmation     Kind = "meeting-confirmation"
)

var kinds = []Kind{
	KindStageCompleted,
	KindMaterialsToOrderUpdate,
	KindSupplierStatementAdded,
	KindStockTransactionCreated,
	KindInstallerAssigned,
	KindMeetingConfirmation,
}

var arities = map[Kind]int{
	KindStageCompleted:          5,
	KindMaterialsToOrderUpdate:  4,
	KindSupplierStatementAdded:  4,
	KindStockTransactionCreated: 4,
	KindInstallerAssigned:       4,
	KindMeetingConfirmation:     8,
}

// Kinds returns every template kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Arity returns the number of positional parameters the template takes,
// or 0 for an unknown kind.
func (k Kind) Arity() int {
	return arities[k]
}

// Valid reports whether k is a known template kind.
func (k Kind) Valid() bool {
	_, ok := arities[k]
	return ok
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// ParseKind validates an explicit template name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}
