// Package event provides the domain events that trigger notifications.
//
// Events form a closed set of variants. Each variant carries the attributes
// its notification needs and exposes them through Attributes so parameter
// builders can read any event, including Unknown ones carrying raw fields.
package event

// Kind is the categorical tag of a domain event.
type Kind string

// Known event kinds.
const (
	KindStageUpdate         Kind = "stage-update"
	KindMaterialOrder       Kind = "material-order"
	KindSupplierStatement   Kind = "supplier-statement"
	KindStockTransaction    Kind = "stock-transaction"
	KindInstallerAssignment Kind = "installer-assignment"
	KindMeetingConfirmation Kind = "meeting-confirmation"
)

// Canonical attribute names.
const (
	AttrProject         = "project"
	AttrClient          = "client"
	AttrLot             = "lot"
	AttrStageName       = "stageName"
	AttrStatus          = "status"
	AttrSupplier        = "supplier"
	AttrPeriod          = "period"
	AttrAmount          = "amount"
	AttrDueDate         = "dueDate"
	AttrItem            = "item"
	AttrTransactionType = "transactionType"
	AttrQuantity        = "quantity"
	AttrDimensions      = "dimensions"
	AttrInstaller       = "installer"
	AttrLink            = "link"
	AttrTitle           = "title"
	AttrProjects        = "projects"
	AttrLotClient       = "lotClient"
	AttrDate            = "date"
	AttrTime            = "time"
	AttrParticipants    = "participants"
	AttrNotes           = "notes"
)

// Event is a domain event. The set of implementations is closed.
type Event interface {
	// Kind returns the event tag.
	Kind() Kind
	// Attributes returns the event's attributes keyed by canonical name.
	Attributes() Attributes

	sealed()
}

// Attributes is a read-only view of event attributes.
type Attributes map[string]any

// Get returns the value stored under name, or nil.
func (a Attributes) Get(name string) any {
	if a == nil {
		return nil
	}
	return a[name]
}

// StageUpdate reports a change of status on a pipeline stage of a project.
type StageUpdate struct {
	Project   string `json:"project,omitempty"`
	Client    string `json:"client,omitempty"`
	Lot       string `json:"lot,omitempty"`
	StageName string `json:"stageName,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Kind implements Event.
func (StageUpdate) Kind() Kind { return KindStageUpdate }

// Attributes implements Event.
func (e StageUpdate) Attributes() Attributes {
	return Attributes{
		AttrProject:   e.Project,
		AttrClient:    e.Client,
		AttrLot:       e.Lot,
		AttrStageName: e.StageName,
		AttrStatus:    e.Status,
	}
}

func (StageUpdate) sealed() {}

// MaterialOrder reports a change on the materials-to-order list of a lot.
type MaterialOrder struct {
	Status  string `json:"status,omitempty"`
	Project string `json:"project,omitempty"`
	Lot     string `json:"lot,omitempty"`
	Client  string `json:"client,omitempty"`
}

// Kind implements Event.
func (MaterialOrder) Kind() Kind { return KindMaterialOrder }

// Attributes implements Event.
func (e MaterialOrder) Attributes() Attributes {
	return Attributes{
		AttrStatus:  e.Status,
		AttrProject: e.Project,
		AttrLot:     e.Lot,
		AttrClient:  e.Client,
	}
}

func (MaterialOrder) sealed() {}

// SupplierStatement reports an uploaded supplier statement.
// Amount and DueDate keep whatever shape the caller supplied.
type SupplierStatement struct {
	Supplier string `json:"supplier,omitempty"`
	Period   string `json:"period,omitempty"`
	Amount   any    `json:"amount,omitempty"`
	DueDate  any    `json:"dueDate,omitempty"`
}

// Kind implements Event.
func (SupplierStatement) Kind() Kind { return KindSupplierStatement }

// Attributes implements Event.
func (e SupplierStatement) Attributes() Attributes {
	return Attributes{
		AttrSupplier: e.Supplier,
		AttrPeriod:   e.Period,
		AttrAmount:   e.Amount,
		AttrDueDate:  e.DueDate,
	}
}

func (SupplierStatement) sealed() {}

// StockTransaction reports an inventory movement.
type StockTransaction struct {
	Item       string `json:"item,omitempty"`
	Type       string `json:"transactionType,omitempty"`
	Quantity   any    `json:"quantity,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
}

// Kind implements Event.
func (StockTransaction) Kind() Kind { return KindStockTransaction }

// Attributes implements Event.
func (e StockTransaction) Attributes() Attributes {
	return Attributes{
		AttrItem:            e.Item,
		AttrTransactionType: e.Type,
		AttrQuantity:        e.Quantity,
		AttrDimensions:      e.Dimensions,
	}
}

func (StockTransaction) sealed() {}

// InstallerAssignment reports an installer assigned to a lot.
type InstallerAssignment struct {
	Installer string `json:"installer,omitempty"`
	Project   string `json:"project,omitempty"`
	Lot       string `json:"lot,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Kind implements Event.
func (InstallerAssignment) Kind() Kind { return KindInstallerAssignment }

// Attributes implements Event.
func (e InstallerAssignment) Attributes() Attributes {
	return Attributes{
		AttrInstaller: e.Installer,
		AttrProject:   e.Project,
		AttrLot:       e.Lot,
		AttrLink:      e.Link,
	}
}

func (InstallerAssignment) sealed() {}

// MeetingConfirmation reports a confirmed calendar meeting.
// Date and Time accept a time.Time or text.
type MeetingConfirmation struct {
	Title        string   `json:"title,omitempty"`
	Projects     []string `json:"projects,omitempty"`
	LotClient    string   `json:"lotClient,omitempty"`
	Date         any      `json:"date,omitempty"`
	Time         any      `json:"time,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Kind implements Event.
func (MeetingConfirmation) Kind() Kind { return KindMeetingConfirmation }

// Attributes implements Event.
func (e MeetingConfirmation) Attributes() Attributes {
	return Attributes{
		AttrTitle:        e.Title,
		AttrProjects:     e.Projects,
		AttrLotClient:    e.LotClient,
		AttrDate:         e.Date,
		AttrTime:         e.Time,
		AttrParticipants: e.Participants,
		AttrNotes:        e.Notes,
	}
}

func (MeetingConfirmation) sealed() {}

// Unknown is an event whose tag is absent or not recognised. It never
// resolves to a template on its own, but an explicit template override can
// still render it from its raw fields.
type Unknown struct {
	Tag    string         `json:"kind,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Kind implements Event.
func (e Unknown) Kind() Kind { return Kind(e.Tag) }

// Attributes implements Event.
func (e Unknown) Attributes() Attributes {
	return Attributes(e.Fields)
}

func (Unknown) sealed() {}

var (
	_ Event = StageUpdate{}
	_ Event = MaterialOrder{}
	_ Event = SupplierStatement{}
	_ Event = StockTransaction{}
	_ Event = InstallerAssignment{}
	_ Event = MeetingConfirmation{}
	_ Event = Unknown{}
)

// Value returns ev in its value form. Pointers to variants are
// dereferenced. It reports false for a nil event or a nil pointer.
func Value(ev Event) (Event, bool) {
	switch e := ev.(type) {
	case nil:
		return nil, false
	case *StageUpdate:
		return deref(e)
	case *MaterialOrder:
		return deref(e)
	case *SupplierStatement:
		return deref(e)
	case *StockTransaction:
		return deref(e)
	case *InstallerAssignment:
		return deref(e)
	case *MeetingConfirmation:
		return deref(e)
	case *Unknown:
		return deref(e)
	default:
		return ev, true
	}
}

func deref[T Event](p *T) (Event, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
