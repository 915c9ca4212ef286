// Package preference provides the per-user notification preference model.
//
// Every user owns a flat set of boolean flags, one per gating field. The
// surrounding application owns and mutates them; the dispatch engine only
// reads them through Store.
package preference

import (
	"context"
	"strings"
)

// Flag is the name of a boolean preference that gates a notification.
type Flag string

// Gating flags.
const (
	FlagStageDrafting          Flag = "stageDrafting"
	FlagStageEstimating        Flag = "stageEstimating"
	FlagStageOrdering          Flag = "stageOrdering"
	FlagStageMachining         Flag = "stageMachining"
	FlagStageEdgebanding       Flag = "stageEdgebanding"
	FlagStageAssembly          Flag = "stageAssembly"
	FlagStageDelivery          Flag = "stageDelivery"
	FlagStageInstallation      Flag = "stageInstallation"
	FlagMaterialToOrder        Flag = "materialToOrder"
	FlagMaterialToOrderOrdered Flag = "materialToOrderOrdered"
	FlagSupplierStatements     Flag = "supplierStatements"
	FlagStockTransactions      Flag = "stockTransactions"
	FlagAssignInstaller        Flag = "assignInstaller"
	FlagMeeting                Flag = "meeting"
)

var allFlags = []Flag{
	FlagStageDrafting,
	FlagStageEstimating,
	FlagStageOrdering,
	FlagStageMachining,
	FlagStageEdgebanding,
	FlagStageAssembly,
	FlagStageDelivery,
	FlagStageInstallation,
	FlagMaterialToOrder,
	FlagMaterialToOrderOrdered,
	FlagSupplierStatements,
	FlagStockTransactions,
	FlagAssignInstaller,
	FlagMeeting,
}

var flagSet = func() map[Flag]struct{} {
	m := make(map[Flag]struct{}, len(allFlags))
	for _, f := range allFlags {
		m[f] = struct{}{}
	}
	return m
}()

// stageFlags maps lower-cased pipeline stage names to their flag.
var stageFlags = map[string]Flag{
	"drafting":     FlagStageDrafting,
	"estimating":   FlagStageEstimating,
	"ordering":     FlagStageOrdering,
	"machining":    FlagStageMachining,
	"edgebanding":  FlagStageEdgebanding,
	"assembly":     FlagStageAssembly,
	"delivery":     FlagStageDelivery,
	"installation": FlagStageInstallation,
}

// AllFlags returns every known gating flag in a stable order.
func AllFlags() []Flag {
	out := make([]Flag, len(allFlags))
	copy(out, allFlags)
	return out
}

// Valid reports whether f is a known gating flag.
func (f Flag) Valid() bool {
	_, ok := flagSet[f]
	return ok
}

// String implements fmt.Stringer.
func (f Flag) String() string {
	return string(f)
}

// ParseFlag validates a flag name.
func ParseFlag(s string) (Flag, error) {
	f := Flag(strings.TrimSpace(s))
	if !f.Valid() {
		return "", ErrUnknownFlag
	}
	return f, nil
}

// StageFlag returns the flag gating completion of the named pipeline stage.
// The lookup ignores case and surrounding whitespace.
func StageFlag(stage string) (Flag, bool) {
	f, ok := stageFlags[strings.ToLower(strings.TrimSpace(stage))]
	return f, ok
}

// User is a user as seen by the notification engine.
type User struct {
	// ID is the user identifier.
	ID string `json:"id" yaml:"id" bson:"_id"`
	// Name is the display name.
	Name string `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	// Active is false for disabled accounts.
	Active bool `json:"active" yaml:"active" bson:"active"`
	// PrimaryPhone is the main mobile number, free-form.
	PrimaryPhone string `json:"primary_phone,omitempty" yaml:"primary_phone,omitempty" bson:"primaryPhone,omitempty"`
	// SecondaryPhone is an optional second number, free-form.
	SecondaryPhone string `json:"secondary_phone,omitempty" yaml:"secondary_phone,omitempty" bson:"secondaryPhone,omitempty"`
	// Flags holds the user's preference flags. Absent means false.
	Flags map[Flag]bool `json:"flags,omitempty" yaml:"flags,omitempty" bson:"preferences,omitempty"`
}

// Enabled reports whether the user has flag f turned on.
func (u User) Enabled(f Flag) bool {
	return u.Flags[f]
}

// Store is the read side of the preference collaborator.
type Store interface {
	// FindUsersWithFlag returns active users whose flag is true.
	FindUsersWithFlag(ctx context.Context, flag Flag) ([]User, error)
}

// Admin mutates users and their flags.
type Admin interface {
	// SaveUser inserts or replaces a user, including its flags.
	SaveUser(ctx context.Context, u User) error

	// SetFlag turns a single flag on or off for a user.
	SetFlag(ctx context.Context, userID string, flag Flag, enabled bool) error
}

// AdminStore combines Store and Admin.
type AdminStore interface {
	Store
	Admin
}
