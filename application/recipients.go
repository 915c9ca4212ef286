package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/infrastructure/phone"
)

// Normalizer turns a free-form phone number into a channel address.
type Normalizer interface {
	Normalize(raw string) string
}

// RecipientResolver expands a gating flag into channel addresses.
type RecipientResolver struct {
	store      preference.Store
	normalizer Normalizer
}

// NewRecipientResolver creates a resolver. A nil normalizer uses the
// default region.
func NewRecipientResolver(store preference.Store, normalizer Normalizer) *RecipientResolver {
	if normalizer == nil {
		normalizer = phone.NewNormalizer(phone.DefaultRegion)
	}
	return &RecipientResolver{
		store:      store,
		normalizer: normalizer,
	}
}

// Resolve returns one recipient per distinct normalized phone of every
// active user with gate enabled, in store order. An empty gate yields no
// recipients without querying the store.
func (r *RecipientResolver) Resolve(ctx context.Context, gate preference.Flag) ([]notification.Recipient, error) {
	if gate == "" {
		return nil, nil
	}

	users, err := r.store.FindUsersWithFlag(ctx, gate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", notification.ErrRecipientLookup, gate, err)
	}

	var out []notification.Recipient
	for _, u := range users {
		if !u.Active {
			continue
		}

		primary := r.normalizer.Normalize(u.PrimaryPhone)
		if primary != "" {
			out = append(out, notification.Recipient{UserID: u.ID, Address: primary})
		}

		secondary := r.normalizer.Normalize(u.SecondaryPhone)
		if secondary != "" && secondary != primary {
			out = append(out, notification.Recipient{UserID: u.ID, Address: secondary, Secondary: true})
		}
	}
	return out, nil
}
