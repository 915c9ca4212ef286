package application

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/memory"
)

type storeFunc func(ctx context.Context, flag preference.Flag) ([]preference.User, error)

func (f storeFunc) FindUsersWithFlag(ctx context.Context, flag preference.Flag) ([]preference.User, error) {
	return f(ctx, flag)
}

func TestRecipientResolver_Resolve(t *testing.T) {
	t.Parallel()

	meeting := map[preference.Flag]bool{preference.FlagMeeting: true}

	tests := []struct {
		name  string
		users []preference.User
		want  []notification.Recipient
	}{
		{
			name: "same number in two formats",
			users: []preference.User{
				{ID: "u1", Active: true, PrimaryPhone: "+61400000000", SecondaryPhone: "0400000000", Flags: meeting},
			},
			want: []notification.Recipient{{UserID: "u1", Address: "61400000000"}},
		},
		{
			name: "distinct secondary",
			users: []preference.User{
				{ID: "u1", Active: true, PrimaryPhone: "0400000001", SecondaryPhone: "0400 000 002", Flags: meeting},
			},
			want: []notification.Recipient{
				{UserID: "u1", Address: "61400000001"},
				{UserID: "u1", Address: "61400000002", Secondary: true},
			},
		},
		{
			name: "secondary only",
			users: []preference.User{
				{ID: "u1", Active: true, SecondaryPhone: "0400000002", Flags: meeting},
			},
			want: []notification.Recipient{{UserID: "u1", Address: "61400000002", Secondary: true}},
		},
		{
			name: "no phones",
			users: []preference.User{
				{ID: "u1", Active: true, Flags: meeting},
			},
			want: nil,
		},
		{
			name: "users sharing a number are not merged",
			users: []preference.User{
				{ID: "u1", Active: true, PrimaryPhone: "0400000001", Flags: meeting},
				{ID: "u2", Active: true, PrimaryPhone: "0400000001", Flags: meeting},
			},
			want: []notification.Recipient{
				{UserID: "u1", Address: "61400000001"},
				{UserID: "u2", Address: "61400000001"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRecipientResolver(memory.NewPreferenceStore(tt.users...), nil)
			got, err := r.Resolve(context.Background(), preference.FlagMeeting)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecipientResolver_SkipsInactive(t *testing.T) {
	t.Parallel()

	store := storeFunc(func(context.Context, preference.Flag) ([]preference.User, error) {
		return []preference.User{
			{ID: "u1", Active: false, PrimaryPhone: "0400000001"},
			{ID: "u2", Active: true, PrimaryPhone: "0400000002"},
		}, nil
	})

	got, err := NewRecipientResolver(store, nil).Resolve(context.Background(), preference.FlagMeeting)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u2" {
		t.Errorf("Resolve() = %+v, want only u2", got)
	}
}

func TestRecipientResolver_EmptyGate(t *testing.T) {
	t.Parallel()

	store := storeFunc(func(context.Context, preference.Flag) ([]preference.User, error) {
		t.Error("store queried for empty gate")
		return nil, nil
	})

	got, err := NewRecipientResolver(store, nil).Resolve(context.Background(), "")
	if err != nil || got != nil {
		t.Errorf("Resolve(\"\") = %v, %v; want nil, nil", got, err)
	}
}

func TestRecipientResolver_StoreFailure(t *testing.T) {
	t.Parallel()

	outage := errors.New("connection refused")
	store := storeFunc(func(context.Context, preference.Flag) ([]preference.User, error) {
		return nil, outage
	})

	_, err := NewRecipientResolver(store, nil).Resolve(context.Background(), preference.FlagMeeting)
	if !errors.Is(err, notification.ErrRecipientLookup) {
		t.Errorf("error = %v, want ErrRecipientLookup", err)
	}
	if !errors.Is(err, outage) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
}
