package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

func TestFlagFilter(t *testing.T) {
	t.Parallel()

	got := flagFilter(preference.FlagSupplierStatements)
	want := bson.M{"active": true, "preferences.supplierStatements": true}
	if len(got) != len(want) {
		t.Fatalf("filter = %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("filter[%s] = %v, want %v", k, got[k], v)
		}
	}
}

func TestUserDocumentShape(t *testing.T) {
	t.Parallel()

	u := preference.User{
		ID:           "u1",
		Active:       true,
		PrimaryPhone: "0400 000 001",
		Flags:        map[preference.Flag]bool{preference.FlagMeeting: true},
	}
	raw, err := bson.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc["_id"] != "u1" {
		t.Errorf("_id = %v", doc["_id"])
	}
	if doc["primaryPhone"] != "0400 000 001" {
		t.Errorf("primaryPhone = %v", doc["primaryPhone"])
	}
	prefs, ok := doc["preferences"].(bson.M)
	if !ok || prefs["meeting"] != true {
		t.Errorf("preferences = %#v", doc["preferences"])
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	if wrapError(nil) != nil {
		t.Error("wrapError(nil) != nil")
	}
	if err := wrapError(context.DeadlineExceeded); !errors.Is(err, ErrOperationTimeout) {
		t.Errorf("err = %v, want ErrOperationTimeout", err)
	}
	if err := wrapError(errors.New("boom")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("err = %v, want ErrConnectionFailed", err)
	}
}

func TestPreferenceStore_Integration(t *testing.T) {
	uri := os.Getenv("NOTIFY_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("NOTIFY_TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, WithURI(uri), WithDatabase("notify_test"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	})

	store := NewPreferenceStore(client, "")
	for _, u := range []preference.User{
		{ID: "b", Active: true, Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "a", Active: true, Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "c", Active: false, Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "d", Active: true},
	} {
		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatalf("SaveUser(%s) error = %v", u.ID, err)
		}
	}

	got, err := store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	if err != nil {
		t.Fatalf("FindUsersWithFlag() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("users = %+v", got)
	}

	if err := store.SetFlag(ctx, "d", preference.FlagMeeting, true); err != nil {
		t.Fatalf("SetFlag() error = %v", err)
	}
	got, _ = store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}

	if err := store.SetFlag(ctx, "ghost", preference.FlagMeeting, true); !errors.Is(err, preference.ErrUserNotFound) {
		t.Errorf("SetFlag error = %v, want ErrUserNotFound", err)
	}
}
