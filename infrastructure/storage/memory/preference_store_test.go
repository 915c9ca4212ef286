package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/notify-go/domain/preference"
	"github.com/felixgeelhaar/notify-go/infrastructure/storage/memory"
)

func seedUsers() []preference.User {
	return []preference.User{
		{ID: "u2", Active: true, PrimaryPhone: "0400000002", Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "u1", Active: true, PrimaryPhone: "0400000001", Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "u3", Active: false, PrimaryPhone: "0400000003", Flags: map[preference.Flag]bool{preference.FlagMeeting: true}},
		{ID: "u4", Active: true, PrimaryPhone: "0400000004", Flags: map[preference.Flag]bool{preference.FlagMeeting: false}},
	}
}

func TestPreferenceStore_FindUsersWithFlag(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore(seedUsers()...)
	ctx := context.Background()

	users, err := store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	if err != nil {
		t.Fatalf("FindUsersWithFlag() error = %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Fatalf("users = %+v, want active u1, u2 in order", users)
	}

	none, err := store.FindUsersWithFlag(ctx, preference.FlagAssignInstaller)
	if err != nil {
		t.Fatalf("FindUsersWithFlag() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("users = %+v, want none", none)
	}

	if _, err := store.FindUsersWithFlag(ctx, "bogus"); !errors.Is(err, preference.ErrUnknownFlag) {
		t.Errorf("error = %v, want ErrUnknownFlag", err)
	}
}

func TestPreferenceStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore(seedUsers()...)
	ctx := context.Background()

	users, _ := store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	users[0].Flags[preference.FlagMeeting] = false

	again, _ := store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	if len(again) != 2 {
		t.Error("mutating a returned user must not change the store")
	}
}

func TestPreferenceStore_SetFlag(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore(seedUsers()...)
	ctx := context.Background()

	if err := store.SetFlag(ctx, "u4", preference.FlagMeeting, true); err != nil {
		t.Fatalf("SetFlag() error = %v", err)
	}
	users, _ := store.FindUsersWithFlag(ctx, preference.FlagMeeting)
	if len(users) != 3 {
		t.Errorf("len = %d, want 3 after enabling u4", len(users))
	}

	tests := []struct {
		name   string
		userID string
		flag   preference.Flag
		want   error
	}{
		{"missing user", "nobody", preference.FlagMeeting, preference.ErrUserNotFound},
		{"empty id", "", preference.FlagMeeting, preference.ErrInvalidUserID},
		{"unknown flag", "u1", "bogus", preference.ErrUnknownFlag},
	}
	for _, tt := range tests {
		if err := store.SetFlag(ctx, tt.userID, tt.flag, true); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestPreferenceStore_SaveUser(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore()
	ctx := context.Background()

	if err := store.SaveUser(ctx, preference.User{ID: " "}); !errors.Is(err, preference.ErrInvalidUserID) {
		t.Errorf("error = %v, want ErrInvalidUserID", err)
	}
	bad := preference.User{ID: "u1", Flags: map[preference.Flag]bool{"bogus": true}}
	if err := store.SaveUser(ctx, bad); !errors.Is(err, preference.ErrUnknownFlag) {
		t.Errorf("error = %v, want ErrUnknownFlag", err)
	}

	if err := store.SaveUser(ctx, preference.User{ID: "u1", Name: "Ann", Active: true}); err != nil {
		t.Fatalf("SaveUser() error = %v", err)
	}
	got, err := store.Get(ctx, "u1")
	if err != nil || got.Name != "Ann" {
		t.Errorf("Get() = %+v, %v", got, err)
	}
}

func TestPreferenceStore_CanceledContext(t *testing.T) {
	t.Parallel()

	store := memory.NewPreferenceStore(seedUsers()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.FindUsersWithFlag(ctx, preference.FlagMeeting); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPreferenceStore_LoadSeedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "users.yaml")
	content := `
users:
  - id: ann
    name: Ann
    active: true
    primary_phone: "+61400000000"
    secondary_phone: "0400000000"
    flags:
      stageDrafting: true
  - id: bob
    active: true
    primary_phone: "0411111111"
    flags:
      stageDrafting: false
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	store := memory.NewPreferenceStore()
	if err := store.LoadSeedFile(yamlPath); err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	users, _ := store.FindUsersWithFlag(context.Background(), preference.FlagStageDrafting)
	if len(users) != 1 || users[0].SecondaryPhone != "0400000000" {
		t.Errorf("users = %+v", users)
	}

	jsonPath := filepath.Join(dir, "users.json")
	if err := os.WriteFile(jsonPath, []byte(`{"users":[{"id":"cy","active":true,"flags":{"nope":true}}]}`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if err := store.LoadSeedFile(jsonPath); !errors.Is(err, preference.ErrUnknownFlag) {
		t.Errorf("LoadSeedFile() error = %v, want ErrUnknownFlag", err)
	}

	if err := store.LoadSeedFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
