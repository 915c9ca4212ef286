package preference

import (
	"errors"
	"testing"
)

func TestStageFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage  string
		want   Flag
		wantOK bool
	}{
		{"Drafting", FlagStageDrafting, true},
		{"  EDGEBANDING ", FlagStageEdgebanding, true},
		{"installation", FlagStageInstallation, true},
		{"Painting", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := StageFlag(tt.stage)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("StageFlag(%q) = %q, %v; want %q, %v", tt.stage, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseFlag(t *testing.T) {
	t.Parallel()

	for _, f := range AllFlags() {
		got, err := ParseFlag(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFlag(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFlag("stage"); !errors.Is(err, ErrUnknownFlag) {
		t.Errorf("ParseFlag(stage) error = %v, want ErrUnknownFlag", err)
	}
}

func TestAllFlags_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := AllFlags()
	a[0] = "mutated"
	if AllFlags()[0] == "mutated" {
		t.Error("AllFlags should return a copy")
	}
}

func TestUser_Enabled(t *testing.T) {
	t.Parallel()

	u := User{ID: "u1", Flags: map[Flag]bool{FlagMeeting: true, FlagAssignInstaller: false}}
	if !u.Enabled(FlagMeeting) {
		t.Error("meeting should be enabled")
	}
	if u.Enabled(FlagAssignInstaller) || u.Enabled(FlagStockTransactions) {
		t.Error("disabled and absent flags should read false")
	}
	var empty User
	if empty.Enabled(FlagMeeting) {
		t.Error("nil flag map should read false")
	}
}
