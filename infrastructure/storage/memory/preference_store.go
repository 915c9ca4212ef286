package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// PreferenceStore is an in-memory implementation of preference.AdminStore.
type PreferenceStore struct {
	users map[string]preference.User
	mu    sync.RWMutex
}

// NewPreferenceStore creates a store holding a copy of users.
func NewPreferenceStore(users ...preference.User) *PreferenceStore {
	s := &PreferenceStore{
		users: make(map[string]preference.User, len(users)),
	}
	for _, u := range users {
		s.users[u.ID] = cloneUser(u)
	}
	return s
}

// Seed is the on-disk layout of a seed file.
type Seed struct {
	Users []preference.User `json:"users" yaml:"users"`
}

// LoadSeedFile reads users from a YAML or JSON file into the store.
func (s *PreferenceStore) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &seed)
	default:
		err = yaml.Unmarshal(data, &seed)
	}
	if err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	for _, u := range seed.Users {
		if err := s.SaveUser(context.Background(), u); err != nil {
			return fmt.Errorf("seed user %q: %w", u.ID, err)
		}
	}
	return nil
}

// FindUsersWithFlag returns active users with flag enabled, ordered by ID.
func (s *PreferenceStore) FindUsersWithFlag(ctx context.Context, flag preference.Flag) ([]preference.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !flag.Valid() {
		return nil, preference.ErrUnknownFlag
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []preference.User
	for _, u := range s.users {
		if u.Active && u.Enabled(flag) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveUser inserts or replaces a user.
func (s *PreferenceStore) SaveUser(ctx context.Context, u preference.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(u.ID) == "" {
		return preference.ErrInvalidUserID
	}
	for f := range u.Flags {
		if !f.Valid() {
			return fmt.Errorf("%w: %s", preference.ErrUnknownFlag, f)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = cloneUser(u)
	return nil
}

// SetFlag turns a flag on or off for an existing user.
func (s *PreferenceStore) SetFlag(ctx context.Context, userID string, flag preference.Flag, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return preference.ErrInvalidUserID
	}
	if !flag.Valid() {
		return preference.ErrUnknownFlag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return preference.ErrUserNotFound
	}
	if u.Flags == nil {
		u.Flags = make(map[preference.Flag]bool)
	}
	u.Flags[flag] = enabled
	s.users[userID] = u
	return nil
}

// Get returns a copy of the user stored under id.
func (s *PreferenceStore) Get(ctx context.Context, id string) (preference.User, error) {
	if err := ctx.Err(); err != nil {
		return preference.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return preference.User{}, preference.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Len returns the number of stored users.
func (s *PreferenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func cloneUser(u preference.User) preference.User {
	if u.Flags != nil {
		flags := make(map[preference.Flag]bool, len(u.Flags))
		for k, v := range u.Flags {
			flags[k] = v
		}
		u.Flags = flags
	}
	return u
}

var _ preference.AdminStore = (*PreferenceStore)(nil)
