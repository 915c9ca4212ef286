package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// PreferenceStore is a SQLite-backed implementation of preference.AdminStore.
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore opens a SQLite preference store with the given configuration.
func NewPreferenceStore(cfg Config, opts ...Option) (*PreferenceStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &PreferenceStore{db: db}

	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewPreferenceStoreFromDB creates a store from an existing database connection.
func NewPreferenceStoreFromDB(db *sql.DB) (*PreferenceStore, error) {
	s := &PreferenceStore{db: db}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

// migrate creates the users and notification_preferences tables.
func (s *PreferenceStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			primary_phone TEXT NOT NULL DEFAULT '',
			secondary_phone TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS notification_preferences (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			flag TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, flag)
		);
		CREATE INDEX IF NOT EXISTS idx_notification_preferences_flag
			ON notification_preferences(flag, enabled);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}

// FindUsersWithFlag returns active users with flag enabled, ordered by ID.
// Each returned user carries the queried flag only.
func (s *PreferenceStore) FindUsersWithFlag(ctx context.Context, flag preference.Flag) ([]preference.User, error) {
	if !flag.Valid() {
		return nil, preference.ErrUnknownFlag
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.active, u.primary_phone, u.secondary_phone
		FROM users u
		JOIN notification_preferences p ON p.user_id = u.id
		WHERE p.flag = ? AND p.enabled = 1 AND u.active = 1
		ORDER BY u.id`,
		string(flag),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []preference.User
	for rows.Next() {
		var u preference.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Active, &u.PrimaryPhone, &u.SecondaryPhone); err != nil {
			return nil, err
		}
		u.Flags = map[preference.Flag]bool{flag: true}
		users = append(users, u)
	}

	return users, rows.Err()
}

// SaveUser inserts or replaces a user together with all of its flags.
func (s *PreferenceStore) SaveUser(ctx context.Context, u preference.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return preference.ErrInvalidUserID
	}
	for f := range u.Flags {
		if !f.Valid() {
			return fmt.Errorf("%w: %s", preference.ErrUnknownFlag, f)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, active, primary_phone, secondary_phone)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active,
			primary_phone = excluded.primary_phone,
			secondary_phone = excluded.secondary_phone`,
		u.ID, u.Name, u.Active, u.PrimaryPhone, u.SecondaryPhone,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM notification_preferences WHERE user_id = ?", u.ID); err != nil {
		return err
	}
	for f, enabled := range u.Flags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notification_preferences (user_id, flag, enabled) VALUES (?, ?, ?)",
			u.ID, string(f), enabled,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetFlag turns a single flag on or off for an existing user.
func (s *PreferenceStore) SetFlag(ctx context.Context, userID string, flag preference.Flag, enabled bool) error {
	if userID == "" {
		return preference.ErrInvalidUserID
	}
	if !flag.Valid() {
		return preference.ErrUnknownFlag
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return preference.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, flag, enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, flag) DO UPDATE SET enabled = excluded.enabled`,
		userID, string(flag), enabled,
	)
	return err
}

// Close closes the database connection.
func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

var _ preference.AdminStore = (*PreferenceStore)(nil)
