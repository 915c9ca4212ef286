package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/notify-go/domain/preference"
)

// PreferenceStore is a PostgreSQL-backed implementation of preference.AdminStore.
type PreferenceStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPreferenceStore creates a new PostgreSQL preference store.
func NewPreferenceStore(pool *pgxpool.Pool, schema string) *PreferenceStore {
	if schema == "" {
		schema = "public"
	}
	return &PreferenceStore{
		pool:   pool,
		schema: schema,
	}
}

func (s *PreferenceStore) usersTable() string {
	return fmt.Sprintf("%s.users", pgx.Identifier{s.schema}.Sanitize())
}

func (s *PreferenceStore) preferencesTable() string {
	return fmt.Sprintf("%s.notification_preferences", pgx.Identifier{s.schema}.Sanitize())
}

// Migrate creates the schema and tables if they don't exist.
func (s *PreferenceStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE SCHEMA IF NOT EXISTS %[1]s;
		CREATE TABLE IF NOT EXISTS %[2]s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			primary_phone TEXT NOT NULL DEFAULT '',
			secondary_phone TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS %[3]s (
			user_id TEXT NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
			flag TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (user_id, flag)
		);
		CREATE INDEX IF NOT EXISTS notification_preferences_flag_idx ON %[3]s (flag) WHERE enabled;
	`, pgx.Identifier{s.schema}.Sanitize(), s.usersTable(), s.preferencesTable())

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
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

	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.active, u.primary_phone, u.secondary_phone
		FROM %s u
		JOIN %s p ON p.user_id = u.id
		WHERE p.flag = $1 AND p.enabled AND u.active
		ORDER BY u.id
	`, s.usersTable(), s.preferencesTable())

	rows, err := s.pool.Query(ctx, query, string(flag))
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	var users []preference.User
	for rows.Next() {
		var u preference.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Active, &u.PrimaryPhone, &u.SecondaryPhone); err != nil {
			return nil, wrapError(err)
		}
		u.Flags = map[preference.Flag]bool{flag: true}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	return users, nil
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, active, primary_phone, secondary_phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			primary_phone = EXCLUDED.primary_phone,
			secondary_phone = EXCLUDED.secondary_phone
	`, s.usersTable()), u.ID, u.Name, u.Active, u.PrimaryPhone, u.SecondaryPhone)
	if err != nil {
		return wrapError(err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", s.preferencesTable()), u.ID); err != nil {
		return wrapError(err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (user_id, flag, enabled) VALUES ($1, $2, $3)", s.preferencesTable())
	for f, enabled := range u.Flags {
		if _, err := tx.Exec(ctx, insert, u.ID, string(f), enabled); err != nil {
			return wrapError(err)
		}
	}

	return wrapError(tx.Commit(ctx))
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
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1", s.usersTable()), userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return preference.ErrUserNotFound
		}
		return wrapError(err)
	}

	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, flag, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, flag) DO UPDATE SET enabled = EXCLUDED.enabled
	`, s.preferencesTable()), userID, string(flag), enabled)
	return wrapError(err)
}

var _ preference.AdminStore = (*PreferenceStore)(nil)
