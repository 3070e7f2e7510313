package credentials

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps profiles in a single SQLite database file. Saves run in a
// transaction so concurrent writers of different profiles never clobber each other.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	profile TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	user_name TEXT NOT NULL,
	api_key TEXT NOT NULL,
	service_key TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	superadmin INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(record Record) error {
	record.Profile = NormalizeProfile(record.Profile)
	if err := record.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	const upsertStmt = `
INSERT INTO profiles (
	profile,
	url,
	user_name,
	api_key,
	service_key,
	organization_id,
	superadmin,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile) DO UPDATE SET
	url = excluded.url,
	user_name = excluded.user_name,
	api_key = excluded.api_key,
	service_key = excluded.service_key,
	organization_id = excluded.organization_id,
	superadmin = excluded.superadmin,
	updated_at = excluded.updated_at;`

	if _, err := tx.Exec(
		upsertStmt,
		record.Profile,
		record.BaseURL,
		record.Username,
		record.APIKey,
		record.ServiceKey,
		record.OrganizationID,
		boolToInt(record.Superadmin),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save profile %q: %w", record.Profile, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(profile string) (Record, error) {
	profile = NormalizeProfile(profile)

	const query = `
SELECT
	profile,
	url,
	user_name,
	api_key,
	service_key,
	organization_id,
	superadmin
FROM profiles
WHERE profile = ?;
`

	record, err := scanRecord(s.db.QueryRow(query, profile))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
		}
		return Record{}, fmt.Errorf("query profile %q: %w", profile, err)
	}
	return record, nil
}

func (s *SQLiteStore) List() ([]Record, error) {
	const query = `
SELECT
	profile,
	url,
	user_name,
	api_key,
	service_key,
	organization_id,
	superadmin
FROM profiles
ORDER BY profile;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, 8)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) Delete(profile string) (bool, error) {
	profile = NormalizeProfile(profile)

	res, err := s.db.Exec(`DELETE FROM profiles WHERE profile = ?;`, profile)
	if err != nil {
		return false, fmt.Errorf("delete profile %q: %w", profile, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record     Record
		superadmin int
	)
	if err := row.Scan(
		&record.Profile,
		&record.BaseURL,
		&record.Username,
		&record.APIKey,
		&record.ServiceKey,
		&record.OrganizationID,
		&superadmin,
	); err != nil {
		return Record{}, err
	}
	record.Superadmin = superadmin != 0
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
