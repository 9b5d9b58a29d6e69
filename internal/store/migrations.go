package store

import (
	"fmt"
)

// dialect holds the handful of DDL fragments that differ between the
// supported drivers. Everything else in the schema is shared.
type dialect struct {
	pk        string // auto-increment integer primary key
	text      string // unconstrained text
	uniqueKey string // text column usable in a UNIQUE constraint
	timestamp string
}

func dialectFor(driver string) dialect {
	switch driver {
	case DriverMySQL:
		return dialect{
			pk:        "BIGINT PRIMARY KEY AUTO_INCREMENT",
			text:      "TEXT",
			uniqueKey: "VARCHAR(255)", // MySQL cannot index bare TEXT
			timestamp: "DATETIME",
		}
	case DriverPostgres:
		return dialect{
			pk:        "BIGSERIAL PRIMARY KEY",
			text:      "TEXT",
			uniqueKey: "TEXT",
			timestamp: "TIMESTAMPTZ",
		}
	default: // sqlite
		return dialect{
			pk:        "INTEGER PRIMARY KEY AUTOINCREMENT",
			text:      "TEXT",
			uniqueKey: "TEXT",
			timestamp: "DATETIME",
		}
	}
}

func (s *Store) migrate() error {
	d := dialectFor(s.driver)

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS admins (
			id %s,
			email %s UNIQUE NOT NULL,
			password_hash %s NOT NULL,
			created_at %s NOT NULL
		)`, d.pk, d.uniqueKey, d.text, d.timestamp),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS api_keys (
			id %s,
			token %s UNIQUE NOT NULL,
			start_date %s NOT NULL,
			expires_at %s NOT NULL,
			status %s NOT NULL DEFAULT 'Active',
			created_at %s NOT NULL
		)`, d.pk, d.uniqueKey, d.timestamp, d.timestamp, d.uniqueKey, d.timestamp),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			first_name %s NOT NULL,
			last_name %s NOT NULL,
			email %s UNIQUE NOT NULL,
			api_key_id BIGINT NOT NULL REFERENCES api_keys(id),
			created_at %s NOT NULL
		)`, d.pk, d.text, d.text, d.uniqueKey, d.timestamp),
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
