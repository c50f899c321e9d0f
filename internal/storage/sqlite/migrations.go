package sqlite

import "database/sql"

// schema sets up the roster tables.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    days_since_last_appointment TEXT NOT NULL DEFAULT '',
    opt_in TEXT NOT NULL DEFAULT 'N' CHECK (opt_in IN ('Y', 'N'))
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
