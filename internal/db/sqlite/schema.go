package sqlite

// SchemaVersion is recorded in schema_version once the tables below exist.
const SchemaVersion = 1

const schemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const usersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    timezone TEXT NOT NULL DEFAULT 'UTC',
    session_version INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Dates are stored as YYYY-MM-DD, timestamps as unix microseconds.
const tasksTableSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    task_date TEXT NOT NULL,
    hour INTEGER NOT NULL CHECK (hour BETWEEN 4 AND 22),
    task_text TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,

    UNIQUE (user_id, task_date, hour),
    FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

const tasksIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
`

func allTableSchemas() []string {
	return []string{
		schemaVersionTableSQL,
		usersTableSQL,
		tasksTableSQL,
	}
}

func allIndexes() []string {
	return []string{
		tasksIndexesSQL,
	}
}

// pragmas are applied to every connection through the DSN.
func pragmas() []string {
	return []string{
		"foreign_keys(1)",
		"busy_timeout(5000)",
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
	}
}
