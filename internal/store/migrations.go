package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	seq            INTEGER NOT NULL,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT '',
	estimated_time TEXT NOT NULL DEFAULT '',
	due_date       TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'completed')),
	created_at     DATETIME NOT NULL,
	completed_at   DATETIME,
	UNIQUE(user_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_user_name
	ON tasks(user_id, name, status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
