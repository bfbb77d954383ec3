package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS resources (
	type       TEXT NOT NULL,
	id         TEXT NOT NULL,
	attributes TEXT NOT NULL,
	revision   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (type, id)
);
`

const (
	selectOne = `SELECT attributes, revision FROM resources WHERE type = ? AND id = ?`

	selectPage = `SELECT id, attributes, revision FROM resources WHERE type = ? ORDER BY id LIMIT ? OFFSET ?`

	countType = `SELECT COUNT(*) FROM resources WHERE type = ?`

	insertOne = `INSERT INTO resources (type, id, attributes, revision, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

	updateOne = `UPDATE resources SET attributes = ?, revision = ?, updated_at = ? WHERE type = ? AND id = ?`

	updateOneAtRevision = `UPDATE resources SET attributes = ?, revision = ?, updated_at = ? WHERE type = ? AND id = ? AND revision = ?`

	deleteOne = `DELETE FROM resources WHERE type = ? AND id = ?`
)
