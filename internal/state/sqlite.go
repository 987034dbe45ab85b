package state

import "fmt"

type SqliteDialect struct {
	table string
}

var _ Dialect = (*SqliteDialect)(nil)

func NewSqliteDialect(table string) SqliteDialect {
	return SqliteDialect{table: table}
}

func (d SqliteDialect) InitQuery() string {
	const createPatchesSchema = `
CREATE TABLE IF NOT EXISTS %s (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255),
	applied_at TIMESTAMP default CURRENT_TIMESTAMP
);
`

	return fmt.Sprintf(createPatchesSchema, d.table)
}

func (d SqliteDialect) InsertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (version, name) VALUES (?, ?);", d.table)
}

func (d SqliteDialect) DeleteQuery() string {
	return fmt.Sprintf("DELETE FROM %s WHERE version = ?;", d.table)
}

func (d SqliteDialect) SelectMaxQuery() string {
	return fmt.Sprintf("SELECT MAX(version) FROM %s;", d.table)
}

func (d SqliteDialect) DropQuery() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.table)
}
