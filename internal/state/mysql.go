package state

import "fmt"

type MySQLDialect struct {
	table string
}

var _ Dialect = (*MySQLDialect)(nil)

func NewMySQLDialect(table string) MySQLDialect {
	return MySQLDialect{table: table}
}

func (d MySQLDialect) InitQuery() string {
	const createPatchesSchema = `
CREATE TABLE IF NOT EXISTS %s (
	version BIGINT UNSIGNED PRIMARY KEY,
	name VARCHAR(255),
	applied_at TIMESTAMP default CURRENT_TIMESTAMP
) ENGINE=INNODB;
`

	return fmt.Sprintf(createPatchesSchema, d.table)
}

func (d MySQLDialect) InsertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (version, name) VALUES (?, ?);", d.table)
}

func (d MySQLDialect) DeleteQuery() string {
	return fmt.Sprintf("DELETE FROM %s WHERE version = ?;", d.table)
}

func (d MySQLDialect) SelectMaxQuery() string {
	return fmt.Sprintf("SELECT MAX(version) FROM %s;", d.table)
}

func (d MySQLDialect) DropQuery() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.table)
}
