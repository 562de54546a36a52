package storage

import (
	"errors"
	"testing"

	"blocknotes/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &DB{dialect: DialectSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true", mysqlDSN("u:p@tcp(h:3306)/db"))
	assert.Equal(t, "u:p@tcp(h)/db?charset=utf8mb4&parseTime=true", mysqlDSN("u:p@tcp(h)/db?charset=utf8mb4"))
	assert.Equal(t, "x?parseTime=false", mysqlDSN("x?parseTime=false"))
}

type stubResult struct {
	n   int64
	err error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.n, r.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected(stubResult{n: 1}, "update thing"))
	assert.ErrorIs(t, requireAffected(stubResult{n: 0}, "update thing"), domain.ErrNotFound)

	driverErr := errors.New("rows affected not supported")
	err := requireAffected(stubResult{err: driverErr}, "update thing")
	assert.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "update thing")
}
