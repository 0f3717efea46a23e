package dbmanager

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"class_name"`, quoteIdentifier(DatabaseTypePostgreSQL, "class_name"))
	assert.Equal(t, `"we""ird"`, quoteIdentifier(DatabaseTypePostgreSQL, `we"ird`))
	assert.Equal(t, "`class_name`", quoteIdentifier(DatabaseTypeMySQL, "class_name"))
	assert.Equal(t, "`we``ird`", quoteIdentifier(DatabaseTypeMySQL, "we`ird"))
}

func TestMySQLDSN(t *testing.T) {
	user, pass := "root", "p@ss:word"
	dsn := mysqlDSN(ConnectionConfig{
		Type:     DatabaseTypeMySQL,
		Host:     "db.local",
		Port:     "3306",
		Username: &user,
		Password: &pass,
		Database: "students",
	})
	assert.Contains(t, dsn, "root:p@ss:word@tcp(db.local:3306)/students?")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestClassifyError(t *testing.T) {
	assert.Nil(t, classifyError(nil))
	assert.Equal(t, CodeTimeout, classifyError(fmt.Errorf("query: %w", context.DeadlineExceeded)).Code)

	qe := classifyError(errors.New("boom"))
	assert.Equal(t, CodeExecution, qe.Code)
	assert.Equal(t, "boom", qe.Details)
	assert.False(t, IsConstraintViolation(errors.New("boom")))
}
