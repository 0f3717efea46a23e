package dbmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeConnection       = "FAILED_TO_GET_SQL_CONNECTION"
	CodeExecution        = "QUERY_EXECUTION_FAILED"
	CodeResultProcessing = "RESULT_PROCESSING_FAILED"
	CodeTimeout          = "QUERY_TIMEOUT"
)

// classifyError turns a driver error into a QueryError. Details carry the
// driver's own text and are meant for logs, not for end users.
func classifyError(err error) *QueryError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &QueryError{Code: CodeTimeout, Message: "Query timed out", Details: err.Error()}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		details := pgErr.Detail
		if details == "" {
			details = pgErr.Message
		}
		return &QueryError{
			Code:    "PG_" + pgErr.Code,
			Message: pgErr.Message,
			Details: details,
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return &QueryError{
			Code:    fmt.Sprintf("MYSQL_%d", myErr.Number),
			Message: myErr.Message,
			Details: myErr.Error(),
		}
	}

	return &QueryError{Code: CodeExecution, Message: "Query execution failed", Details: err.Error()}
}

// IsConstraintViolation reports whether err is a unique or foreign key violation.
func IsConstraintViolation(err error) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		qe = classifyError(err)
	}
	if qe == nil {
		return false
	}
	switch qe.Code {
	case "PG_23505", "PG_23503", "MYSQL_1062", "MYSQL_1452":
		return true
	}
	return false
}
