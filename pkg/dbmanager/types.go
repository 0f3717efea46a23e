package dbmanager

import (
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus represents the current state of a database connection
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "db-connected"
	StatusDisconnected ConnectionStatus = "db-disconnected"
	StatusError        ConnectionStatus = "db-error"
)

const (
	DatabaseTypePostgreSQL = "postgres"
	DatabaseTypeMySQL      = "mysql"
)

// Connection represents an active database connection
type Connection struct {
	DB       *gorm.DB
	LastUsed time.Time
	Status   ConnectionStatus
	Error    string
	Config   ConnectionConfig
}

// ConnectionConfig holds the configuration for a database connection
type ConnectionConfig struct {
	Type     string  `json:"type"`
	Host     string  `json:"host"`
	Port     string  `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Database string  `json:"database"`
	SSLMode  string  `json:"ssl_mode,omitempty"`
}

// QueryError is the user-safe description of a failed statement.
type QueryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *QueryError) Error() string {
	return e.Code + ": " + e.Message
}

// QueryExecutionResult is the outcome of running one validated statement.
type QueryExecutionResult struct {
	Result        map[string]interface{} `json:"result,omitempty"`
	Rows          []map[string]interface{} `json:"-"`
	Columns       []string                 `json:"columns,omitempty"`
	RowsAffected  int64                    `json:"rows_affected,omitempty"`
	ExecutionTime int                      `json:"execution_time"`
	Error         *QueryError              `json:"error,omitempty"`
}
