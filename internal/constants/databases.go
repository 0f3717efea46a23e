package constants

// StudentsConnection is the dbmanager name of the students database connection.
const StudentsConnection = "students"

const (
	ConversationStoreRedis  = "redis"
	ConversationStoreSQLite = "sqlite"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxResultRows caps the rows of one result kept in a chat message.
	MaxResultRows = 200
)
