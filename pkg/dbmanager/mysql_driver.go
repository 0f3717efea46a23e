package dbmanager

import (
	"fmt"
	"log"
	"net"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type MySQLDriver struct{}

func NewMySQLDriver() DatabaseDriver {
	return &MySQLDriver{}
}

// mysqlDSN renders a connection config in go-sql-driver format
func mysqlDSN(config ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = deref(config.Username)
	cfg.Passwd = deref(config.Password)
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.Host, config.Port)
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if config.SSLMode != "" && config.SSLMode != "disable" {
		cfg.TLSConfig = "preferred"
	}
	return cfg.FormatDSN()
}

func (d *MySQLDriver) Connect(config ConnectionConfig) (*Connection, error) {
	log.Printf("MySQL Driver -> Connect -> Connecting to %s:%s/%s", config.Host, config.Port, config.Database)

	db, err := gorm.Open(gormmysql.Open(mysqlDSN(config)), gormConfig())
	if err != nil {
		log.Printf("MySQL Driver -> Connect -> Connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return finishConnect("MySQL", db, config)
}

func (d *MySQLDriver) Disconnect(conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *MySQLDriver) Ping(conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *MySQLDriver) IsAlive(conn *Connection) bool {
	return d.Ping(conn) == nil
}
