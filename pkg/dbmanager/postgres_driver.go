package dbmanager

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresDriver struct{}

func NewPostgresDriver() DatabaseDriver {
	return &PostgresDriver{}
}

func (d *PostgresDriver) Connect(config ConnectionConfig) (*Connection, error) {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, deref(config.Username), deref(config.Password), config.Database, sslMode)

	log.Printf("PostgreSQL Driver -> Connect -> Connecting to %s:%s/%s", config.Host, config.Port, config.Database)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		log.Printf("PostgreSQL Driver -> Connect -> Connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return finishConnect("PostgreSQL", db, config)
}

func (d *PostgresDriver) Disconnect(conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *PostgresDriver) Ping(conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *PostgresDriver) IsAlive(conn *Connection) bool {
	return d.Ping(conn) == nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
}

// finishConnect configures the pool and verifies the connection with a ping
func finishConnect(label string, db *gorm.DB, config ConnectionConfig) (*Connection, error) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("%s Driver -> Connect -> Failed to get underlying *sql.DB: %v", label, err)
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		log.Printf("%s Driver -> Connect -> Ping failed: %v", label, err)
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	log.Printf("✨ Connected to %s.", label)
	return &Connection{
		DB:       db,
		LastUsed: time.Now(),
		Status:   StatusConnected,
		Config:   config,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
