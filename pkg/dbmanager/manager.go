package dbmanager

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hq040506/DL-student-assistant/pkg/redis"
)

const (
	healthInterval = 2 * time.Minute
	statusTTL      = 10 * time.Minute
)

// DatabaseDriver interface that all database drivers must implement
type DatabaseDriver interface {
	Connect(config ConnectionConfig) (*Connection, error)
	Disconnect(conn *Connection) error
	Ping(conn *Connection) error
	IsAlive(conn *Connection) bool
}

// Manager owns the named database connections of the process
type Manager struct {
	connections map[string]*Connection    // name -> connection
	drivers     map[string]DatabaseDriver // type -> driver
	mu          sync.RWMutex
	redisRepo   redis.IRedisRepositories // optional status cache
	stopHealth  chan struct{}
	stopOnce    sync.Once
}

// NewManager creates a connection manager. redisRepo may be nil.
func NewManager(redisRepo redis.IRedisRepositories) *Manager {
	m := &Manager{
		connections: make(map[string]*Connection),
		drivers:     make(map[string]DatabaseDriver),
		redisRepo:   redisRepo,
		stopHealth:  make(chan struct{}),
	}
	go m.startHealthRoutine()
	return m
}

// RegisterDriver registers a new database driver
func (m *Manager) RegisterDriver(dbType string, driver DatabaseDriver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[dbType] = driver
}

// Connect opens a connection and stores it under name
func (m *Manager) Connect(name string, config ConnectionConfig) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, exists := m.connections[name]; exists && conn.Status == StatusConnected {
		return nil, fmt.Errorf("connection already exists: %s", name)
	}

	driver, exists := m.drivers[config.Type]
	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	conn, err := driver.Connect(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	conn.LastUsed = time.Now()
	m.connections[name] = conn

	m.cacheStatus(name, StatusConnected)
	return conn, nil
}

// GetConnection returns the active connection stored under name
func (m *Manager) GetConnection(name string) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, exists := m.connections[name]
	if !exists {
		return nil, fmt.Errorf("no connection found: %s", name)
	}
	if conn.Status != StatusConnected {
		return nil, fmt.Errorf("connection %s is not active: %s", name, conn.Error)
	}
	conn.LastUsed = time.Now()
	return conn, nil
}

// Status reports the last known state of a connection
func (m *Manager) Status(name string) ConnectionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if conn, exists := m.connections[name]; exists {
		return conn.Status
	}
	return StatusDisconnected
}

// Disconnect closes a database connection
func (m *Manager) Disconnect(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, exists := m.connections[name]
	if !exists {
		return fmt.Errorf("no connection found: %s", name)
	}
	driver, exists := m.drivers[conn.Config.Type]
	if !exists {
		return fmt.Errorf("driver not found for type: %s", conn.Config.Type)
	}
	if err := driver.Disconnect(conn); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	m.clearStatus(name)
	delete(m.connections, name)
	return nil
}

func (m *Manager) startHealthRoutine() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkHealth()
		case <-m.stopHealth:
			return
		}
	}
}

// checkHealth pings every connection and records the outcome
func (m *Manager) checkHealth() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, conn := range m.connections {
		driver, exists := m.drivers[conn.Config.Type]
		if !exists {
			log.Printf("Manager -> checkHealth -> Driver not found for type: %s", conn.Config.Type)
			continue
		}
		if err := driver.Ping(conn); err != nil {
			if conn.Status != StatusError {
				log.Printf("Manager -> checkHealth -> Connection %s lost: %v", name, err)
			}
			conn.Status = StatusError
			conn.Error = err.Error()
			m.cacheStatus(name, StatusError)
			continue
		}
		if conn.Status != StatusConnected {
			log.Printf("Manager -> checkHealth -> Connection %s restored", name)
		}
		conn.Status = StatusConnected
		conn.Error = ""
		m.cacheStatus(name, StatusConnected)
	}
}

// Stop gracefully stops the manager and closes every connection
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopHealth) })

	m.mu.Lock()
	defer m.mu.Unlock()

	for name, conn := range m.connections {
		driver, exists := m.drivers[conn.Config.Type]
		if !exists {
			continue
		}
		if err := driver.Disconnect(conn); err != nil {
			log.Printf("Manager -> Stop -> Failed to disconnect %s: %v", name, err)
		}
		m.clearStatus(name)
	}
	m.connections = make(map[string]*Connection)
	return nil
}

func statusKey(name string) string {
	return fmt.Sprintf("conn:%s", name)
}

func (m *Manager) cacheStatus(name string, status ConnectionStatus) {
	if m.redisRepo == nil {
		return
	}
	ctx := context.Background()
	pipe := m.redisRepo.StartPipeline(ctx)
	pipe.Set(ctx, statusKey(name), string(status), statusTTL)
	if err := pipe.Execute(ctx); err != nil {
		log.Printf("Manager -> cacheStatus -> Failed to cache connection state: %v", err)
	}
}

func (m *Manager) clearStatus(name string) {
	if m.redisRepo == nil {
		return
	}
	if err := m.redisRepo.Del(statusKey(name), context.Background()); err != nil {
		log.Printf("Manager -> clearStatus -> Failed to remove connection state: %v", err)
	}
}
