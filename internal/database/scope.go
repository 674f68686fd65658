package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrScopeReleased is returned when a released scope is used again.
var ErrScopeReleased = errors.New("database scope already released")

type scopeKey struct{}

// Manager hands out request scopes over a shared connection pool.
type Manager struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewManager constructs a connection manager for db.
func NewManager(db *gorm.DB, logger zerolog.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: logger.With().Str("component", "db_scope").Logger(),
	}
}

// DB exposes the underlying pool for tooling that runs outside a request.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping checks that the pool can still reach the database.
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Scope owns at most one database connection for the lifetime of a single request.
// A scope is used by one request goroutine and is not safe for concurrent use.
type Scope struct {
	manager  *Manager
	ctx      context.Context
	conn     *sql.Conn
	handle   *gorm.DB
	tx       *gorm.DB
	released bool
}

// NewScope binds a new, still unconnected scope to ctx.
func (m *Manager) NewScope(ctx context.Context) *Scope {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Scope{manager: m, ctx: ctx}
}

// WithScope attaches scope to ctx so repositories further down the call chain share its connection.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope carried by ctx, if any.
func ScopeFromContext(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	scope, _ := ctx.Value(scopeKey{}).(*Scope)
	return scope
}

// Acquire returns the scope's connection, pinning one from the pool on first use.
func (s *Scope) Acquire() (*gorm.DB, error) {
	if s.released {
		return nil, ErrScopeReleased
	}
	if s.handle != nil {
		return s.handle, nil
	}

	sqlDB, err := s.manager.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	conn, err := sqlDB.Conn(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	handle := s.manager.db.Session(&gorm.Session{Context: s.ctx, NewDB: true})
	handle.Statement.ConnPool = conn

	s.conn = conn
	s.handle = handle
	return handle, nil
}

// Acquired reports whether the scope currently holds a connection.
func (s *Scope) Acquired() bool {
	return s.conn != nil
}

// InTransaction reports whether a transaction is open on the scope.
func (s *Scope) InTransaction() bool {
	return s.tx != nil
}

// Begin opens the request transaction on the scope's connection.
func (s *Scope) Begin() (*gorm.DB, error) {
	if s.tx != nil {
		return nil, fmt.Errorf("transaction already open on scope")
	}
	handle, err := s.Acquire()
	if err != nil {
		return nil, err
	}

	tx := handle.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	s.tx = tx
	return tx, nil
}

// Commit commits the open transaction. It is a no-op without one.
func (s *Scope) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the open transaction. It is a no-op without one.
func (s *Scope) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Transaction runs fn inside the scope's transaction. When one is already open fn runs in a
// savepoint of it instead.
func (s *Scope) Transaction(fn func(tx *gorm.DB) error) (err error) {
	if s.tx != nil {
		return s.tx.Transaction(fn)
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = s.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			s.manager.logger.Error().Err(rbErr).Msg("rollback after failed transaction")
		}
		return err
	}
	return s.Commit()
}

// Release rolls back any open transaction and returns the connection to the pool. Calling it on a
// scope that never acquired a connection, or more than once, does nothing.
func (s *Scope) Release() error {
	s.released = true
	if s.conn == nil {
		return nil
	}

	var errs []error
	if s.tx != nil {
		s.manager.logger.Warn().Msg("releasing scope with open transaction, rolling back")
		if err := s.Rollback(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
	}

	s.conn = nil
	s.handle = nil
	return errors.Join(errs...)
}

// Conn resolves the handle repositories should use for ctx: the scope's open transaction, then the
// scope's connection, then fallback when ctx carries no scope.
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	scope := ScopeFromContext(ctx)
	if scope == nil {
		return fallback.WithContext(ctx)
	}
	if scope.tx != nil {
		return scope.tx.WithContext(ctx)
	}

	handle, err := scope.Acquire()
	if err != nil {
		failed := fallback.WithContext(ctx)
		_ = failed.AddError(err)
		return failed
	}
	return handle.WithContext(ctx)
}

// WithinTransaction runs fn inside the transaction of the scope carried by ctx. Without a scope, a
// short-lived one is opened for the call so repositories still share a single connection.
func (m *Manager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	scope := ScopeFromContext(ctx)
	if scope == nil {
		scope = m.NewScope(ctx)
		ctx = WithScope(ctx, scope)
		defer func() {
			if err := scope.Release(); err != nil {
				m.logger.Warn().Err(err).Msg("failed to release transaction scope")
			}
		}()
	}

	return scope.Transaction(func(*gorm.DB) error {
		return fn(ctx)
	})
}
