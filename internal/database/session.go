package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// StatementLogger receives every statement before it is sent.
type StatementLogger interface {
	SQL(query string, args ...any)
}

// Session is one pinned connection. Session settings issued through it
// stay in effect for every later statement, including those run inside
// transactions begun from it.
type Session struct {
	conn     *sqlx.Conn
	platform string
	log      StatementLogger
}

var (
	_ schema.Connection = (*Session)(nil)
	_ schema.Connection = (*TxConn)(nil)
)

// Session checks out a dedicated connection from the pool. The caller
// must Close it.
func (db *DB) Session(ctx context.Context, log StatementLogger) (*Session, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Session{conn: conn, platform: db.Platform, log: log}, nil
}

// PlatformName implements schema.Connection.
func (s *Session) PlatformName() string { return s.platform }

// Exec implements schema.Connection.
func (s *Session) Exec(ctx context.Context, stmt string) (schema.Result, error) {
	return execOn(ctx, s.conn, s.platform, s.log, stmt)
}

// Conn exposes the pinned connection for ledger queries.
func (s *Session) Conn() *sqlx.Conn { return s.conn }

// BeginTx starts a transaction on the pinned connection.
func (s *Session) BeginTx(ctx context.Context) (*TxConn, error) {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", Classify(s.platform, "BEGIN", err))
	}

	return &TxConn{tx: tx, platform: s.platform, log: s.log}, nil
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// TxConn is a transaction on a Session.
type TxConn struct {
	tx       *sqlx.Tx
	platform string
	log      StatementLogger
}

// PlatformName implements schema.Connection.
func (t *TxConn) PlatformName() string { return t.platform }

// Exec implements schema.Connection.
func (t *TxConn) Exec(ctx context.Context, stmt string) (schema.Result, error) {
	return execOn(ctx, t.tx, t.platform, t.log, stmt)
}

// Tx exposes the transaction for ledger queries.
func (t *TxConn) Tx() *sqlx.Tx { return t.tx }

// Commit commits the transaction.
func (t *TxConn) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return Classify(t.platform, "COMMIT", err)
	}

	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction
// returns sql.ErrTxDone.
func (t *TxConn) Rollback() error {
	return t.tx.Rollback()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execOn(ctx context.Context, ex execer, platform string, log StatementLogger, stmt string) (schema.Result, error) {
	if log != nil {
		log.SQL(stmt)
	}

	res, err := ex.ExecContext(ctx, stmt)
	if err != nil {
		return schema.Result{}, Classify(platform, stmt, err)
	}

	// Not every driver reports affected rows for DDL.
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}

	return schema.Result{RowsAffected: n}, nil
}
