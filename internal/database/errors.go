package database

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

// ErrInvalidDatabaseURL indicates the provided database URL could not be parsed.
var ErrInvalidDatabaseURL = errors.New("invalid database URL")

// ErrUnsupportedPlatform indicates a database URL scheme with no driver.
var ErrUnsupportedPlatform = errors.New("unsupported database platform")

// ErrConnectionFailed indicates a connection to the database could not be established.
var ErrConnectionFailed = errors.New("database connection failed")

// ErrLockNotAcquired indicates the advisory lock is already held by another process.
var ErrLockNotAcquired = errors.New("migration lock not acquired")

// ExecError is a statement rejected by the database.
type ExecError struct {
	Platform  string
	Code      string // driver specific: MySQL error number, SQLSTATE, SQLite result code
	Statement string
	Err       error
}

func (e *ExecError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: executing %q: %v", e.Platform, e.Statement, e.Err)
	}

	return fmt.Sprintf("%s: executing %q: [%s] %v", e.Platform, e.Statement, e.Code, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Classify wraps a driver error for stmt in an *ExecError. A nil err stays nil.
func Classify(platform, stmt string, err error) error {
	if err == nil {
		return nil
	}

	return &ExecError{
		Platform:  platform,
		Code:      ErrorCode(err),
		Statement: stmt,
		Err:       err,
	}
}

// ErrorCode extracts the driver specific code from err, or "" if err did
// not come from a known driver.
func ErrorCode(err error) string {
	if pgErr, ok := AsPgError(err); ok {
		return pgErr.Code
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return strconv.Itoa(liteErr.Code())
	}

	return ""
}

// AsPgError unwraps a PostgreSQL server error.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}
