package executor

import (
	"context"

	"github.com/fossabot/person-db-skeleton/internal/database"
)

// ExecInTransaction runs fn inside a transaction on sess.
// On success the transaction is committed; on error it is rolled back.
func ExecInTransaction(ctx context.Context, sess Session, fn func(tx *database.TxConn) error) error {
	tx, err := sess.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer tx.Rollback() //nolint:errcheck // rollback on committed tx returns sql.ErrTxDone

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
