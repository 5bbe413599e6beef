package schema_test

import (
	"context"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

// recordingConn captures every statement it receives. failOn maps a
// statement to the error returned for it.
type recordingConn struct {
	platform string
	executed []string
	failOn   map[string]error
}

func newRecordingConn(platform string) *recordingConn {
	return &recordingConn{platform: platform, failOn: make(map[string]error)}
}

func (c *recordingConn) PlatformName() string { return c.platform }

func (c *recordingConn) Exec(_ context.Context, stmt string) (schema.Result, error) {
	if err, ok := c.failOn[stmt]; ok {
		return schema.Result{}, err
	}

	c.executed = append(c.executed, stmt)

	return schema.Result{RowsAffected: 1}, nil
}
