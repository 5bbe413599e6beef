//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossabot/person-db-skeleton/internal/database"
)

func TestAdvisoryLock(t *testing.T) {
	t.Parallel()

	for _, b := range backends() {
		t.Run(b.platform, func(t *testing.T) {
			t.Parallel()

			url := b.setup(t)
			ctx := context.Background()

			first := openEnv(t, url)
			second := openEnv(t, url)

			handle1, err := database.TryAcquireLock(ctx, first.sess)
			require.NoError(t, err)
			require.NotNil(t, handle1)

			handle2, err := database.TryAcquireLock(ctx, second.sess)
			assert.Nil(t, handle2)
			require.ErrorIs(t, err, database.ErrLockNotAcquired)

			require.NoError(t, handle1.Release(ctx))
			require.NoError(t, handle1.Release(ctx), "release is idempotent")

			handle2, err = database.TryAcquireLock(ctx, second.sess)
			require.NoError(t, err)
			require.NotNil(t, handle2)
			require.NoError(t, handle2.Release(ctx))
		})
	}
}

func TestLockHandle_Release_nilHandle_noError(t *testing.T) {
	t.Parallel()

	var handle *database.LockHandle

	err := handle.Release(context.Background())
	require.NoError(t, err)
}
