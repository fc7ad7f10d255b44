package sqlstore

import (
	"context"
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/store"
	"prospectcrm/store/storetest"
)

func openTestDB(t *testing.T, now func() time.Time) *Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "crm_test.db"))
	require.NoError(t, err)
	return New(db, WithClock(now))
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.Backing {
		s := openTestDB(t, now)
		require.NoError(t, s.Migrate(context.Background()))
		return s
	})
}

func TestSQLiteStoreSeed(t *testing.T) {
	storetest.RunSeeded(t, func(t *testing.T, now func() time.Time) store.Backing {
		return openTestDB(t, now)
	})
}

func TestUnicodeLower(t *testing.T) {
	v, err := unicodeLower(nil, []driver.Value{"ÁLVAREZ Ñandú"})
	require.NoError(t, err)
	assert.Equal(t, "álvarez ñandú", v)

	v, err = unicodeLower(nil, []driver.Value{[]byte("ÉXITO")})
	require.NoError(t, err)
	assert.Equal(t, "éxito", v)

	v, err = unicodeLower(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLikePattern("50%"))
	assert.Equal(t, `a\_b`, escapeLikePattern("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLikePattern(`c:\dir`))
	assert.Equal(t, "plain", escapeLikePattern("plain"))
}
