package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	defer db.Close()
	assert.FileExists(t, db.Path())

	// Reopening runs the migration again without error.
	db2, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}

func TestRecordAndHistory(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Record("M6600TB1234F", "com.a", ActionDisable, true, "Package com.a new state: disabled-user")
	require.NoError(t, err)
	_, err = db.Record("M6600TB1234F", "com.b", ActionDisable, false, "transport error")
	require.NoError(t, err)
	_, err = db.Record("OTHER", "com.c", ActionDisable, true, "")
	require.NoError(t, err)

	entries, err := db.History("M6600TB1234F")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "com.a", entries[0].Package)
	assert.True(t, entries[0].Success)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.Equal(t, "com.b", entries[1].Package)
	assert.False(t, entries[1].Success)
	assert.Equal(t, "transport error", entries[1].Detail)

	all, err := db.History("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDisabledPackages(t *testing.T) {
	db := openTestDB(t)
	const serial = "M6600TB1234F"
	record := func(pkg, action string, ok bool) {
		_, err := db.Record(serial, pkg, action, ok, "")
		require.NoError(t, err)
	}
	record("com.a", ActionDisable, true)
	record("com.b", ActionDisable, true)
	record("com.b", ActionEnable, true)
	record("com.c", ActionDisable, false)
	record("com.a", ActionEnable, false) // failed enable leaves com.a disabled
	record("com.d", ActionEnable, true)
	record("com.d", ActionDisable, true)

	pkgs, err := db.DisabledPackages(serial)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.a", "com.d"}, pkgs)

	none, err := db.DisabledPackages("OTHER")
	require.NoError(t, err)
	assert.Empty(t, none)

	s, err := db.Summary(serial)
	require.NoError(t, err)
	assert.Equal(t, DeviceSummary{Operations: 7, Failures: 2, Disabled: 2}, s)
}
