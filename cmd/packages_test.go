package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FluidXR/wearctl/internal/adb"
	"github.com/FluidXR/wearctl/internal/config"
	"github.com/FluidXR/wearctl/internal/journal"
	"github.com/FluidXR/wearctl/internal/packages"
	"github.com/FluidXR/wearctl/internal/session"
)

// fakeADB stands in for adb with one authorized watch reached over wireless
// debugging. The package manager refuses com.missing the way a real device
// does: an error on stderr and exit status 255.
const fakeADB = `#!/bin/sh
if [ "$1" = "devices" ]; then
	echo "List of devices attached"
	echo "192.168.1.40:5555      device product:mobvoi_catshark model:Ticwatch_E transport_id:3"
	exit 0
fi
if [ "$1" = "-s" ]; then
	shift 2
fi
case "$1" in
get-state) echo "device" ;;
shell)
	shift
	pkg=$(echo "$*" | awk '{print $NF}')
	case "$*" in
	"getprop ro.serialno") echo "M6600TB1234F" ;;
	"pm disable-user --user 0 com.missing")
		echo "Error: java.lang.IllegalArgumentException: Unknown package: com.missing" >&2
		exit 255
		;;
	"pm disable-user --user 0 "*) echo "Package $pkg new state: disabled-user" ;;
	"pm enable "*) echo "Package $pkg new state: enabled" ;;
	esac
	;;
esac
`

func connectFakeWatch(t *testing.T) *watchSession {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake adb is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "adb")
	require.NoError(t, os.WriteFile(path, []byte(fakeADB), 0o755))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()
	cfg.ADBPath = path
	picker := &adb.Picker{Client: adb.NewClient(path), Logger: log}
	mgr := session.NewManager(picker, session.Options{Logger: log})

	ctx := context.Background()
	require.NoError(t, mgr.ConnectTransport(ctx))
	require.NoError(t, mgr.ConnectProtocol(ctx, nil))
	w := &watchSession{mgr: mgr, picker: picker, cfg: cfg}
	w.identify(ctx)
	t.Cleanup(w.Close)
	return w
}

func openJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWatchSession_SerialIsHardwareSerial(t *testing.T) {
	w := connectFakeWatch(t)
	assert.Equal(t, "192.168.1.40:5555", w.picker.Selected())
	assert.Equal(t, "M6600TB1234F", w.Serial())
}

func TestRunBatch_RefusedPackageIsRecordedAsFailure(t *testing.T) {
	w := connectFakeWatch(t)
	db := openJournal(t)

	err := runBatch(context.Background(), db, w, []string{"com.a", "com.missing", "com.b"}, packages.DisableAll)
	assert.EqualError(t, err, "1 of 3 packages failed")

	entries, err := db.History("M6600TB1234F")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Success)
	assert.Equal(t, "com.missing", entries[1].Package)
	assert.False(t, entries[1].Success)
	assert.Contains(t, entries[1].Detail, "Unknown package: com.missing")
	assert.True(t, entries[2].Success)

	disabled, err := db.DisabledPackages("M6600TB1234F")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.a", "com.b"}, disabled)

	summary, err := db.Summary("M6600TB1234F")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 2, summary.Disabled)

	other, err := db.History("192.168.1.40:5555")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRunBatch_RestoreEnablesDisabledPackages(t *testing.T) {
	w := connectFakeWatch(t)
	db := openJournal(t)
	ctx := context.Background()

	require.NoError(t, runBatch(ctx, db, w, []string{"com.a"}, packages.DisableAll))
	pkgs, err := db.DisabledPackages(w.Serial())
	require.NoError(t, err)
	require.Equal(t, []string{"com.a"}, pkgs)

	require.NoError(t, runBatch(ctx, db, w, pkgs, packages.EnableAll))
	pkgs, err = db.DisabledPackages(w.Serial())
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}
