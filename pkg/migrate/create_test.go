package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Offer Window!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_offer_window.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "-- +goose Up")
	require.Contains(t, string(data), "-- +goose Down")
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offers.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateDirRequiresDownSection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_offers.sql"), []byte("-- +goose Up\n"), 0o644))
	require.ErrorContains(t, ValidateDir(dir), "-- +goose Down")
}

func TestCreateSQLMigrationRequiresName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationSortsAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301090300_create_pricing_audit_log.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	lagging := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add offer priority", lagging)
	require.NoError(t, err)
	require.Equal(t, "20260301090301_add_offer_priority.sql", filepath.Base(path))

	current := time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC)
	path, err = createSQLMigration(dir, "add offer notes", current)
	require.NoError(t, err)
	require.Equal(t, "20261018123000_add_offer_notes.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}
