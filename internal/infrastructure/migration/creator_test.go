package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create_customers", "create_customers"},
		{"Add Phone Index", "add_phone_index"},
		{"  orders--total  ", "orders_total"},
		{"rename: products.sku!", "rename_products_sku"},
		{"v2 Backfill", "v2_backfill"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "Create Customers", "customer table")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_customers.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_customers.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Create Customers\n")
	assert.Contains(t, string(up), "-- customer table\n")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(rollback)")

	second, err := CreateMigration(dir, "add_orders", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.FileExists(t, second.UpPath)
}

func TestCreateMigration_ContinuesAfterHighestVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_existing.up.sql"), nil, 0o644))

	mig, err := CreateMigration(dir, "next", "")

	require.NoError(t, err)
	assert.Equal(t, uint(8), mig.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(dir, "init", "")

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "***", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_create_products.up.sql",
		"000002_create_products.down.sql",
		"000001_create_customers.up.sql",
		"000001_create_customers.down.sql",
		"000003_create_orders.up.sql",
		"README.md",
		"embed.go",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000004_dir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)

	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, uint(1), migrations[0].Version)
	assert.Equal(t, "create_customers", migrations[0].Name)
	assert.NotEmpty(t, migrations[0].DownPath)
	assert.Equal(t, "create_orders", migrations[2].Name)
	assert.Empty(t, migrations[2].DownPath)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))

	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_RepositoryMigrations(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))

	require.NoError(t, err)
	require.Len(t, migrations, 3)
	for _, m := range migrations {
		assert.NotEmpty(t, m.UpPath, "version %d has no up file", m.Version)
		assert.NotEmpty(t, m.DownPath, "version %d has no down file", m.Version)
	}
}
