package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MaxwellKnight/csvg/internal/graph"
	"github.com/MaxwellKnight/csvg/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "output.csv", cfg.OutputFile)
	assert.Equal(t, "./", cfg.SourcePath)
	assert.Equal(t, "dot", cfg.Graphviz.Engine)
	assert.Equal(t, "png", cfg.Graphviz.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	// no object store configured by default
	assert.Empty(t, cfg.Store.Endpoint)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.OutputFile = "joined.csv"
	cfg.SourcePath = "/data/csv"
	cfg.Graphviz.Format = "svg"
	cfg.Log.Level = "debug"
	cfg.Store = StoreSettings{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "tables",
		Prefix:    "csv/",
	}
	require.NoError(t, Save(cfg, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output_file: mine.csv\n"), 0o644))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mine.csv", loaded.OutputFile)
	// unset keys keep their defaults
	assert.Equal(t, "dot", loaded.Graphviz.Engine)
	assert.Equal(t, "info", loaded.Log.Level)
}

func TestCSVPath(t *testing.T) {
	cfg := Default()
	cfg.SourcePath = "data"
	assert.Equal(t, filepath.Join("data", "users.csv"), cfg.CSVPath("users"))
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, CacheExists(dir))

	users := table.New("users")
	require.NoError(t, users.SetHeaders([]string{"id", "name"}))
	orders := table.New("orders")
	require.NoError(t, orders.SetHeaders([]string{"id", "user_id"}))
	orders.AddForeignKey("user_id", "users", "id")
	g := graph.Build([]*table.Descriptor{users, orders})

	require.NoError(t, WriteCache(g, dir))
	assert.True(t, CacheExists(dir))

	back, err := ReadCache(dir)
	require.NoError(t, err)
	assert.Equal(t, g.NodeCount(), back.NodeCount())
	assert.Equal(t, g.EdgeCount(), back.EdgeCount())

	i, err := back.FindNode("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "user_id"}, back.Node(i).Headers)
}

func TestReadCacheMissing(t *testing.T) {
	_, err := ReadCache(t.TempDir())
	require.Error(t, err)
}
