// Command csvg is the command-line shell around the csvg engine: SQL
// schema analysis, schema-graph queries, and streaming CSV operations.
//
// Usage:
//
//	csvg init [-force]
//	csvg path
//	csvg graph [-regenerate] <create|shortest-path|mst|display|join> [args]
//	csvg csv <head|tail|select|drop|concat|join> [args]
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MaxwellKnight/csvg/internal/config"
	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/extract"
	"github.com/MaxwellKnight/csvg/internal/graph"
	"github.com/MaxwellKnight/csvg/internal/logger"
	"github.com/MaxwellKnight/csvg/internal/source"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init", "I", "initialize":
		err = runInit(os.Args[2:])
	case "graph", "G":
		err = runGraph(os.Args[2:])
	case "csv":
		err = runCSV(os.Args[2:])
	case "path":
		err = runPath()
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Default().ErrorWith("command failed", err, nil)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: csvg <init|graph|csv|path> [args]")
}

// setup ensures the config directory exists, loads settings, and points
// the global logger at the configured level and format.
func setup() (string, *config.Config, error) {
	dir, err := config.EnsureDir()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return "", nil, err
	}
	logger.SetGlobal(logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}))
	return dir, cfg, nil
}

func runInit(args []string) error {
	force := len(args) > 0 && (args[0] == "-force" || args[0] == "--force")

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		fmt.Printf("Config file already exists at %s. Use -force to overwrite.\n", config.RelPath(cfgPath))
		return nil
	}

	if _, err := config.EnsureDir(); err != nil {
		return err
	}
	if err := config.Save(config.Default(), dir); err != nil {
		return err
	}
	fmt.Printf("Configuration file created at %s\n", config.RelPath(cfgPath))

	schema := config.FindSQLSchema()
	if schema == "" {
		fmt.Println("No SQL schema found in the current directory.")
		return nil
	}
	fmt.Printf("Found SQL schema: %s\n", schema)
	if err := buildCacheFromSchema(schema, dir); err != nil {
		return err
	}
	fmt.Println("SQL schema processed successfully.")
	return nil
}

func runPath() error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	fmt.Println(dir)
	return nil
}

// buildCacheFromSchema extracts descriptors from the schema file, builds
// the graph, and caches it.
func buildCacheFromSchema(schemaPath, dir string) error {
	text, err := os.ReadFile(schemaPath)
	if err != nil {
		return errs.IO("reading schema file", err)
	}
	tables, err := extract.NewDDL(string(text)).Extract(context.Background())
	if err != nil {
		return err
	}
	g := graph.Build(tables)
	if err := config.WriteCache(g, dir); err != nil {
		return err
	}
	fmt.Printf("Graph data cached in %s\n", config.RelPath(filepath.Join(dir, config.CacheName)))
	return nil
}

// rowSource picks the configured row source: the object store when a
// store endpoint is set, the local source path otherwise.
func rowSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	if cfg.Store.Endpoint == "" {
		return source.NewDir(cfg.SourcePath), nil
	}
	return source.NewBucket(ctx, source.BucketConfig{
		Endpoint:  cfg.Store.Endpoint,
		AccessKey: cfg.Store.AccessKey,
		SecretKey: cfg.Store.SecretKey,
		UseSSL:    cfg.Store.UseSSL,
		Region:    cfg.Store.Region,
		Bucket:    cfg.Store.Bucket,
		Prefix:    cfg.Store.Prefix,
	})
}

// loadGraph returns the cached graph, regenerating it from the schema in
// the working directory when forced or absent.
func loadGraph(dir string, regenerate bool) (*graph.Graph, error) {
	if regenerate || !config.CacheExists(dir) {
		schema := config.FindSQLSchema()
		if schema == "" {
			return nil, errs.InvalidInput("no SQL schema found in the current directory")
		}
		logger.Info("generating new graph data")
		if err := buildCacheFromSchema(schema, dir); err != nil {
			return nil, err
		}
	}
	return config.ReadCache(dir)
}
