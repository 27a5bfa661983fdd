package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/graph"
)

// CacheName is the graph cache file inside the config directory.
const CacheName = "graph.json"

// CacheExists reports whether a graph cache is present in dir.
func CacheExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CacheName))
	return err == nil
}

// WriteCache persists the graph's node-list/edge-list form to dir.
func WriteCache(g *graph.Graph, dir string) error {
	data, err := json.Marshal(g.ToSerializable())
	if err != nil {
		return errs.IO("serializing graph", err)
	}
	if err := os.WriteFile(filepath.Join(dir, CacheName), data, 0o644); err != nil {
		return errs.IO("writing graph cache", err)
	}
	return nil
}

// ReadCache reconstructs the cached graph from dir.
func ReadCache(dir string) (*graph.Graph, error) {
	data, err := os.ReadFile(filepath.Join(dir, CacheName))
	if err != nil {
		return nil, errs.IO("reading graph cache", err)
	}

	var s graph.Serializable
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.IO("decoding graph cache", err)
	}
	return graph.FromSerializable(&s), nil
}
