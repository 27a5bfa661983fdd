// Package render is the shim around the external Graphviz renderer: it
// writes DOT descriptions to disk, shells out to the configured engine,
// and opens the result in the platform viewer. The core never depends on
// rendering succeeding.
package render

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/logger"
)

// Renderer invokes a Graphviz engine on DOT files.
type Renderer struct {
	// Engine is the layout command, e.g. "dot".
	Engine string
}

// New returns a renderer using the given engine ("dot" when empty).
func New(engine string) *Renderer {
	if engine == "" {
		engine = "dot"
	}
	return &Renderer{Engine: engine}
}

// WriteDOT saves dot content under dir as <name>.dot and returns the path.
func (r *Renderer) WriteDOT(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.IO("creating output directory", err)
	}
	path := filepath.Join(dir, name+".dot")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errs.IO("writing dot file", err)
	}
	logger.Infof("DOT file saved to %s", path)
	return path, nil
}

// Render runs the engine on dotPath, producing <dir>/<name>.<format>, and
// returns the output path.
func (r *Renderer) Render(dotPath, dir, name, format string) (string, error) {
	outPath := filepath.Join(dir, fmt.Sprintf("%s.%s", name, format))

	cmd := exec.Command(r.Engine, "-T"+format, dotPath, "-o", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errs.IO(fmt.Sprintf("running %s: %s", r.Engine, string(out)), err)
	}
	logger.Infof("%s file saved to %s", format, outPath)
	return outPath, nil
}

// Open launches the platform's default viewer on path.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/C", "start", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		logger.Warnf("unsupported platform %s: open %s manually", runtime.GOOS, path)
		return nil
	}
	if err := cmd.Start(); err != nil {
		return errs.IO("opening file", err)
	}
	return nil
}
