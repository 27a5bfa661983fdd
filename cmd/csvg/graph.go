package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/config"
	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/graph"
	"github.com/MaxwellKnight/csvg/internal/orchestrate"
	"github.com/MaxwellKnight/csvg/internal/render"
)

func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	regenerate := fs.Bool("regenerate", false, "force regeneration of the graph cache")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, cfg, err := setup()
	if err != nil {
		return err
	}
	g, err := loadGraph(dir, *regenerate)
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil
	}

	switch rest[0] {
	case "create", "display":
		return graphDisplay(g, cfg, "graph", displayFormat(rest[1:], cfg))
	case "mst":
		return graphDisplay(g.MinimumSpanningTree(), cfg, "mst", cfg.Graphviz.Format)
	case "shortest-path", "sp", "shortest":
		if len(rest) < 3 {
			return errs.InvalidInput("usage: csvg graph shortest-path <from> <to>")
		}
		return graphShortestPath(g, rest[1], rest[2])
	case "join":
		if len(rest) < 3 {
			return errs.InvalidInput("usage: csvg graph join <left-table> <right-table>")
		}
		return graphJoin(g, cfg, rest[1], rest[2])
	default:
		return errs.InvalidInput(fmt.Sprintf("unknown graph subcommand %q", rest[0]))
	}
}

func displayFormat(args []string, cfg *config.Config) string {
	fs := flag.NewFlagSet("graph display", flag.ExitOnError)
	format := fs.String("format", cfg.Graphviz.Format, "output format (png, pdf)")
	_ = fs.Parse(args)
	return *format
}

func graphDisplay(g *graph.Graph, cfg *config.Config, name, format string) error {
	r := render.New(cfg.Graphviz.Engine)
	dotPath, err := r.WriteDOT(cfg.OutputPath, name, g.DOT())
	if err != nil {
		return err
	}
	outPath, err := r.Render(dotPath, cfg.OutputPath, name, format)
	if err != nil {
		return err
	}
	return render.Open(outPath)
}

func graphShortestPath(g *graph.Graph, from, to string) error {
	fromID, err := g.FindNode(from)
	if err != nil {
		return err
	}
	toID, err := g.FindNode(to)
	if err != nil {
		return err
	}
	path, err := g.ShortestPath(fromID, toID)
	if err != nil {
		return err
	}
	fmt.Printf("Shortest path: %s\n", strings.Join(g.PathNames(path), " -> "))
	return nil
}

func graphJoin(g *graph.Graph, cfg *config.Config, left, right string) error {
	ctx := context.Background()
	src, err := rowSource(ctx, cfg)
	if err != nil {
		return err
	}
	orc := orchestrate.New(src)
	if _, err := orc.JoinAlongPath(ctx, g, left, right, os.Stdout); err != nil {
		return err
	}
	return nil
}
