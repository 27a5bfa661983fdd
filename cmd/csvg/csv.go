package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/source"
	"github.com/MaxwellKnight/csvg/internal/stream"
	"github.com/MaxwellKnight/csvg/internal/table"
)

func runCSV(args []string) error {
	if len(args) == 0 {
		return errs.InvalidInput("usage: csvg csv <head|tail|select|drop|concat|join> [args]")
	}

	_, cfg, err := setup()
	if err != nil {
		return err
	}
	ctx := context.Background()
	src, err := rowSource(ctx, cfg)
	if err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "head", "tail":
		return csvPreview(ctx, src, sub, rest)
	case "select", "drop":
		return csvProject(ctx, src, sub, rest)
	case "concat":
		return csvConcat(ctx, src, rest)
	case "join":
		return csvJoin(ctx, src, rest)
	default:
		return errs.InvalidInput(fmt.Sprintf("unknown csv subcommand %q", sub))
	}
}

// output resolves the -o flag: stdout when empty, otherwise a file with
// extension-driven compression.
func output(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errs.IO("creating output file", err)
	}
	w, finish, err := source.NewCompressor(f, path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return w, func() error {
		if err := finish(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}

// descriptorFor builds a descriptor for tbl from its stream's header line.
func descriptorFor(ctx context.Context, src source.Source, tbl string) (*table.Descriptor, error) {
	rc, err := src.Open(ctx, tbl)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errs.IO("reading header", err)
		}
		return nil, errs.InvalidInput(fmt.Sprintf("table %q is empty", tbl))
	}

	t := table.New(tbl)
	if err := t.SetHeaders(stream.SplitLine(sc.Text())); err != nil {
		return nil, err
	}
	return t, nil
}

func csvPreview(ctx context.Context, src source.Source, sub string, args []string) error {
	fs := flag.NewFlagSet("csv "+sub, flag.ExitOnError)
	lines := fs.Int("lines", 10, "number of lines to display")
	out := fs.String("o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errs.InvalidInput(fmt.Sprintf("usage: csvg csv %s <table> [-lines n]", sub))
	}

	rc, err := src.Open(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer rc.Close()

	w, finish, err := output(*out)
	if err != nil {
		return err
	}

	if sub == "head" {
		err = stream.Head(rc, w, *lines)
	} else {
		err = stream.Tail(rc, w, *lines)
	}
	if err != nil {
		finish()
		return err
	}
	return finish()
}

func csvProject(ctx context.Context, src source.Source, sub string, args []string) error {
	fs := flag.NewFlagSet("csv "+sub, flag.ExitOnError)
	out := fs.String("o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errs.InvalidInput(fmt.Sprintf("usage: csvg csv %s <table> <column>...", sub))
	}
	tbl, columns := fs.Arg(0), fs.Args()[1:]

	desc, err := descriptorFor(ctx, src, tbl)
	if err != nil {
		return err
	}
	rc, err := src.Open(ctx, tbl)
	if err != nil {
		return err
	}
	defer rc.Close()

	w, finish, err := output(*out)
	if err != nil {
		return err
	}

	if sub == "select" {
		err = stream.Select(desc, rc, w, columns)
	} else {
		err = stream.Drop(desc, rc, w, columns)
	}
	if err != nil {
		finish()
		return err
	}
	return finish()
}

func csvConcat(ctx context.Context, src source.Source, args []string) error {
	fs := flag.NewFlagSet("csv concat", flag.ExitOnError)
	out := fs.String("o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errs.InvalidInput("at least two tables are needed to concat")
	}
	tables := fs.Args()

	desc, err := descriptorFor(ctx, src, tables[0])
	if err != nil {
		return err
	}

	inputs := make([]io.Reader, 0, len(tables))
	closers := make([]io.Closer, 0, len(tables))
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, tbl := range tables {
		rc, err := src.Open(ctx, tbl)
		if err != nil {
			return err
		}
		inputs = append(inputs, rc)
		closers = append(closers, rc)
	}

	w, finish, err := output(*out)
	if err != nil {
		return err
	}
	if err := stream.Concat(desc, w, inputs...); err != nil {
		finish()
		return err
	}
	return finish()
}

func csvJoin(ctx context.Context, src source.Source, args []string) error {
	fs := flag.NewFlagSet("csv join", flag.ExitOnError)
	kindName := fs.String("type", "inner", "join type (inner, left, right, full)")
	out := fs.String("o", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 4 {
		return errs.InvalidInput("usage: csvg csv join <left> <right> <left-column> <right-column> [-type t]")
	}
	leftTbl, rightTbl := fs.Arg(0), fs.Arg(1)
	leftCol, rightCol := fs.Arg(2), fs.Arg(3)

	kind, err := stream.ParseKind(strings.ToLower(*kindName))
	if err != nil {
		return err
	}

	desc, err := descriptorFor(ctx, src, leftTbl)
	if err != nil {
		return err
	}
	left, err := src.Open(ctx, leftTbl)
	if err != nil {
		return err
	}
	defer left.Close()
	right, err := src.Open(ctx, rightTbl)
	if err != nil {
		return err
	}
	defer right.Close()

	w, finish, err := output(*out)
	if err != nil {
		return err
	}
	if err := stream.Join(desc, left, right, w, leftCol, rightCol, kind); err != nil {
		finish()
		return err
	}
	return finish()
}
