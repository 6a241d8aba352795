package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/chazu/detgeo/pkg/config"
	"github.com/chazu/detgeo/pkg/units"
)

func main() {
	var (
		list    = flag.Bool("list", false, "list the available commands and exit")
		mesh    = flag.Bool("mesh", false, "tessellate the built module (overrides DETGEO_MESH)")
		history = flag.Bool("history", false, "print the applied commands as a replayable macro")
		lines   multiFlag
	)
	flag.Var(&lines, "c", "apply a command line before the macros, e.g. -c '/det/calo/width 40 cm' (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: detgeo [flags] [macro files...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *mesh {
		cfg.Mesh = true
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	defer app.Close()

	if *list {
		w := bufio.NewWriter(os.Stdout)
		for _, l := range app.Commands() {
			fmt.Fprintln(w, l)
		}
		w.Flush()
		return
	}

	for _, l := range lines {
		if err := app.Apply(l); err != nil {
			log.Fatalf("-c %q: %v", l, err)
		}
	}

	var source strings.Builder
	for _, path := range flag.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read macro: %v", err)
		}
		source.Write(b)
		source.WriteByte('\n')
	}

	result := app.Evaluate(source.String())
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				log.Printf("error (line %d): %s", e.Line, e.Message)
			} else {
				log.Printf("error: %s", e.Message)
			}
		}
		os.Exit(1)
	}

	for i, c := range result.Components {
		if i > 0 && !cfg.Verbose {
			break
		}
		log.Printf("%-10s %s", c.Name, c.Dimensions)
	}
	log.Printf("%d volumes, length %s", result.Volumes,
		units.Format(units.Length, result.Components[0].Dimensions.Length))
	if cfg.Mesh {
		st := result.Stats
		log.Printf("%d meshes (%d sensitive), %d triangles", st.Meshes, st.Sensitive, st.Triangles)
	}
	if *history {
		fmt.Print(app.History())
	}
}

// multiFlag collects repeated string flags.
type multiFlag []string

func (f *multiFlag) String() string { return strings.Join(*f, "; ") }

func (f *multiFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}
