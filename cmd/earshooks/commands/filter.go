package commands

import (
	"bufio"
	"fmt"
	"strings"
)

// FilterCmd implements the 'filter' command.
type FilterCmd struct {
	Dropped bool     `help:"Print excluded paths with the reason instead of kept paths"`
	Paths   []string `arg:"" optional:"" help:"Candidate source paths; read one per line from stdin when omitted"`
}

func (f *FilterCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	filter := cfg.SourceFilter()

	paths := f.Paths
	if len(paths) == 0 {
		scanner := bufio.NewScanner(g.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				paths = append(paths, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read candidate paths: %w", err)
		}
	}

	kept, dropped := filter.Partition(paths)
	if f.Dropped {
		for _, p := range dropped {
			_, _ = fmt.Fprintf(g.Stdout, "%s\t%s\n", p, filter.Reason(p))
		}
		return nil
	}
	for _, p := range kept {
		_, _ = fmt.Fprintln(g.Stdout, p)
	}
	return nil
}
