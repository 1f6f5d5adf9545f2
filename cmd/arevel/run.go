package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"text/tabwriter"

	"arevel/internal/sheet"
	"arevel/internal/store"
	"arevel/internal/util"

	"gopkg.in/yaml.v3"
)

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// runSheet evaluates the sheet at path and prints its results. It reports
// whether any cell evaluated to an error.
func runSheet(ctx context.Context, path string, config util.Configuration, st *store.Store, out io.Writer) (bool, error) {
	doc, err := sheet.Load(path)
	if err != nil {
		return false, err
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	s, err := sheet.Build(doc, newEnvironment(config))
	if err != nil {
		return false, err
	}
	results, err := s.Run(ctx)
	if err != nil {
		return false, err
	}

	if err := writeResults(out, results, format); err != nil {
		return false, err
	}

	if st != nil {
		runID, err := st.SaveRun(ctx, doc.Name, results)
		if err != nil {
			return false, fmt.Errorf("failed to save results: %w", err)
		}
		slog.Info("results saved", slog.String("sheet", doc.Name), slog.Int64("run", runID))
	}

	for _, r := range results {
		if r.Error != "" {
			return true, nil
		}
	}
	return false, nil
}

type resultDoc struct {
	ID    uint64 `yaml:"id"`
	Name  string `yaml:"name,omitempty"`
	Input string `yaml:"input"`
	Value string `yaml:"value,omitempty"`
	Error string `yaml:"error,omitempty"`
}

func writeResults(out io.Writer, results []sheet.CellResult, format string) error {
	switch format {
	case "yaml":
		docs := make([]resultDoc, 0, len(results))
		for _, r := range results {
			d := resultDoc{ID: r.ID, Name: r.Name, Input: r.Input, Error: r.Error}
			if r.Error == "" {
				d.Value = r.Repr
			}
			docs = append(docs, d)
		}
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(map[string][]resultDoc{"results": docs})

	case "text", "":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, r := range results {
			name := r.Name
			if name == "" {
				name = fmt.Sprintf("#%d", r.ID)
			}
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\t%s\terror: %s\n", name, r.Input, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t= %s\n", name, r.Input, r.Repr)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
