package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipcowcer-eng/LoadBalance/internal/csvio"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

type importFunc func(ctx context.Context, svc *service.Service, r io.Reader) (*service.ImportResult, error)

var importers = map[string]importFunc{
	"engineers": func(ctx context.Context, svc *service.Service, r io.Reader) (*service.ImportResult, error) {
		return svc.ImportEngineers(ctx, r)
	},
	"projects": func(ctx context.Context, svc *service.Service, r io.Reader) (*service.ImportResult, error) {
		return svc.ImportProjects(ctx, r)
	},
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "import <engineers|projects> <file>",
		Short:     "Import engineers or projects from CSV",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"engineers", "projects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			run, ok := importers[args[0]]
			if !ok {
				return fmt.Errorf("unknown import kind %q", args[0])
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := run(cmd.Context(), a.Service, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export <engineers|projects|allocations|workbook>",
		Short:     "Export data as CSV, or all of it as an XLSX workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"engineers", "projects", "allocations", "workbook"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.Service.ExportData(cmd.Context())
			if err != nil {
				return err
			}

			var write func(io.Writer) error
			switch args[0] {
			case "engineers":
				write = func(w io.Writer) error { return csvio.WriteEngineers(w, data.Engineers) }
			case "projects":
				write = func(w io.Writer) error { return csvio.WriteProjects(w, data.Projects) }
			case "allocations":
				write = func(w io.Writer) error { return csvio.WriteAllocations(w, data.Allocations, data.Names) }
			case "workbook":
				if out == "" {
					return fmt.Errorf("workbook export needs --out")
				}
				write = func(w io.Writer) error { return csvio.WriteWorkbook(w, data) }
			default:
				return fmt.Errorf("unknown export kind %q", args[0])
			}

			if out == "" {
				return write(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := write(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}
