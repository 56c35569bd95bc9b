package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/domain/results"
	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/pkg/contract"
	"github.com/synthfhir/synthfhir/pkg/pagination"
)

func resultsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "View, export and copy the last generated records",
	}

	var limit, offset int
	show := &cobra.Command{
		Use:   "show [resource]",
		Short: "List handed-off record sets, or preview one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, closeFn, err := a.resultsController(cmd)
			defer closeFn()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return a.printOverview(ctl)
			}
			kind, err := contract.ParseResourceKind(args[0])
			if err != nil {
				return err
			}
			if a.structured() {
				records, err := ctl.Records(kind)
				if err != nil {
					return err
				}
				start, end := pagination.New(limit, offset, results.PreviewRows).Window(len(records))
				return a.printOutput(records[start:end])
			}
			p, err := ctl.Preview(kind, pagination.Params{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			a.printPreview(p)
			return nil
		},
	}
	show.Flags().IntVar(&limit, "limit", results.PreviewRows, "Records per page")
	show.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "export <resource>",
		Short: "Export a record set as CSV with PHI columns hashed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := contract.ParseResourceKind(args[0])
			if err != nil {
				return err
			}
			ctl, closeFn, err := a.resultsController(cmd)
			defer closeFn()
			if err != nil {
				return err
			}
			meta, err := ctl.Export(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("export %s: %w", kind, err)
			}
			if a.structured() {
				return a.printOutput(meta)
			}
			where := meta.Location
			if where == "" {
				where = meta.Name
			}
			a.printf("Saved %s (%d bytes, sha256 %s)\n", where, meta.Size, meta.Hash)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "copy <resource>",
		Short: "Print the first records of a set as JSON for pasting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := contract.ParseResourceKind(args[0])
			if err != nil {
				return err
			}
			ctl, closeFn, err := a.resultsController(cmd)
			defer closeFn()
			if err != nil {
				return err
			}
			text, err := ctl.CopyText(kind)
			if err != nil {
				return err
			}
			a.printf("%s\n", text)
			return nil
		},
	})

	return cmd
}

// resultsController reads the bridge session and returns a loaded
// controller. Exports are saved under DOWNLOAD_DIR.
func (a *app) resultsController(cmd *cobra.Command) (*results.Controller, func(), error) {
	ctx := cmd.Context()
	b, closeFn, err := a.openBridge(ctx)
	if err != nil {
		return nil, closeFn, err
	}
	files, err := blobstore.NewDiskStore(a.cfg.DownloadDir)
	if err != nil {
		return nil, closeFn, fmt.Errorf("open download dir: %w", err)
	}
	ctl := results.NewController(a.client(), b, files, a.logger)
	if _, err := ctl.Load(ctx); err != nil {
		return nil, closeFn, err
	}
	return ctl, closeFn, nil
}

func (a *app) printOverview(ctl *results.Controller) error {
	counts := ctl.Resources()
	if a.structured() {
		out := make(map[contract.ResourceKind]int, len(counts))
		for _, rc := range counts {
			out[rc.Kind] = rc.Records
		}
		return a.printOutput(out)
	}
	if !ctl.HasData() {
		a.printf("No generated data in session %q. Run 'synthfhir generate' first.\n", a.cfg.BridgeSession)
		return nil
	}
	rows := make([][]string, 0, len(counts))
	for _, rc := range counts {
		rows = append(rows, []string{rc.Kind.DisplayName(), string(rc.Kind), strconv.Itoa(rc.Records)})
	}
	a.printTable([]string{"Resource", "Kind", "Records"}, rows)
	return nil
}

func (a *app) printPreview(p results.Preview) {
	if p.Total == 0 {
		a.printf("No %s records.\n", p.Kind)
		return
	}
	headers := append([]string{}, p.Columns...)
	if p.MoreColumns {
		headers = append(headers, "...")
	}
	rows := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		row := append([]string{}, r.Cells...)
		if p.MoreColumns {
			hidden := ""
			if r.Hidden > 0 {
				hidden = fmt.Sprintf("+%d more", r.Hidden)
			}
			row = append(row, hidden)
		}
		rows = append(rows, row)
	}
	a.printTable(headers, rows)
	if footer := p.Footer(); footer != "" {
		a.printf("\n%s\n", footer)
	}
	var hints []string
	if off, ok := p.Previous(); ok {
		hints = append(hints, fmt.Sprintf("previous: --offset %d --limit %d", off, p.Page.Limit))
	}
	if off, ok := p.Next(); ok {
		hints = append(hints, fmt.Sprintf("next: --offset %d --limit %d", off, p.Page.Limit))
	}
	if len(hints) > 0 {
		a.printf("%s\n", strings.Join(hints, "  "))
	}
}
