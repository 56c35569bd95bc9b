package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/domain/knowledge"
	"github.com/synthfhir/synthfhir/pkg/contract"
)

func knowledgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect and build the RAG knowledge base",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show indexed documents per resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := knowledge.NewController(a.client(), a.logger)
			st, err := ctl.RefreshStatus(cmd.Context())
			if err != nil {
				return err
			}
			return a.printKnowledgeStatus(st)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "index <resource>",
		Short: "Index the DDL and guidelines of one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := contract.ParseResourceKind(args[0])
			if err != nil {
				return err
			}
			ctl := knowledge.NewController(a.client(), a.logger)
			resp, err := ctl.Index(cmd.Context(), kind)
			return a.printIndexResult(ctl, resp, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "index-all",
		Short: "Index every enabled resource and the global guidelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := knowledge.NewController(a.client(), a.logger)
			resp, err := ctl.IndexAll(cmd.Context())
			return a.printIndexResult(ctl, resp, err)
		},
	})

	var target string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a .txt, .pdf or .csv guideline and index it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := contract.ParseUploadTarget(target)
			if err != nil {
				return err
			}
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ctl := knowledge.NewController(a.client(), a.logger)
			resp, err := ctl.Upload(cmd.Context(), knowledge.Document{Name: filepath.Base(path), Content: f}, t)
			return a.printIndexResult(ctl, resp, err)
		},
	}
	upload.Flags().StringVar(&target, "target", "global", "Resource the document applies to, or \"global\"")
	cmd.AddCommand(upload)

	return cmd
}

// printIndexResult reports the action and the refreshed status. A failed
// refresh after a successful action is reported but still shows the action.
func (a *app) printIndexResult(ctl *knowledge.Controller, resp *contract.IndexResponse, err error) error {
	if resp == nil {
		return err
	}
	if a.structured() {
		if perr := a.printOutput(map[string]any{"result": resp, "status": ctl.Status()}); perr != nil {
			return perr
		}
		return err
	}
	a.printf("Indexed %d chunk(s) for %s.\n\n", resp.ChunksIndexed, resp.Resource)
	if st := ctl.Status(); st != nil {
		if perr := a.printKnowledgeStatus(st); perr != nil {
			return perr
		}
	}
	return err
}

func (a *app) printKnowledgeStatus(st *contract.KnowledgeStatus) error {
	if a.structured() {
		return a.printOutput(st)
	}
	rows := [][]string{}
	for _, kind := range contract.AllResourceKinds() {
		rs, ok := st.Resources[kind]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			kind.DisplayName(),
			yesNo(rs.DDLExists),
			yesNo(rs.KnowledgeExists),
			strconv.Itoa(rs.DocumentCount),
		})
	}
	a.printTable([]string{"Resource", "DDL", "Knowledge", "Documents"}, rows)
	a.printf("\nTotal indexed documents: %d\n", st.TotalDocuments)
	return nil
}
