package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"genebank/internal/catalog"
	"genebank/internal/core"
	"genebank/internal/permission"
	"genebank/pkg/domain"
)

func newImportCmd(configPath *string) *cobra.Command {
	var (
		file   string
		group  string
		public bool
		as     string
	)
	cmd := &cobra.Command{
		Use:       "import {accessions|accessionsets|institutes}",
		Short:     "Bulk create records from a CSV file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"accessions", "accessionsets", "institutes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			actor := a.operator()
			if as != "" {
				if actor, err = a.svc.Authenticate(ctx, as); err != nil {
					return fmt.Errorf("user %s: %w", as, err)
				}
			}
			var meta map[string]any
			if entity == domain.EntityAccession {
				meta = map[string]any{catalog.MetaGroup: group, catalog.MetaIsPublic: public}
			}
			n, err := a.svc.ImportCSV(ctx, actor, entity, content, meta)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s created\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	cmd.Flags().StringVar(&group, "group", "", "owner group of imported accessions")
	cmd.Flags().BoolVar(&public, "public", false, "mark imported accessions public")
	cmd.Flags().StringVar(&as, "as", "", "import as this user instead of the operator")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export {accessions|accessionsets|institutes}",
		Short:     "Write every record of an entity as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"accessions", "accessionsets", "institutes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return exportCSV(ctx, a.svc, a.operator(), entity, w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; stdout when empty")
	return cmd
}

func exportCSV(ctx context.Context, svc *core.Service, actor permission.Actor, entity domain.EntityType, w io.Writer) error {
	switch entity {
	case domain.EntityAccession:
		items, err := svc.ListAccessions(ctx, actor, core.Filter{}, nil)
		if err != nil {
			return err
		}
		return catalog.WriteAccessions(w, items, nil)
	case domain.EntityAccessionSet:
		items, err := svc.ListAccessionSets(ctx, actor, core.Filter{}, nil)
		if err != nil {
			return err
		}
		return catalog.WriteAccessionSets(w, items, nil)
	default:
		items, err := svc.ListInstitutes(ctx, actor, core.Filter{}, nil)
		if err != nil {
			return err
		}
		return catalog.WriteInstitutes(w, items, nil)
	}
}
