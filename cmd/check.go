package cmd

import (
	"fmt"
	"log"
	"sort"

	"db-sync/internal/reconcile"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report schema drift without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ep, err := targetEndpoint()
		if err != nil {
			return err
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		registry, _, err = filterTables(registry, nil, tables)
		if err != nil {
			return err
		}

		db, d, schemaName, err := openEndpoint(ep)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("🔄 Connected via %s, inspecting %d table models\n", ep.Driver, registry.Len())

		log.Println("Comparing live schema against table models...")
		rec := reconcile.New(db, d, schemaName, registry)
		diffs := rec.Run(false)

		if len(diffs) == 0 {
			fmt.Println("✓ No drift detected: all tables match their models.")
			return nil
		}

		names := make([]string, 0, len(diffs))
		for name := range diffs {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("\n📋 Drift Report (%d tables):\n", len(names))
		for _, name := range names {
			diff := diffs[name]
			if diff.MissingTable {
				fmt.Printf("  [%s] table missing entirely\n", name)
				continue
			}
			for _, col := range diff.MissingColumns {
				fmt.Printf("  [%s] missing column %s (%s)\n", name, col.Name, col.Type)
			}
			for _, tm := range diff.TypeMismatches {
				fmt.Printf("  [%s] column %s: expected %s, found %s (%s)\n",
					name, tm.Column, tm.Expected, tm.Actual, tm.ActualRaw)
			}
			for _, nm := range diff.NullableMismatches {
				fmt.Printf("  [%s] column %s: nullable expected=%v actual=%v\n",
					name, nm.Column, nm.Expected, nm.Actual)
			}
			for _, extra := range diff.ExtraColumns {
				fmt.Printf("  [%s] extra column %s (retained)\n", name, extra)
			}
		}
		fmt.Println("\nRun `db-sync heal` to add the missing tables and columns.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to check (comma-separated)")
}
