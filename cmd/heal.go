package cmd

import (
	"fmt"
	"log"

	"db-sync/internal/reconcile"

	"github.com/spf13/cobra"
)

var healCmd = &cobra.Command{
	Use:   "heal",
	Short: "Add missing tables and columns to match the table models",
	Long: `Heal compares the target database against the canonical table models and
creates whatever is missing. It is strictly additive: existing columns, even
unknown ones, are never altered or dropped. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ep, err := targetEndpoint()
		if err != nil {
			return err
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		db, d, schemaName, err := openEndpoint(ep)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("🔄 Connected via %s, healing against %d table models\n", ep.Driver, registry.Len())

		if !confirm("Apply CREATE TABLE / ADD COLUMN statements to this database?") {
			fmt.Println("Aborted.")
			return nil
		}

		log.Println("Reconciling schema...")
		rec := reconcile.New(db, d, schemaName, registry)
		diffs := rec.Run(true)

		if len(diffs) == 0 {
			fmt.Println("✓ Nothing to do: all tables already match their models.")
			return nil
		}

		created, columns := 0, 0
		for _, diff := range diffs {
			if diff.MissingTable {
				created++
			} else {
				columns += len(diff.MissingColumns)
			}
		}
		fmt.Printf("✓ Healing done: %d tables created, %d columns added across %d drifted tables.\n",
			created, columns, len(diffs))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(healCmd)
}
