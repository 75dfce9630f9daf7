package cmd

import (
	"fmt"
	"log"
	"time"

	"db-sync/internal/dialect"
	"db-sync/internal/engine"
	"db-sync/internal/inspect"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	batchSize int
	tables    []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Heal the target schema and copy all rows from the source",
	Long: `Migrate runs the full pipeline: heal the target schema, copy every
modelled table present in the source, copy the configured legacy tables,
then verify row counts on both sides. Individual bad rows are skipped and
reported; only an unreachable database aborts the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srcEp, err := sourceEndpoint()
		if err != nil {
			return err
		}
		tgtEp, err := targetEndpoint()
		if err != nil {
			return err
		}
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		registry, legacy, err := filterTables(registry, legacyTables(), tables)
		if err != nil {
			return err
		}

		source, srcDialect, srcSchema, err := openEndpoint(srcEp)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		defer source.Close()

		target, tgtDialect, tgtSchema, err := openEndpoint(tgtEp)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		defer target.Close()

		fmt.Printf("🔄 Migrating %s (%s) -> %s (%s)\n", srcEp.DSN, srcEp.Driver, tgtEp.DSN, tgtEp.Driver)

		if !confirm("Start the migration?") {
			fmt.Println("Aborted.")
			return nil
		}

		size := viper.GetInt("settings.batch_size")
		if batchSize > 0 { // Flag override
			size = batchSize
		}

		ctx := engine.Context{
			Source:        source,
			SourceDialect: srcDialect,
			SourceSchema:  srcSchema,
			Target:        target,
			TargetDialect: tgtDialect,
			TargetSchema:  tgtSchema,
			Registry:      registry,
			LegacyTables:  legacy,
			BatchSize:     size,
		}

		// Pre-count source rows so the bar has a real total.
		total := countSourceRows(ctx)

		start := time.Now()

		var bar *uiprogress.Bar
		if total > 0 {
			uiprogress.Start()
			bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Migrating: "
			})
		}

		m := engine.New(ctx)
		if bar != nil {
			m.OnRow = func() { bar.Incr() }
		}
		report, err := m.Run()

		if bar != nil {
			uiprogress.Stop()
		}

		if err != nil {
			return err
		}

		elapsed := time.Since(start)

		fmt.Println("\n📊 Migration Report:")
		for i, t := range report.Tables {
			icon := "✓"
			status := "OK"
			switch {
			case t.Skipped:
				icon = "!"
				status = "SKIPPED: " + t.SkipReason
			case t.Failed > 0:
				icon = "!"
				status = fmt.Sprintf("%d rows skipped", t.Failed)
			}
			kind := "legacy"
			if t.Canonical {
				kind = "model"
			}
			fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (%s) - %s\n",
				icon, i+1, len(report.Tables), t.Table, t.Succeeded, kind, status)
		}

		fmt.Println("\n🔍 Verification (COUNT(*) source vs target):")
		for _, v := range report.Verification {
			icon := "✓"
			if !v.Match() {
				icon = "!"
			}
			fmt.Printf("[%s] %-20s : source=%d target=%d\n", icon, v.Table, v.SourceCount, v.TargetCount)
		}

		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total Rows: %d migrated, %d skipped\n", report.TotalSucceeded(), report.TotalFailed())
		log.Printf("Migration Done! Time Elapsed: %s", elapsed)
		return nil
	},
}

// countSourceRows totals COUNT(*) over every table the run would touch.
// Failures just shrink the total; this only feeds the progress bar.
func countSourceRows(ctx engine.Context) int {
	ins := inspect.New(ctx.Source, ctx.SourceDialect, ctx.SourceSchema)

	var names []string
	for _, t := range ctx.Registry.Tables() {
		names = append(names, t.Name)
	}
	for _, name := range ctx.LegacyTables {
		if _, ok := ctx.Registry.Lookup(name); !ok {
			names = append(names, name)
		}
	}

	total := 0
	for _, name := range names {
		exists, err := ins.TableExists(name)
		if err != nil || !exists {
			continue
		}
		var n int
		if err := ctx.Source.QueryRow(dialect.CountSQL(ctx.SourceDialect, name)).Scan(&n); err != nil {
			continue
		}
		total += n
	}
	return total
}

func init() {
	RootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().IntVar(&batchSize, "batch", 0, "rows per transaction batch (overrides config)")
	migrateCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to migrate (comma-separated)")
	viper.BindPFlag("settings.batch_size", migrateCmd.Flags().Lookup("batch"))
	viper.SetDefault("settings.batch_size", engine.DefaultBatchSize)
}
