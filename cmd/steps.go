package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/pivot"
	"github.com/sells-group/gajian-cli/internal/session"
	"github.com/sells-group/gajian-cli/internal/stage"
	"github.com/sells-group/gajian-cli/internal/tableio"
	"github.com/sells-group/gajian-cli/internal/tariff"
	"github.com/sells-group/gajian-cli/internal/workflow"
)

var (
	stepSession string
	stepOut     string
)

// -- ingest --

var ingestCmd = &cobra.Command{
	Use:   "ingest <field-file>",
	Short: "Clean a field record upload (.csv or .xlsx) into the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importTable(cmd, "session", args[0], (*workflow.Service).Ingest)
	},
}

// -- locations --

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Export or import the location date-window template",
}

var locationsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the location template as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "session", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			locations, err := svc.Locations(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return stage.LocationTable(locations), nil
		})
	},
}

var locationsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the location table with an edited template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importTable(cmd, "session", args[0], (*workflow.Service).ImportLocations)
	},
}

// -- workers --

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Export or import the worker price-tier template",
}

var workersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the worker template as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "session", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			workers, err := svc.Workers(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return stage.WorkerTable(workers), nil
		})
	},
}

var workersImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the worker table with an edited template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importTable(cmd, "session", args[0], (*workflow.Service).ImportWorkers)
	},
}

// -- derived tables --

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Write the cleaned field records as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "session", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			records, err := svc.Records(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return stage.RecordTable(records), nil
		})
	},
}

var enrichedCmd = &cobra.Command{
	Use:   "enriched",
	Short: "Write the windowed working set with transport and tiers as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "session", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			records, err := svc.Enriched(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return stage.EnrichedTable(records), nil
		})
	},
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Compute the six tariff components and write them as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "calculate", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			records, err := svc.Calculate(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return tariff.Table(records), nil
		})
	},
}

var pivotCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Write the per-site tariff summary with a grand total as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportTable(cmd, "calculate", func(ctx context.Context, svc *workflow.Service) (*tableio.Table, error) {
			rows, err := svc.Pivot(ctx, stepSession)
			if err != nil {
				return nil, err
			}
			return pivot.Table(rows), nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{ingestCmd, locationsCmd, workersCmd, recordsCmd, enrichedCmd, calculateCmd, pivotCmd} {
		c.PersistentFlags().StringVarP(&stepSession, "session", "s", "", "session id (required)")
		_ = c.MarkPersistentFlagRequired("session")
	}
	for _, c := range []*cobra.Command{locationsExportCmd, workersExportCmd, recordsCmd, enrichedCmd, calculateCmd, pivotCmd} {
		c.Flags().StringVarP(&stepOut, "out", "o", "", "write CSV to this path instead of stdout")
	}

	locationsCmd.AddCommand(locationsExportCmd)
	locationsCmd.AddCommand(locationsImportCmd)
	workersCmd.AddCommand(workersExportCmd)
	workersCmd.AddCommand(workersImportCmd)

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(enrichedCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(pivotCmd)
}

type importFunc func(*workflow.Service, context.Context, string, *tableio.Table) (*session.Session, error)

// importTable reads path and applies it to the session with apply.
func importTable(cmd *cobra.Command, mode, path string, apply importFunc) error {
	ctx := cmd.Context()

	t, err := tableio.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "%s: read %s", cmd.Name(), path)
	}

	env, err := initEnv(ctx, mode)
	if err != nil {
		return err
	}
	defer env.Close()

	sess, err := apply(env.Service, ctx, stepSession, t)
	if err != nil {
		return eris.Wrap(err, cmd.CommandPath())
	}

	zap.L().Info(cmd.CommandPath()+" complete",
		zap.String("session", sess.ID),
		zap.String("file", path),
		zap.Int("records", len(sess.Records)),
		zap.Int("locations", len(sess.Locations)),
		zap.Int("workers", len(sess.Workers)),
	)
	return nil
}

// exportTable builds a table with build and writes it as CSV to --out or
// stdout.
func exportTable(cmd *cobra.Command, mode string, build func(context.Context, *workflow.Service) (*tableio.Table, error)) error {
	ctx := cmd.Context()

	env, err := initEnv(ctx, mode)
	if err != nil {
		return err
	}
	defer env.Close()

	t, err := build(ctx, env.Service)
	if err != nil {
		return eris.Wrap(err, cmd.CommandPath())
	}
	if t.Len() == 0 {
		zap.L().Warn(cmd.CommandPath()+": table is empty", zap.String("session", stepSession))
	}

	return writeCSV(cmd.OutOrStdout(), stepOut, t)
}

func writeCSV(stdout io.Writer, path string, t *tableio.Table) error {
	if path == "" {
		return tableio.EncodeCSV(stdout, t)
	}
	if err := tableio.WriteCSVFile(path, t); err != nil {
		return err
	}
	zap.L().Info("table written", zap.String("path", path), zap.Int("rows", t.Len()))
	return nil
}
