package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
)

var vouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "Render the payment voucher workbook for a session",
	Long: "Writes one .xlsx with a sheet per tariff component (Galian, Samplingan, Timbunan, " +
		"Kompensasi, Angkutan, Langsiran). The file is named after the license and the voucher date.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		date := model.DateOf(time.Now())
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			d, ok := model.ParseDate(s)
			if !ok {
				return eris.Errorf("vouchers: invalid --date %q", s)
			}
			date = d
		}

		if p, _ := cmd.Flags().GetString("profile"); p != "" {
			cfg.Voucher.Profile = p
		}
		if dir, _ := cmd.Flags().GetString("out-dir"); dir != "" {
			cfg.Voucher.OutputDir = dir
		}

		env, err := initEnv(ctx, "vouchers")
		if err != nil {
			return err
		}
		defer env.Close()

		doc, err := cfg.Voucher.Document(date)
		if err != nil {
			return eris.Wrap(err, "vouchers: document")
		}
		if place, _ := cmd.Flags().GetString("place"); place != "" {
			doc.Place = place
		}
		if license, _ := cmd.Flags().GetString("license"); license != "" {
			doc.License = license
		}

		path, err := env.Service.RenderVouchers(ctx, stepSession, doc, cfg.Voucher.OutputDir)
		if err != nil {
			return eris.Wrap(err, "vouchers")
		}

		zap.L().Info("vouchers written",
			zap.String("session", stepSession),
			zap.String("path", path),
		)
		return nil
	},
}

func init() {
	vouchersCmd.Flags().StringVarP(&stepSession, "session", "s", "", "session id (required)")
	vouchersCmd.Flags().String("date", "", "voucher date, e.g. 2025-06-26 (default today)")
	vouchersCmd.Flags().String("place", "", "place printed before the date (default from config)")
	vouchersCmd.Flags().String("license", "", "IUP OP license number (default from config)")
	vouchersCmd.Flags().String("profile", "", "YAML voucher profile overriding the configured text")
	vouchersCmd.Flags().String("out-dir", "", "directory for the workbook (default voucher.output_dir)")
	_ = vouchersCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(vouchersCmd)
}
