package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/session"
	"github.com/sells-group/gajian-cli/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage payroll sessions",
	Long:  "A session holds the cleaned field records and the location and worker tables between steps.",
}

// -- session new --

var sessionNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Start a new session and print its id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "session")
		if err != nil {
			return err
		}
		defer env.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		sess, err := env.Service.NewSession(ctx, name)
		if err != nil {
			return eris.Wrap(err, "session new")
		}

		zap.L().Info("session created", zap.String("session", sess.ID), zap.String("name", sess.Name))
		_, err = fmt.Fprintln(cmd.OutOrStdout(), sess.ID)
		return err
	},
}

// -- session list --

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "session")
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		list, err := env.Service.ListSessions(ctx, store.ListFilter{Limit: limit, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "session list")
		}
		if len(list) == 0 {
			_, err = fmt.Fprintln(cmd.ErrOrStderr(), "No sessions found.")
			return err
		}

		formatSessionList(cmd.OutOrStdout(), list)
		return nil
	},
}

// -- session show --

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session summary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "session")
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Service.Session(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "session show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			session.Summary
			Locations int `json:"locations"`
			Workers   int `json:"workers"`
		}{sess.Summary(), len(sess.Locations), len(sess.Workers)})
	},
}

// -- session drop --

var sessionDropCmd = &cobra.Command{
	Use:   "drop <session-id>",
	Short: "Discard a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "session")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Service.DropSession(ctx, args[0]); err != nil {
			return eris.Wrap(err, "session drop")
		}
		zap.L().Info("session dropped", zap.String("session", args[0]))
		return nil
	},
}

func init() {
	sessionListCmd.Flags().Int("limit", 50, "max number of sessions to display")
	sessionListCmd.Flags().Int("offset", 0, "number of sessions to skip")

	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDropCmd)
	rootCmd.AddCommand(sessionCmd)
}

// formatSessionList writes a tabular list of sessions to out.
func formatSessionList(out io.Writer, list []session.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tRECORDS\tCREATED\tUPDATED")
	for _, s := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Name, s.Records,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
