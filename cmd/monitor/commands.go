package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ahvar/team-activity-monitor/internal/http/dto"
	"github.com/ahvar/team-activity-monitor/internal/model"
	"github.com/ahvar/team-activity-monitor/internal/service"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var errIntegrationsUnavailable = errors.New("one or more integrations are unavailable")

type connectFunc func(ctx context.Context) (service.ActivityService, func(), error)

// app holds the service shared by every subcommand once the root command
// has connected.
type app struct {
	connect  connectFunc
	activity service.ActivityService
	cleanup  func()
}

// execute runs one command line. Connections opened by the root command are
// closed whether or not the command succeeded.
func execute(ctx context.Context, connect connectFunc, args []string, out, errOut io.Writer) error {
	a := &app{connect: connect}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func newRootCmd(a *app) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:           "monitor",
		Short:         "Answer questions about what team members are working on",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			activity, cleanup, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			a.activity, a.cleanup = activity, cleanup
			return nil
		},
	}

	rootCmd.AddCommand(askCmd(a))
	rootCmd.AddCommand(statusCmd(a))
	rootCmd.AddCommand(membersCmd(a))
	rootCmd.AddCommand(testAPIsCmd(a))

	return rootCmd
}

func askCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about a team member's activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			answer := a.activity.Ask(cmd.Context(), strings.Join(args, " "))
			return writeAnswer(cmd.OutOrStdout(), answer, format)
		},
	}

	cmd.Flags().StringP("format", "f", formatText, "Output format (text, json)")

	return cmd
}

func statusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report one member's activity without phrasing a question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			member, _ := cmd.Flags().GetString("member")
			intent, _ := cmd.Flags().GetString("intent")
			timeRange, _ := cmd.Flags().GetString("time-range")
			format, _ := cmd.Flags().GetString("format")

			answer, err := a.activity.Report(cmd.Context(), member, model.Intent(intent), model.TimeRange(timeRange))
			if err != nil {
				return err
			}
			return writeAnswer(cmd.OutOrStdout(), answer, format)
		},
	}

	cmd.Flags().StringP("member", "m", "", "Team member name")
	cmd.Flags().StringP("intent", "i", string(model.IntentActivitySummary),
		"What to report (activity_summary, issues_only, commits_only, pull_requests_only)")
	cmd.Flags().StringP("time-range", "t", string(model.TimeRangeRecent), "Time range (recent, this_week, all_time)")
	cmd.Flags().StringP("format", "f", formatText, "Output format (text, json)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func membersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List the configured team members and their identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range a.activity.Members() {
				fmt.Fprintf(out, "%s (issue tracker: %s, code host: %s)\n",
					m.Name, m.IssueTrackerIdentity(), m.CodeHostIdentity())
			}
			return nil
		},
	}
}

func testAPIsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-apis",
		Short: "Check connectivity to the issue tracker and code host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := a.activity.TestConnections(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, connectionLine("Issue tracker", status.IssueTracker))
			fmt.Fprintln(out, connectionLine("Code host", status.CodeHost))
			if !status.IssueTracker.Connected || !status.CodeHost.Connected {
				return errIntegrationsUnavailable
			}
			return nil
		},
	}
}

func connectionLine(role string, s service.ConnectionStatus) string {
	switch {
	case !s.Configured:
		return fmt.Sprintf("%s: not configured", role)
	case s.Connected:
		return fmt.Sprintf("%s (%s): connected", role, s.Name)
	default:
		return fmt.Sprintf("%s (%s): connection failed", role, s.Name)
	}
}

func writeAnswer(w io.Writer, answer service.Answer, format string) error {
	switch format {
	case formatText:
		_, err := fmt.Fprintln(w, answer.Text)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.ToAnswerResponse(answer))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
