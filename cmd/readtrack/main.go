package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"readtrack/internal/bootstrap"
	sessionoutadapter "readtrack/internal/modules/session/adapter/out"
	sessiondto "readtrack/internal/modules/session/dto"
	"readtrack/internal/platform/config"
	"readtrack/internal/platform/logging"
	statsview "readtrack/internal/ui/views/stats"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir string
	userID  int64
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "readtrack",
		Short:         "Reading session timer and statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().Int64Var(&flags.userID, "user", 0, "user id (overrides config)")

	root.AddCommand(newTimerCmd(flags))
	root.AddCommand(newNoteCmd(flags))
	root.AddCommand(newMediaCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newSessionsCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".local", "share", "readtrack")
	}
	return "."
}

// loadApp wires the application. Logs go to logOutput, or stderr when nil.
func loadApp(ctx context.Context, flags *globalFlags, logOutput io.Writer) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if flags.userID != 0 {
		cfg.UserID = flags.userID
	}
	if logOutput == nil {
		logOutput = os.Stderr
	}
	logger, err := logging.New(logOutput, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logger = logger.With("user_id", cfg.UserID)
	return bootstrap.New(ctx, cfg, logger, logOutput)
}

func newTimerCmd(flags *globalFlags) *cobra.Command {
	var category, target, pluginPath string
	var plain bool

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time a reading session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fullScreen := !plain && pluginPath == "" && term.IsTerminal(os.Stdout.Fd())

			var logOutput io.Writer
			if fullScreen {
				cfg, err := config.Load(flags.dataDir)
				if err != nil {
					return err
				}
				logFile, err := openLogFile(cfg.LogPath())
				if err != nil {
					return err
				}
				defer logFile.Close()
				logOutput = logFile
			}
			app, err := loadApp(ctx, flags, logOutput)
			if err != nil {
				return err
			}
			defer app.Close()

			if fullScreen {
				summary, ok, err := bootstrap.RunTimer(ctx, app, category, target)
				if ok {
					printSummary(cmd.OutOrStdout(), summary)
				}
				return err
			}

			if pluginPath == "" {
				pluginPath = app.Config.Display.Plugin
			}
			var sink sessiondto.DisplaySink = sessionoutadapter.NewWriterDisplay(cmd.OutOrStdout())
			if pluginPath != "" {
				display, err := app.OpenPluginDisplay(ctx, pluginPath)
				if err != nil {
					return err
				}
				sink = display
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reading... press enter to stop")
			out, err := bootstrap.RunPlain(ctx, app, sink, category, target, cmd.InOrStdin())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category (book or topic) to read")
	cmd.Flags().StringVar(&target, "target", "main", "display target the timer renders to")
	cmd.Flags().BoolVar(&plain, "plain", false, "print updates as lines instead of drawing a screen")
	cmd.Flags().StringVar(&pluginPath, "plugin", "", "display plugin binary (overrides config)")
	return cmd
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func printSummary(w io.Writer, out sessiondto.StopOutput) {
	if !out.Stopped {
		_, _ = fmt.Fprintln(w, "no running session")
		return
	}
	_, _ = fmt.Fprintf(w, "session %s: %s, %d notes, %d media notes\n",
		out.SessionID, formatDuration(out.DurationSeconds), out.NoteCount, out.MediaNoteCount)
	if !out.Persisted {
		_, _ = fmt.Fprintln(w, "warning: the session could not be saved")
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func newNoteCmd(flags *globalFlags) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Save a text note in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Note(cmd.Context(), app.Config.UserID, args[0], category)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "note saved: %s category=%d\n", out.NoteID, out.CategoryID)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category the note belongs to")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newMediaCmd(flags *globalFlags) *cobra.Command {
	var category, caption string
	cmd := &cobra.Command{
		Use:   "media <photo|video|voice|document> <file-ref>",
		Short: "Save a media note in a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Media(cmd.Context(), app.Config.UserID, args[0], args[1], caption, category)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "media note saved: %s category=%d\n", out.NoteID, out.CategoryID)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category the note belongs to")
	cmd.Flags().StringVar(&caption, "caption", "", "optional caption")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var days, width int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.StatsCLI.Report(cmd.Context(), app.Config.UserID, days)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), statsview.Render(out, width))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window size in days (defaults to config)")
	cmd.Flags().IntVar(&width, "width", 0, "wrap the report to this width")
	return cmd
}

func newSessionsCmd(flags *globalFlags) *cobra.Command {
	sessions := &cobra.Command{Use: "sessions", Short: "Session maintenance"}
	sessions.AddCommand(&cobra.Command{
		Use:   "recover",
		Short: "Mark sessions left open by a crashed process as interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.Recover(cmd.Context(), app.Config.UserID)
			if err != nil {
				return err
			}
			app.Logger.LogAttrs(cmd.Context(), slog.LevelInfo, "sessions recovered", slog.Int("count", out.Recovered))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recovered %d sessions\n", out.Recovered)
			return nil
		},
	})
	return sessions
}
