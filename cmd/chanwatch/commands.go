package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/imageboard"
	"github.com/five82/chanwatch/internal/app"
	"github.com/five82/chanwatch/internal/config"
	"github.com/five82/chanwatch/internal/logging"
)

type rootFlags struct {
	configPath string
	prefsPath  string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "chanwatch",
		Short:         "Read and watch imageboard threads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "prefs file for the watcher")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newWatchCommand(flags),
		newThreadCommand(flags),
		newThreadsCommand(flags),
		newFilesCommand(flags),
		newBoardsCommand(flags),
		newExistsCommand(flags),
	)
	return root
}

// connect loads the config and returns a client whose logger, attached to
// the returned context, writes to stderr.
func connect(ctx context.Context, flags *rootFlags) (context.Context, *imageboard.Client, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return ctx, nil, fmt.Errorf("load config: %w", err)
	}
	levelName := cfg.LogLevel
	if flags.logLevel != "" {
		levelName = flags.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return ctx, nil, err
	}
	logger := logging.Console(os.Stderr, level)
	ctx = logger.WithContext(ctx)

	client := imageboard.NewClient(
		api.NewClient(cfg.UserAgent, cfg.Timeout),
		imageboard.WithSite(cfg.Site),
		imageboard.WithHTTPS(cfg.HTTPS),
	)
	return ctx, client, nil
}

func newWatchCommand(flags *rootFlags) *cobra.Command {
	var poll time.Duration
	cmd := &cobra.Command{
		Use:   "watch [board] [thread ids...]",
		Short: "Watch threads, or the first page of a board, in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{
				ConfigPath: flags.configPath,
				PrefsPath:  flags.prefsPath,
				PollEvery:  poll,
				LogLevel:   flags.logLevel,
			}
			if len(args) > 0 {
				opts.Board = args[0]
				ids, err := parseThreadIDs(args[1:])
				if err != nil {
					return err
				}
				opts.ThreadIDs = ids
			}
			return app.Run(cmd.Context(), opts)
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "refresh interval (default from config)")
	return cmd
}

func newThreadCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <board> <id>",
		Short: "Print the posts of a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			thread, err := getThread(ctx, client, args[0], args[1])
			if err != nil {
				return err
			}
			printThread(cmd, thread)
			return nil
		},
	}
}

func newThreadsCommand(flags *rootFlags) *cobra.Command {
	var page int
	var all, expand bool
	cmd := &cobra.Command{
		Use:   "threads <board>",
		Short: "List the threads on a board page, or on the whole board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			board := client.Board(normalizeBoard(args[0]))

			var threads []*imageboard.Thread
			if all || expand {
				threads, err = board.GetAllThreads(ctx, expand)
			} else {
				threads, err = board.GetThreads(ctx, page)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPAGE\tREPLIES\tIMAGES\tSUBJECT")
			for _, t := range threads {
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\n", t.ID(), t.Page(), t.NumReplies(), t.NumImages(), t.Topic().Subject())
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "board page, starting at 1")
	cmd.Flags().BoolVar(&all, "all", false, "list every thread from the catalog")
	cmd.Flags().BoolVar(&expand, "expand", false, "fetch every thread in full (implies --all)")
	return cmd
}

func newFilesCommand(flags *rootFlags) *cobra.Command {
	var thumbs bool
	cmd := &cobra.Command{
		Use:   "files <board> <id>",
		Short: "Print the file URLs of a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			thread, err := getThread(ctx, client, args[0], args[1])
			if err != nil {
				return err
			}
			urls := thread.FileURLs()
			if thumbs {
				urls = thread.ThumbnailURLs()
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&thumbs, "thumbs", false, "print thumbnail URLs instead")
	return cmd
}

func newBoardsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List the boards of the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			boards, err := client.AllBoards(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BOARD\tTITLE\tWORKSAFE\tPAGES")
			for _, b := range boards {
				row, err := boardRow(ctx, b)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, row)
			}
			return w.Flush()
		},
	}
}

func boardRow(ctx context.Context, b *imageboard.Board) (string, error) {
	title, err := b.Title(ctx)
	if err != nil {
		return "", fmt.Errorf("read metadata of %s: %w", b, err)
	}
	worksafe, err := b.IsWorksafe(ctx)
	if err != nil {
		return "", fmt.Errorf("read metadata of %s: %w", b, err)
	}
	pages, err := b.PageCount(ctx)
	if err != nil {
		return "", fmt.Errorf("read metadata of %s: %w", b, err)
	}
	return fmt.Sprintf("%s\t%s\t%t\t%d", b, title, worksafe, pages), nil
}

func newExistsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <board> <id>",
		Short: "Report whether a thread still exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			id, err := parseThreadID(args[1])
			if err != nil {
				return err
			}
			exists, err := client.Board(normalizeBoard(args[0])).ThreadExists(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		},
	}
}

func getThread(ctx context.Context, client *imageboard.Client, boardName, rawID string) (*imageboard.Thread, error) {
	id, err := parseThreadID(rawID)
	if err != nil {
		return nil, err
	}
	board := client.Board(normalizeBoard(boardName))
	return board.GetThread(ctx, id, imageboard.FailIfMissing())
}

func printThread(cmd *cobra.Command, t *imageboard.Thread) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", t.SemanticURL(), t.Topic().Subject())
	for _, p := range t.Posts() {
		name := p.Name()
		if name == "" {
			name = "Anonymous"
		}
		fmt.Fprintf(out, "\nNo.%d  %s%s  %s\n", p.Number(), name, p.Tripcode(), p.Time().Format(time.DateTime))
		for _, f := range p.Files() {
			fmt.Fprintf(out, "  file: %s (%s)\n", f.OriginalFilename(), f.URL())
		}
		if text := p.TextComment(); text != "" {
			for _, line := range strings.Split(text, "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
	}
}

func normalizeBoard(name string) string {
	return strings.Trim(strings.TrimSpace(name), "/")
}

func parseThreadID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid thread id %q", raw)
	}
	return id, nil
}

func parseThreadIDs(raw []string) ([]int, error) {
	ids := make([]int, 0, len(raw))
	for _, r := range raw {
		id, err := parseThreadID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
