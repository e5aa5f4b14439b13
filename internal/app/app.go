package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/imageboard"
	"github.com/five82/chanwatch/internal/config"
	"github.com/five82/chanwatch/internal/logging"
	"github.com/five82/chanwatch/internal/prefs"
	"github.com/five82/chanwatch/internal/state"
	"github.com/five82/chanwatch/internal/ui"
)

// Options configure the watcher.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/chanwatch/prefs.toml
	Board      string // empty uses the board saved in prefs
	ThreadIDs  []int  // empty follows the board's first page
	PollEvery  time.Duration
	LogLevel   string // overrides the configured level when set
}

// Run boots the watcher TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger, closer, err := logging.File(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx = logger.WithContext(ctx)

	boardName := strings.Trim(strings.TrimSpace(opts.Board), "/")
	if boardName == "" {
		boardName = userPrefs.Board
	}
	if boardName == "" {
		return fmt.Errorf("no board given and none saved in prefs")
	}

	client := imageboard.NewClient(
		api.NewClient(cfg.UserAgent, cfg.Timeout),
		imageboard.WithSite(cfg.Site),
		imageboard.WithHTTPS(cfg.HTTPS),
	)
	boards, err := client.Boards(ctx, boardName)
	if err != nil {
		return fmt.Errorf("open board %q: %w", boardName, err)
	}
	if userPrefs.Board != boardName {
		userPrefs.Board = boardName
		if err := prefs.Save(opts.PrefsPath, userPrefs); err != nil {
			logger.Warn().Err(err).Msg("failed to save prefs")
		}
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	watcher := NewWatcher(boards[0], opts.ThreadIDs)
	zerolog.Ctx(ctx).Info().Str("board", boardName).Ints("threads", opts.ThreadIDs).Dur("interval", interval).Msg("watching")
	StartPoller(ctx, store, watcher, interval)

	return ui.Run(ctx, ui.Options{
		Store:     store,
		Title:     boards[0].String(),
		ThemeName: userPrefs.Theme,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogFile,
	})
}
