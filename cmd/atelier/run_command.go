package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"atelier/internal/assets"
	"atelier/internal/chat"
	"atelier/internal/content"
	"atelier/internal/history"
	"atelier/internal/localcache"
	"atelier/internal/logging"
	"atelier/internal/workspace"
)

// newRunCommand boots the full workspace stack and keeps it alive until the
// process is signalled. The desktop shell embeds the same wiring; running it
// standalone is mainly useful for soak testing the persistence layer.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the workspace session service until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire workspace lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another workspace instance holds %s", cfg.LockPath())
			}
			defer lock.Unlock()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			// A store that fails to open is not fatal. The controller runs
			// on the in-memory fallback for the rest of the process.
			var durable history.Repository
			if store, err := history.Open(cfg, logger); err != nil {
				logger.Warn("session database unavailable, using in-memory fallback",
					logging.String("database", cfg.DatabasePath()),
					logging.Error(err))
			} else {
				defer store.Close()
				durable = store
			}

			cache := localcache.New(cfg.LocalCachePath(), logger)
			fallback := history.NewMemoryStore(cache, logger)

			chatStore := chat.NewStore()
			contentStore := content.NewStore()
			cleaner := assets.NewStore(cfg.ImagesDir(), logger)

			controller, err := workspace.NewController(workspace.Options{
				Durable:      durable,
				Fallback:     fallback,
				Chat:         chatStore,
				Content:      contentStore,
				Assets:       cleaner,
				Logger:       logger,
				DefaultTitle: cfg.Workspace.DefaultSessionTitle,
				Debounce:     time.Duration(cfg.Workspace.SaveDebounceMS) * time.Millisecond,
			})
			if err != nil {
				return err
			}
			if err := controller.Start(signalCtx); err != nil {
				return fmt.Errorf("start workspace: %w", err)
			}

			logger.Info("workspace running",
				logging.String(logging.FieldSessionID, controller.ActiveID()),
				logging.String("database", cfg.DatabasePath()))

			<-signalCtx.Done()

			logger.Info("workspace shutting down")
			return controller.Close(cmd.Context())
		},
	}
}
