package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"crateaudit/config"
	"crateaudit/core/ingest"
	"crateaudit/core/library"
	"crateaudit/db"
	"crateaudit/logger"
	"crateaudit/model"
	"crateaudit/repository"
	"crateaudit/server"

	"github.com/spf13/cobra"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "监听导出目录",
	Long:  `监听目录中新增或更新的 *.json 导出文件，并将其保存为 WATCH_USER_ID 用户的新曲库。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if watchDir != "" {
			cfg.WatchDir = watchDir
		}
		server.InitLogger(cfg)
		defer logger.Sync()

		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", logger.ErrorField(err))
		}
		defer db.CloseGormDB()

		var store library.ExportStore
		if exports, err := server.NewExportStore(cfg); err != nil {
			logger.Warn("MinIO unavailable, raw exports will not be archived", logger.ErrorField(err))
		} else {
			store = exports
		}

		agg := server.NewAggregator(cfg)
		svc := library.NewService(repository.NewGormLibraryRepository(gdb), store, nil, agg)

		w := ingest.NewWatcher(cfg.WatchDir, agg, func(ctx context.Context, path string, export *ingest.Export) error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to re-read %s: %w", path, err)
			}
			_, err = svc.Save(ctx, cfg.WatchUserID, filepath.Base(path), model.LibrarySourceWatch, export, raw)
			return err
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching drop folder",
			logger.String("dir", cfg.WatchDir),
			logger.Int64("user", cfg.WatchUserID))
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal("watcher stopped", logger.ErrorField(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "覆盖 WATCH_DIR")
}
