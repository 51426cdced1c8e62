package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"drop-auction/internal/config"
	"drop-auction/utils"
)

// ServeCmd runs the HTTP API together with the countdown scheduler
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the auction API and countdown scheduler",
	Long:  "run the auction API and countdown scheduler, resuming countdowns left in the store.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// server exit notification, carries startup and listener errors
		onServeExit := make(chan error, 1)
		var app *App

		go func() {
			defer wg.Done()

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				utils.Error("failed to load config", map[string]any{"error": err.Error()})
				onServeExit <- err
				return
			}

			if err := utils.ConfigureLogger(cfg.Log); err != nil {
				utils.Error("failed to set up logger", map[string]any{"error": err.Error()})
				onServeExit <- err
				return
			}

			utils.Info("auction server start", map[string]any{
				"addr":             cfg.Server.Addr,
				"store":            cfg.Store.Driver,
				"extension_window": cfg.Auction.ExtensionWindow.String(),
			})

			app, err = NewApp(ctx, cfg)
			if err != nil {
				utils.Error("failed to create auction server", map[string]any{"error": err.Error()})
				onServeExit <- err
				return
			}

			if cfg.Seed.Enabled {
				if err := prepopulate(ctx, app.Store); err != nil {
					utils.Error("failed to seed store", map[string]any{"error": err.Error()})
					onServeExit <- err
					return
				}
			}

			if err := app.Start(ctx); err != nil {
				utils.Error("failed to start scheduler", map[string]any{"error": err.Error()})
				onServeExit <- err
				return
			}

			srv := &http.Server{Addr: cfg.Server.Addr, Handler: app.Router}
			shutdownTimeout := cfg.Server.ShutdownTimeout

			go func() {
				<-ctx.Done()
				shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
				defer stop()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					utils.Warn("http shutdown incomplete", map[string]any{"error": err.Error()})
				}
			}()

			utils.Info("listening", map[string]any{"addr": cfg.Server.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.Error("http server failed", map[string]any{"error": err.Error()})
				onServeExit <- err
			}
		}()

		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			cancel()
			utils.Info("exit by signal", map[string]any{"signal": sig.String()})
		case err := <-onServeExit:
			cancel()
			utils.Error("exit by error", map[string]any{"error": err.Error()})
		}

		wg.Wait()

		if app != nil {
			if err := app.Close(); err != nil {
				utils.Error("failed to close store", map[string]any{"error": err.Error()})
			}
		}
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "listen address, overrides server.addr")
	ServeCmd.Flags().String("store", "", "store driver (memory, sqlite or postgres), overrides store.driver")
	_ = viper.BindPFlag("server.addr", ServeCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("store.driver", ServeCmd.Flags().Lookup("store"))

	rootCmd.AddCommand(ServeCmd)
}
