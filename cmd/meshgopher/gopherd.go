package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"meshgopher/internal/gopherd"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	gopherdCmd := &cobra.Command{
		Use:   "gopherd",
		Short: "Serve a directory tree over the Gopher protocol",
		Long: `Run the embedded Gopher server standalone. It serves gophermap
menus and plain text files from the configured root directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := gopherd.New(viper.GetString("gopherd.root"))
			if err != nil {
				return err
			}
			if err := srv.Listen(viper.GetString("gopherd.addr")); err != nil {
				return err
			}
			fmt.Printf("Serving %s on gopher://%s/\n", viper.GetString("gopherd.root"), srv.Addr())
			if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("gopher server stopped")
			return nil
		},
	}
	gopherdCmd.Flags().String("addr", "127.0.0.1:7070", "Listen address")
	gopherdCmd.Flags().String("root", "./gopherroot", "Content root directory")
	viper.BindPFlag("gopherd.addr", gopherdCmd.Flags().Lookup("addr"))
	viper.BindPFlag("gopherd.root", gopherdCmd.Flags().Lookup("root"))
	rootCmd.AddCommand(gopherdCmd)
}
