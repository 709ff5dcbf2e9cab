package main

import (
	"fmt"
	"time"

	"meshgopher/internal/gopher"

	"github.com/spf13/cobra"
)

func init() {
	var timeout time.Duration

	fetchCmd := &cobra.Command{
		Use:   "fetch <gopher-url>",
		Short: "Fetch a single Gopher URL and print it",
		Long: `Fetch one Gopher menu or text file and print it to stdout. Useful
for checking what the bridge would show a user without a transport.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := gopher.ParseURL(args[0])
			if err != nil {
				return err
			}
			client := gopher.NewClient(timeout)
			listing, err := client.Fetch(cmd.Context(), u)
			if err != nil {
				return err
			}
			printListing(listing)
			return nil
		},
	}
	fetchCmd.Flags().DurationVar(&timeout, "timeout", gopher.DefaultTimeout, "Network timeout for the request")
	rootCmd.AddCommand(fetchCmd)
}

func printListing(l *gopher.Listing) {
	if l.Kind == gopher.KindFile {
		for _, line := range l.Lines {
			fmt.Println(line)
		}
		return
	}
	for _, item := range l.Items {
		if !item.Selectable() {
			fmt.Printf("   %s\n", item.Display)
			continue
		}
		fmt.Printf("[%c] %s\n    %s\n", item.Type, item.Display, item.URL())
	}
}
