package main

import (
	"fmt"

	"meshgopher/internal/db"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history [user-id]",
		Short: "Show recently visited Gopher URLs",
		Long: `Print the visit log recorded by the bridge, newest first. With a
user id only that user's visits are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := db.NewStore(db.StoreConfig{
				Type:             viper.GetString("db.type"),
				ConnectionString: viper.GetString("db.connection_string"),
			})
			if err != nil {
				return fmt.Errorf("open visit log: %w", err)
			}
			defer store.Close()

			var visits []db.Visit
			if len(args) == 1 {
				visits, err = store.VisitsForUser(args[0], limit)
			} else {
				visits, err = store.RecentVisits(limit)
			}
			if err != nil {
				return err
			}
			if len(visits) == 0 {
				fmt.Println("No visits recorded.")
				return nil
			}
			for _, v := range visits {
				fmt.Printf("%s  %-6s %-12s %s\n",
					v.CreatedAt.Format("2006-01-02 15:04:05"), v.Kind, v.UserID, v.URL)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of visits to show")
	rootCmd.AddCommand(historyCmd)
}
