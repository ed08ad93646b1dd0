// ABOUTME: Cache commands for the Charm-backed caption cache
// ABOUTME: Provides status, sync and wipe
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the caption cache",
		Long: `Manage the caption cache.

Captions produced by the vision model can be cached in Charm KV, keyed
by image path, so repeated caption runs skip images that were already
described. The cache syncs across devices linked to the same Charm
account via SSH keys.`,
	}

	cmd.AddCommand(newCacheStatusCmd())
	cmd.AddCommand(newCacheSyncCmd())
	cmd.AddCommand(newCacheWipeCmd())

	return cmd
}

func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cached caption count and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cache, err := a.CaptionCache()
			if err != nil {
				return err
			}
			count, err := cache.Count()
			if err != nil {
				return fmt.Errorf("counting cached captions: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cached captions: %d\n", count)
			fmt.Fprintf(out, "Database: %s\n", a.Config.CharmDBName)
			fmt.Fprintf(out, "Host: %s\n", a.Config.CharmHost)

			client, _ := a.Charm()
			if id, err := client.ID(); err == nil {
				fmt.Fprintf(out, "User ID: %s\n", id)
			} else {
				fmt.Fprintln(out, "Status: Not connected")
			}
			return nil
		},
	}
}

func newCacheSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.Charm()
			if err != nil {
				return err
			}
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			return nil
		},
	}
}

func newCacheWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe the local caption cache",
		Long: `Wipe the local copy of the caption cache.

Cloud data remains intact and is re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe the local caption cache!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.Charm()
			if err != nil {
				return err
			}
			if err := client.Reset(); err != nil {
				return fmt.Errorf("failed to wipe cache: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Local caption cache wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}
