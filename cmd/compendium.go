package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/compendium"
)

// compendiumCmd groups the compendium cache maintenance commands
var compendiumCmd = &cobra.Command{
	Use:   "compendium",
	Short: "Manage the cached draw-steel compendium",
}

var compendiumUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the latest compendium packs from GitHub into the local cache",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		if repo == "" {
			repo = viper.GetString("compendium.repo")
		}

		entries, err := compendium.NewFetcher(repo).Fetch(ctx)
		if err != nil {
			utils.Log.Fatal(err)
		}
		if len(entries) == 0 {
			utils.Log.Fatal("no compendium items found in " + repo)
		}

		cachePath, err := compendium.DefaultCachePath()
		if err != nil {
			utils.Log.Fatal(err)
		}
		cache, err := compendium.OpenCache(cachePath)
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cache.Close()

		if err := cache.Store(ctx, entries); err != nil {
			utils.Log.Fatal(err)
		}
		fmt.Printf("cached %d compendium items in %s\n", len(entries), cachePath)
	},
}

var compendiumStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-type item counts for the cached compendium",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cachePath, err := compendium.DefaultCachePath()
		if err != nil {
			utils.Log.Fatal(err)
		}
		cache, err := compendium.OpenCache(cachePath)
		if err != nil {
			utils.Log.Fatal(err)
		}
		defer cache.Close()

		total, err := cache.Count(ctx)
		if err != nil {
			utils.Log.Fatal(err)
		}
		byType, err := cache.CountByType(ctx)
		if err != nil {
			utils.Log.Fatal(err)
		}

		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)

		fmt.Printf("%d cached compendium items\n", total)
		for _, t := range types {
			fmt.Printf("  %-12s %d\n", t, byType[t])
		}
	},
}

func init() {
	rootCmd.AddCommand(compendiumCmd)
	compendiumCmd.AddCommand(compendiumUpdateCmd)
	compendiumCmd.AddCommand(compendiumStatsCmd)

	compendiumUpdateCmd.Flags().StringP("repo", "r", "", "GitHub repository to fetch packs from (owner/name)")
}
