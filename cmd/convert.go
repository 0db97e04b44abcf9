package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/compendium"
	"github.com/stgreenb/FSF/pkg/convert"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input.ds-hero> [output.json]",
	Short: "Convert a forgesteel character to a Foundry VTT actor",
	Long: `Convert a .ds-hero character export into a draw-steel actor document.

If the output path is omitted, it is derived from the input file name.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		inputPath := args[0]
		outputPath := ""
		if len(args) == 2 {
			outputPath = args[1]
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".json"
		}

		compendiumPath, _ := cmd.Flags().GetString("compendium")
		if compendiumPath == "" {
			compendiumPath = viper.GetString("compendium.path")
		}
		strict, _ := cmd.Flags().GetBool("strict")
		if !cmd.Flags().Changed("strict") {
			strict = viper.GetBool("convert.strict")
		}
		forceUpdate, _ := cmd.Flags().GetBool("update-compendium")

		catalog, err := compendium.Ensure(context.Background(), compendiumPath, viper.GetString("compendium.repo"), forceUpdate)
		if err != nil {
			utils.Log.Fatal(err)
		}

		events := convert.Start(convert.Job{
			InputPath:  inputPath,
			OutputPath: outputPath,
			Catalog:    catalog,
			Options:    convert.Options{Strict: strict},
		})
		for ev := range events {
			if ev.Err != nil {
				utils.Log.Fatal(ev.Err)
			}
			if ev.Done {
				fmt.Println(ev.Message)
				if ev.Report != nil {
					for _, e := range ev.Report.Errors {
						utils.Log.Warnf("entity error: %v", e)
					}
				}
				fmt.Println("wrote " + outputPath)
			} else {
				utils.Log.Info(ev.Message)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("compendium", "c", "", "Path to a local draw-steel packs directory")
	convertCmd.Flags().BoolP("strict", "s", false, "Fail entities that have no compendium match instead of synthesizing placeholders")
	convertCmd.Flags().BoolP("update-compendium", "u", false, "Refresh the compendium cache from GitHub before converting")
}
