package cli

import (
	"fmt"

	"github.com/lukelzlz/mintar/pkg/archive"
	"github.com/spf13/cobra"
)

// appendCmd 追加命令
var appendCmd = &cobra.Command{
	Use:     "append <archive> <files...>",
	Aliases: []string{"a"},
	Short:   "向既有归档追加文件",
	Long:    `从既有归档的 footer 起始处覆盖写入新条目，再补新 footer`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runAppend,
}

func init() {
	rootCmd.AddCommand(appendCmd)
}

func runAppend(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := archive.ResolveIncludes(args[1:])
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	a, err := newArchiver(cfg, "Packing")
	if err != nil {
		return err
	}

	return a.Append(archivePath, files)
}
