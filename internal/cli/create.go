package cli

import (
	"fmt"

	"github.com/lukelzlz/mintar/pkg/archive"
	"github.com/spf13/cobra"
)

// createCmd 新建归档命令
var createCmd = &cobra.Command{
	Use:     "create <archive> <files...>",
	Aliases: []string{"c"},
	Short:   "新建归档",
	Long:    `新建（或截断）归档文件并按给定顺序写入输入文件`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
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

	return a.Create(archivePath, files)
}
