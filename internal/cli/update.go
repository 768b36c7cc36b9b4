package cli

import (
	"fmt"

	"github.com/lukelzlz/mintar/pkg/archive"
	"github.com/spf13/cobra"
)

// updateCmd 刷新命令
var updateCmd = &cobra.Command{
	Use:     "update <archive> <files...>",
	Aliases: []string{"u"},
	Short:   "刷新归档中已有的条目",
	Long: `把指定文件的新版本追加到归档尾部。
要求的文件必须都已经在归档里，否则直接报错不动归档；
旧条目保留在原处，归档是按条目追加的日志。`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	return a.Update(archivePath, files)
}
