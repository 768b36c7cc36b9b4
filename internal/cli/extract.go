package cli

import (
	"github.com/spf13/cobra"
)

var extractDir string

// extractCmd 展开命令
var extractCmd = &cobra.Command{
	Use:     "extract <archive>",
	Aliases: []string{"x"},
	Short:   "展开归档",
	Long:    `把归档中每个条目的内容原样写到目标目录，不恢复权限和属主`,
	Args:    cobra.ExactArgs(1),
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractDir, "directory", "C", ".", "展开到的目录")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newArchiver(cfg, "Extracting")
	if err != nil {
		return err
	}

	return a.Extract(args[0], extractDir)
}
