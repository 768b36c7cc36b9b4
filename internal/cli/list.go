package cli

import (
	"fmt"

	"github.com/lukelzlz/mintar/pkg/archive"
	"github.com/lukelzlz/mintar/pkg/header"
	"github.com/lukelzlz/mintar/pkg/progress"
	"github.com/spf13/cobra"
)

var listVerbose bool

// listCmd 列出命令
var listCmd = &cobra.Command{
	Use:     "list <archive>",
	Aliases: []string{"t"},
	Short:   "列出归档内容",
	Long:    `按出现顺序列出归档中的条目名，内容整块跳过不读取`,
	Args:    cobra.ExactArgs(1),
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "同时显示权限、属主和大小")
}

func runList(cmd *cobra.Command, args []string) error {
	// 列出不需要排除规则和进度条
	a, err := archive.NewArchiver(nil, progress.NewSilent())
	if err != nil {
		return err
	}

	if !listVerbose {
		names, err := a.List(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	return a.Walk(args[0], func(h *header.Header) error {
		fmt.Printf("%04o %s/%s %8d %s %s\n",
			h.Mode&0o7777, h.Uname, h.Gname, h.Size,
			h.ModTime.Format("2006-01-02 15:04"), h.Name)
		return nil
	})
}
