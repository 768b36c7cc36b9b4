package cli

import (
	"fmt"
	"os"

	"github.com/lukelzlz/mintar/pkg/archive"
	"github.com/lukelzlz/mintar/pkg/config"
	"github.com/lukelzlz/mintar/pkg/progress"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	envFile  string
	quiet    bool
	excludes []string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "mintar",
	Short: "最小化的 USTAR 兼容归档工具",
	Long: `mintar 是一个最小化的 USTAR 兼容归档工具，
把普通文件打包成单个线性容器，支持列出、追加、刷新和展开。

操作：
  create  (c)  新建归档
  append  (a)  向既有归档追加文件
  list    (t)  列出归档内容
  update  (u)  刷新归档中已有的条目
  extract (x)  展开归档
  push         把归档上传到 S3 兼容存储`,
	SilenceUsage: true,
}

// Execute 执行根命令，失败时向 stderr 打印错误并以非零码退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认 ~/.mintar.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "环境变量文件路径 (默认 .mintar.env)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "关闭进度条")
	rootCmd.PersistentFlags().StringSliceVar(&excludes, "exclude", []string{}, "排除模式（可多次指定）")
}

// loadConfig 加载配置并叠加命令行参数
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile, envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if quiet {
		cfg.Archive.Quiet = true
	}
	if len(excludes) > 0 {
		cfg.Archive.Excludes = excludes
	}
	return cfg, nil
}

// newArchiver 按配置组装归档器，desc 是进度条上显示的动作
func newArchiver(cfg *config.Config, desc string) (*archive.Archiver, error) {
	var reporter progress.Reporter
	if cfg.Archive.Quiet {
		reporter = progress.NewSilent()
	} else {
		reporter = progress.NewBar(desc)
	}
	return archive.NewArchiver(cfg.Archive.Excludes, reporter)
}
