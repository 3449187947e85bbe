package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	domainConfig "github.com/Yat-Muk/sdloader/internal/domain/config"
	infraConfig "github.com/Yat-Muk/sdloader/internal/infra/config"
	"github.com/Yat-Muk/sdloader/internal/pkg/appctx"
	"github.com/Yat-Muk/sdloader/internal/pkg/logger"
	"github.com/Yat-Muk/sdloader/internal/pkg/version"
)

// globalOptions 所有子命令共用的參數
type globalOptions struct {
	dir   string
	debug bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	runOpts := &runOptions{}

	root := &cobra.Command{
		Use:   "sdloader",
		Short: "二級引導菜單與晶片維護工具",
		Long: `sdloader 在終端中運行引導菜單，或直接執行晶片維護命令。

不帶子命令時等同於 "sdloader run"。存儲設備、驅動器目錄和負載輸出
均在工作目錄的 config.yaml 中配置。`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, runOpts)
		},
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "指定工作目錄 (默認: $SDLOADER_HOME 或 ~/.sdloader)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "開啟調試日誌")
	addRunFlags(root, runOpts)

	root.AddCommand(
		newRunCmd(opts),
		newModchipCmd(opts),
		newPartsCmd(opts),
		newLogsCmd(opts),
		newInitCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// bootstrap 解析路徑、加載配置、創建日誌並組裝依賴
//
// console 為假時日誌只寫文件，終端界面運行時必須關閉。
func bootstrap(opts *globalOptions, console bool) (*AppDependencies, error) {
	paths, err := appctx.NewPaths(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("初始化路徑失敗: %w", err)
	}

	cfg, err := infraConfig.NewFileRepository(paths.ConfigFile, nil).Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("加載配置失敗: %w", err)
	}

	logCfg := loggerConfig(cfg.Log, paths, console, opts.debug)
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("日誌初始化失敗: %w", err)
	}

	deps, err := initializeDependencies(log, paths, cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	deps.LogFile = logCfg.OutputPath
	return deps, nil
}

// loggerConfig 由主機配置構造日誌配置；未指定輸出時寫入 logs/sdloader.log
func loggerConfig(c domainConfig.LogConfig, paths *appctx.Paths, console, debug bool) logger.Config {
	out := paths.LogFile
	if c.OutputPath != "" {
		out = paths.Resolve(c.OutputPath)
	}
	level := c.Level
	if debug {
		level = "debug"
	}
	return logger.Config{
		Level:      level,
		OutputPath: out,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
		Console:    console,
	}
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		os.Stderr = f
	}
}
