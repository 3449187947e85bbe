package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/ums"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/pkg/version"
	"github.com/Yat-Muk/sdloader/internal/tui/style"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "顯示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newLogsCmd(opts *globalOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "顯示最近的日誌",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := bootstrap(opts, false)
			if err != nil {
				return err
			}
			defer deps.Close()

			tail, err := tailFile(deps.LogFile, lines)
			if err != nil {
				return fmt.Errorf("讀取日誌失敗: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), style.BuildColoredLogContent(tail))
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "顯示的行數")
	return cmd
}

// tailFile 返回最後 n 行；文件不存在時返回空
func tailFile(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ring []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		ring = append(ring, sc.Text())
		if n > 0 && len(ring) > n {
			ring = ring[1:]
		}
	}
	return ring, sc.Err()
}

// 初始化時創建的鏡像大小（扇區）
const (
	initSDSectors   = 0x20000 // 64 MiB
	initGPPSectors  = 0x20000
	initBootSectors = int64(ums.BootPartitionSectors)
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var images bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "寫入默認配置並創建驅動器目錄",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(deps *AppDependencies) error {
				if err := deps.saveDefaults(context.Background()); err != nil {
					return err
				}

				rows := []style.Row{style.KV("Config", deps.Paths.ConfigFile)}
				for _, dir := range driveRoots(deps.Paths, deps.Config.Drives) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("創建驅動器目錄失敗: %w", err)
					}
				}
				rows = append(rows, style.KV("Drives", filepath.Dir(deps.Paths.Resolve(deps.Config.Drives.SD))))

				if images {
					created, err := createImages(deps)
					if err != nil {
						return err
					}
					for _, c := range created {
						rows = append(rows, style.KV("Image", c))
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), style.RenderReport("Initialized", rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&images, "images", false, "同時創建空白的稀疏存儲鏡像（已存在則跳過）")
	return cmd
}

// createImages 按配置路徑創建稀疏鏡像，返回新建的文件
func createImages(deps *AppDependencies) ([]string, error) {
	s := deps.Config.Storage
	images := []struct {
		id      storage.DeviceID
		path    string
		sectors int64
	}{
		{storage.DevSD, s.SD, initSDSectors},
		{storage.DevBoot0, s.Boot0, initBootSectors},
		{storage.DevBoot1, s.Boot1, initBootSectors},
		{storage.DevGPP, s.GPP, initGPPSectors},
	}

	var created []string
	for _, img := range images {
		path := deps.Paths.Resolve(img.path)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return created, err
		}
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return created, fmt.Errorf("創建 %s 鏡像失敗: %w", img.id, err)
		}
		err = f.Truncate(img.sectors * storage.SectorSize)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return created, fmt.Errorf("創建 %s 鏡像失敗: %w", img.id, err)
		}
		deps.Log.Info("已創建鏡像", zap.Stringer("device", img.id), zap.String("path", path))
		created = append(created, path)
	}
	return created, nil
}
