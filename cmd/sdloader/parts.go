package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yat-Muk/sdloader/internal/domain/partition"
	"github.com/Yat-Muk/sdloader/internal/infra/storage"
	"github.com/Yat-Muk/sdloader/internal/tui/style"
)

func newPartsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "parts <sd|gpp>",
		Short:     "列出 SD 或 GPP 的分區表",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sd", "gpp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := storage.DevSD
			if strings.EqualFold(args[0], "gpp") {
				id = storage.DevGPP
			}
			return withDeps(opts, func(deps *AppDependencies) error {
				dev, err := deps.Storage.Device(id)
				if err != nil {
					return fmt.Errorf("打開 %s 失敗: %w", id, err)
				}
				table, err := partition.Discover(dev)
				if err != nil {
					return fmt.Errorf("讀取 %s 分區表失敗: %w", id, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, style.RenderReport(id.String(), []style.Row{
					style.KV("Sectors", fmt.Sprintf("0x%08x", dev.SectorCount())),
					style.KV("Scheme", table.Scheme.String()),
					style.KV("Entries", fmt.Sprintf("%d", table.Len())),
				}))
				fmt.Fprintln(out, renderTable(table))
				return nil
			})
		},
	}
}

// renderTable GPT 顯示名稱和 GUID，MBR 顯示類型字節
func renderTable(t *partition.Table) string {
	if t.Scheme == partition.SchemeGPT {
		rows := make([][]string, 0, t.Len())
		for i, e := range t.Entries {
			rows = append(rows, []string{
				fmt.Sprintf("%02d", i),
				fmt.Sprintf("0x%08x", e.Offset),
				fmt.Sprintf("0x%08x", e.Size),
				e.Name,
				e.Type.String(),
			})
		}
		return style.RenderTable([]string{"#", "Offset", "Size", "Name", "Type"}, rows)
	}

	rows := make([][]string, 0, t.Len())
	for i, e := range t.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%02d", i),
			fmt.Sprintf("0x%08x", e.Offset),
			fmt.Sprintf("0x%08x", e.Size),
			fmt.Sprintf("0x%02x", e.MBRType),
		})
	}
	return style.RenderTable([]string{"#", "Offset", "Size", "Type"}, rows)
}
