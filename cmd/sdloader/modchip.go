package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/sdloader/internal/domain/modchip"
	"github.com/Yat-Muk/sdloader/internal/infra/fs"
	"github.com/Yat-Muk/sdloader/internal/tui/style"
)

var errNotConfirmed = errors.New("refusing to write without --yes")

// withDeps 以控制台日誌組裝依賴後執行 fn
func withDeps(opts *globalOptions, fn func(deps *AppDependencies) error) error {
	deps, err := bootstrap(opts, true)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

func newModchipCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modchip",
		Short: "讀取或修改晶片記錄",
	}
	cmd.AddCommand(
		newModchipInfoCmd(opts),
		newModchipConfigCmd(opts),
		newModchipCommandCmd(opts, "reset", "寫入復位命令", (*AppDependencies).issueReset),
		newModchipCommandCmd(opts, "rollback", "寫入回滾命令", (*AppDependencies).issueRollback),
		newModchipFlashCmd(opts),
		newModchipBackupCmd(opts),
		newModchipRestoreCmd(opts),
	)
	return cmd
}

func newModchipInfoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "顯示固件描述符、加載器配置和待處理命令",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(deps *AppDependencies) error {
				desc, err := deps.Modchip.ReadDescriptor()
				if err != nil {
					return fmt.Errorf("讀取固件信息失敗: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, style.RenderReport("FW Info", descriptorRows(desc)))

				cfg, err := deps.Modchip.LoadConfig()
				if err != nil {
					return fmt.Errorf("讀取加載器配置失敗: %w", err)
				}
				fmt.Fprintln(out, style.RenderReport("IPL Settings", configRows(cfg)))

				rec, err := deps.Modchip.ReadCommand()
				if err != nil {
					return fmt.Errorf("讀取命令扇區失敗: %w", err)
				}
				fmt.Fprintln(out, style.RenderReport("Command", commandRows(rec)))
				return nil
			})
		},
	}
}

// descriptorRows 與菜單中的信息面板一致：無效時顯示佔位符
func descriptorRows(d modchip.Descriptor) []style.Row {
	if !d.Valid() {
		return []style.Row{
			{Label: "Signature", Value: "[Invalid]", Color: style.Error},
			style.KV("FW Version", "--"),
			style.KV("Fuse Count", "--"),
			style.KV("FW Hash", "--"),
			style.KV("IPL Hash", "--"),
		}
	}
	return []style.Row{
		{Label: "Signature", Value: fmt.Sprintf("0x%08x", d.Signature), Color: style.Success},
		style.KV("FW Version", d.Version()),
		style.KV("Fuse Count", fmt.Sprintf("%d", d.Fuses())),
		style.KV("FW Hash", fmt.Sprintf("0x%08x", d.FirmwareHash)),
		style.KV("IPL Hash", fmt.Sprintf("0x%08x", d.LoaderHash)),
	}
}

func configRows(cfg modchip.Config) []style.Row {
	valid := "valid"
	if !cfg.Valid() {
		valid = "invalid"
	}
	eff := cfg.OrDefault()
	return []style.Row{
		{Label: "Record", Value: valid, Color: style.GetStatusColor(valid)},
		style.KV("Payload", eff.PayloadVolume.String()),
		style.KV("Action", eff.DefaultAction.String()),
		{Label: "OFW Combo", Value: onOff(!eff.DisableOFWCombo), Color: style.GetStatusColor(onOff(!eff.DisableOFWCombo))},
	}
}

func commandRows(c modchip.Command) []style.Row {
	if c == (modchip.Command{}) {
		return []style.Row{style.KV("Pending", "none")}
	}
	name := c.Tag.String()
	if c.IsRollback() {
		name = "rollback"
	}
	return []style.Row{
		{Label: "Pending", Value: name, Color: style.GetStatusColor("pending")},
		style.KV("Start", fmt.Sprintf("0x%08x", c.SectorStart)),
		style.KV("Count", fmt.Sprintf("0x%08x", c.SectorCount)),
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// configFlags modchip config 的參數
type configFlags struct {
	payload         string
	action          string
	disableOFWCombo bool
	reset           bool
}

func newModchipConfigCmd(opts *globalOptions) *cobra.Command {
	f := &configFlags{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或修改加載器配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(deps *AppDependencies) error {
				cfg, changed, err := f.apply(cmd, deps.Modchip.ReadConfig())
				if err != nil {
					return err
				}

				switch {
				case f.reset:
					if err := deps.Modchip.ClearConfig(); err != nil {
						return fmt.Errorf("重置配置失敗: %w", err)
					}
					cfg = modchip.DefaultConfig()
				case changed:
					if err := deps.Modchip.WriteConfig(cfg); err != nil {
						return fmt.Errorf("保存配置失敗: %w", err)
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, style.RenderReport("IPL Settings", configRows(cfg)))
				if f.reset || changed {
					fmt.Fprintln(out, style.RenderResult(true, "Settings saved!"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.payload, "payload", "", "payload 所在卷: auto, sd, boot1_1mb, boot1, gpp")
	cmd.Flags().StringVar(&f.action, "action", "", "開機默認動作: payload, ofw, menu")
	cmd.Flags().BoolVar(&f.disableOFWCombo, "disable-ofw-combo", false, "禁用按住 VOL- 啟動原廠固件")
	cmd.Flags().BoolVar(&f.reset, "reset", false, "恢復默認配置")
	cmd.MarkFlagsMutuallyExclusive("reset", "payload")
	cmd.MarkFlagsMutuallyExclusive("reset", "action")
	cmd.MarkFlagsMutuallyExclusive("reset", "disable-ofw-combo")
	return cmd
}

// apply 只修改顯式給出的參數
func (f *configFlags) apply(cmd *cobra.Command, cfg modchip.Config) (modchip.Config, bool, error) {
	changed := false
	if cmd.Flags().Changed("payload") {
		vol, err := modchip.ParsePayloadVolume(f.payload)
		if err != nil {
			return cfg, false, err
		}
		cfg.PayloadVolume = vol
		changed = true
	}
	if cmd.Flags().Changed("action") {
		act, err := modchip.ParseAction(f.action)
		if err != nil {
			return cfg, false, err
		}
		cfg.DefaultAction = act
		changed = true
	}
	if cmd.Flags().Changed("disable-ofw-combo") {
		cfg.DisableOFWCombo = f.disableOFWCombo
		changed = true
	}
	return cfg, changed, nil
}

func (d *AppDependencies) issueReset() error    { return d.Modchip.IssueReset() }
func (d *AppDependencies) issueRollback() error { return d.Modchip.IssueRollback() }

// newModchipCommandCmd 寫入單條命令的子命令
func newModchipCommandCmd(opts *globalOptions, name, short string, issue func(*AppDependencies) error) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			return withDeps(opts, func(deps *AppDependencies) error {
				if err := issue(deps); err != nil {
					return fmt.Errorf("寫入 %s 命令失敗: %w", name, err)
				}
				deps.Log.Info("命令已寫入", zap.String("command", name))
				fmt.Fprintln(cmd.OutOrStdout(), style.RenderResult(true, titleCase(name)+" command sent. Reboot console!"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "確認寫入")
	return cmd
}

func newModchipFlashCmd(opts *globalOptions) *cobra.Command {
	var (
		kind string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "flash <file>",
		Short: "把映像寫入 BOOT0 並發出後續命令",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := modchip.ParseImageKind(kind)
			if err != nil {
				return err
			}
			if !yes {
				return errNotConfirmed
			}
			return withDeps(opts, func(deps *AppDependencies) error {
				return flashImage(cmd.OutOrStdout(), deps, k, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "映像類型: fw, bl, ipl")
	cmd.Flags().BoolVar(&yes, "yes", false, "確認寫入")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func flashImage(out io.Writer, deps *AppDependencies, kind modchip.ImageKind, path string) error {
	f, err := fs.OpenHost(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := snapshotBoot0(deps, "pre-"+strings.ToLower(kind.String())); err != nil {
		return err
	}

	region := modchip.RegionOf(kind)
	deps.Log.Info("開始寫入映像",
		zap.Stringer("kind", kind),
		zap.String("path", path),
		zap.Int64("size", f.Size()))

	if err := deps.Modchip.WriteImageFromFile(kind, f); err != nil {
		return fmt.Errorf("寫入 %s 映像失敗: %w", kind, err)
	}

	msg := fmt.Sprintf("%s image written at sector 0x%x (%d sectors).", kind, region.StartSector, modchip.SectorsFor(int(f.Size())))
	if region.HasFollowUp {
		msg += " " + kind.String() + " update command sent. Reboot console!"
	}
	fmt.Fprintln(out, style.RenderResult(true, msg))
	return nil
}

// snapshotBoot0 保存當前 BOOT0；內容未變時返回空名稱
func snapshotBoot0(deps *AppDependencies, tag string) (string, error) {
	data, err := deps.Modchip.Snapshot()
	if err != nil {
		return "", fmt.Errorf("讀取 BOOT0 快照失敗: %w", err)
	}
	name, err := deps.Backups.Save(tag, data)
	if err != nil {
		return "", fmt.Errorf("保存 BOOT0 快照失敗: %w", err)
	}
	return name, nil
}

func newModchipBackupCmd(opts *globalOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "保存 BOOT0 快照，或列出已有快照",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(deps *AppDependencies) error {
				out := cmd.OutOrStdout()
				if !list {
					name, err := snapshotBoot0(deps, "boot0")
					if err != nil {
						return err
					}
					if name == "" {
						fmt.Fprintln(out, style.InfoText("BOOT0 unchanged since last backup."))
					} else {
						fmt.Fprintln(out, style.RenderResult(true, "Saved "+name))
					}
				}

				files, err := deps.Backups.List()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					rows = append(rows, []string{
						f.Name,
						f.Time.Local().Format(time.DateTime),
						fmt.Sprintf("%d", f.Size),
						onOff(f.Verified),
					})
				}
				fmt.Fprintln(out, style.RenderTable([]string{"Name", "Time", "Size", "Checksum"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "只列出快照")
	return cmd
}

func newModchipRestoreCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "把快照整體寫回 BOOT0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			return withDeps(opts, func(deps *AppDependencies) error {
				data, err := deps.Backups.Load(args[0])
				if err != nil {
					return err
				}
				if _, err := snapshotBoot0(deps, "pre-restore"); err != nil {
					return err
				}
				if err := deps.Modchip.Restore(data); err != nil {
					return fmt.Errorf("恢復 BOOT0 失敗: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), style.RenderResult(true, "Restored "+args[0]))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "確認寫入")
	return cmd
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
