package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	domainConfig "github.com/Yat-Muk/sdloader/internal/domain/config"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/tui/style"
)

// configSetter 修改一個配置項
type configSetter func(c *domainConfig.Config, v string) error

func setString(field func(*domainConfig.Config) *string) configSetter {
	return func(c *domainConfig.Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*domainConfig.Config) *int) configSetter {
	return func(c *domainConfig.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q 不是整數", apperrors.ErrConfigInvalid, v)
		}
		*field(c) = n
		return nil
	}
}

// configSetters 可通過命令行修改的配置項
var configSetters = map[string]configSetter{
	"log.level":             setString(func(c *domainConfig.Config) *string { return &c.Log.Level }),
	"display.backend":       setString(func(c *domainConfig.Config) *string { return &c.Display.Backend }),
	"display.hold_ms":       setInt(func(c *domainConfig.Config) *int { return &c.Display.HoldMS }),
	"battery.sysfs":         setString(func(c *domainConfig.Config) *string { return &c.Battery.Sysfs }),
	"battery.fixed_percent": setInt(func(c *domainConfig.Config) *int { return &c.Battery.FixedPercent }),
	"backup.dir":            setString(func(c *domainConfig.Config) *string { return &c.Backup.Dir }),
	"backup.max_files":      setInt(func(c *domainConfig.Config) *int { return &c.Backup.MaxFiles }),
	"backup.max_age_days":   setInt(func(c *domainConfig.Config) *int { return &c.Backup.MaxAgeDays }),
	"chainload.output":      setString(func(c *domainConfig.Config) *string { return &c.Chainload.Output }),
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或修改主機配置",
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigSetCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "顯示當前配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(opts, func(deps *AppDependencies) error {
				cfg, err := deps.ConfigSvc.GetConfig(context.Background())
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("序列化配置失敗: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, style.InfoText(deps.Paths.ConfigFile))
				fmt.Fprint(out, string(data))
				return nil
			})
		},
	}
}

func newConfigSetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "修改一個配置項並保存",
		Long:  "可修改的配置項:\n  " + strings.Join(configKeys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			set, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("%w: 未知配置項 %q", apperrors.ErrConfigInvalid, key)
			}
			return withDeps(opts, func(deps *AppDependencies) error {
				err := deps.ConfigSvc.UpdateConfig(context.Background(), func(c *domainConfig.Config) error {
					return set(c, value)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), style.SuccessText(key+" = "+value))
				return nil
			})
		},
	}
}
