package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Yat-Muk/sdloader/internal/application"
	"github.com/Yat-Muk/sdloader/internal/infra/input"
	"github.com/Yat-Muk/sdloader/internal/infra/usb"
	"github.com/Yat-Muk/sdloader/internal/pkg/clock"
	apperrors "github.com/Yat-Muk/sdloader/internal/pkg/errors"
	"github.com/Yat-Muk/sdloader/internal/pkg/version"
	"github.com/Yat-Muk/sdloader/internal/tui/backend"
	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
	"github.com/Yat-Muk/sdloader/internal/tui/menu"
	"github.com/Yat-Muk/sdloader/internal/tui/state"
	"github.com/Yat-Muk/sdloader/internal/tui/view"
)

var errNotTerminal = errors.New("stdout is not a terminal")

// runOptions 終端會話參數
type runOptions struct {
	hold    string
	backend string
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().StringVar(&o.hold, "hold", "none", "模擬開機時按住的鍵: none, vol+ (菜單), vol- (原廠固件)")
	cmd.Flags().StringVar(&o.backend, "backend", "", "覆蓋配置中的顯示後端: tcell, bubbletea")
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "在終端中運行引導菜單",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, o)
		},
	}
	addRunFlags(cmd, o)
	return cmd
}

// parseHold 解析 --hold
func parseHold(s string) (input.Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return 0, nil
	case "vol+", "volup", "menu":
		return input.VolUp, nil
	case "vol-", "voldown", "ofw":
		return input.VolDown, nil
	}
	return 0, fmt.Errorf("unknown --hold value %q", s)
}

func runTUI(cmd *cobra.Command, opts *globalOptions, o *runOptions) error {
	held, err := parseHold(o.hold)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: use the modchip/parts subcommands for scripting", errNotTerminal)
	}

	deps, err := bootstrap(opts, false)
	if err != nil {
		return err
	}
	defer deps.Close()

	if o.backend != "" {
		deps.Config.Display.Backend = o.backend
		if err := deps.Config.Validate(); err != nil {
			return err
		}
	}

	redirectStdErr(filepath.Join(deps.Paths.LogDir, "stderr.log"))

	log := deps.Log
	log.Info("sdloader 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.String("backend", deps.Config.Display.Backend),
		zap.Stringer("held", held),
	)

	status, err := runSession(deps, held)
	if err != nil {
		return err
	}
	log.Info("會話結束", zap.Stringer("status", status))

	if status == menu.StatusNoSelectableEntry {
		return fmt.Errorf("main menu: %w", apperrors.ErrNoSelectableEntry)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Bye!")
	return nil
}

// runSession 打開終端並運行到會話結束
func runSession(deps *AppDependencies, held input.Button) (status menu.Status, err error) {
	log := deps.Log
	clk := clock.NewSystem()

	terminal, err := backend.Open(deps.Config.Display, clk, log)
	if err != nil {
		return 0, err
	}
	defer terminal.Close()

	// 崩潰保護：先恢復終端再輸出
	defer func() {
		if r := recover(); r != nil {
			terminal.Close()
			fmt.Printf("\n\n程序崩潰: %v\n", r)
			log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-terminal.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	btn := input.NewButtons(ctx, terminal, clk)
	eng := menu.NewEngine(gfx.NewConsole(terminal), btn, deps.Battery, log)
	session := state.NewSession(log, cancel)

	app := view.NewApp(view.Deps{
		Engine:  eng,
		Session: session,
		Modchip: deps.Modchip,
		UMS:     application.NewUMSService(deps.Storage, usb.NewGadget(deps.Storage, btn, log), log),
		Boot:    deps.Boot,
		Fsys:    deps.Fsys,
		Files:   deps.Config.Files,
		Logger:  log,
	})

	return app.Run(held), nil
}
