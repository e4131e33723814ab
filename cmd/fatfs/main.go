package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fatfs/pkg/config"
	"fatfs/pkg/fat"
	"fatfs/pkg/logging"
	"fatfs/pkg/ui"
)

func main() {
	cmd, a := newRootCmd()
	if err := execute(context.Background(), cmd, a); err != nil {
		fmt.Fprintf(os.Stderr, "fatfs 错误: %v\n", err)
		os.Exit(1)
	}
}

// app 保存一次命令执行所需的运行时对象
type app struct {
	cfg    config.Config
	vol    *fat.Volume
	logger *logging.Logger
}

func (a *app) progress(w io.Writer) ui.Progress {
	if a.cfg.NoProgress {
		return ui.NoopProgress{}
	}
	return ui.NewBarProgress(w)
}

// execute 运行命令并关闭日志输出。命令失败时 cobra 不会调用 PersistentPostRunE
func execute(ctx context.Context, cmd *cobra.Command, a *app) error {
	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) close() error {
	if a.logger == nil {
		return nil
	}
	err := a.logger.Close()
	a.logger = nil
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	var (
		configPath string
		mountPoint string
		logLevel   string
		logFormat  string
		logFile    string
		checksum   string
		prune      bool
		noProgress bool
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:           "fatfs",
		Short:         "存储卡文件系统工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Defaults()
			if configPath != "" {
				loaded, err := config.LoadFromFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.MountPoint = mountPoint
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("log-file") {
				cfg.LogFile = logFile
			}
			if flags.Changed("checksum") {
				cfg.Checksum = config.Checksum(checksum)
			}
			if flags.Changed("prune") {
				cfg.PruneEmptyDirs = prune
			}
			if flags.Changed("no-progress") {
				cfg.NoProgress = noProgress
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg

			writers := []io.Writer{cmd.ErrOrStderr()}
			var logOut *os.File
			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("打开日志文件失败: %w", err)
				}
				logOut = f
				writers = append(writers, f)
			}
			logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}, writers...)
			if err != nil {
				if logOut != nil {
					logOut.Close()
				}
				return err
			}
			a.logger = logger

			if err := fat.NewStorage(fat.CardDriver{Root: cfg.MountPoint}).Initialize(); err != nil {
				return err
			}
			a.vol = fat.NewOSVolume(cfg.MountPoint,
				fat.WithDirPerm(cfg.DirMode()),
				fat.WithPruneEmptyDirs(cfg.PruneEmptyDirs),
				fat.WithLogger(logger.Logger),
			)
			logger.Debug("存储已就绪", "mount_point", cfg.MountPoint)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML 配置文件")
	pf.StringVarP(&mountPoint, "root", "r", ".", "存储卡挂载点")
	pf.StringVar(&logLevel, "log-level", "info", "日志级别：debug / info / warn / error")
	pf.StringVar(&logFormat, "log-format", "text", "日志格式：text / json")
	pf.StringVar(&logFile, "log-file", "", "额外写入的日志文件")
	pf.StringVar(&checksum, "checksum", string(config.ChecksumNone), "校验算法：none / md5 / sha1 / sha256")
	pf.BoolVar(&prune, "prune", false, "rmdir 时同时删除清空后的目录")
	pf.BoolVar(&noProgress, "no-progress", false, "禁用进度条显示")

	cmd.AddCommand(
		newInitCmd(a),
		newStatCmd(a),
		newLsCmd(a),
		newMkdirCmd(a),
		newRmCmd(a),
		newRmdirCmd(a),
		newCatCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newManifestCmd(a),
	)
	return cmd, a
}
