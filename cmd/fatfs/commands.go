package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fatfs/pkg/fat"
	"fatfs/pkg/manifest"
	"fatfs/pkg/transfer"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "初始化存储卡",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "storage ready: %s\n", a.vol.Root())
			return nil
		},
	}
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH",
		Short: "显示路径信息",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := args[0]
			if size, ok := a.vol.Exists(p); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tfile\t%d\t%s\n", p, size, humanize.IBytes(uint64(size)))
				return nil
			}
			info, err := a.vol.Stat(p)
			if err != nil {
				return err
			}
			kind := "other"
			if info.IsDir() {
				kind = "directory"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, kind)
			return nil
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls [PATH]",
		Short: "递归列出所有文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			files, err := a.vol.ListAllFiles(root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var total int64
			for _, f := range files {
				if !long {
					fmt.Fprintln(out, f)
					continue
				}
				size := a.vol.FileSize(f)
				total += size
				fmt.Fprintf(out, "%10s  %s\n", humanize.IBytes(uint64(size)), f)
			}
			if long {
				fmt.Fprintf(out, "%d files, %s\n", len(files), humanize.IBytes(uint64(total)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "显示文件大小")
	return cmd
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "逐级创建目录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.vol.CreateDirectoryRecursive(args[0]); err != nil {
				return err
			}
			a.logger.Info("目录已创建", "path", args[0])
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PATH",
		Short: "删除单个文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.vol.DeleteFile(args[0]); err != nil {
				return err
			}
			a.logger.Info("文件已删除", "path", args[0])
			return nil
		},
	}
}

func newRmdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir PATH",
		Short: "递归删除目录下的文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.vol.DeleteDirectoryRecursive(args[0]); err != nil {
				return err
			}
			a.logger.Info("目录已清空", "path", args[0], "prune", a.cfg.PruneEmptyDirs)
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	var (
		offset int64
		length int64
	)
	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "输出文件内容",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.vol.Open(args[0], fat.ModeRead)
			if err != nil {
				return err
			}
			defer h.Close()
			size, err := h.Size()
			if err != nil {
				return err
			}
			if err := h.SetOffset(offset, fat.Begin); err != nil {
				return err
			}
			remaining := size - offset
			if length >= 0 && length < remaining {
				remaining = length
			}
			buf := make([]byte, a.cfg.ChunkSize)
			out := cmd.OutOrStdout()
			for remaining > 0 {
				n := min(int64(len(buf)), remaining)
				if err := h.ReadExact(buf[:n]); err != nil {
					return err
				}
				if _, err := out.Write(buf[:n]); err != nil {
					return err
				}
				remaining -= n
			}
			return h.Close()
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "起始偏移")
	cmd.Flags().Int64Var(&length, "length", -1, "最多输出的字节数，-1 表示到文件末尾")
	return cmd
}

func runTransfer(ctx context.Context, cmd *cobra.Command, a *app, plan transfer.Plan, appendMode bool) error {
	exec := transfer.Executor{
		Volume:    a.vol,
		Host:      fat.Native().Filesystem(),
		Checksum:  a.cfg.Checksum,
		ChunkSize: a.cfg.ChunkSize,
		Append:    appendMode,
		Logger:    a.logger.Logger,
		Progress:  a.progress(cmd.ErrOrStderr()),
	}
	result, err := exec.Execute(ctx, plan)
	a.logger.Info("传输结束", "ok", len(result.Success), "failed", len(result.Failed),
		"bytes", humanize.IBytes(uint64(plan.TotalBytes)))
	return err
}

func newPutCmd(a *app) *cobra.Command {
	var appendMode bool
	cmd := &cobra.Command{
		Use:   "put SRC DST",
		Short: "将宿主机文件或目录写入存储卡",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := transfer.PlanImport(fat.Native().Filesystem(), args[0], args[1])
			if err != nil {
				return err
			}
			return runTransfer(cmd.Context(), cmd, a, plan, appendMode)
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "追加到已有文件末尾")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get SRC DST",
		Short: "将存储卡上的文件或目录导出到宿主机",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := transfer.PlanExport(a.vol, args[0], args[1])
			if err != nil {
				return err
			}
			return runTransfer(cmd.Context(), cmd, a, plan, false)
		},
	}
}

func newManifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "管理存储卡文件清单",
	}
	cmd.AddCommand(newManifestSaveCmd(a), newManifestShowCmd(a), newManifestDiffCmd(a))
	return cmd
}

func newManifestSaveCmd(a *app) *cobra.Command {
	var (
		name     string
		excludes []string
	)
	cmd := &cobra.Command{
		Use:   "save [ROOT]",
		Short: "扫描并保存清单",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			m, err := manifest.Build(a.vol, root, excludes, a.cfg.Checksum)
			if err != nil {
				return err
			}
			m.Name = name
			if m.Name == "" {
				m.Name = time.Now().UTC().Format("20060102T150405Z")
			}
			if err := manifest.NewStore(a.vol).Save(m); err != nil {
				return err
			}
			a.logger.Info("清单已保存", "name", m.Name, "files", len(m.Entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "清单名，默认为当前 UTC 时间戳")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "排除模式，可多次指定")
	return cmd
}

func newManifestShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [NAME]",
		Short: "显示清单，默认 latest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := manifest.NewStore(a.vol)
			var (
				m   *manifest.Manifest
				err error
			)
			if len(args) == 1 {
				m, err = store.Load(args[0])
			} else {
				m, err = store.LoadLatest()
			}
			if err != nil {
				return err
			}
			if m == nil {
				return errors.New("清单不存在")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  root=%q\n", m.Name, humanize.Time(m.CreatedAt), m.Root)
			for _, p := range sortedPaths(m) {
				e := m.Entries[p]
				fmt.Fprintf(out, "%10s  %s  %s\n", humanize.IBytes(uint64(e.Size)), p, e.Checksum)
			}
			return nil
		},
	}
}

func newManifestDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "比较 latest 清单与当前卷内容",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, err := manifest.NewStore(a.vol).LoadLatest()
			if err != nil {
				return err
			}
			if latest == nil {
				return errors.New("尚未保存任何清单")
			}
			cur, err := manifest.Build(a.vol, latest.Root, latest.Excludes, latest.Checksum)
			if err != nil {
				return err
			}
			changes := manifest.Diff(latest, &cur)
			out := cmd.OutOrStdout()
			for _, p := range changes.Added {
				fmt.Fprintf(out, "+ %s\n", p)
			}
			for _, p := range changes.Removed {
				fmt.Fprintf(out, "- %s\n", p)
			}
			for _, p := range changes.Changed {
				fmt.Fprintf(out, "~ %s\n", p)
			}
			if changes.Empty() {
				fmt.Fprintln(out, "no changes")
			}
			return nil
		},
	}
}
