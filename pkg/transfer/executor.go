package transfer

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"fatfs/pkg/config"
	"fatfs/pkg/fat"
	"fatfs/pkg/ui"
)

// Executor 负责执行传输计划，卷内的读写全部经过 fat.Handle
type Executor struct {
	Volume    *fat.Volume
	Host      billy.Filesystem
	Checksum  config.Checksum
	ChunkSize int
	// Append 为 true 时导入使用追加模式
	Append   bool
	Logger   *slog.Logger
	Progress ui.Progress
}

// Record 描述成功传输的文件
type Record struct {
	Size     int64
	Checksum string
}

// Result 描述执行结果，键为目标路径
type Result struct {
	Success map[string]Record
	Failed  map[string]error
}

// Execute 执行计划，单个文件失败不会中断后续文件
func (e *Executor) Execute(ctx context.Context, plan Plan) (Result, error) {
	result := Result{
		Success: make(map[string]Record),
		Failed:  make(map[string]error),
	}
	progress := e.Progress
	if progress == nil {
		progress = ui.NoopProgress{}
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	progress.Start(plan.TotalFiles, plan.TotalBytes)
	defer progress.Finish()

	var errs []error
	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		var (
			rec Record
			err error
		)
		switch item.Action {
		case ActionImport:
			progress.NextFile(item.Dest, item.Size)
			rec, err = e.importFile(item, progress)
		case ActionExport:
			progress.NextFile(item.Source, item.Size)
			rec, err = e.exportFile(item, progress)
		case ActionSkip:
			logger.Debug("跳过", "path", item.Source, "reason", item.Reason)
			continue
		default:
			err = fmt.Errorf("未知动作: %s", item.Action)
		}
		if err != nil {
			logger.Error("传输失败", "src", item.Source, "dst", item.Dest, "err", err)
			errs = append(errs, err)
			result.Failed[item.Dest] = err
			continue
		}
		logger.Info("传输完成", "src", item.Source, "dst", item.Dest, "size", rec.Size)
		result.Success[item.Dest] = rec
	}
	if len(errs) > 0 {
		return result, fmt.Errorf("%d 个文件传输失败: %w", len(errs), errors.Join(errs...))
	}
	return result, nil
}

func (e *Executor) chunkSize() int {
	if e.ChunkSize <= 0 {
		return config.DefaultChunkSize
	}
	return e.ChunkSize
}

func (e *Executor) importFile(item Item, progress ui.Progress) (Record, error) {
	src, err := e.Host.Open(item.Source)
	if err != nil {
		return Record{}, fmt.Errorf("读取源文件失败: %w", err)
	}
	defer src.Close()

	if dir := path.Dir(item.Dest); dir != "." && dir != "/" {
		if err := e.Volume.CreateDirectoryRecursive(dir); err != nil {
			return Record{}, fmt.Errorf("创建目标目录失败: %w", err)
		}
	}
	mode := fat.ModeWrite
	var start int64
	if e.Append {
		mode = fat.ModeUpdate
		start = e.Volume.FileSize(item.Dest)
	}
	h, err := e.Volume.Open(item.Dest, mode)
	if err != nil {
		return Record{}, fmt.Errorf("创建目标文件失败: %w", err)
	}
	defer h.Close()

	sum := e.Checksum.NewHash()
	buf := make([]byte, e.chunkSize())
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if err := h.WriteExact(buf[:n]); err != nil {
				return Record{}, err
			}
			if sum != nil {
				sum.Write(buf[:n])
			}
			written += int64(n)
			progress.AddBytes(int64(n))
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return Record{}, fmt.Errorf("读取源文件失败: %w", rerr)
		}
	}
	if err := h.Close(); err != nil {
		return Record{}, err
	}
	rec := Record{Size: written}
	if sum == nil {
		return rec, nil
	}
	srcSum := sum.Sum(nil)
	destSum, err := e.volumeChecksum(item.Dest, start, written)
	if err != nil {
		return Record{}, err
	}
	if !bytes.Equal(srcSum, destSum) {
		return Record{}, fmt.Errorf("校验失败: %s", item.Dest)
	}
	rec.Checksum = hex.EncodeToString(srcSum)
	return rec, nil
}

// volumeChecksum 通过句柄读取卷内文件从 start 开始的 length 字节并计算摘要
func (e *Executor) volumeChecksum(p string, start, length int64) ([]byte, error) {
	h, err := e.Volume.Open(p, fat.ModeRead)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	if err := h.SetOffset(start, fat.Begin); err != nil {
		return nil, err
	}
	sum := e.Checksum.NewHash()
	if sum == nil {
		return nil, fmt.Errorf("未知校验算法: %s", e.Checksum)
	}
	if err := copyFromHandle(sum, h, length, e.chunkSize()); err != nil {
		return nil, err
	}
	return sum.Sum(nil), nil
}

func (e *Executor) exportFile(item Item, progress ui.Progress) (Record, error) {
	h, err := e.Volume.Open(item.Source, fat.ModeRead)
	if err != nil {
		return Record{}, fmt.Errorf("读取源文件失败: %w", err)
	}
	defer h.Close()
	size, err := h.Size()
	if err != nil {
		return Record{}, err
	}

	if err := e.Host.MkdirAll(filepath.Dir(item.Dest), 0o755); err != nil {
		return Record{}, fmt.Errorf("创建目标目录失败: %w", err)
	}
	out, err := e.Host.Create(item.Dest)
	if err != nil {
		return Record{}, fmt.Errorf("创建目标文件失败: %w", err)
	}
	defer out.Close()

	sum := e.Checksum.NewHash()
	writers := []io.Writer{out, progressWriter{progress: progress}}
	if sum != nil {
		writers = append(writers, sum)
	}
	if err := copyFromHandle(io.MultiWriter(writers...), h, size, e.chunkSize()); err != nil {
		return Record{}, err
	}
	if err := out.Close(); err != nil {
		return Record{}, err
	}
	rec := Record{Size: size}
	if sum == nil {
		return rec, nil
	}
	srcSum := sum.Sum(nil)
	destSum, err := e.hostChecksum(item.Dest)
	if err != nil {
		return Record{}, err
	}
	if !bytes.Equal(srcSum, destSum) {
		return Record{}, fmt.Errorf("校验失败: %s", item.Dest)
	}
	rec.Checksum = hex.EncodeToString(srcSum)
	return rec, nil
}

func (e *Executor) hostChecksum(p string) ([]byte, error) {
	f, err := e.Host.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sum := e.Checksum.NewHash()
	if sum == nil {
		return nil, fmt.Errorf("未知校验算法: %s", e.Checksum)
	}
	if _, err := io.Copy(sum, f); err != nil {
		return nil, err
	}
	return sum.Sum(nil), nil
}

// copyFromHandle 按块读取 length 字节写入 w，每块都必须完整读到
func copyFromHandle(w io.Writer, h *fat.Handle, length int64, chunk int) error {
	buf := make([]byte, chunk)
	for remaining := length; remaining > 0; {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if err := h.ReadExact(buf[:n]); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

type progressWriter struct {
	progress ui.Progress
}

func (p progressWriter) Write(b []byte) (int, error) {
	p.progress.AddBytes(int64(len(b)))
	return len(b), nil
}
