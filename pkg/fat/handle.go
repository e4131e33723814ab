package fat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
)

const defaultFilePerm = 0o666

// Handle 独占一个已打开的文件。零值处于关闭状态，并作用于 Native()
type Handle struct {
	vol  *Volume
	file billy.File
	path string
	mode OpenMode
}

func (h *Handle) volume() *Volume {
	if h.vol == nil {
		return native
	}
	return h.vol
}

// Exists 判断 path 是否为普通文件，是则同时返回大小
func (h *Handle) Exists(path string) (int64, bool) {
	return h.volume().Exists(path)
}

// Open 以给定模式打开文件，不会自动创建父目录
func (h *Handle) Open(path string, mode OpenMode) error {
	flag, ok := mode.flags()
	if !ok {
		return opErr("open", path, fmt.Errorf("%w: %s", ErrInvalidMode, mode))
	}
	if h.file != nil {
		return opErr("open", path, ErrAlreadyOpen)
	}
	if flag&os.O_CREATE != 0 {
		if err := h.volume().checkParent(path); err != nil {
			return opErr("open", path, err)
		}
	}
	f, err := h.volume().fs.OpenFile(path, flag, defaultFilePerm)
	if err != nil {
		return opErr("open", path, err)
	}
	h.file = f
	h.path = path
	h.mode = mode
	h.volume().logger.Debug("open", "path", path, "mode", mode)
	return nil
}

// IsOpen 句柄是否持有文件
func (h *Handle) IsOpen() bool {
	return h.file != nil
}

// Path 返回当前打开的路径，关闭后为空
func (h *Handle) Path() string {
	return h.path
}

// Mode 返回当前打开模式
func (h *Handle) Mode() OpenMode {
	return h.mode
}

// Size 计算文件长度，调用前后游标位置不变
func (h *Handle) Size() (int64, error) {
	if h.file == nil {
		return 0, opErr("size", h.path, ErrClosed)
	}
	cur, err := h.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, opErr("size", h.path, err)
	}
	end, err := h.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, opErr("size", h.path, err)
	}
	if _, err := h.file.Seek(cur, io.SeekStart); err != nil {
		return 0, opErr("size", h.path, err)
	}
	return end, nil
}

// SetOffset 相对 pos 移动游标
func (h *Handle) SetOffset(offset int64, pos Position) error {
	whence, ok := pos.whence()
	if !ok {
		return opErr("seek", h.path, fmt.Errorf("%w: %s", ErrInvalidPosition, pos))
	}
	if h.file == nil {
		return opErr("seek", h.path, ErrClosed)
	}
	if _, err := h.file.Seek(offset, whence); err != nil {
		return opErr("seek", h.path, err)
	}
	return nil
}

// Offset 返回当前游标位置
func (h *Handle) Offset() (int64, error) {
	if h.file == nil {
		return 0, opErr("tell", h.path, ErrClosed)
	}
	off, err := h.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, opErr("tell", h.path, err)
	}
	return off, nil
}

// ReadExact 读满 p，不足即视为失败。失败时游标可能已经前移。
// p 为空时直接返回 nil，不触发 I/O
func (h *Handle) ReadExact(p []byte) error {
	if h.file == nil {
		return opErr("read", h.path, ErrClosed)
	}
	if len(p) == 0 {
		return nil
	}
	n, err := io.ReadFull(h.file, p)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return opErr("read", h.path, fmt.Errorf("%w: %d of %d bytes", ErrShortRead, n, len(p)))
	}
	return opErr("read", h.path, errors.Join(ErrShortRead, err))
}

// WriteExact 写入全部 p，不足即视为失败。p 为空时直接返回 nil
func (h *Handle) WriteExact(p []byte) error {
	if h.file == nil {
		return opErr("write", h.path, ErrClosed)
	}
	if len(p) == 0 {
		return nil
	}
	n, err := h.file.Write(p)
	if err != nil {
		return opErr("write", h.path, errors.Join(ErrShortWrite, err))
	}
	if n != len(p) {
		return opErr("write", h.path, fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(p)))
	}
	return nil
}

// Close 关闭文件。无论底层结果如何，句柄都会回到关闭状态；重复关闭是空操作
func (h *Handle) Close() error {
	if h.file == nil {
		return nil
	}
	f, path := h.file, h.path
	h.file = nil
	h.path = ""
	h.mode = 0
	if err := f.Close(); err != nil {
		return opErr("close", path, errors.Join(ErrCloseFailed, err))
	}
	return nil
}
