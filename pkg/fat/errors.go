package fat

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound 路径不存在
	ErrNotFound = fs.ErrNotExist
	// ErrWrongType 路径存在但不是普通文件
	ErrWrongType = errors.New("not a regular file")
	// ErrNotDirectory 路径前缀存在但不是目录
	ErrNotDirectory = errors.New("not a directory")
	// ErrInvalidMode 未知的打开模式
	ErrInvalidMode = errors.New("invalid open mode")
	// ErrInvalidPosition 未知的 seek 起点
	ErrInvalidPosition = errors.New("invalid seek position")
	// ErrInvalidPath 空路径
	ErrInvalidPath = errors.New("invalid path")
	// ErrShortRead 读取字节数不足
	ErrShortRead = errors.New("short read")
	// ErrShortWrite 写入字节数不足
	ErrShortWrite = errors.New("short write")
	// ErrCloseFailed 底层 close 失败，句柄依旧被置空
	ErrCloseFailed = errors.New("close failed")
	// ErrClosed 句柄未打开
	ErrClosed = fs.ErrClosed
	// ErrAlreadyOpen 句柄已打开
	ErrAlreadyOpen = errors.New("handle already open")
	// ErrNoCard 存储卡不可用
	ErrNoCard = errors.New("storage card unavailable")
)

func opErr(op, path string, err error) error {
	return fmt.Errorf("fat: %s %q: %w", op, path, err)
}
