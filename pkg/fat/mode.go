package fat

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// OpenMode 文件打开模式
type OpenMode int

const (
	// ModeRead 只读，文件不存在时失败
	ModeRead OpenMode = iota + 1
	// ModeWrite 创建或截断后写入
	ModeWrite
	// ModeUpdate 追加写入，文件不存在时创建
	ModeUpdate
)

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeUpdate:
		return "update"
	default:
		return fmt.Sprintf("OpenMode(%d)", int(m))
	}
}

// flags 将模式映射为 OpenFile 标志位，未知模式返回 false
func (m OpenMode) flags() (int, bool) {
	switch m {
	case ModeRead:
		return os.O_RDONLY, true
	case ModeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, true
	case ModeUpdate:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, true
	default:
		return 0, false
	}
}

// ParseOpenMode 解析 CLI/配置中的模式字符串
func ParseOpenMode(s string) (OpenMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "rb", "read":
		return ModeRead, nil
	case "w", "wb", "write":
		return ModeWrite, nil
	case "a", "ab", "update", "append":
		return ModeUpdate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Position seek 的起点
type Position int

const (
	Begin Position = iota
	Current
	End
)

func (p Position) String() string {
	switch p {
	case Begin:
		return "begin"
	case Current:
		return "current"
	case End:
		return "end"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

func (p Position) whence() (int, bool) {
	switch p {
	case Begin:
		return io.SeekStart, true
	case Current:
		return io.SeekCurrent, true
	case End:
		return io.SeekEnd, true
	default:
		return 0, false
	}
}
