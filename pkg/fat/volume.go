package fat

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

const defaultDirPerm fs.FileMode = 0o777

// Volume 表示一张已挂载的存储卡，所有路径都相对于其文件系统解析
type Volume struct {
	fs         billy.Filesystem
	dirPerm    fs.FileMode
	pruneEmpty bool
	logger     *slog.Logger
}

// Option 配置 Volume
type Option func(*Volume)

// WithDirPerm 设置新建目录的权限
func WithDirPerm(perm fs.FileMode) Option {
	return func(v *Volume) {
		if perm != 0 {
			v.dirPerm = perm
		}
	}
}

// WithPruneEmptyDirs 决定 DeleteDirectoryRecursive 是否同时删除清空后的目录
func WithPruneEmptyDirs(prune bool) Option {
	return func(v *Volume) {
		v.pruneEmpty = prune
	}
}

// WithLogger 设置调试日志输出
func WithLogger(logger *slog.Logger) Option {
	return func(v *Volume) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVolume 基于任意 billy 文件系统创建 Volume
func NewVolume(fsys billy.Filesystem, opts ...Option) *Volume {
	v := &Volume{
		fs:      fsys,
		dirPerm: defaultDirPerm,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewOSVolume 创建以 root 为挂载点的本地 Volume
func NewOSVolume(root string, opts ...Option) *Volume {
	return NewVolume(osfs.New(root), opts...)
}

// NewMemVolume 创建内存 Volume，主要用于测试与演示
func NewMemVolume(opts ...Option) *Volume {
	return NewVolume(memfs.New(), opts...)
}

// nativeOS 不做 chroot 的本地文件系统，路径原样交给 os 包
type nativeOS struct {
	osfs.ChrootOS
}

func (n *nativeOS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (n *nativeOS) Root() string {
	return ""
}

var native = NewVolume(&nativeOS{})

// Native 返回不做 chroot 的本地 Volume，路径按进程工作目录解析
func Native() *Volume {
	return native
}

// Root 返回挂载点
func (v *Volume) Root() string {
	return v.fs.Root()
}

// Filesystem 返回底层 billy 文件系统
func (v *Volume) Filesystem() billy.Filesystem {
	return v.fs
}

// Stat 返回路径信息
func (v *Volume) Stat(path string) (os.FileInfo, error) {
	info, err := v.fs.Stat(path)
	if err != nil {
		return nil, opErr("stat", path, err)
	}
	return info, nil
}

// NewHandle 创建一个处于关闭状态的句柄
func (v *Volume) NewHandle() *Handle {
	return &Handle{vol: v}
}

// Open 创建句柄并立即打开
func (v *Volume) Open(path string, mode OpenMode) (*Handle, error) {
	h := v.NewHandle()
	if err := h.Open(path, mode); err != nil {
		return nil, err
	}
	return h, nil
}
