package fat

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Exists 判断 path 是否为普通文件，是则返回 stat 得到的大小
func (v *Volume) Exists(path string) (int64, bool) {
	info, err := v.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// IsRegularFile 判断 path 是否为普通文件
func (v *Volume) IsRegularFile(path string) bool {
	_, ok := v.Exists(path)
	return ok
}

// FileSize 返回普通文件的大小；不存在或不是普通文件时返回 0
func (v *Volume) FileSize(path string) int64 {
	size, _ := v.Exists(path)
	return size
}

// DeleteFile 删除单个文件
func (v *Volume) DeleteFile(path string) error {
	if err := v.fs.Remove(path); err != nil {
		return opErr("remove", path, err)
	}
	return nil
}

// CreateDirectoryRecursive 逐级创建 path 的每个前缀目录，已存在的目录视为成功。
// 与旧实现不同，某一级已是普通文件时返回 ErrNotDirectory，而不是当作已存在
func (v *Volume) CreateDirectoryRecursive(path string) error {
	if path == "" {
		return opErr("mkdir", path, ErrInvalidPath)
	}
	for prefix := range Segments(path) {
		info, err := v.fs.Stat(prefix)
		switch {
		case err == nil && info.IsDir():
			continue
		case err == nil:
			return opErr("mkdir", prefix, ErrNotDirectory)
		case !errors.Is(err, fs.ErrNotExist):
			return opErr("mkdir", prefix, err)
		}
		if err := v.fs.MkdirAll(prefix, v.dirPerm); err != nil && !errors.Is(err, fs.ErrExist) {
			return opErr("mkdir", prefix, err)
		}
		v.logger.Debug("mkdir", "path", prefix)
	}
	return nil
}

// checkParent 确认 path 的父目录已存在。billy 在 O_CREATE 时会隐式创建父目录，这里提前拦截
func (v *Volume) checkParent(path string) error {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return nil
	}
	info, err := v.fs.Stat(path[:idx])
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// readDir 枚举目录并按类型划分为普通文件与子目录，其它类型的条目被忽略
func (v *Volume) readDir(path string) (files, dirs []string, err error) {
	entries, err := v.fs.ReadDir(path)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		sub := joinEntry(path, name)
		switch mode := entry.Mode(); {
		case mode.IsDir():
			dirs = append(dirs, sub)
		case mode.IsRegular():
			files = append(files, sub)
		}
	}
	return files, dirs, nil
}

// DeleteDirectoryRecursive 深度优先删除目录下的所有文件。
// 无法打开的目录视为无需删除。默认保留目录节点本身，WithPruneEmptyDirs 时一并删除，卷根除外
func (v *Volume) DeleteDirectoryRecursive(path string) error {
	files, dirs, err := v.readDir(path)
	if err != nil {
		v.logger.Debug("rmdir: skip unreadable directory", "path", path, "err", err)
		return nil
	}
	for _, file := range files {
		if err := v.DeleteFile(file); err != nil {
			return err
		}
	}
	for _, dir := range dirs {
		if err := v.DeleteDirectoryRecursive(dir); err != nil {
			return err
		}
	}
	if v.pruneEmpty && !isVolumeRoot(path) {
		if err := v.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return opErr("rmdir", path, err)
		}
	}
	v.logger.Debug("rmdir", "path", path, "files", len(files), "dirs", len(dirs))
	return nil
}

// ListAllFiles 返回 path 下所有普通文件的完整路径，不包含目录
func (v *Volume) ListAllFiles(path string) ([]string, error) {
	return v.AppendAllFiles(nil, path)
}

// AppendAllFiles 将 path 下所有普通文件追加到 dst。
// 每个目录先追加自身的文件（枚举顺序），再递归子目录
func (v *Volume) AppendAllFiles(dst []string, path string) ([]string, error) {
	files, dirs, err := v.readDir(path)
	if err != nil {
		v.logger.Debug("list: skip unreadable directory", "path", path, "err", err)
		return dst, nil
	}
	dst = append(dst, files...)
	for _, dir := range dirs {
		if dst, err = v.AppendAllFiles(dst, dir); err != nil {
			return dst, err
		}
	}
	return dst, nil
}
