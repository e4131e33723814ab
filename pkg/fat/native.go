package fat

// 以下函数作用于 Native()，路径按进程工作目录解析

// OpenFile 以 mode 打开 path 并返回句柄
func OpenFile(path string, mode OpenMode) (*Handle, error) {
	return native.Open(path, mode)
}

// IsRegularFile 判断 path 是否为普通文件
func IsRegularFile(path string) bool {
	return native.IsRegularFile(path)
}

// FileSize 返回普通文件大小，失败时为 0
func FileSize(path string) int64 {
	return native.FileSize(path)
}

// DeleteFile 删除单个文件
func DeleteFile(path string) error {
	return native.DeleteFile(path)
}

// CreateDirectoryRecursive 逐级创建目录
func CreateDirectoryRecursive(path string) error {
	return native.CreateDirectoryRecursive(path)
}

// DeleteDirectoryRecursive 递归删除目录下的文件
func DeleteDirectoryRecursive(path string) error {
	return native.DeleteDirectoryRecursive(path)
}

// ListAllFiles 递归列出所有普通文件
func ListAllFiles(path string) ([]string, error) {
	return native.ListAllFiles(path)
}
