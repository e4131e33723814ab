package fat

import (
	"iter"
	pathpkg "path"
	"strings"
)

// Segments 依次产出 path 的各级前缀。
// 开头的 "/" 保留为根，连续或末尾的分隔符产生的空段被跳过，"." 与 ".." 原样保留
func Segments(path string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cur := ""
		if strings.HasPrefix(path, "/") {
			cur = "/"
		}
		for seg := range strings.SplitSeq(path, "/") {
			if seg == "" {
				continue
			}
			if cur == "" || cur == "/" {
				cur += seg
			} else {
				cur += "/" + seg
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// joinEntry 拼接目录与子项名称，不做规范化
func joinEntry(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// isVolumeRoot 判断 p 规范化后是否指向卷根
func isVolumeRoot(p string) bool {
	clean := pathpkg.Clean(p)
	return clean == "." || clean == "/"
}
