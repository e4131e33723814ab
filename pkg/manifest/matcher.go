package manifest

import (
	"path"
	"strings"
)

// shouldExclude 根据 glob 模式决定是否跳过，完整路径或文件名匹配任一即可
func shouldExclude(p string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if matched, _ := path.Match(pattern, p); matched {
			return true
		}
		if matched, _ := path.Match(pattern, path.Base(p)); matched {
			return true
		}
	}
	return false
}
