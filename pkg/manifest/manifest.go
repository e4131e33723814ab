package manifest

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"fatfs/pkg/config"
	"fatfs/pkg/fat"
)

// Entry 描述卷内的一个文件
type Entry struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

// Manifest 某一时刻卷内目录树的清单
type Manifest struct {
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Root      string           `json:"root"`
	Checksum  config.Checksum  `json:"checksum,omitempty"`
	Excludes  []string         `json:"excludes,omitempty"`
	Entries   map[string]Entry `json:"entries"`
}

const checksumChunk = 32 * 1024

// Build 扫描 root 下的所有文件生成清单，元数据目录与匹配 excludes 的文件被跳过
func Build(vol *fat.Volume, root string, excludes []string, algo config.Checksum) (Manifest, error) {
	files, err := vol.ListAllFiles(root)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		CreatedAt: time.Now().UTC(),
		Root:      root,
		Checksum:  algo,
		Excludes:  excludes,
		Entries:   make(map[string]Entry, len(files)),
	}
	for _, f := range files {
		if isMetaPath(f) || shouldExclude(f, excludes) {
			continue
		}
		entry := Entry{Path: f, Size: vol.FileSize(f)}
		if sum, err := checksum(vol, f, algo); err != nil {
			return Manifest{}, fmt.Errorf("计算校验和失败 %s: %w", f, err)
		} else if sum != nil {
			entry.Checksum = hex.EncodeToString(sum)
		}
		m.Entries[f] = entry
	}
	return m, nil
}

func checksum(vol *fat.Volume, p string, algo config.Checksum) ([]byte, error) {
	sum := algo.NewHash()
	if sum == nil {
		return nil, nil
	}
	h, err := vol.Open(p, fat.ModeRead)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	size, err := h.Size()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, checksumChunk)
	for remaining := size; remaining > 0; {
		n := min(int64(len(buf)), remaining)
		if err := h.ReadExact(buf[:n]); err != nil {
			return nil, err
		}
		sum.Write(buf[:n])
		remaining -= n
	}
	return sum.Sum(nil), nil
}

// Changes 两份清单之间的差异，路径均已排序
type Changes struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty 是否没有差异
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff 比较两份清单。大小不同，或双方都有校验和且不同，视为修改
func Diff(old, cur *Manifest) Changes {
	var c Changes
	oldEntries := entriesOf(old)
	curEntries := entriesOf(cur)
	for p, e := range curEntries {
		prev, ok := oldEntries[p]
		if !ok {
			c.Added = append(c.Added, p)
			continue
		}
		if prev.Size != e.Size || (prev.Checksum != "" && e.Checksum != "" && prev.Checksum != e.Checksum) {
			c.Changed = append(c.Changed, p)
		}
	}
	for p := range oldEntries {
		if _, ok := curEntries[p]; !ok {
			c.Removed = append(c.Removed, p)
		}
	}
	sort.Strings(c.Added)
	sort.Strings(c.Removed)
	sort.Strings(c.Changed)
	return c
}

func entriesOf(m *Manifest) map[string]Entry {
	if m == nil {
		return nil
	}
	return m.Entries
}

func isMetaPath(p string) bool {
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p == metaDir || strings.HasPrefix(p, metaDir+"/") || strings.Contains(p, "/"+metaDir+"/")
}
