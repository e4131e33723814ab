package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"fatfs/pkg/fat"
)

const (
	metaDir     = ".fatfs"
	manifestDir = "manifests"
	latestFile  = "latest"
)

// Store 负责在卷内存取清单，读写全部经过 fat.Handle
type Store struct {
	vol *fat.Volume
}

// NewStore 创建 Store
func NewStore(vol *fat.Volume) *Store {
	return &Store{vol: vol}
}

// Save 写入清单并更新 latest
func (s *Store) Save(m Manifest) error {
	if m.Name == "" {
		return fmt.Errorf("清单名不能为空")
	}
	if strings.ContainsAny(m.Name, "/\\") {
		return fmt.Errorf("清单名非法: %s", m.Name)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := path.Join(metaDir, manifestDir)
	if err := s.vol.CreateDirectoryRecursive(dir); err != nil {
		return err
	}
	if err := s.writeFile(path.Join(dir, m.Name+".json"), data); err != nil {
		return err
	}
	return s.writeFile(path.Join(metaDir, latestFile), []byte(m.Name+"\n"))
}

// Load 按名称读取清单，不存在时返回 nil
func (s *Store) Load(name string) (*Manifest, error) {
	data, err := s.readFile(path.Join(metaDir, manifestDir, name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解析清单 %s: %w", name, err)
	}
	return &m, nil
}

// LoadLatest 读取 latest 指向的清单
func (s *Store) LoadLatest() (*Manifest, error) {
	data, err := s.readFile(path.Join(metaDir, latestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return nil, fmt.Errorf("latest 为空")
	}
	return s.Load(name)
}

// Names 返回已保存的清单名，按名称排序
func (s *Store) Names() ([]string, error) {
	files, err := s.vol.ListAllFiles(path.Join(metaDir, manifestDir))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		base := path.Base(f)
		if strings.HasSuffix(base, ".json") {
			names = append(names, strings.TrimSuffix(base, ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) readFile(p string) ([]byte, error) {
	h, err := s.vol.Open(p, fat.ModeRead)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	size, err := h.Size()
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := h.ReadExact(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) writeFile(p string, data []byte) error {
	h, err := s.vol.Open(p, fat.ModeWrite)
	if err != nil {
		return err
	}
	if err := h.WriteExact(data); err != nil {
		h.Close()
		return err
	}
	return h.Close()
}
