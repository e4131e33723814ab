package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Checksum 校验算法
type Checksum string

const (
	ChecksumNone   Checksum = "none"
	ChecksumMD5    Checksum = "md5"
	ChecksumSHA1   Checksum = "sha1"
	ChecksumSHA256 Checksum = "sha256"
)

const (
	DefaultChunkSize = 32 * 1024
	maxChunkSize     = 64 * 1024 * 1024
)

// Config 表示 fatfs 工具的配置
type Config struct {
	MountPoint     string   `yaml:"mount_point"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	LogFile        string   `yaml:"log_file"`
	DirPerm        uint32   `yaml:"dir_perm"`
	PruneEmptyDirs bool     `yaml:"prune_empty_dirs"`
	NoProgress     bool     `yaml:"no_progress"`
	Checksum       Checksum `yaml:"checksum"`
	ChunkSize      int      `yaml:"chunk_size"`
}

// Defaults 返回默认配置
func Defaults() Config {
	return Config{
		MountPoint: ".",
		LogLevel:   "info",
		LogFormat:  "text",
		DirPerm:    0o777,
		Checksum:   ChecksumNone,
		ChunkSize:  DefaultChunkSize,
	}
}

// LoadFromFile 在默认配置之上加载 YAML 文件
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置 %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 进行基础校验并规范化字段
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MountPoint) == "" {
		return fmt.Errorf("mount_point 不能为空")
	}
	c.Checksum = Checksum(strings.ToLower(string(c.Checksum)))
	switch c.Checksum {
	case "":
		c.Checksum = ChecksumNone
	case ChecksumNone, ChecksumMD5, ChecksumSHA1, ChecksumSHA256:
	default:
		return fmt.Errorf("未知校验算法: %s", c.Checksum)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("未知日志格式: %s", c.LogFormat)
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkSize > maxChunkSize {
		return fmt.Errorf("chunk_size 过大: %d", c.ChunkSize)
	}
	if c.DirPerm == 0 {
		c.DirPerm = 0o777
	}
	if c.DirPerm&^uint32(fs.ModePerm) != 0 {
		return fmt.Errorf("dir_perm 非法: %o", c.DirPerm)
	}
	return nil
}

// DirMode 返回目录权限
func (c Config) DirMode() fs.FileMode {
	return fs.FileMode(c.DirPerm)
}
