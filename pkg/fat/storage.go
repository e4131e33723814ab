package fat

import (
	"fmt"
	"os"
	"sync"
)

// Driver 存储卡驱动的启动过程
type Driver interface {
	Init() error
}

// DriverFunc 将函数适配为 Driver
type DriverFunc func() error

func (f DriverFunc) Init() error {
	return f()
}

// CardDriver 宿主机上的“存储卡”：挂载点必须是已存在的目录
type CardDriver struct {
	Root string
}

func (c CardDriver) Init() error {
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoCard, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s 不是目录", ErrNoCard, c.Root)
	}
	return nil
}

// Storage 保证驱动在进程内只成功初始化一次。
// 失败不会被记住，下次调用会重新尝试
type Storage struct {
	mu     sync.Mutex
	driver Driver
	ready  bool
}

// NewStorage 创建 Storage
func NewStorage(driver Driver) *Storage {
	return &Storage{driver: driver}
}

// Initialize 启动驱动，已成功初始化时直接返回
func (s *Storage) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if s.driver == nil {
		return ErrNoCard
	}
	if err := s.driver.Init(); err != nil {
		return fmt.Errorf("fat: init storage: %w", err)
	}
	s.ready = true
	return nil
}

// Initialized 是否已完成初始化
func (s *Storage) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

var defaultStorage = NewStorage(CardDriver{Root: "."})

// InitializeStorage 初始化进程默认存储（宿主机上以工作目录作为存储卡）
func InitializeStorage() error {
	return defaultStorage.Initialize()
}
