package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Progress 定义统一的进度更新接口
type Progress interface {
	Start(totalFiles int, totalBytes int64)
	NextFile(path string, size int64)
	AddBytes(n int64)
	Finish()
}

const maxDescLen = 40

// BarProgress 基于 progressbar 的单行进度条
type BarProgress struct {
	mu             sync.Mutex
	writer         io.Writer
	bar            *progressbar.ProgressBar
	totalFiles     int
	completedFiles int
}

// NewBarProgress 创建进度条实例
func NewBarProgress(writer io.Writer) *BarProgress {
	return &BarProgress{writer: writer}
}

func (p *BarProgress) Start(totalFiles int, totalBytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalFiles = totalFiles
	p.completedFiles = 0
	p.bar = progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(p.describeLocked("")),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.writer, "\n")
		}),
	)
}

func (p *BarProgress) NextFile(path string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	p.completedFiles++
	p.bar.Describe(p.describeLocked(path))
}

func (p *BarProgress) AddBytes(n int64) {
	if n == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Add64(n)
}

func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func (p *BarProgress) describeLocked(path string) string {
	desc := fmt.Sprintf("%d/%d", p.completedFiles, p.totalFiles)
	if path != "" {
		desc += " " + shortenPath(path, maxDescLen)
	}
	return desc
}

// NoopProgress 在 --no-progress 下使用
type NoopProgress struct{}

func (n NoopProgress) Start(totalFiles int, totalBytes int64) {}
func (n NoopProgress) NextFile(path string, size int64)       {}
func (n NoopProgress) AddBytes(delta int64)                   {}
func (n NoopProgress) Finish()                                {}

func shortenPath(path string, maxLen int) string {
	clean := strings.NewReplacer("\n", " ", "\r", " ").Replace(path)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	keep := maxLen - 3
	head := keep / 2
	tail := keep - head
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}
