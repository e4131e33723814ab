package transfer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"fatfs/pkg/fat"
)

// Action 定义传输动作类型
type Action string

const (
	ActionImport Action = "import"
	ActionExport Action = "export"
	ActionSkip   Action = "skip"
)

// Item 表示对单个文件的一次操作。
// Import 时 Source 是宿主机路径、Dest 是卷内路径；Export 相反
type Item struct {
	Source string
	Dest   string
	Size   int64
	Action Action
	Reason string
}

// Plan 描述所有需要操作的集合
type Plan struct {
	Items      []Item
	TotalBytes int64
	TotalFiles int
}

// AddItem 加入计划
func (p *Plan) AddItem(item Item) {
	p.Items = append(p.Items, item)
	if item.Action == ActionSkip {
		return
	}
	p.TotalFiles++
	p.TotalBytes += item.Size
}

// PlanImport 扫描宿主机上的文件或目录，生成写入卷的计划。
// dst 以 "/" 结尾时，单个文件会放到该目录下并保留文件名
func PlanImport(host billy.Filesystem, src, dst string) (Plan, error) {
	plan := Plan{}
	info, err := host.Stat(src)
	if err != nil {
		return plan, fmt.Errorf("扫描源文件失败: %w", err)
	}
	if info.Mode().IsRegular() {
		if strings.HasSuffix(dst, "/") {
			dst += filepath.Base(src)
		}
		plan.AddItem(Item{Source: src, Dest: dst, Size: info.Size(), Action: ActionImport})
		return plan, nil
	}
	if !info.IsDir() {
		return plan, fmt.Errorf("不支持的文件类型: %s", src)
	}
	err = util.Walk(host, src, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !fi.Mode().IsRegular() {
			if !fi.IsDir() {
				plan.AddItem(Item{Source: p, Dest: joinVolume(dst, rel), Action: ActionSkip, Reason: "非普通文件"})
			}
			return nil
		}
		plan.AddItem(Item{Source: p, Dest: joinVolume(dst, rel), Size: fi.Size(), Action: ActionImport})
		return nil
	})
	if err != nil {
		return plan, fmt.Errorf("扫描源目录失败: %w", err)
	}
	return plan, nil
}

// PlanExport 生成从卷导出到宿主机的计划，目录通过 ListAllFiles 展开
func PlanExport(vol *fat.Volume, src, dst string) (Plan, error) {
	plan := Plan{}
	if size, ok := vol.Exists(src); ok {
		if strings.HasSuffix(dst, "/") || strings.HasSuffix(dst, string(filepath.Separator)) {
			dst = filepath.Join(dst, path.Base(src))
		}
		plan.AddItem(Item{Source: src, Dest: dst, Size: size, Action: ActionExport})
		return plan, nil
	}
	info, err := vol.Stat(src)
	if err != nil {
		return plan, err
	}
	if !info.IsDir() {
		return plan, fmt.Errorf("不支持的文件类型: %s", src)
	}
	files, err := vol.ListAllFiles(src)
	if err != nil {
		return plan, err
	}
	prefix := strings.TrimSuffix(src, "/") + "/"
	for _, f := range files {
		rel := strings.TrimPrefix(f, prefix)
		plan.AddItem(Item{
			Source: f,
			Dest:   filepath.Join(dst, filepath.FromSlash(rel)),
			Size:   vol.FileSize(f),
			Action: ActionExport,
		})
	}
	return plan, nil
}

func joinVolume(dir, rel string) string {
	if rel == "." || rel == "" {
		return dir
	}
	if dir == "" {
		return rel
	}
	return strings.TrimSuffix(dir, "/") + "/" + rel
}
