// Package archive 实现 USTAR 归档的组装与遍历：
// 顺序排列的 (头部, 内容, 填充) 三元组，以 1024 个零字节收尾。
// 所有操作都是单线程的同步阻塞 I/O，默认对归档路径独占访问。
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/lukelzlz/mintar/pkg/header"
	"github.com/lukelzlz/mintar/pkg/progress"
)

// Archiver 归档操作的入口，聚合排除规则、进度报告和身份解析
type Archiver struct {
	excludes []glob.Glob
	reporter progress.Reporter
	ids      header.IdentityResolver
}

// NewArchiver 创建归档器；excludes 是 glob 排除模式
func NewArchiver(excludes []string, reporter progress.Reporter) (*Archiver, error) {
	if reporter == nil {
		reporter = progress.NewSilent()
	}
	patterns := make([]glob.Glob, len(excludes))
	for i, pattern := range excludes {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile exclude pattern %s: %w", pattern, err)
		}
		patterns[i] = g
	}
	return &Archiver{
		excludes: patterns,
		reporter: reporter,
		ids:      header.OSResolver{},
	}, nil
}

// SetIdentityResolver 覆盖默认的操作系统身份解析，测试中用桩实现替换
func (a *Archiver) SetIdentityResolver(ids header.IdentityResolver) {
	a.ids = ids
}

// Create 新建（或截断）归档，按给定顺序写入所有文件，最后封档。
// 任何一个输入文件打不开或读不了都会使整个操作失败。
func (a *Archiver) Create(archivePath string, files []string) error {
	files = a.filterExcluded(files)

	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	return a.writeEntries(f, files)
}

// Append 打开既有归档，从 footer 起始处开始覆盖写入新条目，再补新 footer。
// 旧 footer 的字节被新的头部/内容流覆盖，相当于逻辑上的截断再延长。
func (a *Archiver) Append(archivePath string, files []string) error {
	files = a.filterExcluded(files)

	f, err := os.OpenFile(archivePath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}
	if fi.Size() < FooterSize {
		return fmt.Errorf("%s is not a valid archive: shorter than the %d-byte footer", archivePath, FooterSize)
	}
	if _, err := f.Seek(-FooterSize, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to footer: %w", err)
	}

	return a.writeEntries(f, files)
}

// writeEntries 依次追加每个文件并封档
func (a *Archiver) writeEntries(w io.Writer, files []string) error {
	tw := NewWriter(w, a.ids)

	a.reporter.Init(totalSize(files))
	defer a.reporter.Close()

	for _, path := range files {
		hdr, err := tw.AppendEntry(path)
		if err != nil {
			return err
		}
		a.reporter.Add(int64(hdr.Size))
	}

	if err := tw.WriteFooter(); err != nil {
		return err
	}
	a.reporter.Complete()
	return nil
}

// Walk 惰性遍历归档中的每个头部（内容整块跳过）。
// 重新调用即从头重启。
func (a *Archiver) Walk(archivePath string, fn func(*header.Header) error) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	return ForEachEntry(f, func(e *Entry) error {
		return fn(e.Header)
	})
}

// List 按出现顺序收集归档中所有条目名
func (a *Archiver) List(archivePath string) ([]string, error) {
	var names []string
	err := a.Walk(archivePath, func(h *header.Header) error {
		names = append(names, h.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// NotInArchiveError update 要求刷新的文件不在归档中（策略错误）
type NotInArchiveError struct {
	Names []string
}

func (e *NotInArchiveError) Error() string {
	return fmt.Sprintf("not already present in archive: %s", strings.Join(e.Names, ", "))
}

// Update 刷新归档中已有的条目。要求的名字必须全部已存在，
// 否则在动归档文件之前就以策略错误失败；通过检查后委托给 Append。
// 同名条目只会在尾部追加而不是原地替换，归档是按条目追加的日志。
func (a *Archiver) Update(archivePath string, files []string) error {
	names, err := a.List(archivePath)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(names))
	for _, n := range names {
		existing[n] = struct{}{}
	}

	var missing []string
	for _, f := range files {
		if _, ok := existing[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &NotInArchiveError{Names: missing}
	}

	return a.Append(archivePath, files)
}

// Extract 把归档内容展开到 dir（空串表示当前目录）。
// 只写回文件内容，不恢复权限和属主。
func (a *Archiver) Extract(archivePath, dir string) error {
	if dir == "" {
		dir = "."
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	a.reporter.Init(0)
	defer a.reporter.Close()

	err = ForEachEntry(f, func(e *Entry) error {
		if err := validateEntryName(e.Header.Name); err != nil {
			return err
		}
		return a.extractEntry(dir, e)
	})
	if err != nil {
		return err
	}
	a.reporter.Complete()
	return nil
}

// extractEntry 按头部声明的长度整块读出内容并原样写到目标文件，
// 尾块不足 512 字节时读短块。
func (a *Archiver) extractEntry(dir string, e *Entry) error {
	target := filepath.Join(dir, e.Header.Name)
	if parent := filepath.Dir(target); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", e.Header.Name, err)
		}
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()

	buf := make([]byte, header.BlockSize)
	remaining := e.Header.Size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(e, buf[:n]); err != nil {
			return fmt.Errorf("truncated archive: content of %s: %w", e.Header.Name, err)
		}
		if _, err := out.Write(buf[:n]); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		a.reporter.Add(int64(n))
		remaining -= n
	}

	return out.Close()
}

// validateEntryName 拒绝会逃出展开目录的条目名
func validateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("empty entry name")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("unsafe entry name %q: absolute path", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("unsafe entry name %q: escapes extraction directory", name)
	}
	return nil
}

// totalSize 统计输入文件的总字节数，仅用于进度显示
func totalSize(files []string) int64 {
	var total int64
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil {
			total += fi.Size()
		}
	}
	return total
}
