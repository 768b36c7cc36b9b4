package archive

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lukelzlz/mintar/pkg/header"
)

// buildArchive 手工拼一段归档字节流，便于构造扫描器的各种输入
func buildArchive(t *testing.T, footer bool, entries ...struct {
	name    string
	content []byte
}) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		h := &header.Header{
			Name:     e.name,
			Mode:     0o644,
			Size:     uint64(len(e.content)),
			ModTime:  time.Unix(1700000000, 0),
			Typeflag: header.TypeReg,
			Magic:    header.MagicUstar,
			Version:  header.VersionUstar,
			Uname:    "tester",
			Gname:    "testers",
		}
		block, err := header.Encode(h)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		buf.Write(block)
		buf.Write(e.content)
		buf.Write(make([]byte, paddingSize(uint64(len(e.content)))))
	}
	if footer {
		buf.Write(make([]byte, FooterSize))
	}
	return buf.Bytes()
}

type rawEntry = struct {
	name    string
	content []byte
}

// TestBlockAlignment 测试内容占位按块向上取整
func TestBlockAlignment(t *testing.T) {
	tests := []struct {
		size    uint64
		pad     uint64
		aligned uint64
	}{
		{0, 0, 0},
		{1, 511, 512},
		{511, 1, 512},
		{512, 0, 512},
		{513, 511, 1024},
		{1024, 0, 1024},
	}

	for _, tt := range tests {
		if got := paddingSize(tt.size); got != tt.pad {
			t.Errorf("paddingSize(%d) = %d, want %d", tt.size, got, tt.pad)
		}
		if got := blockAligned(tt.size); got != tt.aligned {
			t.Errorf("blockAligned(%d) = %d, want %d", tt.size, got, tt.aligned)
		}
	}
}

// TestForEachEntrySkipsUnreadContent 测试访问函数不读内容也能走到下一条
func TestForEachEntrySkipsUnreadContent(t *testing.T) {
	data := buildArchive(t, true,
		rawEntry{"a.txt", []byte("hello world")},
		rawEntry{"b.txt", []byte("x")},
	)

	var names []string
	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		names = append(names, e.Header.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachEntry() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Errorf("expected [a.txt b.txt], got %v", names)
	}
}

// TestForEachEntryPartialRead 测试只读一部分内容时剩余部分被跳过
func TestForEachEntryPartialRead(t *testing.T) {
	data := buildArchive(t, true,
		rawEntry{"a.txt", []byte("hello world")},
		rawEntry{"b.txt", []byte("second")},
	)

	var got []string
	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		buf := make([]byte, 3)
		if _, err := io.ReadFull(e, buf); err != nil {
			return err
		}
		got = append(got, e.Header.Name+":"+string(buf))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachEntry() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a.txt:hel" || got[1] != "b.txt:sec" {
		t.Errorf("unexpected reads: %v", got)
	}
}

// TestForEachEntryReadCapped 测试条目读取器不会越过内容边界
func TestForEachEntryReadCapped(t *testing.T) {
	data := buildArchive(t, true, rawEntry{"a.txt", []byte("hello")})

	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		content, err := io.ReadAll(e)
		if err != nil {
			return err
		}
		if string(content) != "hello" {
			t.Errorf("expected %q, got %q", "hello", content)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachEntry() error = %v", err)
	}
}

// TestForEachEntryStopsAtFooter 测试 footer 之后的字节被忽略
func TestForEachEntryStopsAtFooter(t *testing.T) {
	data := buildArchive(t, true, rawEntry{"a.txt", []byte("hello")})
	data = append(data, bytes.Repeat([]byte{0xff}, header.BlockSize)...)

	var count int
	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachEntry() error = %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry, got %d", count)
	}
}

// TestForEachEntryCleanEOFWithoutFooter 测试在头部边界结束的无 footer 流不算错
func TestForEachEntryCleanEOFWithoutFooter(t *testing.T) {
	data := buildArchive(t, false, rawEntry{"a.txt", []byte("hello")})

	var count int
	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachEntry() error = %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry, got %d", count)
	}
}

// TestForEachEntryTruncatedHeader 测试半截头部报归档截断
func TestForEachEntryTruncatedHeader(t *testing.T) {
	data := buildArchive(t, false, rawEntry{"a.txt", []byte("hello")})
	data = data[:len(data)-1000]

	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "truncated archive") {
		t.Errorf("expected truncated archive error, got %v", err)
	}
}

// TestForEachEntryTruncatedContentOnSkip 测试跳过模式下内容不够长也报归档截断。
// seek 越过文件末尾不会出错，不检查流长度的话列表会把残档当成好的。
func TestForEachEntryTruncatedContentOnSkip(t *testing.T) {
	h := &header.Header{
		Name:     "a.txt",
		Mode:     0o644,
		Size:     5000,
		ModTime:  time.Unix(1700000000, 0),
		Typeflag: header.TypeReg,
		Magic:    header.MagicUstar,
		Version:  header.VersionUstar,
		Uname:    "tester",
		Gname:    "testers",
	}
	block, err := header.Encode(h)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	// 头部声称 5000 字节，盘上只有 100 字节内容
	data := append(block, bytes.Repeat([]byte{'x'}, 100)...)

	err = ForEachEntry(bytes.NewReader(data), func(e *Entry) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "truncated archive") {
		t.Errorf("expected truncated archive error, got %v", err)
	}

	// List 走的也是跳过路径，同样必须报错
	chdir(t, t.TempDir())
	if err := os.WriteFile("trunc.mtar", data, 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	a := newTestArchiver(t, nil)
	if _, err := a.List("trunc.mtar"); err == nil {
		t.Errorf("expected List to fail on truncated content")
	}
}

// TestForEachEntryVisitError 测试访问函数的错误会中止扫描并透传
func TestForEachEntryVisitError(t *testing.T) {
	data := buildArchive(t, true,
		rawEntry{"a.txt", []byte("hello")},
		rawEntry{"b.txt", []byte("world")},
	)

	wantErr := io.ErrClosedPipe
	var count int
	err := ForEachEntry(bytes.NewReader(data), func(e *Entry) error {
		count++
		return wantErr
	})
	if err != wantErr {
		t.Errorf("expected visit error to propagate, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected scan to stop after first entry, got %d visits", count)
	}
}

// TestExtractRejectsUnsafeNames 测试绝对路径和越界路径不落盘
func TestExtractRejectsUnsafeNames(t *testing.T) {
	chdir(t, t.TempDir())
	a := newTestArchiver(t, nil)

	tests := []struct {
		name  string
		entry string
	}{
		{"parent escape", "../evil.txt"},
		{"absolute path", "/etc/evil.txt"},
		{"nested escape", "safe/../../evil.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildArchive(t, true, rawEntry{tt.entry, nil})
			if err := os.WriteFile("crafted.mtar", data, 0o644); err != nil {
				t.Fatalf("failed to write archive: %v", err)
			}
			if err := a.Extract("crafted.mtar", "out"); err == nil {
				t.Errorf("expected error for entry name %q", tt.entry)
			}
		})
	}
}

// TestExtractTruncatedContent 测试头部声明的内容读不满时报错
func TestExtractTruncatedContent(t *testing.T) {
	chdir(t, t.TempDir())
	a := newTestArchiver(t, nil)

	data := buildArchive(t, false, rawEntry{"a.txt", []byte("hello")})
	// 砍掉一部分内容和填充，头部留完整
	data = data[:header.BlockSize+2]
	if err := os.WriteFile("crafted.mtar", data, 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	err := a.Extract("crafted.mtar", "out")
	if err == nil || !strings.Contains(err.Error(), "truncated archive") {
		t.Errorf("expected truncated archive error, got %v", err)
	}
}
