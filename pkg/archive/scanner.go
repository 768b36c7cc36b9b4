package archive

import (
	"fmt"
	"io"

	"github.com/lukelzlz/mintar/pkg/header"
)

// Entry 扫描到的一条条目：头部加一个以内容长度为界的读取器
type Entry struct {
	Header *header.Header

	r    io.Reader
	read uint64
}

// Read 读取条目内容，最多读到头部声明的长度
func (e *Entry) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	e.read += uint64(n)
	return n, err
}

// VisitFunc 处理一条条目；返回错误会中止扫描
type VisitFunc func(*Entry) error

// ForEachEntry 顺序遍历归档：逐块读取并解码头部，
// 读到全零块（或正好在头部边界处的 EOF）即成功结束。
// 访问函数没有消费的内容连同填充由扫描器 seek 跳过——
// 每个头部都告诉扫描器跳多远能到下一个头部，归档没有独立索引。
// 头部声称的内容超出流的实际长度同样是归档截断，
// seek 不会因为越过末尾而报错，所以跳过量要对着流长度检查。
func ForEachEntry(rs io.ReadSeeker, visit VisitFunc) error {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to locate archive stream: %w", err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to measure archive stream: %w", err)
	}
	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive stream: %w", err)
	}

	block := make([]byte, header.BlockSize)
	for {
		if _, err := io.ReadFull(rs, block); err != nil {
			if err == io.EOF {
				// 没有 footer 但流在头部边界干净地结束
				return nil
			}
			return fmt.Errorf("truncated archive: %w", err)
		}

		hdr, err := header.Decode(block)
		if err != nil {
			return err
		}
		if hdr == nil {
			// 归档结束信号
			return nil
		}

		entry := &Entry{Header: hdr, r: io.LimitReader(rs, int64(hdr.Size))}
		if err := visit(entry); err != nil {
			return err
		}

		if remaining := int64(blockAligned(hdr.Size)) - int64(entry.read); remaining > 0 {
			next, err := rs.Seek(remaining, io.SeekCurrent)
			if err != nil {
				return fmt.Errorf("failed to seek past entry %s: %w", hdr.Name, err)
			}
			if next > end {
				return fmt.Errorf("truncated archive: content of %s: %w", hdr.Name, io.ErrUnexpectedEOF)
			}
		}
	}
}
