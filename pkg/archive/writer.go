package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/lukelzlz/mintar/pkg/header"
)

// FooterSize 归档结尾的零字节数：两个全零块
const FooterSize = 2 * header.BlockSize

var zeroBlock [header.BlockSize]byte

// Writer 向打开的归档流追加条目
type Writer struct {
	w   io.Writer
	ids header.IdentityResolver
}

// NewWriter 创建归档写入器；ids 为 nil 时使用操作系统用户数据库
func NewWriter(w io.Writer, ids header.IdentityResolver) *Writer {
	if ids == nil {
		ids = header.OSResolver{}
	}
	return &Writer{w: w, ids: ids}
}

// AppendEntry 写入 path 的头部、原始内容和到下一个块边界的零填充。
// 写入位置恰好前进 512 + size + padding 字节。
func (w *Writer) AppendEntry(path string) (*header.Header, error) {
	hdr, err := header.NewHeader(path, w.ids)
	if err != nil {
		return nil, err
	}
	block, err := header.Encode(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := w.w.Write(block); err != nil {
		return nil, fmt.Errorf("failed to write header of %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := io.Copy(w.w, f)
	if err != nil {
		return nil, fmt.Errorf("failed to write content of %s: %w", path, err)
	}
	if uint64(n) != hdr.Size {
		return nil, fmt.Errorf("%s changed while archiving: header says %d bytes, wrote %d", path, hdr.Size, n)
	}

	if pad := paddingSize(hdr.Size); pad > 0 {
		if _, err := w.w.Write(zeroBlock[:pad]); err != nil {
			return nil, fmt.Errorf("failed to write padding of %s: %w", path, err)
		}
	}
	return hdr, nil
}

// WriteFooter 写入 1024 个零字节封档。最后一条条目之后调用，且只调用一次。
func (w *Writer) WriteFooter() error {
	for i := 0; i < FooterSize/header.BlockSize; i++ {
		if _, err := w.w.Write(zeroBlock[:]); err != nil {
			return fmt.Errorf("failed to write footer: %w", err)
		}
	}
	return nil
}

// paddingSize 内容之后补到下一个块边界所需的零字节数
func paddingSize(size uint64) uint64 {
	return (header.BlockSize - size%header.BlockSize) % header.BlockSize
}

// blockAligned 向上取整到块边界
func blockAligned(size uint64) uint64 {
	return size + paddingSize(size)
}
