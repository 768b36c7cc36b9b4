package header

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Encode 将头部编码为一条 512 字节记录。
// 数字字段写成零填充的 ASCII 八进制（宽度减一位数字加 NUL 结尾），
// 字符串字段写成原始字节加 NUL 结尾再补零；超宽即编码失败。
// 校验和先以八个空格占位编码一遍，对整条记录按字节求和后回填。
func Encode(h *Header) ([]byte, error) {
	block, err := encodeRaw(h)
	if err != nil {
		return nil, err
	}

	sum := Checksum(block)
	s := strconv.FormatUint(uint64(sum), 8)
	copy(block[offChksum:], strings.Repeat("0", lenChksum-1-len(s))+s)
	block[offChksum+lenChksum-1] = 0

	return block, nil
}

// encodeRaw 按固定布局写出所有字段，校验和字段填八个空格
func encodeRaw(h *Header) ([]byte, error) {
	block := make([]byte, BlockSize)
	w := &fieldWriter{block: block}

	if err := w.putString("name", h.Name, lenName); err != nil {
		return nil, err
	}
	if err := w.putOctal("mode", uint64(h.Mode), lenMode); err != nil {
		return nil, err
	}
	if err := w.putOctal("uid", uint64(h.UID), lenUID); err != nil {
		return nil, err
	}
	if err := w.putOctal("gid", uint64(h.GID), lenGID); err != nil {
		return nil, err
	}
	if err := w.putOctal("size", h.Size, lenSize); err != nil {
		return nil, err
	}
	secs := h.ModTime.Unix()
	if secs < 0 {
		return nil, &FieldError{Field: "mtime", Offset: w.off, Err: fmt.Errorf("time %v predates the epoch", h.ModTime)}
	}
	if err := w.putOctal("mtime", uint64(secs), lenMtime); err != nil {
		return nil, err
	}

	// 校验和占位
	for i := 0; i < lenChksum; i++ {
		block[w.off+i] = ' '
	}
	w.off += lenChksum

	block[w.off] = h.Typeflag
	w.off += lenTypeflag

	if err := w.putString("linkname", h.Linkname, lenLinkname); err != nil {
		return nil, err
	}
	w.putBytes(h.Magic[:])
	w.putBytes(h.Version[:])
	if err := w.putString("uname", h.Uname, lenUname); err != nil {
		return nil, err
	}
	if err := w.putString("gname", h.Gname, lenGname); err != nil {
		return nil, err
	}
	if err := w.putOctal("devmajor", h.DevMajor, lenDevMajor); err != nil {
		return nil, err
	}
	if err := w.putOctal("devminor", h.DevMinor, lenDevMinor); err != nil {
		return nil, err
	}
	if err := w.putString("prefix", h.Prefix, lenPrefix); err != nil {
		return nil, err
	}

	// 布局总和差 12 字节，余下保持为零
	return block, nil
}

// Decode 解码一条 512 字节记录。
// 全零块返回 (nil, nil)，这是归档结束信号而不是错误。
// 字段解析之前先校验存储的校验和，任何不一致都视为归档损坏。
func Decode(block []byte) (*Header, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("header record must be %d bytes, got %d", BlockSize, len(block))
	}
	if isZeroBlock(block) {
		return nil, nil
	}

	recorded, err := parseChecksumField(block[offChksum : offChksum+lenChksum])
	if err != nil {
		return nil, &FieldError{Field: "chksum", Offset: offChksum, Err: err}
	}
	if sum := Checksum(block); sum != recorded {
		return nil, &ChecksumError{Expected: sum, Recorded: recorded}
	}

	r := &fieldReader{block: block}
	h := &Header{}

	if h.Name, err = r.str("name", lenName); err != nil {
		return nil, err
	}
	if h.Mode, err = r.octal32("mode", lenMode); err != nil {
		return nil, err
	}
	if h.UID, err = r.octal32("uid", lenUID); err != nil {
		return nil, err
	}
	if h.GID, err = r.octal32("gid", lenGID); err != nil {
		return nil, err
	}
	if h.Size, err = r.octal("size", lenSize); err != nil {
		return nil, err
	}
	secs, err := r.octal("mtime", lenMtime)
	if err != nil {
		return nil, err
	}
	h.ModTime = time.Unix(int64(secs), 0)

	r.skip(lenChksum) // 已单独解析并校验

	h.Typeflag = block[r.off]
	r.skip(lenTypeflag)

	if h.Linkname, err = r.str("linkname", lenLinkname); err != nil {
		return nil, err
	}
	copy(h.Magic[:], block[r.off:])
	r.skip(lenMagic)
	copy(h.Version[:], block[r.off:])
	r.skip(lenVersion)

	if h.Uname, err = r.str("uname", lenUname); err != nil {
		return nil, err
	}
	if h.Gname, err = r.str("gname", lenGname); err != nil {
		return nil, err
	}
	if h.DevMajor, err = r.octal("devmajor", lenDevMajor); err != nil {
		return nil, err
	}
	if h.DevMinor, err = r.octal("devminor", lenDevMinor); err != nil {
		return nil, err
	}
	if h.Prefix, err = r.str("prefix", lenPrefix); err != nil {
		return nil, err
	}

	return h, nil
}

// Checksum 按"校验和视为空格"的规则对整条记录求和
func Checksum(block []byte) uint32 {
	var sum uint32
	for i, b := range block {
		if i >= offChksum && i < offChksum+lenChksum {
			sum += uint32(' ')
		} else {
			sum += uint32(b)
		}
	}
	return sum
}

// parseChecksumField 解析存储的校验和。
// 本工具写 7 位八进制加 NUL，GNU tar 写 6 位加 NUL 加空格，都接受。
func parseChecksumField(b []byte) (uint32, error) {
	s := strings.Trim(string(b), " \x00")
	if s == "" {
		return 0, fmt.Errorf("empty checksum field")
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal %q", s)
	}
	return uint32(v), nil
}

func isZeroBlock(block []byte) bool {
	for _, b := range block {
		if b != 0 {
			return false
		}
	}
	return true
}

// fieldWriter 在记录缓冲区上顺序写出定宽字段
type fieldWriter struct {
	block []byte
	off   int
}

func (w *fieldWriter) putBytes(b []byte) {
	copy(w.block[w.off:], b)
	w.off += len(b)
}

func (w *fieldWriter) putString(field, s string, width int) error {
	if len(s)+1 > width {
		return &FieldError{Field: field, Offset: w.off, Err: fmt.Errorf("value %q plus terminator exceeds %d bytes", s, width)}
	}
	copy(w.block[w.off:], s)
	// NUL 结尾和补零由缓冲区的零值承担
	w.off += width
	return nil
}

func (w *fieldWriter) putOctal(field string, v uint64, width int) error {
	s := strconv.FormatUint(v, 8)
	if len(s) > width-1 {
		return &FieldError{Field: field, Offset: w.off, Err: fmt.Errorf("value %d does not fit in %d octal digits", v, width-1)}
	}
	copy(w.block[w.off:], strings.Repeat("0", width-1-len(s))+s)
	w.off += width
	return nil
}

// fieldReader 在记录缓冲区上顺序切出定宽字段。
// 每次读取要么得到请求的完整长度，要么报截断错误，绝不吞掉短数据。
type fieldReader struct {
	block []byte
	off   int
}

func (r *fieldReader) skip(n int) { r.off += n }

func (r *fieldReader) fixed(field string, n int) ([]byte, error) {
	if r.off+n > len(r.block) {
		return nil, &FieldError{Field: field, Offset: r.off, Err: fmt.Errorf("need %d bytes past end of record", n)}
	}
	b := r.block[r.off : r.off+n]
	r.off += n
	return b, nil
}

// str 读出一个以 NUL 结尾的字符串字段。
// 宽度内没有 NUL 或内容不是合法 UTF-8 都是硬错误。
func (r *fieldReader) str(field string, width int) (string, error) {
	off := r.off
	b, err := r.fixed(field, width)
	if err != nil {
		return "", err
	}
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", &FieldError{Field: field, Offset: off, Err: errMissingTerminator}
	}
	if !utf8.Valid(b[:i]) {
		return "", &FieldError{Field: field, Offset: off, Err: errInvalidUTF8}
	}
	return string(b[:i]), nil
}

func (r *fieldReader) octal(field string, width int) (uint64, error) {
	off := r.off
	s, err := r.str(field, width)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 8, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Offset: off, Err: fmt.Errorf("invalid octal %q", s)}
	}
	return v, nil
}

func (r *fieldReader) octal32(field string, width int) (uint32, error) {
	v, err := r.octal(field, width)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
