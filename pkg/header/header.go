// Package header 实现 USTAR 头部记录的编解码：
// 512 字节定长记录、ASCII 八进制数字字段、以及"校验和视为空格"的求和规则。
package header

import (
	"fmt"
	"os"
	"time"
)

const (
	// BlockSize 归档的对齐块大小，头部记录和内容填充都以它为单位
	BlockSize = 512

	// TypeReg 普通文件的类型标志（本工具只生成和消费这一种类型）
	TypeReg byte = '0'
)

// 各字段在 512 字节记录中的宽度（按布局顺序）
const (
	lenName     = 100
	lenMode     = 8
	lenUID      = 8
	lenGID      = 8
	lenSize     = 12
	lenMtime    = 12
	lenChksum   = 8
	lenTypeflag = 1
	lenLinkname = 100
	lenMagic    = 6
	lenVersion  = 2
	lenUname    = 32
	lenGname    = 32
	lenDevMajor = 8
	lenDevMinor = 8
	lenPrefix   = 155
)

// 校验和字段的起始偏移：name+mode+uid+gid+size+mtime
const offChksum = lenName + lenMode + lenUID + lenGID + lenSize + lenMtime

var (
	// MagicUstar USTAR 格式标识
	MagicUstar = [6]byte{'u', 's', 't', 'a', 'r', 0}
	// VersionUstar USTAR 版本号
	VersionUstar = [2]byte{'0', '0'}
)

// Header 一条归档条目的描述符。
// 构建完成后不可变，除编解码和校验和外没有其他行为。
type Header struct {
	Name     string    // 条目路径，磁盘上以 NUL 结尾
	Mode     uint32    // 权限位
	UID      uint32    // 属主数字 ID
	GID      uint32    // 属组数字 ID
	Size     uint64    // 内容字节数
	ModTime  time.Time // 修改时间（按秒编码）
	Typeflag byte      // 文件类型
	Linkname string    // 链接目标，本工具始终为空
	Magic    [6]byte
	Version  [2]byte
	Uname    string // 属主名
	Gname    string // 属组名
	DevMajor uint64
	DevMinor uint64
	Prefix   string // 为长文件名保留，仅存储
}

// NewHeader 从 path 的文件系统元数据构建头部。
// uid/gid 通过注入的 ids 解析为用户名/组名，解析不到即构建失败。
func NewHeader(path string, ids IdentityResolver) (*Header, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	sys, err := statSys(fi)
	if err != nil {
		return nil, fmt.Errorf("failed to read system metadata of %s: %w", path, err)
	}

	uname, err := ids.LookupUser(sys.uid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner of %s: %w", path, err)
	}
	gname, err := ids.LookupGroup(sys.gid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group of %s: %w", path, err)
	}

	return &Header{
		Name:     path,
		Mode:     sys.mode,
		UID:      sys.uid,
		GID:      sys.gid,
		Size:     uint64(fi.Size()),
		ModTime:  fi.ModTime(),
		Typeflag: TypeReg,
		Magic:    MagicUstar,
		Version:  VersionUstar,
		Uname:    uname,
		Gname:    gname,
		DevMajor: sys.devmajor,
		DevMinor: sys.devminor,
	}, nil
}
