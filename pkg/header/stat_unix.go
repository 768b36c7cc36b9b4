//go:build unix

package header

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysMeta 从底层 stat 结构取出的原始元数据
type sysMeta struct {
	uid      uint32
	gid      uint32
	mode     uint32
	devmajor uint64
	devminor uint64
}

// statSys 取出 FileInfo 背后的 Stat_t 信息。
// 设备号按当前平台的 dev_t 编码拆成主/次设备号。
func statSys(fi os.FileInfo) (sysMeta, error) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return sysMeta{}, fmt.Errorf("unsupported FileInfo.Sys type %T", fi.Sys())
	}
	dev := uint64(st.Dev)
	return sysMeta{
		uid:      st.Uid,
		gid:      st.Gid,
		mode:     uint32(st.Mode),
		devmajor: uint64(unix.Major(dev)),
		devminor: uint64(unix.Minor(dev)),
	}, nil
}
