package header

import (
	"fmt"
	"os/user"
	"strconv"
)

// IdentityResolver 将数字 uid/gid 解析为用户名/组名。
// 作为注入的依赖传给 NewHeader，测试中可以用桩实现替换。
type IdentityResolver interface {
	LookupUser(uid uint32) (string, error)
	LookupGroup(gid uint32) (string, error)
}

// OSResolver 使用操作系统的用户数据库解析
type OSResolver struct{}

// LookupUser 按 uid 查用户名
func (OSResolver) LookupUser(uid uint32) (string, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", fmt.Errorf("no user with id %d: %w", uid, err)
	}
	return u.Username, nil
}

// LookupGroup 按 gid 查组名
func (OSResolver) LookupGroup(gid uint32) (string, error) {
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return "", fmt.Errorf("no group with id %d: %w", gid, err)
	}
	return g.Name, nil
}
