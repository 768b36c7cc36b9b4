package header

import (
	"errors"
	"fmt"
)

// FieldError 某个字段编解码失败，带字段名和记录内偏移
type FieldError struct {
	Field  string
	Offset int
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("header field %q at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ChecksumError 记录中存储的校验和与重新计算的值不一致，视为归档损坏
type ChecksumError struct {
	Expected uint32 // 按记录字节重新计算的值
	Recorded uint32 // 记录中存储的值
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %d, recorded %d", e.Expected, e.Recorded)
}

var (
	errMissingTerminator = errors.New("missing null terminator")
	errInvalidUTF8       = errors.New("invalid UTF-8 content")
)
