package storage

import (
	"context"
	"io"
)

// Adapter 定义归档上传的存储适配器接口
type Adapter interface {
	// Upload 以单次流式上传把 data 写到 key
	Upload(ctx context.Context, key string, data io.Reader, opts UploadOptions) error

	// SupportedStorageClasses 获取支持的存储类型
	SupportedStorageClasses() []StorageClass
}

// UploadOptions 上传选项
type UploadOptions struct {
	StorageClass StorageClass
	ContentType  string
	Metadata     map[string]string
}
