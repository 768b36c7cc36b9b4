package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSAdapter AWS S3（及 S3 兼容服务）适配器
type AWSAdapter struct {
	client *s3.Client
	bucket string
}

// NewAWSAdapter 创建 AWS S3 适配器
func NewAWSAdapter(ctx context.Context, region, endpoint, bucket, accessKey, secretKey string) (*AWSAdapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
			}, nil
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(normalizeEndpoint(endpoint))
		}
	})

	return &AWSAdapter{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload 单次 PutObject 上传整个归档流
func (a *AWSAdapter) Upload(ctx context.Context, key string, data io.Reader, opts UploadOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   data,
	}

	if opts.StorageClass.IsValid() {
		input.StorageClass = types.StorageClass(opts.StorageClass.String())
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return nil
}

// SupportedStorageClasses 返回支持的存储类型
func (a *AWSAdapter) SupportedStorageClasses() []StorageClass {
	return []StorageClass{
		StorageClassStandard,
		StorageClassInfrequent,
		StorageClassGlacier,
		StorageClassDeepArchive,
		StorageClassGlacierIR,
		StorageClassIntelligentTiering,
	}
}

// normalizeEndpoint 给没有协议前缀的端点补上 https://
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	lower := strings.ToLower(endpoint)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}
