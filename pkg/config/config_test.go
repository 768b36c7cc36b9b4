package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestSetDefaults 测试默认值设置
func TestSetDefaults(t *testing.T) {
	cfg := &Config{}

	setDefaults(cfg)

	if cfg.Storage.Provider != "aws" {
		t.Errorf("expected default provider 'aws', got '%s'", cfg.Storage.Provider)
	}
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("expected default region 'us-east-1', got '%s'", cfg.Storage.Region)
	}
	if cfg.Storage.StorageClass != "standard" {
		t.Errorf("expected default storage class 'standard', got '%s'", cfg.Storage.StorageClass)
	}
}

// TestSetDefaultsPreservesExisting 测试保留现有值
func TestSetDefaultsPreservesExisting(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			Provider:     "minio",
			Region:       "cn-east",
			StorageClass: "ia",
		},
	}

	setDefaults(cfg)

	if cfg.Storage.Provider != "minio" {
		t.Errorf("expected provider 'minio' to be preserved, got '%s'", cfg.Storage.Provider)
	}
	if cfg.Storage.Region != "cn-east" {
		t.Errorf("expected region 'cn-east' to be preserved, got '%s'", cfg.Storage.Region)
	}
}

// TestLoadConfigFromFile 测试从文件加载配置
func TestLoadConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mintar.yaml")

	content := `archive:
  excludes:
    - "*.log"
    - "*.tmp"
  quiet: true
storage:
  bucket: my-archives
  region: eu-west-1
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath, filepath.Join(tmpDir, "absent.env"))
	if err == nil {
		t.Fatalf("expected error for absent env file")
	}

	cfg, err = LoadConfig(configPath, "")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.Archive.Excludes) != 2 {
		t.Errorf("expected 2 exclude patterns, got %d", len(cfg.Archive.Excludes))
	}
	if !cfg.Archive.Quiet {
		t.Errorf("expected quiet to be true")
	}
	if cfg.Storage.Bucket != "my-archives" {
		t.Errorf("expected bucket 'my-archives', got '%s'", cfg.Storage.Bucket)
	}
	if cfg.Storage.Region != "eu-west-1" {
		t.Errorf("expected region 'eu-west-1', got '%s'", cfg.Storage.Region)
	}
	// 未设置的字段回落到默认值
	if cfg.Storage.Provider != "aws" {
		t.Errorf("expected default provider 'aws', got '%s'", cfg.Storage.Provider)
	}
}

// TestValidatePush 测试 push 配置验证
func TestValidatePush(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			"valid config",
			Config{Storage: StorageConfig{Bucket: "b", AccessKey: "ak", SecretKey: "sk"}},
			false,
		},
		{
			"missing bucket",
			Config{Storage: StorageConfig{AccessKey: "ak", SecretKey: "sk"}},
			true,
		},
		{
			"missing access key",
			Config{Storage: StorageConfig{Bucket: "b", SecretKey: "sk"}},
			true,
		},
		{
			"encryption enabled without password or key file",
			Config{
				Storage:    StorageConfig{Bucket: "b", AccessKey: "ak", SecretKey: "sk"},
				Encryption: EncryptionConfig{Enabled: true},
			},
			true,
		},
		{
			"encryption enabled with password",
			Config{
				Storage:    StorageConfig{Bucket: "b", AccessKey: "ak", SecretKey: "sk"},
				Encryption: EncryptionConfig{Enabled: true, Password: "secret"},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidatePush()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePush() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
