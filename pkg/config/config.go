package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 配置结构
type Config struct {
	Archive    ArchiveConfig    `yaml:"archive"`
	Storage    StorageConfig    `yaml:"storage"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

// ArchiveConfig 归档配置
type ArchiveConfig struct {
	Excludes []string `yaml:"excludes"` // 打包时的排除模式
	Quiet    bool     `yaml:"quiet"`    // 关闭进度条
}

// StorageConfig push 目标存储配置
type StorageConfig struct {
	Provider     string `yaml:"provider"` // aws 或其他 S3 兼容服务
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	StorageClass string `yaml:"storage_class"` // 存储类型
}

// EncryptionConfig push 加密配置
type EncryptionConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Password string `yaml:"password"` // 用于派生密钥
	KeyFile  string `yaml:"key_file"` // 或直接使用密钥文件
}

// LoadConfig 加载配置
func LoadConfig(configPath, envPath string) (*Config, error) {
	// 加载 .env 文件
	if err := loadEnvFile(envPath); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	// 设置 viper
	v := viper.New()
	v.SetConfigType("yaml")

	// 配置文件查找顺序
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".mintar")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.AddConfigPath("$HOME/.config/mintar")
	}

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在不是错误，使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 绑定环境变量
	v.SetEnvPrefix("MINTAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 填充默认值
	setDefaults(&cfg)

	return &cfg, nil
}

// loadEnvFile 加载 .env 文件
func loadEnvFile(envPath string) error {
	if envPath != "" {
		return godotenv.Load(envPath)
	}

	// 查找 .env 文件
	paths := []string{
		".mintar.env",
		filepath.Join(os.Getenv("HOME"), ".mintar.env"),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return godotenv.Load(path)
		}
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(cfg *Config) {
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "aws"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.StorageClass == "" {
		cfg.Storage.StorageClass = "standard"
	}
}

// GetAccessKey 获取 Access Key（优先级：配置 > 环境变量）
func (c *Config) GetAccessKey() string {
	if c.Storage.AccessKey != "" {
		return c.Storage.AccessKey
	}
	return os.Getenv("MINTAR_ACCESS_KEY")
}

// GetSecretKey 获取 Secret Key（优先级：配置 > 环境变量）
func (c *Config) GetSecretKey() string {
	if c.Storage.SecretKey != "" {
		return c.Storage.SecretKey
	}
	return os.Getenv("MINTAR_SECRET_KEY")
}

// GetPassword 获取加密密码（优先级：配置 > 环境变量）
func (c *Config) GetPassword() string {
	if c.Encryption.Password != "" {
		return c.Encryption.Password
	}
	return os.Getenv("MINTAR_ENCRYPT_PASSWORD")
}

// ValidatePush 验证 push 所需的配置
func (c *Config) ValidatePush() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	if c.GetAccessKey() == "" {
		return fmt.Errorf("storage access_key is required")
	}
	if c.GetSecretKey() == "" {
		return fmt.Errorf("storage secret_key is required")
	}

	if c.Encryption.Enabled {
		if c.GetPassword() == "" && c.Encryption.KeyFile == "" {
			return fmt.Errorf("encryption password or key_file is required when encryption is enabled")
		}
	}

	return nil
}
