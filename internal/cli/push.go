package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lukelzlz/mintar/pkg/config"
	"github.com/lukelzlz/mintar/pkg/crypto"
	"github.com/lukelzlz/mintar/pkg/progress"
	"github.com/lukelzlz/mintar/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	pushProvider     string
	pushBucket       string
	pushEndpoint     string
	pushRegion       string
	pushAccessKey    string
	pushSecretKey    string
	pushStorageClass string
	pushEncrypt      bool
	pushPassword     string
	pushKeyFile      string
	pushName         string
)

// pushCmd 推送命令
var pushCmd = &cobra.Command{
	Use:   "push <archive>",
	Short: "把归档上传到 S3 兼容存储",
	Long:  `把本地归档文件流式上传到 S3 兼容存储，可选加密`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVarP(&pushProvider, "provider", "p", "", "存储提供商")
	pushCmd.Flags().StringVarP(&pushBucket, "bucket", "b", "", "存储桶名称")
	pushCmd.Flags().StringVar(&pushEndpoint, "endpoint", "", "自定义端点")
	pushCmd.Flags().StringVar(&pushRegion, "region", "", "区域")
	pushCmd.Flags().StringVar(&pushAccessKey, "access-key", "", "Access Key")
	pushCmd.Flags().StringVar(&pushSecretKey, "secret-key", "", "Secret Key")
	pushCmd.Flags().StringVarP(&pushStorageClass, "storage-class", "s", "", "存储类型 (standard/ia/glacier/deep_archive)")
	pushCmd.Flags().BoolVarP(&pushEncrypt, "encrypt", "e", false, "启用加密")
	pushCmd.Flags().StringVar(&pushPassword, "password", "", "加密密码")
	pushCmd.Flags().StringVar(&pushKeyFile, "key-file", "", "密钥文件")
	pushCmd.Flags().StringVarP(&pushName, "name", "n", "", "对象名（默认取归档文件名）")
}

func runPush(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 命令行参数覆盖配置
	if pushProvider != "" {
		cfg.Storage.Provider = pushProvider
	}
	if pushBucket != "" {
		cfg.Storage.Bucket = pushBucket
	}
	if pushEndpoint != "" {
		cfg.Storage.Endpoint = pushEndpoint
	}
	if pushRegion != "" {
		cfg.Storage.Region = pushRegion
	}
	if pushAccessKey != "" {
		cfg.Storage.AccessKey = pushAccessKey
	}
	if pushSecretKey != "" {
		cfg.Storage.SecretKey = pushSecretKey
	}
	if pushStorageClass != "" {
		cfg.Storage.StorageClass = pushStorageClass
	}
	if pushEncrypt {
		cfg.Encryption.Enabled = true
	}
	if pushPassword != "" {
		cfg.Encryption.Password = pushPassword
	}
	if pushKeyFile != "" {
		cfg.Encryption.KeyFile = pushKeyFile
	}

	if err := cfg.ValidatePush(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	key := pushName
	if key == "" {
		key = filepath.Base(archivePath)
		if cfg.Encryption.Enabled {
			key += ".enc"
		}
	}

	adapter, err := storage.NewAWSAdapter(ctx, cfg.Storage.Region, cfg.Storage.Endpoint,
		cfg.Storage.Bucket, cfg.GetAccessKey(), cfg.GetSecretKey())
	if err != nil {
		return fmt.Errorf("failed to create storage adapter: %w", err)
	}

	var reporter progress.Reporter
	if cfg.Archive.Quiet {
		reporter = progress.NewSilent()
	} else {
		reporter = progress.NewBar("Pushing")
	}
	reporter.Init(fi.Size())
	defer reporter.Close()

	// 进度按明文侧统计
	var body io.Reader = io.TeeReader(f, reporterWriter{reporter})

	contentType := "application/x-tar"
	if cfg.Encryption.Enabled {
		contentType = "application/octet-stream"
		body, err = encryptStream(cfg, body)
		if err != nil {
			return err
		}
	}

	opts := storage.UploadOptions{
		StorageClass: storage.ParseStorageClass(cfg.Storage.StorageClass),
		ContentType:  contentType,
	}
	if err := adapter.Upload(ctx, key, body, opts); err != nil {
		return err
	}
	reporter.Complete()

	fmt.Printf("推送成功: %s\n", key)
	return nil
}

// encryptStream 把明文流接上加密管道
func encryptStream(cfg *config.Config, plain io.Reader) (io.Reader, error) {
	var aesKey, hmacKey, salt []byte
	var err error

	if cfg.Encryption.KeyFile != "" {
		keyData, err := os.ReadFile(cfg.Encryption.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file: %w", err)
		}
		aesKey, hmacKey, err = crypto.KeysFromKeyFile(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key file: %w", err)
		}
	} else {
		salt, err = crypto.NewSalt()
		if err != nil {
			return nil, err
		}
		aesKey, hmacKey, err = crypto.DeriveKey(cfg.GetPassword(), salt)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
	}

	encryptor, err := crypto.NewStreamEncryptor(aesKey, hmacKey)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		encWriter, err := encryptor.WrapWriter(pw, salt)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to create encrypt writer: %w", err))
			return
		}
		if _, err := io.Copy(encWriter, plain); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to encrypt: %w", err))
			return
		}
		if err := encWriter.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to close encryptor: %w", err))
			return
		}
		pw.Close()
	}()

	return pr, nil
}

// reporterWriter 把写入量转发给进度报告器
type reporterWriter struct {
	r progress.Reporter
}

func (w reporterWriter) Write(p []byte) (int, error) {
	w.r.Add(int64(len(p)))
	return len(p), nil
}
