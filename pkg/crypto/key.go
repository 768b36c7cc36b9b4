package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// AESKeySize AES 密钥大小（256位）
	AESKeySize = 32
	// HMACKeySize HMAC 密钥大小（512位）
	HMACKeySize = 64
	// IVSize 初始化向量大小（128位）
	IVSize = 16
	// SaltSize 盐值大小
	SaltSize = 32
)

// DeriveKey 使用 Argon2id 从密码和盐值派生密钥。
// 同样的密码和盐值总是得到同样的密钥对，盐值随密文一起存储。
// 返回 (AES密钥, HMAC密钥)。
func DeriveKey(password string, salt []byte) (aesKey, hmacKey []byte, err error) {
	if password == "" {
		return nil, nil, fmt.Errorf("password cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, nil, fmt.Errorf("invalid salt size: expected %d, got %d", SaltSize, len(salt))
	}

	// 参数选择：time=3, memory=64MB, threads=4, keyLen=96 (32+64)
	key := argon2.IDKey([]byte(password), salt, 3, 64*1024, 4, AESKeySize+HMACKeySize)

	return key[:AESKeySize], key[AESKeySize:], nil
}

// NewSalt 生成随机盐值
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateRandomIV 生成随机初始化向量
func GenerateRandomIV() ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return iv, nil
}

// KeysFromKeyFile 从密钥文件内容拆出密钥对。
// 密钥文件格式: [32 bytes AES key][64 bytes HMAC key]
func KeysFromKeyFile(keyData []byte) (aesKey, hmacKey []byte, err error) {
	if len(keyData) < AESKeySize+HMACKeySize {
		return nil, nil, fmt.Errorf("invalid key file size: expected at least %d, got %d", AESKeySize+HMACKeySize, len(keyData))
	}

	return keyData[:AESKeySize], keyData[AESKeySize : AESKeySize+HMACKeySize], nil
}

// GenerateKeyFile 生成密钥文件内容
func GenerateKeyFile() ([]byte, error) {
	keyData := make([]byte, AESKeySize+HMACKeySize)
	if _, err := rand.Read(keyData); err != nil {
		return nil, fmt.Errorf("failed to generate key file: %w", err)
	}
	return keyData, nil
}
