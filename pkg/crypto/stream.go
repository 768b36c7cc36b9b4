package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
)

// 加密流格式:
// [4 bytes magic][32 bytes salt][16 bytes IV][encrypted data...][8 bytes data length][64 bytes HMAC]
// 密钥文件模式下 salt 为全零。HMAC 覆盖密文。
var streamMagic = []byte("MTE1")

// StreamEncryptor 流式加密器
type StreamEncryptor struct {
	aesKey  []byte
	hmacKey []byte
}

// NewStreamEncryptor 创建流式加密器
func NewStreamEncryptor(aesKey, hmacKey []byte) (*StreamEncryptor, error) {
	if len(aesKey) != AESKeySize {
		return nil, fmt.Errorf("invalid AES key size: expected %d, got %d", AESKeySize, len(aesKey))
	}
	if len(hmacKey) != HMACKeySize {
		return nil, fmt.Errorf("invalid HMAC key size: expected %d, got %d", HMACKeySize, len(hmacKey))
	}

	return &StreamEncryptor{
		aesKey:  aesKey,
		hmacKey: hmacKey,
	}, nil
}

// EncryptWriter 加密写入器
type EncryptWriter struct {
	stream   cipher.Stream
	hmac     hash.Hash
	writer   io.Writer
	position int64
}

// WrapWriter 包装一个 writer 为加密写入器，并写出流头。
// salt 是派生密钥用的盐值，密钥文件模式传 nil。
func (e *StreamEncryptor) WrapWriter(w io.Writer, salt []byte) (io.WriteCloser, error) {
	block, err := aes.NewCipher(e.aesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	iv, err := GenerateRandomIV()
	if err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	if salt == nil {
		salt = make([]byte, SaltSize)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("invalid salt size: expected %d, got %d", SaltSize, len(salt))
	}

	// 写入流头：魔数、盐值、IV
	if _, err := w.Write(streamMagic); err != nil {
		return nil, fmt.Errorf("failed to write magic: %w", err)
	}
	if _, err := w.Write(salt); err != nil {
		return nil, fmt.Errorf("failed to write salt: %w", err)
	}
	if _, err := w.Write(iv); err != nil {
		return nil, fmt.Errorf("failed to write IV: %w", err)
	}

	return &EncryptWriter{
		stream: cipher.NewCTR(block, iv),
		hmac:   hmac.New(sha512.New, e.hmacKey),
		writer: w,
	}, nil
}

// Write 加密并写出数据
func (ew *EncryptWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	encrypted := make([]byte, len(p))
	ew.stream.XORKeyStream(encrypted, p)

	ew.hmac.Write(encrypted)

	n, err := ew.writer.Write(encrypted)
	if err != nil {
		return n, err
	}

	ew.position += int64(n)
	return n, nil
}

// Close 写出数据长度和 HMAC，封住加密流
func (ew *EncryptWriter) Close() error {
	lengthBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(lengthBytes, uint64(ew.position))
	if _, err := ew.writer.Write(lengthBytes); err != nil {
		return fmt.Errorf("failed to write data length: %w", err)
	}

	if _, err := ew.writer.Write(ew.hmac.Sum(nil)); err != nil {
		return fmt.Errorf("failed to write HMAC: %w", err)
	}

	return nil
}

// ReadSalt 消费流头的魔数和盐值并返回盐值，
// 密码模式下调用方用它派生密钥后再 Decrypt
func ReadSalt(r io.Reader) ([]byte, error) {
	magic := make([]byte, len(streamMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if !bytes.Equal(magic, streamMagic) {
		return nil, fmt.Errorf("not an encrypted archive stream")
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}
	return salt, nil
}

// Decrypt 解密 ReadSalt 之后的剩余流并校验 HMAC，明文写入 w。
// HMAC 不一致时返回错误，此时 w 里可能已经有未经验证的数据。
func (e *StreamEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		return fmt.Errorf("failed to read IV: %w", err)
	}

	block, err := aes.NewCipher(e.aesKey)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher: %w", err)
	}
	stream := cipher.NewCTR(block, iv)
	mac := hmac.New(sha512.New, e.hmacKey)

	// 读出剩余全部内容再拆出尾部的长度和 HMAC
	rest, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read encrypted stream: %w", err)
	}
	const trailerSize = 8 + sha512.Size
	if len(rest) < trailerSize {
		return fmt.Errorf("encrypted stream too short: %d bytes", len(rest))
	}

	ciphertext := rest[:len(rest)-trailerSize]
	trailer := rest[len(rest)-trailerSize:]

	length := binary.BigEndian.Uint64(trailer[:8])
	if length != uint64(len(ciphertext)) {
		return fmt.Errorf("encrypted stream length mismatch: recorded %d, got %d", length, len(ciphertext))
	}

	mac.Write(ciphertext)
	if !hmac.Equal(mac.Sum(nil), trailer[8:]) {
		return fmt.Errorf("HMAC verification failed: stream corrupted or wrong key")
	}

	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)

	if _, err := w.Write(plaintext); err != nil {
		return fmt.Errorf("failed to write plaintext: %w", err)
	}
	return nil
}
