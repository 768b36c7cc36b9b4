package crypto

import (
	"bytes"
	"testing"
)

func newTestEncryptor(t *testing.T) *StreamEncryptor {
	t.Helper()
	keyData, err := GenerateKeyFile()
	if err != nil {
		t.Fatalf("GenerateKeyFile() error = %v", err)
	}
	aesKey, hmacKey, err := KeysFromKeyFile(keyData)
	if err != nil {
		t.Fatalf("KeysFromKeyFile() error = %v", err)
	}
	e, err := NewStreamEncryptor(aesKey, hmacKey)
	if err != nil {
		t.Fatalf("NewStreamEncryptor() error = %v", err)
	}
	return e
}

// TestEncryptDecryptRoundTrip 测试加密再解密得到原文
func TestEncryptDecryptRoundTrip(t *testing.T) {
	e := newTestEncryptor(t)
	plaintext := []byte("an archive body that is definitely not block aligned")

	var encrypted bytes.Buffer
	w, err := e.WrapWriter(&encrypted, nil)
	if err != nil {
		t.Fatalf("WrapWriter() error = %v", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// 密文不应包含明文
	if bytes.Contains(encrypted.Bytes(), plaintext) {
		t.Errorf("ciphertext contains plaintext")
	}

	r := bytes.NewReader(encrypted.Bytes())
	salt, err := ReadSalt(r)
	if err != nil {
		t.Fatalf("ReadSalt() error = %v", err)
	}
	if !bytes.Equal(salt, make([]byte, SaltSize)) {
		t.Errorf("expected zero salt in key-file mode")
	}

	var decrypted bytes.Buffer
	if err := e.Decrypt(r, &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("decrypted text differs from plaintext")
	}
}

// TestPasswordRoundTrip 测试密码模式下盐值随流存储
func TestPasswordRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt() error = %v", err)
	}
	aesKey, hmacKey, err := DeriveKey("hunter2", salt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	enc, err := NewStreamEncryptor(aesKey, hmacKey)
	if err != nil {
		t.Fatalf("NewStreamEncryptor() error = %v", err)
	}

	plaintext := []byte("hello")
	var encrypted bytes.Buffer
	w, err := enc.WrapWriter(&encrypted, salt)
	if err != nil {
		t.Fatalf("WrapWriter() error = %v", err)
	}
	w.Write(plaintext)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// 解密方只知道密码，从流头恢复盐值再派生密钥
	r := bytes.NewReader(encrypted.Bytes())
	storedSalt, err := ReadSalt(r)
	if err != nil {
		t.Fatalf("ReadSalt() error = %v", err)
	}
	if !bytes.Equal(storedSalt, salt) {
		t.Errorf("stored salt differs from derivation salt")
	}

	aesKey2, hmacKey2, err := DeriveKey("hunter2", storedSalt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	dec, err := NewStreamEncryptor(aesKey2, hmacKey2)
	if err != nil {
		t.Fatalf("NewStreamEncryptor() error = %v", err)
	}

	var decrypted bytes.Buffer
	if err := dec.Decrypt(r, &decrypted); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted.Bytes(), plaintext) {
		t.Errorf("decrypted text differs from plaintext")
	}
}

// TestDecryptDetectsTampering 测试密文被篡改时 HMAC 校验失败
func TestDecryptDetectsTampering(t *testing.T) {
	e := newTestEncryptor(t)

	var encrypted bytes.Buffer
	w, err := e.WrapWriter(&encrypted, nil)
	if err != nil {
		t.Fatalf("WrapWriter() error = %v", err)
	}
	w.Write([]byte("payload payload payload"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// 翻转密文正文中的一个字节
	raw := encrypted.Bytes()
	headerSize := len(streamMagic) + SaltSize + IVSize
	raw[headerSize] ^= 0xff

	r := bytes.NewReader(raw)
	if _, err := ReadSalt(r); err != nil {
		t.Fatalf("ReadSalt() error = %v", err)
	}
	var out bytes.Buffer
	if err := e.Decrypt(r, &out); err == nil {
		t.Errorf("expected HMAC verification error for tampered stream")
	}
}

// TestDecryptRejectsWrongMagic 测试非加密流被识别
func TestDecryptRejectsWrongMagic(t *testing.T) {
	if _, err := ReadSalt(bytes.NewReader([]byte("ustar\x0000plain tar data"))); err == nil {
		t.Errorf("expected error for stream without encryption magic")
	}
}
