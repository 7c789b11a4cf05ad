package security

import (
	"bytes"
	"testing"
)

func TestNewPayloadCipherRejectsWrongKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 64} {
		if _, err := NewPayloadCipher(make([]byte, n)); err == nil {
			t.Errorf("expected error for key length %d", n)
		}
	}
}

func TestNewPayloadCipherFromPassphraseRejectsEmpty(t *testing.T) {
	if _, err := NewPayloadCipherFromPassphrase(""); err == nil {
		t.Error("expected error for empty passphrase")
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := make([]byte, 32)
	copy(key, []byte("test-encryption-key-32-bytes-!!"))
	c, err := NewPayloadCipher(key)
	if err != nil {
		t.Fatalf("NewPayloadCipher() error = %v", err)
	}

	cases := [][]byte{
		[]byte("hello world"),
		[]byte(`{"rid":1,"label":"Person"}`),
		{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD},
		bytes.Repeat([]byte("payload"), 1000),
	}

	for _, plaintext := range cases {
		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if bytes.Equal(ciphertext, plaintext) {
			t.Error("ciphertext should not equal plaintext")
		}

		decrypted, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Errorf("roundtrip mismatch: got %v want %v", decrypted, plaintext)
		}
	}
}

func TestEncryptRejectsEmptyData(t *testing.T) {
	c, _ := NewPayloadCipher(make([]byte, 32))
	if _, err := c.Encrypt(nil); err == nil {
		t.Error("expected error encrypting nil data")
	}
	if _, err := c.Encrypt([]byte{}); err == nil {
		t.Error("expected error encrypting empty data")
	}
}

func TestDecryptRejectsShortOrCorruptData(t *testing.T) {
	c, _ := NewPayloadCipher(make([]byte, 32))
	if _, err := c.Decrypt([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error decrypting too-short data")
	}
	if _, err := c.Decrypt(bytes.Repeat([]byte("x"), 100)); err == nil {
		t.Error("expected error decrypting corrupted data")
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key1 := make([]byte, 32)
	copy(key1, []byte("key-one-32-bytes-long-!!!!!!!!!!"))
	key2 := make([]byte, 32)
	copy(key2, []byte("key-two-32-bytes-long-!!!!!!!!!!"))

	c1, _ := NewPayloadCipher(key1)
	c2, _ := NewPayloadCipher(key2)

	ciphertext, err := c1.Encrypt([]byte("secret data"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := c2.Decrypt(ciphertext); err == nil {
		t.Error("decrypting with the wrong key should fail")
	}
}

func TestDeriveKeyFromStoreIDIsDeterministicAndDistinct(t *testing.T) {
	key := DeriveKeyFromStoreID("store-123")
	if len(key) != 32 {
		t.Fatalf("key length = %d, want 32", len(key))
	}
	if !bytes.Equal(key, DeriveKeyFromStoreID("store-123")) {
		t.Error("DeriveKeyFromStoreID should be deterministic")
	}
	if bytes.Equal(key, DeriveKeyFromStoreID("store-456")) {
		t.Error("different store IDs should derive different keys")
	}
}
