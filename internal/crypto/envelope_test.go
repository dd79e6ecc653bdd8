package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/axion-sh/axion/internal/errs"
)

func randBytes(t *testing.T, n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestEnvelopeRoundTrip(t *testing.T) {
	password := []byte("correct horse battery staple")
	plaintext := []byte(`{"services":{"_global":{}}}`)

	env, err := Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if env.Version != CurrentVersion {
		t.Fatalf("expected version %d, got %d", CurrentVersion, env.Version)
	}

	got, err := Decrypt(env, password)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(plaintext, got) {
		t.Fatal("plaintext mismatch after round trip")
	}
}

func TestEnvelopeWrongPasswordFails(t *testing.T) {
	env, err := Encrypt([]byte("secret"), []byte("right-password"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	_, err = Decrypt(env, []byte("wrong-password"))
	if err == nil {
		t.Fatal("expected authentication failure with wrong password")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindAuthenticationFail {
		t.Fatalf("expected KindAuthenticationFail, got %v (ok=%v)", kind, ok)
	}
}

func TestEnvelopeTamperedTagFails(t *testing.T) {
	env, err := Encrypt([]byte("secret"), []byte("password"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		t.Fatalf("decode tag: %v", err)
	}
	tag[0] ^= 0xFF
	env.AuthTag = hex.EncodeToString(tag)

	if _, err := Decrypt(env, []byte("password")); err == nil {
		t.Fatal("expected failure after tag tamper")
	}
}

func TestEnvelopeRejectsFutureVersion(t *testing.T) {
	env, err := Encrypt([]byte("secret"), []byte("password"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	env.Version = CurrentVersion + 1

	_, err = Decrypt(env, []byte("password"))
	if err == nil {
		t.Fatal("expected unsupported-version failure")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindUnsupportedVersion {
		t.Fatalf("expected KindUnsupportedVersion, got %v (ok=%v)", kind, ok)
	}
}

func TestEnvelopeUniqueSaltAndIV(t *testing.T) {
	password := []byte("password")
	plaintext := []byte("data")

	env1, err := Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("encrypt1: %v", err)
	}
	env2, err := Encrypt(plaintext, password)
	if err != nil {
		t.Fatalf("encrypt2: %v", err)
	}
	if env1.Salt == env2.Salt {
		t.Fatal("expected distinct salts across encryptions")
	}
	if env1.IV == env2.IV {
		t.Fatal("expected distinct IVs across encryptions")
	}
}

func TestEnvelopeMarshalUnmarshalRoundTrip(t *testing.T) {
	env, err := Encrypt([]byte("secret"), []byte("password"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, err := Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *got != *env {
		t.Fatal("envelope mismatch after marshal round trip")
	}
}

func FuzzEnvelopeRejectsMutatedContent(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte(""))
	f.Fuzz(func(t *testing.T, pt []byte) {
		password := []byte("password")
		env, err := Encrypt(pt, password)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		content, err := hex.DecodeString(env.Content)
		if err != nil {
			t.Fatalf("decode content: %v", err)
		}
		if len(content) == 0 {
			return
		}
		content[0] ^= 0xFF
		env.Content = hex.EncodeToString(content)
		if _, err := Decrypt(env, password); err == nil {
			t.Fatal("mutated content decrypted successfully")
		}
	})
}
