package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/axion-sh/axion/internal/errs"
)

// Version 1 of the envelope format, superseded by the AES-256-GCM scheme in
// envelope.go but still decryptable so old manifests are never bricked by an
// algorithm upgrade: self-describing parameters let a newer client decrypt
// data sealed by an older one without rewriting it. New encryptions never
// choose this path; only Decrypt's version dispatch reaches it.

func decryptLegacy(env *Envelope, password []byte) ([]byte, error) {
	salt, err := hex.DecodeString(env.Salt)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed legacy salt", err)
	}
	nonce, err := hex.DecodeString(env.IV)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed legacy nonce", err)
	}
	content, err := hex.DecodeString(env.Content)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "malformed legacy content", err)
	}
	if len(nonce) != chacha20poly1305.NonceSizeX {
		return nil, errs.New(errs.KindAuthenticationFail, "legacy nonce has wrong size")
	}

	params := KDFParams{
		MemoryKiB:   env.KDFParams.MemoryKiB,
		Time:        env.KDFParams.Time,
		Parallelism: env.KDFParams.Parallelism,
		Salt:        salt,
	}
	master := DeriveKey(password, params)
	defer Zero(master)

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte("axion/envelope/v1")), key); err != nil {
		return nil, err
	}
	defer Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, content, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindAuthenticationFail, "legacy poly1305 tag verification failed", err)
	}
	return plaintext, nil
}
