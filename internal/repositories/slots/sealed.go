package slots

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/cryptox"
)

// Reserved keys used by SealedRepository for its key material. They are
// stored in the clear and hidden from List.
const (
	SaltKey     = "_sealed.salt"
	VerifierKey = "_sealed.verifier"
)

// SealedRepository encrypts every value before handing it to the inner store.
type SealedRepository struct {
	inner Repository
	key   []byte
}

// Unlock derives the store key from passphrase. On first use it creates the
// salt and verifier; afterwards a passphrase that does not reproduce the
// verifier fails with common.ErrWrongPassphrase.
func Unlock(ctx context.Context, inner Repository, passphrase []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}

	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		key := cryptox.DeriveMasterKey(passphrase, salt)
		err := batch(ctx, inner, func(ctx context.Context, repo Repository) error {
			if err := repo.Set(ctx, SaltKey, salt); err != nil {
				return err
			}
			return repo.Set(ctx, VerifierKey, cryptox.MakeVerifier(key))
		})
		if err != nil {
			return nil, err
		}
		return &SealedRepository{inner: inner, key: key}, nil
	}

	verifier, err := inner.Get(ctx, VerifierKey)
	if err != nil {
		return nil, err
	}
	if verifier == nil {
		return nil, &common.PersistenceError{Kind: common.PersistenceCorrupt, Op: "unlock", Err: fmt.Errorf("salt present without verifier")}
	}

	key := cryptox.DeriveMasterKey(passphrase, salt)
	if subtle.ConstantTimeCompare(cryptox.MakeVerifier(key), verifier) != 1 {
		common.WipeByteArray(key)
		return nil, common.ErrWrongPassphrase
	}

	return &SealedRepository{inner: inner, key: key}, nil
}

// IsSealed reports whether inner has already been initialised for sealing.
func IsSealed(ctx context.Context, inner Repository) (bool, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return false, err
	}
	return salt != nil, nil
}

func reserved(key string) bool {
	return strings.HasPrefix(key, "_sealed.")
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, r.key)
	if err != nil {
		return nil, &common.PersistenceError{Kind: common.PersistenceCorrupt, Op: "open slot " + key, Err: err}
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, r.key)
	if err != nil {
		return &common.PersistenceError{Kind: common.PersistenceWrite, Op: "seal slot " + key, Err: err}
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(all))
	for k, v := range all {
		if reserved(k) {
			continue
		}
		plain, err := cryptox.Open(v, r.key)
		if err != nil {
			return nil, &common.PersistenceError{Kind: common.PersistenceCorrupt, Op: "open slot " + k, Err: err}
		}
		out[k] = plain
	}
	return out, nil
}

// Clear removes user slots but keeps the key material so the passphrase
// stays valid.
func (r *SealedRepository) Clear(ctx context.Context) error {
	all, err := r.inner.List(ctx)
	if err != nil {
		return err
	}
	for k := range all {
		if reserved(k) {
			continue
		}
		if err := r.inner.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Lock wipes the key from memory. The repository is unusable afterwards.
func (r *SealedRepository) Lock() {
	common.WipeByteArray(r.key)
	r.key = nil
}
