package gpg

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	entity    *openpgp.Entity
	publicKey []byte
	jarPath   string
	signature []byte
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	entity, err := openpgp.NewEntity("Verifier Test", "", "verifier@example.com", nil)
	require.NoError(t, err)

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	jarPath := filepath.Join(t.TempDir(), "verifier-cli-1.307-all.jar")
	content := []byte("PK\x03\x04 verifier jar")
	require.NoError(t, os.WriteFile(jarPath, content, 0600))

	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil))

	return fixture{entity: entity, publicKey: pub.Bytes(), jarPath: jarPath, signature: sig.Bytes()}
}

func TestVerifier_ImportKeyFromFile(t *testing.T) {
	f := newFixture(t)
	keyPath := filepath.Join(t.TempDir(), "KEYS.asc")
	require.NoError(t, os.WriteFile(keyPath, f.publicKey, 0600))

	v := NewVerifier(nil)
	require.NoError(t, v.ImportKeyring(context.Background(), keyPath))
	assert.Equal(t, 1, v.KeyringSize())
}

func TestVerifier_ImportKeyFromFile_Errors(t *testing.T) {
	v := NewVerifier(nil)

	err := v.ImportKeyFromFile("/nonexistent/key.asc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open key file")

	junk := filepath.Join(t.TempDir(), "junk.asc")
	require.NoError(t, os.WriteFile(junk, []byte("not a gpg key"), 0600))
	assert.Error(t, v.ImportKeyFromFile(junk))
	assert.Zero(t, v.KeyringSize())
}

func TestVerifier_VerifySignature(t *testing.T) {
	f := newFixture(t)
	other := newFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/KEYS":
			_, _ = w.Write(f.publicKey)
		case "/good.jar.asc":
			_, _ = w.Write(f.signature)
		case "/foreign.jar.asc":
			_, _ = w.Write(other.signature)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	v := NewVerifier(server.Client())

	err := v.VerifySignature(ctx, f.jarPath, server.URL+"/good.jar.asc")
	assert.Error(t, err, "empty keyring must refuse")

	require.NoError(t, v.ImportKeyring(ctx, server.URL+"/KEYS"))
	assert.NoError(t, v.VerifySignature(ctx, f.jarPath, server.URL+"/good.jar.asc"))

	err = v.VerifySignature(ctx, f.jarPath, server.URL+"/foreign.jar.asc")
	assert.Error(t, err)

	err = v.VerifySignature(ctx, f.jarPath, server.URL+"/missing.jar.asc")
	assert.ErrorIs(t, err, ErrSignatureNotFound)
}

func TestVerifier_VerifySignature_TamperedFile(t *testing.T) {
	f := newFixture(t)
	keyPath := filepath.Join(t.TempDir(), "KEYS.asc")
	require.NoError(t, os.WriteFile(keyPath, f.publicKey, 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(f.signature)
	}))
	defer server.Close()

	v := NewVerifier(server.Client())
	require.NoError(t, v.ImportKeyFromFile(keyPath))

	require.NoError(t, os.WriteFile(f.jarPath, []byte("tampered"), 0600))
	assert.Error(t, v.VerifySignature(context.Background(), f.jarPath, server.URL+"/x.asc"))
}
