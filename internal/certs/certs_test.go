package certs

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCertificate(t *testing.T) {
	t.Run("generates certificate on first use", func(t *testing.T) {
		dir := t.TempDir()
		mgr := NewFileManager(dir)

		cert, err := mgr.GetOrCreateCertificate()
		require.NoError(t, err)
		require.NotEmpty(t, cert.Certificate)

		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		require.NoError(t, err)
		assert.NoError(t, leaf.VerifyHostname("localhost"))

		// Both files land on disk with owner-only permissions.
		for _, name := range []string{"localhost.crt", "localhost.key"} {
			info, statErr := os.Stat(filepath.Join(dir, name))
			require.NoError(t, statErr)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		}
	})

	t.Run("reuses existing certificate", func(t *testing.T) {
		mgr := NewFileManager(t.TempDir())

		first, err := mgr.GetOrCreateCertificate()
		require.NoError(t, err)

		second, err := mgr.GetOrCreateCertificate()
		require.NoError(t, err)

		assert.Equal(t, first.Certificate[0], second.Certificate[0])
	})

	t.Run("regenerates corrupt certificate", func(t *testing.T) {
		dir := t.TempDir()
		mgr := NewFileManager(dir)

		_, err := mgr.GetOrCreateCertificate()
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.crt"), []byte("not a cert"), 0o600))

		cert, err := mgr.GetOrCreateCertificate()
		require.NoError(t, err)
		require.NotEmpty(t, cert.Certificate)

		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		require.NoError(t, err)
		assert.NoError(t, leaf.VerifyHostname("localhost"))
	})
}
