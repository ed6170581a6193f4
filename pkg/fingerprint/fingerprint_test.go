package fingerprint_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

func static(v string) fingerprint.Provider {
	return fingerprint.ProviderFunc(func() (string, error) { return v, nil })
}

func failing() fingerprint.Provider {
	return fingerprint.ProviderFunc(func() (string, error) { return "", fingerprint.ErrUnavailable })
}

func TestFingerprinter_Generate(t *testing.T) {
	t.Run("hashes joined signals", func(t *testing.T) {
		f := fingerprint.New(
			fingerprint.Source{Name: "a", Providers: []fingerprint.Provider{static("linux")}},
			fingerprint.Source{Name: "b", Providers: []fingerprint.Provider{static("host1")}},
		)

		sum := sha256.Sum256([]byte("linux|host1"))
		assert.Equal(t, hex.EncodeToString(sum[:]), f.Generate())
	})

	t.Run("is deterministic", func(t *testing.T) {
		f := fingerprint.Default()
		fp1 := f.Generate()
		fp2 := f.Generate()
		assert.Equal(t, fp1, fp2)
		assert.Regexp(t, "^[a-f0-9]{64}$", fp1)
	})

	t.Run("different signals produce different fingerprints", func(t *testing.T) {
		f1 := fingerprint.New(fingerprint.Source{Name: "os", Providers: []fingerprint.Provider{static("linux")}})
		f2 := fingerprint.New(fingerprint.Source{Name: "os", Providers: []fingerprint.Provider{static("darwin")}})
		assert.NotEqual(t, f1.Generate(), f2.Generate())
	})
}

func TestFingerprinter_Signals(t *testing.T) {
	t.Run("first successful provider wins", func(t *testing.T) {
		f := fingerprint.New(fingerprint.Source{
			Name:      "cpu",
			Providers: []fingerprint.Provider{failing(), static("model-x"), static("8")},
		})
		assert.Equal(t, []string{"model-x"}, f.Signals())
	})

	t.Run("empty values fall through", func(t *testing.T) {
		f := fingerprint.New(fingerprint.Source{
			Name:      "cpu",
			Providers: []fingerprint.Provider{static(""), static("8")},
		})
		assert.Equal(t, []string{"8"}, f.Signals())
	})

	t.Run("degrades to placeholder", func(t *testing.T) {
		f := fingerprint.New(
			fingerprint.Source{Name: "disk", Providers: []fingerprint.Provider{failing(), nil}},
			fingerprint.Source{Name: "none"},
		)
		assert.Equal(t, []string{fingerprint.Unknown, fingerprint.Unknown}, f.Signals())
	})

	t.Run("panicking provider degrades", func(t *testing.T) {
		boom := fingerprint.ProviderFunc(func() (string, error) { panic(errors.New("boom")) })
		f := fingerprint.New(fingerprint.Source{Name: "x", Providers: []fingerprint.Provider{boom}})
		require.NotPanics(t, func() { _ = f.Generate() })
		assert.Equal(t, []string{fingerprint.Unknown}, f.Signals())
	})

	t.Run("default has four signals", func(t *testing.T) {
		signals := fingerprint.Default().Signals()
		require.Len(t, signals, 4)
		for _, s := range signals {
			assert.NotEmpty(t, s)
		}
	})
}

func TestBuiltinProviders(t *testing.T) {
	v, err := fingerprint.RuntimeOS().Signal()
	require.NoError(t, err)
	assert.Contains(t, v, "/")

	v, err = fingerprint.CPUCount().Signal()
	require.NoError(t, err)
	assert.NotEmpty(t, v)

	_, err = fingerprint.DiskCapacity("/definitely/not/a/mount/point").Signal()
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func BenchmarkGenerate(b *testing.B) {
	f := fingerprint.Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Generate()
	}
}
