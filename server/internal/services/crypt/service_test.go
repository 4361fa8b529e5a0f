package crypt

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/protocol"
)

func testParams() protocol.CipherParams {
	return protocol.CipherParams{Key: "testkey1234567890", IV: "0123456789abcdef"}
}

func TestEncryptDecrypt(t *testing.T) {
	s := NewService(Defaults{}, 8, nil)
	ctx := context.Background()

	enc, err := s.Encrypt(ctx, testParams(), "HELLO WORLD")
	require.NoError(t, err)
	assert.Len(t, enc.Data, 24)
	assert.Equal(t, encryption.AlgorithmTwofishLite, enc.Algorithm)
	assert.Equal(t, "PKCS7", enc.Padding)

	dec, err := s.Decrypt(ctx, testParams(), enc.Data)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", dec.Data)
}

func TestDefaultsAndOverrides(t *testing.T) {
	s := NewService(Defaults{Algorithm: encryption.AlgorithmTwofish, Padding: "LEGACY", UseMDS: true}, 8, nil)
	ctx := context.Background()

	res, err := s.Encrypt(ctx, testParams(), "abc")
	require.NoError(t, err)
	assert.Equal(t, encryption.AlgorithmTwofish, res.Algorithm)
	assert.Equal(t, "LEGACY", res.Padding)

	off := false
	params := testParams()
	params.Algorithm = encryption.AlgorithmTwofishLite
	params.Padding = "PKCS7"
	params.UseMDS = &off
	res, err = s.Encrypt(ctx, params, "abc")
	require.NoError(t, err)
	assert.Equal(t, encryption.AlgorithmTwofishLite, res.Algorithm)
	assert.Equal(t, "PKCS7", res.Padding)

	on := true
	params.UseMDS = &on
	res, err = s.Encrypt(ctx, params, "abc")
	require.NoError(t, err)
	assert.Equal(t, "TWOFISH_LITE+MDS", res.Algorithm)
}

func TestEngineCache(t *testing.T) {
	s := NewService(Defaults{}, 2, nil)

	first, err := s.Engine(testParams())
	require.NoError(t, err)
	again, err := s.Engine(testParams())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, s.CachedEngines())

	other := testParams()
	other.IV = "fedcba9876543210"
	_, err = s.Engine(other)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CachedEngines())

	// touch the first entry so the second becomes the eviction candidate
	_, err = s.Engine(testParams())
	require.NoError(t, err)

	third := testParams()
	third.Key = "another key"
	_, err = s.Engine(third)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CachedEngines())

	still, err := s.Engine(testParams())
	require.NoError(t, err)
	assert.Same(t, first, still, "recently used engine should survive eviction")
}

func TestZeroCapacityKeepsOneEngine(t *testing.T) {
	s := NewService(Defaults{}, 0, nil)

	first, err := s.Engine(testParams())
	require.NoError(t, err)
	again, err := s.Engine(testParams())
	require.NoError(t, err)
	assert.Same(t, first, again)

	other := testParams()
	other.Key = "another key"
	_, err = s.Engine(other)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CachedEngines())

	rebuilt, err := s.Engine(testParams())
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt, "evicted engine should be rebuilt")
}

func TestConcurrentBuildsShareOneEngine(t *testing.T) {
	s := NewService(Defaults{}, 8, nil)

	engines := make([]interface{}, 16)
	var wg sync.WaitGroup
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.Engine(testParams())
			if assert.NoError(t, err) {
				engines[i] = e
			}
		}(i)
	}
	wg.Wait()

	for _, e := range engines[1:] {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, 1, s.CachedEngines())
}

func TestCacheSeparatesSettings(t *testing.T) {
	s := NewService(Defaults{}, 8, nil)

	lite, err := s.Engine(testParams())
	require.NoError(t, err)

	mds := true
	params := testParams()
	params.UseMDS = &mds
	withMDS, err := s.Engine(params)
	require.NoError(t, err)

	assert.NotSame(t, lite, withMDS)
	assert.Equal(t, 2, s.CachedEngines())
}

func TestErrors(t *testing.T) {
	s := NewService(Defaults{}, 8, nil)
	ctx := context.Background()

	params := testParams()
	params.IV = "short"
	_, err := s.Encrypt(ctx, params, "x")
	assert.ErrorIs(t, err, encryption.ErrInvalidIVLength)

	params = testParams()
	params.Padding = "ZERO"
	_, err = s.Encrypt(ctx, params, "x")
	assert.ErrorIs(t, err, encryption.ErrUnknownPadding)

	params = testParams()
	params.Algorithm = "AES"
	_, err = s.Encrypt(ctx, params, "x")
	assert.ErrorIs(t, err, encryption.ErrUnknownAlgorithm)

	assert.Equal(t, 0, s.CachedEngines(), "failed constructions must not be cached")

	_, err = s.Decrypt(ctx, testParams(), "@@@")
	assert.ErrorIs(t, err, encryption.ErrInvalidCiphertext)
}

func TestCanceledContext(t *testing.T) {
	s := NewService(Defaults{}, 8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Encrypt(ctx, testParams(), "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Decrypt(ctx, testParams(), "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentRequests(t *testing.T) {
	s := NewService(Defaults{}, 4, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			params := testParams()
			params.Key = fmt.Sprintf("key-%d", i%6)
			text := fmt.Sprintf("message %d", i)

			enc, err := s.Encrypt(ctx, params, text)
			if !assert.NoError(t, err) {
				return
			}
			dec, err := s.Decrypt(ctx, params, enc.Data)
			if assert.NoError(t, err) {
				assert.Equal(t, text, dec.Data)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.CachedEngines(), 4)
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{"TWOFISH_LITE", "TWOFISH"}, Algorithms())
	assert.Equal(t, []string{"NONE", "MDS"}, Diffusions())
}
