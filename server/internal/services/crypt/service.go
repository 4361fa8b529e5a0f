package crypt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/codec"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/padding"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/protocol"
)

// Defaults are applied to requests that leave a cipher setting empty
type Defaults struct {
	Algorithm string
	Padding   string
	UseMDS    bool
}

// Result carries the output of one operation and the settings actually used
type Result struct {
	Data      string
	Algorithm string
	Padding   string
}

// Service encrypts and decrypts requests, reusing engines for repeated key/IV pairs
type Service struct {
	defaults Defaults
	logger   hclog.Logger
	engines  *lru.Cache[string, *codec.Engine]
}

// NewService creates a cipher service; capacity bounds the engine cache
func NewService(defaults Defaults, capacity int, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if capacity <= 0 {
		capacity = 1
	}
	engines, err := lru.New[string, *codec.Engine](capacity)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Service{
		defaults: defaults,
		logger:   logger,
		engines:  engines,
	}
}

// Encrypt encrypts text with the cipher selected by params
func (s *Service) Encrypt(ctx context.Context, params protocol.CipherParams, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	engine, err := s.Engine(params)
	if err != nil {
		return nil, err
	}

	ciphertext, err := engine.Encrypt(text)
	if err != nil {
		s.logger.Debug("encrypt failed", "algorithm", engine.Algorithm(), "error", err)
		return nil, err
	}
	s.logger.Debug("encrypted", "algorithm", engine.Algorithm(), "padding", engine.Padding(), "bytes", len(text))

	return &Result{Data: ciphertext, Algorithm: engine.Algorithm(), Padding: engine.Padding()}, nil
}

// Decrypt decrypts Base64 ciphertext with the cipher selected by params
func (s *Service) Decrypt(ctx context.Context, params protocol.CipherParams, ciphertext string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	engine, err := s.Engine(params)
	if err != nil {
		return nil, err
	}

	plaintext, err := engine.Decrypt(ciphertext)
	if err != nil {
		s.logger.Debug("decrypt failed", "algorithm", engine.Algorithm(), "error", err)
		return nil, err
	}
	s.logger.Debug("decrypted", "algorithm", engine.Algorithm(), "padding", engine.Padding(), "bytes", len(plaintext))

	return &Result{Data: plaintext, Algorithm: engine.Algorithm(), Padding: engine.Padding()}, nil
}

// Engine returns a cached engine for params, building one on a miss
func (s *Service) Engine(params protocol.CipherParams) (*codec.Engine, error) {
	algorithm, paddingName, useMDS := s.resolve(params)
	id := cacheKey(algorithm, paddingName, useMDS, params.Key, params.IV)

	if engine, ok := s.engines.Get(id); ok {
		return engine, nil
	}

	padder, err := padding.GetPadder(paddingName)
	if err != nil {
		return nil, err
	}
	engine, err := codec.New(params.Key, params.IV,
		codec.WithAlgorithm(algorithm),
		codec.WithPadding(padder),
		codec.WithMDS(useMDS),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	// another request may have built the same engine first
	if previous, ok, _ := s.engines.PeekOrAdd(id, engine); ok {
		return previous, nil
	}
	s.logger.Trace("engine cached", "algorithm", algorithm, "padding", paddingName, "mds", useMDS, "size", s.engines.Len())

	return engine, nil
}

// CachedEngines returns the number of engines held in the cache
func (s *Service) CachedEngines() int {
	return s.engines.Len()
}

func (s *Service) resolve(params protocol.CipherParams) (string, string, bool) {
	algorithm := params.Algorithm
	if algorithm == "" {
		algorithm = s.defaults.Algorithm
	}
	if algorithm == "" {
		algorithm = encryption.AlgorithmTwofishLite
	}
	paddingName := params.Padding
	if paddingName == "" {
		paddingName = s.defaults.Padding
	}
	useMDS := s.defaults.UseMDS
	if params.UseMDS != nil {
		useMDS = *params.UseMDS
	}
	return algorithm, paddingName, useMDS
}

// cacheKey hashes the settings so raw key text is never kept as a map key
func cacheKey(algorithm, paddingName string, useMDS bool, key, iv string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%t\x00%d:%s\x00%s", algorithm, paddingName, useMDS, len(key), key, iv)
	return hex.EncodeToString(h.Sum(nil))
}

// Algorithms lists the supported algorithms
func Algorithms() []string {
	return []string{encryption.AlgorithmTwofishLite, encryption.AlgorithmTwofish}
}

// Diffusions lists the diffusion options of TWOFISH_LITE
func Diffusions() []string {
	return []string{encryption.NoDiffusion{}.Name(), encryption.MDSDiffusion{}.Name()}
}
