package protocol

import (
	"time"
)

// Operation names used by websocket frames
type Operation string

const (
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
)

// WebSocket timing
const (
	PongWait     = 60 * time.Second
	PingPeriod   = 30 * time.Second
	WriteTimeout = 10 * time.Second
	MaxFrameSize = 1 << 20
)

// CipherParams selects the key, IV and cipher settings of a request.
// Empty Algorithm and Padding fall back to the server defaults; a nil UseMDS does too.
type CipherParams struct {
	Key       string `json:"key"`
	IV        string `json:"iv"`
	Algorithm string `json:"algorithm,omitempty"`
	Padding   string `json:"padding,omitempty"`
	UseMDS    *bool  `json:"use_mds,omitempty"`
}

// EncryptRequest is the body of POST /api/encrypt
type EncryptRequest struct {
	CipherParams
	Text string `json:"text"`
}

// EncryptResponse is returned by POST /api/encrypt
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
	Algorithm  string `json:"algorithm"`
	Padding    string `json:"padding"`
}

// DecryptRequest is the body of POST /api/decrypt
type DecryptRequest struct {
	CipherParams
	Ciphertext string `json:"ciphertext"`
}

// DecryptResponse is returned by POST /api/decrypt
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
	Algorithm string `json:"algorithm"`
	Padding   string `json:"padding"`
}

// TokenRequest is the body of POST /api/auth/token
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is returned by POST /api/auth/token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// AlgorithmsResponse is returned by GET /api/algorithms
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
	Paddings   []string `json:"paddings"`
	Diffusions []string `json:"diffusions"`
	Mode       string   `json:"mode"`
}

// CipherRequest is one inbound websocket frame
type CipherRequest struct {
	ID string    `json:"id"`
	Op Operation `json:"op"`
	CipherParams
	Data string `json:"data"`
}

// CipherResponse is one outbound websocket frame
type CipherResponse struct {
	ID     string `json:"id"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is the JSON body of a failed HTTP request
type ErrorResponse struct {
	Error string `json:"error"`
}
