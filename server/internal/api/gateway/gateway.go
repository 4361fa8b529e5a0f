// Gateway API implementation
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/padding"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/protocol"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/services/auth"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/services/crypt"
)

type contextKey string

const claimsKey contextKey = "claims"

// Server represents the API gateway
type Server struct {
	addr       string
	authSvc    *auth.Service
	cryptSvc   *crypt.Service
	logger     hclog.Logger
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	hubOnce    sync.Once
	closeOnce  sync.Once
}

// Client represents a connected WebSocket client
type Client struct {
	clientID string
	conn     *websocket.Conn
	send     chan *protocol.CipherResponse
	quit     chan struct{}
	server   *Server
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the token from "Bearer <token>" format
func extractToken(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// New creates a new gateway server
func New(addr string, authSvc *auth.Service, cryptSvc *crypt.Service, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		addr:     addr,
		authSvc:  authSvc,
		cryptSvc: cryptSvc,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Router builds the HTTP handler with all routes
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	// Root endpoint - return OK for health checks
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Twofish CBC API Server"))
	}).Methods("GET", "OPTIONS")

	router.HandleFunc("/api/algorithms", s.handleAlgorithms).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/auth/token", s.handleToken).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/encrypt", s.handleEncrypt).Methods("POST", "OPTIONS")
	api.HandleFunc("/decrypt", s.handleDecrypt).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket)

	s.hubOnce.Do(func() { go s.runHub() })

	return corsMiddleware(router)
}

// Start starts the gateway server and blocks until it stops
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("gateway server listening", "addr", s.addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ConnectedClients returns the number of open websocket connections
func (s *Server) ConnectedClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// authMiddleware rejects requests without a valid bearer token
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		token := extractToken(authHeader)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := s.authSvc.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// handleAlgorithms lists the supported cipher settings
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.AlgorithmsResponse{
		Algorithms: crypt.Algorithms(),
		Paddings:   padding.Names(),
		Diffusions: crypt.Diffusions(),
		Mode:       "CBC",
	})
}

// handleToken exchanges client credentials for a bearer token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req protocol.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, expiresAt, err := s.authSvc.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, protocol.TokenResponse{Token: token, ExpiresAt: expiresAt.Unix()})
}

// handleEncrypt encrypts the request text
func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req protocol.EncryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.cryptSvc.Encrypt(r.Context(), req.CipherParams, req.Text)
	if err != nil {
		s.writeCipherError(w, r, "encrypt", err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.EncryptResponse{
		Ciphertext: res.Data,
		Algorithm:  res.Algorithm,
		Padding:    res.Padding,
	})
}

// handleDecrypt decrypts the request ciphertext
func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req protocol.DecryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.cryptSvc.Decrypt(r.Context(), req.CipherParams, req.Ciphertext)
	if err != nil {
		s.writeCipherError(w, r, "decrypt", err)
		return
	}

	writeJSON(w, http.StatusOK, protocol.DecryptResponse{
		Plaintext: res.Data,
		Algorithm: res.Algorithm,
		Padding:   res.Padding,
	})
}

func (s *Server) writeCipherError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	clientID := ""
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		clientID = claims.ClientID
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("cipher request failed", "op", op, "client_id", clientID, "error", err)
	} else {
		s.logger.Debug("cipher request rejected", "op", op, "client_id", clientID, "error", err)
	}
	writeError(w, status, err.Error())
}

// statusForError maps cipher errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, encryption.ErrInvalidKeyMaterial),
		errors.Is(err, encryption.ErrInvalidIVLength),
		errors.Is(err, encryption.ErrInvalidCiphertext),
		errors.Is(err, encryption.ErrInvalidPlaintext),
		errors.Is(err, encryption.ErrPaddingAmbiguity),
		errors.Is(err, encryption.ErrUnknownAlgorithm),
		errors.Is(err, encryption.ErrUnknownPadding):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.ErrorResponse{Error: msg})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Try to get token from query parameter first (preferred for WebSocket)
	token := r.URL.Query().Get("token")

	// Fall back to Authorization header if not in query
	if token == "" {
		token = extractToken(r.Header.Get("Authorization"))
	}

	if token == "" {
		s.logger.Warn("websocket connection rejected: no token provided")
		writeError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}

	claims, err := s.authSvc.ValidateToken(token)
	if err != nil {
		s.logger.Warn("websocket connection rejected: invalid token", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		clientID: claims.ClientID,
		conn:     conn,
		send:     make(chan *protocol.CipherResponse, 256),
		quit:     make(chan struct{}),
		server:   s,
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}
	s.logger.Info("websocket client connected", "client_id", claims.ClientID)

	// Start reading and writing goroutines
	go client.readPump()
	go client.writePump()
}

// runHub tracks connected clients until the server shuts down
func (s *Server) runHub() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			s.mu.Unlock()

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.mu.Unlock()
			s.logger.Info("websocket client disconnected", "client_id", client.clientID)

		case <-s.done:
			// write pumps observe done themselves and close their connections
			s.mu.Lock()
			s.clients = make(map[*Client]bool)
			s.mu.Unlock()
			return
		}
	}
}

// readPump reads cipher requests from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(protocol.MaxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
		return nil
	})

	for {
		var req protocol.CipherRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debug("websocket read failed", "client_id", c.clientID, "error", err)
			}
			return
		}

		resp := c.server.process(context.Background(), &req)
		select {
		case c.send <- resp:
		case <-c.quit:
			return
		case <-c.server.done:
			return
		}
	}
}

// process runs one websocket cipher request
func (s *Server) process(ctx context.Context, req *protocol.CipherRequest) *protocol.CipherResponse {
	resp := &protocol.CipherResponse{ID: req.ID}

	var (
		res *crypt.Result
		err error
	)
	switch req.Op {
	case protocol.OpEncrypt:
		res, err = s.cryptSvc.Encrypt(ctx, req.CipherParams, req.Data)
	case protocol.OpDecrypt:
		res, err = s.cryptSvc.Decrypt(ctx, req.CipherParams, req.Data)
	default:
		resp.Error = "unknown op: " + string(req.Op)
		return resp
	}

	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = res.Data
	return resp
}

// writePump writes responses to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(protocol.PingPeriod)
	defer func() {
		ticker.Stop()
		close(c.quit)
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.done:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteTimeout))
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
