package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrStateMismatch is returned when the callback carries a foreign state.
var ErrStateMismatch = errors.New("oauth state mismatch")

const (
	callbackHTML = `<!DOCTYPE html>
<html>
<head>
	<title>timetrack login</title>
	<style>
		body {
			font-family: Arial, sans-serif;
			display: flex;
			justify-content: center;
			align-items: center;
			height: 100vh;
			margin: 0;
			background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
		}
		.container {
			background: white;
			padding: 2rem;
			border-radius: 10px;
			box-shadow: 0 10px 25px rgba(0,0,0,0.2);
			text-align: center;
			max-width: 400px;
		}
		.success {
			color: #10b981;
			font-size: 2rem;
			margin-bottom: 1rem;
		}
		h1 {
			color: #1f2937;
			margin: 0 0 1rem 0;
		}
		p {
			color: #6b7280;
			margin: 0.5rem 0;
		}
	</style>
</head>
<body>
	<div class="container">
		<div class="success">✓</div>
		<h1>Logged in</h1>
		<p>timetrack received your authorization.</p>
		<p>You can close this window.</p>
	</div>
</body>
</html>`

	errorHTML = `<!DOCTYPE html>
<html>
<head>
	<title>timetrack login failed</title>
	<style>
		body {
			font-family: Arial, sans-serif;
			display: flex;
			justify-content: center;
			align-items: center;
			height: 100vh;
			margin: 0;
			background: linear-gradient(135deg, #f093fb 0%%, #f5576c 100%%);
		}
		.container {
			background: white;
			padding: 2rem;
			border-radius: 10px;
			box-shadow: 0 10px 25px rgba(0,0,0,0.2);
			text-align: center;
			max-width: 400px;
		}
		.error {
			color: #ef4444;
			font-size: 2rem;
			margin-bottom: 1rem;
		}
		h1 {
			color: #1f2937;
			margin: 0 0 1rem 0;
		}
		p {
			color: #6b7280;
			margin: 0.5rem 0;
		}
	</style>
</head>
<body>
	<div class="container">
		<div class="error">✗</div>
		<h1>Login failed</h1>
		<p>%s</p>
		<p>Please try again.</p>
	</div>
</body>
</html>`
)

// CallbackServer receives the authorization code on the loopback redirect
// URI and checks it against the expected state.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	state    string
	codeChan chan string
	errChan  chan error
	logger   *zap.Logger
	port     int
}

// NewCallbackServer creates a callback server. Port 0 picks a free port.
func NewCallbackServer(port int, state string, logger *zap.Logger) *CallbackServer {
	return &CallbackServer{
		state:    state,
		codeChan: make(chan string, 1),
		errChan:  make(chan error, 1),
		logger:   logger,
		port:     port,
	}
}

// Listen binds the loopback address and starts serving.
func (s *CallbackServer) Listen() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	addr := fmt.Sprintf("localhost:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Debug("Callback server started", zap.String("address", s.server.Addr))
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.sendErr(err)
		}
	}()

	return nil
}

// RedirectURL is the URL the provider has to redirect to.
func (s *CallbackServer) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.port)
}

// Wait blocks until a code arrives, the callback fails, or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stop stops the callback server
func (s *CallbackServer) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *CallbackServer) sendErr(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

func (s *CallbackServer) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error("Authorization callback failed", zap.Error(err))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, errorHTML, html.EscapeString(msg))
	s.sendErr(err)
}

// handleCallback handles the OAuth callback request
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errorParam := q.Get("error"); errorParam != "" {
		desc := q.Get("error_description")
		if desc == "" {
			desc = errorParam
		}
		s.fail(w, desc, fmt.Errorf("authorization error: %s: %s", errorParam, desc))
		return
	}

	if q.Get("state") != s.state {
		s.fail(w, "State mismatch", ErrStateMismatch)
		return
	}

	code := q.Get("code")
	if code == "" {
		s.fail(w, "No authorization code received", fmt.Errorf("no authorization code received"))
		return
	}

	s.logger.Debug("Authorization code received")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(callbackHTML))

	// Send code to channel (non-blocking)
	select {
	case s.codeChan <- code:
	default:
	}
}
