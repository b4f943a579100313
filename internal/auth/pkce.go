package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrNoIDToken is returned when the token response lacks an id_token.
var ErrNoIDToken = errors.New("token response has no id_token")

var defaultScopes = []string{"openid", "profile", "email"}

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener interface {
	OpenBrowser(url string) error
}

// Token is the result of a completed login.
type Token struct {
	IDToken      string    `json:"id_token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// PKCEFlow runs the authorization code flow with an S256 code challenge and
// a loopback redirect.
type PKCEFlow struct {
	clientID     string
	endpoint     oauth2.Endpoint
	callbackPort int
	opener       BrowserOpener
	out          io.Writer
	logger       *zap.Logger
}

// NewPKCEFlow creates a flow. Instructions and the fallback URL go to out.
func NewPKCEFlow(clientID string, endpoint oauth2.Endpoint, callbackPort int, opener BrowserOpener, out io.Writer, logger *zap.Logger) *PKCEFlow {
	return &PKCEFlow{
		clientID:     clientID,
		endpoint:     endpoint,
		callbackPort: callbackPort,
		opener:       opener,
		out:          out,
		logger:       logger,
	}
}

// Login opens the provider's authorize page, waits for the callback and
// exchanges the code. ctx bounds the whole flow.
func (f *PKCEFlow) Login(ctx context.Context) (*Token, error) {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	server := NewCallbackServer(f.callbackPort, state, f.logger)
	if err := server.Listen(); err != nil {
		return nil, err
	}
	defer server.Stop()

	oauthCfg := &oauth2.Config{
		ClientID:    f.clientID,
		Endpoint:    f.endpoint,
		RedirectURL: server.RedirectURL(),
		Scopes:      defaultScopes,
	}

	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(f.out, "Opening browser for login...")
	if err := f.opener.OpenBrowser(authURL); err != nil {
		f.logger.Warn("Failed to open browser", zap.Error(err))
		fmt.Fprintf(f.out, "Open this URL to continue:\n%s\n", authURL)
	}

	code, err := server.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	tok, err := oauthCfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, ErrNoIDToken
	}

	f.logger.Debug("Login completed", zap.Time("expiry", tok.Expiry))

	return &Token{
		IDToken:      idToken,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}
