package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kuenkele/timetrack/internal/auth"
	"kuenkele/timetrack/internal/client"
)

const oidcLoginTimeout = 5 * time.Minute

func newLoginCmd(a *app) *cobra.Command {
	var (
		username string
		password string
		useOIDC  bool
		discover bool
		create   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the timetrack server",
		Long: `Log in with a username and password, or through the identity provider.

Examples:
  timetrack login -u ada              # Prompts for the password
  timetrack login -u ada --create     # Registers a new user
  timetrack login --oidc              # Opens the browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if useOIDC {
				return a.loginOIDC(cmd.Context(), discover)
			}
			return a.loginPassword(cmd.Context(), username, password, create)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	cmd.Flags().BoolVar(&useOIDC, "oidc", false, "Log in through the identity provider")
	cmd.Flags().BoolVar(&discover, "discover", false, "Use the provider's discovery document for endpoints")
	cmd.Flags().BoolVar(&create, "create", false, "Create the user before logging in")
	cmd.MarkFlagsMutuallyExclusive("oidc", "username")

	return cmd
}

func (a *app) loginPassword(ctx context.Context, username, password string, create bool) error {
	if username == "" {
		return errors.New("--username is required")
	}

	if password == "" {
		var err error
		password, err = readLine(a.in, a.out, "Password: ")
		if err != nil {
			return err
		}
	}

	var err error
	if create {
		err = a.client.CreateUser(ctx, username, password)
	} else {
		err = a.client.Login(ctx, username, password)
	}
	if err != nil {
		return describe(err)
	}

	a.creds = &client.Credentials{Session: a.client.Session()}
	if err := a.store.Save(a.creds); err != nil {
		return err
	}

	fmt.Fprintln(a.out, activeStyle.Render("Logged in as "+username))
	return nil
}

func (a *app) loginOIDC(ctx context.Context, discover bool) error {
	oidcCfg := a.cfg.Auth.OIDC
	if oidcCfg.ServerURL == "" && oidcCfg.IssuerURL == "" {
		return errors.New("auth.oidc.server_url is not configured")
	}
	if oidcCfg.ClientID == "" {
		return errors.New("auth.oidc.client_id is not configured")
	}
	if a.platform == nil {
		return errors.New("opening a browser is not supported on this system")
	}

	ctx, cancel := context.WithTimeout(ctx, oidcLoginTimeout)
	defer cancel()

	endpoint, err := auth.Endpoint(ctx, oidcCfg, discover)
	if err != nil {
		return err
	}

	flow := auth.NewPKCEFlow(oidcCfg.ClientID, endpoint, a.cfg.Client.CallbackPort, a.platform, a.out, a.log.Logger)
	token, err := flow.Login(ctx)
	if err != nil {
		return err
	}

	// The server turns a valid bearer token into a session cookie.
	a.client.SetToken(token.IDToken)
	ok, err := a.client.Validate(ctx)
	if err != nil {
		return describe(err)
	}
	if !ok {
		return errors.New("the server rejected the identity token")
	}

	a.creds = &client.Credentials{
		Session: a.client.Session(),
		IDToken: token.IDToken,
		Expiry:  token.Expiry,
	}
	if err := a.store.Save(a.creds); err != nil {
		return err
	}

	fmt.Fprintln(a.out, activeStyle.Render("Logged in"))
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.creds.Empty() {
				var authErr *client.AuthError
				if err := a.client.Logout(cmd.Context()); err != nil && !errors.As(err, &authErr) {
					return err
				}
			}

			a.endProviderSession()

			// Nothing is persisted after a logout, even if a stale cookie remains.
			a.creds = nil
			if err := a.store.Clear(); err != nil {
				return err
			}

			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

// endProviderSession sends the browser to the identity provider's logout
// page when the stored login came from the OIDC flow.
func (a *app) endProviderSession() {
	oidcCfg := a.cfg.Auth.OIDC
	if a.creds == nil || a.creds.IDToken == "" || oidcCfg.ServerURL == "" {
		return
	}

	logoutURL := auth.LogoutURL(oidcCfg, a.creds.IDToken)
	if a.platform != nil {
		err := a.platform.OpenBrowser(logoutURL)
		if err == nil {
			return
		}
		a.log.Debug("Failed to open browser", zap.Error(err))
	}
	fmt.Fprintf(a.out, "End the identity provider session at:\n%s\n", logoutURL)
}

func readLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
