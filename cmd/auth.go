package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/auth"
	"github.com/marcus/gitsync/internal/gist"
	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/syncconfig"
	"github.com/marcus/gitsync/internal/ui"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage GitHub authentication",
	GroupID: "system",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with GitHub",
	Long: `Authenticate with GitHub via the device-authorization flow, or with a
personal access token when --with-token is given. The token needs the gist
scope only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withToken, _ := cmd.Flags().GetBool("with-token")
		return runLogin(withToken)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := syncconfig.FindWorkspaceRoot(getBaseDir())
		cfg, err := syncconfig.Load(ws)
		if err != nil {
			output.Error("load config: %v", err)
			return err
		}

		if cfg == nil || cfg.Token == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		tokenPrefix := cfg.Token
		if len(tokenPrefix) > 12 {
			tokenPrefix = tokenPrefix[:12] + "..."
		}

		fmt.Printf("Token: %s\n", tokenPrefix)
		if cfg.GistID != "" {
			fmt.Printf("Gist:  %s (%s)\n", cfg.GistID, cfg.GistDescription)
		} else {
			fmt.Println("Gist:  not selected (run: gitsync setup)")
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := syncconfig.FindWorkspaceRoot(getBaseDir())
		if err := syncconfig.ClearToken(ws); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// runLogin obtains a token, verifies it against the identity endpoint, and
// persists it. Shared with setup.
func runLogin(withToken bool) error {
	ws := syncconfig.FindWorkspaceRoot(getBaseDir())
	cfg, err := syncconfig.Load(ws)
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	if cfg == nil {
		cfg = &syncconfig.RemoteConfig{}
	}

	token, err := obtainToken(withToken)
	if err != nil {
		reportAuthError(err)
		return err
	}

	user, err := verifyToken(token)
	if err != nil {
		reportAuthError(err)
		return err
	}

	cfg.Token = token
	path, err := syncconfig.Save(cfg, ws)
	if err != nil {
		output.Error("save credentials: %v", err)
		return err
	}

	output.Success("Successfully authenticated as %s", user.Login)
	output.Subtle("credentials saved to %s", path)
	return nil
}

// obtainToken runs the chosen flow. The device flow presents a user code and
// polls until authorized, cancelled, or timed out.
func obtainToken(withToken bool) (string, error) {
	if withToken {
		token, err := ui.ReadToken()
		if err != nil {
			return "", err
		}
		if err := auth.ValidateTokenFormat(token); err != nil {
			return "", err
		}
		return token, nil
	}

	flow := auth.NewFlow()
	code, err := flow.Start(context.Background())
	if err != nil {
		return "", err
	}
	return ui.WaitForAuthorization(flow, code)
}

// verifyToken probes the identity endpoint once before the token is accepted.
func verifyToken(token string) (*gist.User, error) {
	client := gist.New(token)
	user, err := client.CurrentUser()
	if err != nil {
		if errors.Is(err, gist.ErrUnauthorized) || errors.Is(err, gist.ErrForbidden) {
			return nil, fmt.Errorf("%w: %v", auth.ErrRemoteRejected, err)
		}
		return nil, err
	}
	return user, nil
}

// reportAuthError maps the taxonomy to distinct user-facing messages.
func reportAuthError(err error) {
	switch {
	case errors.Is(err, auth.ErrCancelled):
		output.Warning("Authentication cancelled.")
	case errors.Is(err, auth.ErrInvalidTokenFormat):
		output.Error("that does not look like a personal access token (expected ghp_ prefix)")
	case errors.Is(err, auth.ErrRemoteRejected):
		output.Error("GitHub rejected the token; check that it has the gist scope")
	case errors.Is(err, auth.ErrAuthorizationDenied):
		output.Error("authorization was denied")
	case errors.Is(err, auth.ErrAuthorizationExpired):
		output.Error("the device code expired before authorization; run login again")
	case errors.Is(err, auth.ErrTimeout):
		output.Error("timed out waiting for authorization")
	default:
		output.Error("authentication failed: %v", err)
	}
}

func init() {
	authLoginCmd.Flags().Bool("with-token", false, "enter a personal access token instead of the device flow")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
