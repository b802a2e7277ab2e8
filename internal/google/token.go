package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const (
	credentialsFile = "credentials.json"
	// outOfBandRedirect makes Google show the authorization code to paste back.
	outOfBandRedirect = "urn:ietf:wg:oauth:2.0:oob"
)

// OAuthConfig builds the OAuth2 config for the Calendar scope. Explicit client
// credentials win over a credentials.json file in the working directory.
func OAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	var config *oauth2.Config
	if clientID != "" && clientSecret != "" {
		config = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{calendar.CalendarScope},
			Endpoint:     googleoauth.Endpoint,
		}
	} else {
		data, err := os.ReadFile(credentialsFile)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("no google client credentials: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or provide credentials.json")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", credentialsFile, err)
		}
		if config, err = googleoauth.ConfigFromJSON(data, calendar.CalendarScope); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", credentialsFile, err)
		}
	}
	config.RedirectURL = outOfBandRedirect
	return config, nil
}

// TokenPath is where the token of account is kept.
func TokenPath(account string) string {
	return "token-" + account + ".json"
}

// Authorize exchanges an authorization code for a token and saves it for account.
// It returns the token file path.
func Authorize(ctx context.Context, config *oauth2.Config, code, account string) (string, error) {
	if account == "" {
		return "", errors.New("an account name is required")
	}
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	path := TokenPath(account)
	if err := saveToken(path, token); err != nil {
		return "", err
	}
	return path, nil
}

// DefaultAccount returns the alphabetically first account with a saved token
// in the working directory.
func DefaultAccount() (string, error) {
	return firstAccountIn(".")
}

func firstAccountIn(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, TokenPath("*")))
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	for _, m := range matches {
		account := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "token-"), ".json")
		if account != "" {
			return account, nil
		}
	}
	return "", errors.New("no saved google token found, run the auth command first")
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &token, nil
}
