package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-test/deep"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

func TestFirstAccountIn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := firstAccountIn(dir); err == nil {
		t.Error("expected an error with no saved tokens")
	}

	for _, name := range []string{"token-work.json", "token-personal.json", "credentials.json", "token-.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := firstAccountIn(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != "personal" {
		t.Errorf("firstAccountIn = %q, want personal", got)
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), TokenPath("work"))
	want := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
	}
	if err := saveToken(path, want); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}

	got, err := loadToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("loadToken = %+v, want %+v", got, want)
	}

	if _, err := loadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing token file")
	}
}

func TestOAuthConfigFromClientCredentials(t *testing.T) {
	t.Parallel()

	config, err := OAuthConfig("id", "secret")
	if err != nil {
		t.Fatal(err)
	}
	got := []string{config.ClientID, config.ClientSecret, config.RedirectURL}
	if diff := deep.Equal(got, []string{"id", "secret", outOfBandRedirect}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(config.Scopes, []string{calendar.CalendarScope}); diff != nil {
		t.Error(diff)
	}
}

func TestAuthorizeRequiresAccount(t *testing.T) {
	t.Parallel()

	if _, err := Authorize(context.Background(), &oauth2.Config{}, "code", ""); err == nil {
		t.Error("expected an error without an account name")
	}
}
