package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/uhppoted/sheets2json/config"
)

func TestTokensFile(t *testing.T) {
	expected := filepath.Join("/var/sheets2json/.google", "credentials.sheets")

	if file := tokensFile("/etc/sheets2json/credentials.json", "/var/sheets2json/.google"); file != expected {
		t.Errorf("Incorrect tokens file - expected:%v, got:%v", expected, file)
	}
}

func TestSaveToken(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".google", "credentials.sheets")
	token := oauth2.Token{
		AccessToken:  "ya29.qwerty",
		TokenType:    "Bearer",
		RefreshToken: "1//uiop",
		Expiry:       time.Date(2024, time.March, 1, 12, 30, 45, 0, time.UTC),
	}

	if err := saveToken(file, &token); err != nil {
		t.Fatalf("Unexpected error returned from saveToken (%v)", err)
	}

	cached, err := tokenFromFile(file)
	if err != nil {
		t.Fatalf("Unexpected error returned from tokenFromFile (%v)", err)
	}

	if cached.AccessToken != token.AccessToken || cached.RefreshToken != token.RefreshToken || !cached.Expiry.Equal(token.Expiry) {
		t.Errorf("Incorrect cached token\n   expected:%+v\n   got:     %+v", token, *cached)
	}
}

func TestIsServiceAccount(t *testing.T) {
	tests := map[string]bool{
		`{"type":"service_account","client_email":"sheets@example.iam.gserviceaccount.com"}`: true,
		`{"installed":{"client_id":"12345.apps.googleusercontent.com"}}`:                     false,
		`qwerty`: false,
	}

	for credentials, expected := range tests {
		if v := isServiceAccount([]byte(credentials)); v != expected {
			t.Errorf("Incorrect service account check for %v - expected:%v, got:%v", credentials, expected, v)
		}
	}
}

func TestAuthorizeWithoutCredentials(t *testing.T) {
	if _, err := authorize(context.Background(), config.Google{}); err == nil {
		t.Errorf("Expected error authorizing without credentials, got:%v", err)
	}
}

func TestAuthorizeWithoutCachedTokens(t *testing.T) {
	dir := t.TempDir()
	credentials := filepath.Join(dir, "credentials.json")
	client := `{"installed":{"client_id":"12345.apps.googleusercontent.com","client_secret":"qwerty","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

	if err := os.WriteFile(credentials, []byte(client), 0600); err != nil {
		t.Fatalf("Error creating credentials file (%v)", err)
	}

	_, err := authorize(context.Background(), config.Google{Credentials: credentials, Tokens: dir})
	if err == nil || !strings.Contains(err.Error(), "authorise") {
		t.Errorf("Expected 'run authorise' error, got:%v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	code := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		rq.ParseForm()
		code = rq.Form.Get("code")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"ya29.qwerty","token_type":"Bearer","refresh_token":"1//uiop","expires_in":3599}`)
	}))

	defer srv.Close()

	dir := t.TempDir()
	credentials := filepath.Join(dir, "credentials.json")
	client := fmt.Sprintf(`{"installed":{"client_id":"12345.apps.googleusercontent.com","client_secret":"qwerty","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"%v/token","redirect_uris":["http://localhost"]}}`, srv.URL)

	if err := os.WriteFile(credentials, []byte(client), 0600); err != nil {
		t.Fatalf("Error creating credentials file (%v)", err)
	}

	var out bytes.Buffer
	tokens, err := authenticate(context.Background(), credentials, filepath.Join(dir, ".google"), strings.NewReader("4/0AX4XfWh\n"), &out)
	if err != nil {
		t.Fatalf("Unexpected error returned from authenticate (%v)", err)
	}

	if code != "4/0AX4XfWh" {
		t.Errorf("Incorrect authorization code - expected:%v, got:%v", "4/0AX4XfWh", code)
	}

	if !strings.Contains(out.String(), "https://accounts.google.com/o/oauth2/auth") {
		t.Errorf("Authorization URL not displayed\n%v", out.String())
	}

	token, err := tokenFromFile(tokens)
	if err != nil {
		t.Fatalf("Unexpected error reading cached token (%v)", err)
	}

	if token.AccessToken != "ya29.qwerty" || token.RefreshToken != "1//uiop" {
		t.Errorf("Incorrect cached token - got:%+v", token)
	}

	if _, err := authorize(context.Background(), config.Google{Credentials: credentials, Tokens: filepath.Join(dir, ".google")}); err != nil {
		t.Errorf("Unexpected error authorizing with cached token (%v)", err)
	}
}
