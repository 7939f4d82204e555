package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/uhppoted/sheets2json/config"
)

const SHEETS = "https://www.googleapis.com/auth/spreadsheets.readonly"

// authorize returns an HTTP client for the Sheets API. A service account (email and private key)
// takes precedence over a credentials file, which may be either a service account key or an OAuth
// client with tokens previously cached by the 'authorise' command.
func authorize(ctx context.Context, credentials config.Google) (*http.Client, error) {
	if credentials.ClientEmail != "" && credentials.PrivateKey != "" {
		conf := jwt.Config{
			Email:      credentials.ClientEmail,
			PrivateKey: []byte(credentials.PrivateKey),
			Scopes:     []string{SHEETS},
			TokenURL:   google.JWTTokenURL,
		}

		return conf.Client(ctx), nil
	}

	if credentials.Credentials == "" {
		return nil, fmt.Errorf("no Google credentials")
	}

	b, err := os.ReadFile(credentials.Credentials)
	if err != nil {
		return nil, err
	}

	if isServiceAccount(b) {
		conf, err := google.JWTConfigFromJSON(b, SHEETS)
		if err != nil {
			return nil, err
		}

		return conf.Client(ctx), nil
	}

	conf, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return nil, err
	}

	tokens := tokensFile(credentials.Credentials, credentials.Tokens)
	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("no cached tokens in %v - run '%v authorise' first (%v)", tokens, APP, err)
	}

	return conf.Client(ctx, token), nil
}

// authenticate runs the console OAuth flow for an OAuth client credentials file and caches the
// tokens for use by subsequent commands.
func authenticate(ctx context.Context, credentials, dir string, in io.Reader, out io.Writer) (string, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return "", err
	}

	if isServiceAccount(b) {
		return "", fmt.Errorf("%v is a service account key and does not require authorisation", credentials)
	}

	conf, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return "", err
	}

	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n\n  %v\n\n> ", url)

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return "", fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("unable to retrieve token from web (%w)", err)
	}

	tokens := tokensFile(credentials, dir)
	if err := saveToken(tokens, token); err != nil {
		return "", err
	}

	return tokens, nil
}

func isServiceAccount(b []byte) bool {
	credentials := struct {
		Type string `json:"type"`
	}{}

	return json.Unmarshal(b, &credentials) == nil && credentials.Type == "service_account"
}

func tokensFile(credentials, dir string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(dir, fmt.Sprintf("%s.sheets", name))
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token (%v)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
