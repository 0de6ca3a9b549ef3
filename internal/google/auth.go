// Package google wraps the Google Calendar and Sheets APIs behind the small
// surfaces the agent needs.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"
)

var scopes = []string{
	calendar.CalendarScope,
	sheets.SpreadsheetsScope,
	gmail.GmailSendScope,
}

// NewClient builds an authenticated HTTP client from an OAuth client secret
// file and a previously saved token file. Obtaining the initial token is an
// out-of-band step; a missing or unreadable token is a fatal configuration
// error, not something the agent recovers from mid-run.
func NewClient(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	cfg, err := googleoauth.ConfigFromJSON(creds, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	// TokenSource refreshes expired access tokens with the refresh token.
	return oauth2.NewClient(ctx, cfg.TokenSource(ctx, tok)), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
