package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// authorizedUser is the token file written by the OAuth consent flow.
type authorizedUser struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// LoadTokenSource reads an authorized-user token file and returns a token
// source that refreshes the access token when it expires.
func LoadTokenSource(ctx context.Context, path string) (oauth2.TokenSource, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return tokenSourceFromJSON(ctx, data)
}

func tokenSourceFromJSON(ctx context.Context, data []byte) (oauth2.TokenSource, error) {
	var user authorizedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("calendar: parse token file: %w", err)
	}
	if strings.TrimSpace(user.Token) == "" && strings.TrimSpace(user.RefreshToken) == "" {
		return nil, errors.New("calendar: token file has neither access nor refresh token")
	}

	endpoint := google.Endpoint
	if user.TokenURI != "" {
		endpoint.TokenURL = user.TokenURI
	}
	scopes := user.Scopes
	if len(scopes) == 0 {
		scopes = []string{gcal.CalendarScope}
	}
	conf := &oauth2.Config{
		ClientID:     user.ClientID,
		ClientSecret: user.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
	token := &oauth2.Token{
		AccessToken:  user.Token,
		RefreshToken: user.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       user.Expiry,
	}
	return conf.TokenSource(ctx, token), nil
}

// LoadServiceAccount reads service account credentials scoped for calendar access.
func LoadServiceAccount(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse service account: %w", err)
	}
	return creds, nil
}
