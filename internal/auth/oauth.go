package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the portion of the Google userinfo response we care
// about. Google returns a larger object — we only unmarshal the fields
// the account record needs.
type GoogleUser struct {
	Email      string `json:"email"`       // login key; links federated and local identities
	GivenName  string `json:"given_name"`  // first name
	FamilyName string `json:"family_name"` // last name (may be absent on some accounts)
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. Our server redirects the user to Google's authorization endpoint,
//     with our ClientID and the requested scopes.
//  2. The user approves (or denies) the request on Google.
//  3. Google redirects back to our CallbackURL with a short-lived "code".
//  4. Our server exchanges the code for an access token (server-to-server,
//     using the ClientSecret — the token never touches the browser).
//  5. Our server uses the access token to fetch the user's profile.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// userInfoEndpoint is Google's OpenID Connect userinfo endpoint.
const userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewGoogleProvider creates a GoogleProvider with the given credentials.
//
// ClientID and ClientSecret come from a Google Cloud OAuth client
// (APIs & Services → Credentials). callbackURL must exactly match an
// authorized redirect URI configured there, e.g.
// "http://localhost:8080/auth/google/dashboard".
//
// Scopes: "email" and "profile" — enough to read the address and the
// given/family names, nothing else.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint, // pre-defined Google OAuth endpoints
		},
		userInfoURL: userInfoEndpoint,
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random nonce stored in a short-lived cookie before the
// redirect; the callback handler verifies Google echoes the same value
// back. That proves the flow was started by this server, not by a CSRF
// attacker.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for
// a Google profile.
//
// Steps:
//  1. Exchange the code for an OAuth access token (server-to-server)
//  2. Use the token to call the userinfo endpoint
//  3. Unmarshal the response into a GoogleUser
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.Email == "" {
		return nil, fmt.Errorf("auth: Google returned a profile with no email")
	}

	return &gUser, nil
}
