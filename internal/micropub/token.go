package micropub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Token errors.
var (
	ErrNoToken      = errors.New("no access token provided")
	ErrInvalidToken = errors.New("access token rejected")
	ErrWrongUser    = errors.New("token does not belong to the configured site identity")
)

// TokenVerifier checks bearer tokens by introspection against an
// IndieAuth token endpoint.
type TokenVerifier struct {
	// Endpoint is the token endpoint URL.
	Endpoint string

	// Me, when non-empty, is the site identity the token's "me" claim
	// must match (compared without trailing slashes).
	Me string

	// Client is the HTTP client used for introspection; http.DefaultClient
	// when nil.
	Client *http.Client
}

type tokenInfo struct {
	Me    string `json:"me"`
	Scope string `json:"scope"`
}

// Verify introspects the given bearer token. A nil error means the
// request is authenticated.
func (v *TokenVerifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build token introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("token introspection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: token endpoint returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("%w: unparseable token endpoint response", ErrInvalidToken)
	}

	if v.Me != "" && normalizeMe(info.Me) != normalizeMe(v.Me) {
		return ErrWrongUser
	}

	return nil
}

func normalizeMe(me string) string {
	return strings.TrimSuffix(me, "/")
}

// bearerToken extracts the access token from the Authorization header or
// the access_token form field, per the micropub spec.
func bearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return r.PostFormValue("access_token")
}
