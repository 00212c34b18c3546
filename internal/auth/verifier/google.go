package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Google resolves claims by presenting the bearer access token to
// Google's userinfo endpoint.
type Google struct {
	http        *http.Client
	userinfoURL string
}

func NewGoogle() *Google {
	return &Google{
		http:        &http.Client{Timeout: 10 * time.Second},
		userinfoURL: googleUserinfoURL,
	}
}

func (g *Google) ExtractClaims(ctx context.Context, p auth.ProviderPayload) (*auth.Claims, error) {
	if p.Kind != auth.KindAccessToken || p.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", auth.ErrClaimsLookupFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrClaimsLookupFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrClaimsLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logger.Warn("google userinfo rejected", map[string]any{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: userinfo http %d", auth.ErrClaimsLookupFailed, resp.StatusCode)
	}

	var user struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrClaimsLookupFailed, err)
	}

	if user.Email == "" {
		return nil, fmt.Errorf("%w: no usable identity returned", auth.ErrClaimsLookupFailed)
	}

	return &auth.Claims{
		Email:       user.Email,
		DisplayName: user.Name,
	}, nil
}
