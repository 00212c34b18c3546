package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/dynamic"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/logger"
)

// StoreResolver resolves claims against the account store.
//
// Every resolution rotates the account's stored credential, including for
// existing accounts: the local login that follows must present exactly
// the value minted here. Two concurrent resolutions for one account race
// on that rotation; the loser fails its login with a credential mismatch
// and retries the full flow. No cross-request locking is taken.
type StoreResolver struct {
	accounts account.Store
}

func NewStoreResolver(accounts account.Store) *StoreResolver {
	return &StoreResolver{accounts: accounts}
}

func (r *StoreResolver) Resolve(
	ctx context.Context,
	method auth.Method,
	claims *auth.Claims,
) (*Resolution, error) {

	if claims == nil || claims.Email == "" {
		return nil, errors.New("resolver: claims missing email")
	}

	acct, err := r.accounts.FindByEmail(ctx, claims.Email)

	switch {
	case err == nil:
		// Existing account: rotate the credential so the caller can log
		// in with a value no one else has ever seen.
		password := dynamic.Password(claims.Email)
		if err := r.accounts.UpdatePassword(ctx, acct.ID, password); err != nil {
			return nil, err
		}
		return &Resolution{Account: acct, DynamicPassword: password}, nil

	case errors.Is(err, account.ErrNotFound):
		return r.provision(ctx, method, claims)

	default:
		// Lookup failure is not a provisioning failure; keep them apart.
		return nil, fmt.Errorf("resolver: account lookup: %w", err)
	}
}

func (r *StoreResolver) provision(
	ctx context.Context,
	method auth.Method,
	claims *auth.Claims,
) (*Resolution, error) {

	password := dynamic.Password(claims.Email)
	firstName, lastName := splitDisplayName(claims.DisplayName)

	acct, err := r.accounts.Create(ctx, account.New{
		Email:       claims.Email,
		FirstName:   firstName,
		LastName:    lastName,
		LoginMethod: method,
		Password:    password,
		Activated:   false,
	})
	if err != nil {
		return nil, err
	}

	// The provider already proved ownership of the email; skip the
	// ordinary verification flow.
	if err := r.accounts.MarkVerified(ctx, acct.ID); err != nil {
		return nil, err
	}
	acct.Verified = true

	logger.Info("account provisioned via sso", map[string]any{
		"account_id": acct.ID,
		"method":     string(method),
	})

	return &Resolution{Account: acct, DynamicPassword: password}, nil
}

// splitDisplayName breaks a provider display name at the first space.
// A name without spaces lands entirely in firstName.
func splitDisplayName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
