package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore is an in-memory account.Store. It hashes passwords like the
// real store so credential rotation is observable.
type fakeStore struct {
	accounts map[string]*account.Account // keyed by lowercase email
	nextID   int

	failCreate bool
	failUpdate bool
	failLookup bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[string]*account.Account{}}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if f.failLookup {
		return nil, errors.New("connection refused")
	}
	acct, ok := f.accounts[strings.ToLower(email)]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *acct
	return &copied, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*account.Account, error) {
	for _, acct := range f.accounts {
		if acct.ID == id {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, account.ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, n account.New) (*account.Account, error) {
	if f.failCreate {
		return nil, fmt.Errorf("%w: insert failed", account.ErrProvisioning)
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(n.Password), bcrypt.MinCost)
	f.nextID++
	acct := &account.Account{
		ID:           fmt.Sprintf("acct-%d", f.nextID),
		Email:        n.Email,
		FirstName:    n.FirstName,
		LastName:     n.LastName,
		LoginMethod:  n.LoginMethod,
		PasswordHash: string(hash),
		Activated:    n.Activated,
	}
	f.accounts[strings.ToLower(n.Email)] = acct
	copied := *acct
	return &copied, nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, id string, password string) error {
	if f.failUpdate {
		return fmt.Errorf("%w: update failed", account.ErrProvisioning)
	}
	for _, acct := range f.accounts {
		if acct.ID == id {
			hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			acct.PasswordHash = string(hash)
			return nil
		}
	}
	return account.ErrNotFound
}

func (f *fakeStore) MarkVerified(ctx context.Context, id string) error {
	for _, acct := range f.accounts {
		if acct.ID == id {
			acct.Verified = true
			return nil
		}
	}
	return account.ErrNotFound
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id string, upd account.ProfileUpdate) error {
	for _, acct := range f.accounts {
		if acct.ID == id {
			if upd.FirstName != nil {
				acct.FirstName = *upd.FirstName
			}
			if upd.LastName != nil {
				acct.LastName = *upd.LastName
			}
			if upd.Email != nil {
				delete(f.accounts, strings.ToLower(acct.Email))
				acct.Email = *upd.Email
				f.accounts[strings.ToLower(acct.Email)] = acct
			}
			return nil
		}
	}
	return account.ErrNotFound
}

func TestResolve_FirstLoginProvisionsAccount(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store)

	res, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{
		Email:       "a@x.com",
		DisplayName: "A B",
	})

	require.NoError(t, err)
	require.NotNil(t, res.Account)

	acct := res.Account
	assert.Equal(t, "a@x.com", acct.Email)
	assert.Equal(t, auth.MethodGoogle, acct.LoginMethod)
	assert.Equal(t, "A", acct.FirstName)
	assert.Equal(t, "B", acct.LastName)
	assert.False(t, acct.Activated)
	assert.True(t, acct.Verified)

	// Plaintext is usable exactly against what was stored.
	stored := store.accounts["a@x.com"]
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte(res.DynamicPassword)))
}

func TestResolve_ExistingAccountRotatesCredential(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store)
	ctx := context.Background()

	first, err := r.Resolve(ctx, auth.MethodGoogle, &auth.Claims{Email: "a@x.com", DisplayName: "A B"})
	require.NoError(t, err)

	second, err := r.Resolve(ctx, auth.MethodGoogle, &auth.Claims{Email: "a@x.com", DisplayName: "A B"})
	require.NoError(t, err)

	// No second account.
	assert.Len(t, store.accounts, 1)
	assert.Equal(t, first.Account.ID, second.Account.ID)

	// Rotation: the first secret no longer authenticates, the second does.
	stored := store.accounts["a@x.com"]
	assert.Error(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte(first.DynamicPassword)))
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash), []byte(second.DynamicPassword)))
}

func TestResolve_LookupIsCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store)
	ctx := context.Background()

	_, err := r.Resolve(ctx, auth.MethodApple, &auth.Claims{Email: "A@X.com"})
	require.NoError(t, err)

	res, err := r.Resolve(ctx, auth.MethodApple, &auth.Claims{Email: "a@x.COM"})
	require.NoError(t, err)

	assert.Len(t, store.accounts, 1)
	assert.Equal(t, auth.MethodApple, res.Account.LoginMethod)
}

func TestResolve_ProvisioningFailureIsDistinct(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	r := NewStoreResolver(store)

	_, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, account.ErrProvisioning)
}

func TestResolve_RotationFailureIsDistinct(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store)
	ctx := context.Background()

	_, err := r.Resolve(ctx, auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	store.failUpdate = true
	_, err = r.Resolve(ctx, auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, account.ErrProvisioning)
}

func TestResolve_LookupFailureIsNotProvisioning(t *testing.T) {
	store := newFakeStore()
	store.failLookup = true
	r := NewStoreResolver(store)

	_, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrProvisioning)
}

func TestSplitDisplayName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"A B", "A", "B"},
		{"Ada Lovelace Byron", "Ada", "Lovelace Byron"},
		{"Prince", "Prince", ""},
		{"", "", ""},
		{"  Ada Lovelace  ", "Ada", "Lovelace"},
	}
	for _, tt := range tests {
		first, last := splitDisplayName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}
