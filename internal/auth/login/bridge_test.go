package login

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/account"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/guard"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/auth/resolver"
	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const appURL = "https://app.example.com"

type fakeAccounts struct {
	byEmail map[string]*account.Account
	nextID  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*account.Account{}}
}

func (f *fakeAccounts) add(email, password string, method auth.Method) *account.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	f.nextID++
	acct := &account.Account{
		ID:           fmt.Sprintf("acct-%d", f.nextID),
		Email:        email,
		LoginMethod:  method,
		PasswordHash: string(hash),
	}
	f.byEmail[strings.ToLower(email)] = acct
	return acct
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	acct, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *acct
	return &copied, nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*account.Account, error) {
	for _, acct := range f.byEmail {
		if acct.ID == id {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, account.ErrNotFound
}

func (f *fakeAccounts) Create(_ context.Context, n account.New) (*account.Account, error) {
	acct := f.add(n.Email, n.Password, n.LoginMethod)
	acct.FirstName = n.FirstName
	acct.LastName = n.LastName
	acct.Activated = n.Activated
	copied := *acct
	return &copied, nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id string, password string) error {
	for _, acct := range f.byEmail {
		if acct.ID == id {
			hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			acct.PasswordHash = string(hash)
			return nil
		}
	}
	return account.ErrNotFound
}

func (f *fakeAccounts) MarkVerified(_ context.Context, id string) error {
	for _, acct := range f.byEmail {
		if acct.ID == id {
			acct.Verified = true
			return nil
		}
	}
	return account.ErrNotFound
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id string, upd account.ProfileUpdate) error {
	return nil
}

type fakeSessions struct {
	created []session.Session
	failing bool
}

func (f *fakeSessions) Create(_ context.Context, s session.Session) error {
	if f.failing {
		return fmt.Errorf("redis down")
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	for _, s := range f.created {
		if s.SessionID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error { return nil }

func testRequestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestAuthenticate_PasswordLogin(t *testing.T) {
	accounts := newFakeAccounts()
	acct := accounts.add("a@x.com", "correct horse", auth.MethodEmailAndPassword)
	svc := NewService(accounts, &fakeSessions{}, appURL)
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, "a@x.com", "correct horse", Context{})
	require.NoError(t, err)
	assert.Equal(t, acct.ID, id)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong", Context{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "whatever", Context{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_GuardBlocksWrongMethod(t *testing.T) {
	accounts := newFakeAccounts()
	accounts.add("a@x.com", "legacy password", auth.MethodApple)
	svc := NewService(accounts, &fakeSessions{}, appURL)

	// Correct credential, but the account is bound to apple and the
	// request declared no method, which defaults to emailAndPassword.
	_, err := svc.Authenticate(context.Background(), "a@x.com", "legacy password", Context{})

	require.Error(t, err)
	assert.ErrorIs(t, err, guard.ErrMethodMismatch)
}

func TestAuthenticate_DynamicCredentialIsSingleUse(t *testing.T) {
	accounts := newFakeAccounts()
	r := resolver.NewStoreResolver(accounts)
	svc := NewService(accounts, &fakeSessions{}, appURL)
	ctx := context.Background()
	claims := &auth.Claims{Email: "a@x.com", DisplayName: "A B"}
	lc := Context{Method: auth.MethodGoogle}

	first, err := r.Resolve(ctx, auth.MethodGoogle, claims)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", first.DynamicPassword, lc)
	require.NoError(t, err)

	// A second resolution rotates the credential; the consumed value no
	// longer authenticates, the new one does.
	second, err := r.Resolve(ctx, auth.MethodGoogle, claims)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", first.DynamicPassword, lc)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "a@x.com", second.DynamicPassword, lc)
	assert.NoError(t, err)
}

func TestLoginWithSSO_JSONSuccess(t *testing.T) {
	accounts := newFakeAccounts()
	sessions := &fakeSessions{}
	r := resolver.NewStoreResolver(accounts)
	svc := NewService(accounts, sessions, appURL)

	res, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	c, w := testRequestContext(t)
	svc.LoginWithSSO(c, res, auth.MethodGoogle, DeliverJSON)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication successful")
	require.Len(t, sessions.created, 1)
	assert.Equal(t, res.Account.ID, sessions.created[0].UserID)
	assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName)
}

func TestLoginWithSSO_JSONMethodMismatch(t *testing.T) {
	accounts := newFakeAccounts()
	r := resolver.NewStoreResolver(accounts)
	svc := NewService(accounts, &fakeSessions{}, appURL)
	ctx := context.Background()

	// Account created via apple; google presents the same email.
	_, err := r.Resolve(ctx, auth.MethodApple, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)
	res, err := r.Resolve(ctx, auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	c, w := testRequestContext(t)
	svc.LoginWithSSO(c, res, auth.MethodGoogle, DeliverJSON)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "same method")
}

func TestLoginWithSSO_RedirectModes(t *testing.T) {
	accounts := newFakeAccounts()
	sessions := &fakeSessions{}
	r := resolver.NewStoreResolver(accounts)
	svc := NewService(accounts, sessions, appURL)

	res, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	c, w := testRequestContext(t)
	svc.LoginWithSSO(c, res, auth.MethodGoogle, DeliverRedirect)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, appURL, w.Header().Get("Location"))

	// Stale credential (already consumed by the rotation above plus a
	// fresh resolve) fails with the error redirect.
	_, err = r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	c, w = testRequestContext(t)
	svc.LoginWithSSO(c, res, auth.MethodGoogle, DeliverRedirect)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, appURL+"?error=true", w.Header().Get("Location"))
}

func TestLoginWithSSO_SessionStoreFailure(t *testing.T) {
	accounts := newFakeAccounts()
	sessions := &fakeSessions{failing: true}
	r := resolver.NewStoreResolver(accounts)
	svc := NewService(accounts, sessions, appURL)

	res, err := r.Resolve(context.Background(), auth.MethodGoogle, &auth.Claims{Email: "a@x.com"})
	require.NoError(t, err)

	c, w := testRequestContext(t)
	svc.LoginWithSSO(c, res, auth.MethodGoogle, DeliverJSON)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication failed")
}

func TestLocaleFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "en", LocaleFrom(r))

	r.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	assert.Equal(t, "de", LocaleFrom(r))

	r.Header.Set("Accept-Language", "fr-FR")
	assert.Equal(t, "en", LocaleFrom(r))
}
