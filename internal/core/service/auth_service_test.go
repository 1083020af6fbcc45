package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobzen/identity-service/internal/core/domain"
	"github.com/jobzen/identity-service/internal/core/ports"
)

type stubUserRepo struct {
	seq   int
	users map[string]*domain.User

	providerUpdates int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.seq)
	clone.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	clone.UpdatedAt = clone.CreatedAt
	r.users[clone.ID] = cloneUser(clone)
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.users {
		if u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) FindManaged(_ context.Context, managerID, role string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.CreatedByID != managerID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, cloneUser(u))
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdateProvider(_ context.Context, id, provider, providerID, avatarURL string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	r.providerUpdates++
	u.Provider = provider
	u.ProviderID = providerID
	u.AvatarURL = avatarURL
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id, role string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) UpdateResetToken(_ context.Context, id, token string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetToken = token
	u.ResetExpires = expires
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	u.ResetExpires = time.Time{}
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, patch ports.ProfilePatch) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	return nil
}

type stubNotifier struct {
	sent []struct{ to, token string }
	err  error
}

func (n *stubNotifier) SendPasswordResetEmail(_ context.Context, to, token string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, struct{ to, token string }{to, token})
	return nil
}

func newAuthService(repo *stubUserRepo, notifier *stubNotifier) ports.AuthService {
	return NewAuthService(repo, NewTokenIssuer("secret", time.Hour), notifier, nil, nil, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "alice@example.com",
		Password: "pass123",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.User.Role != domain.RoleClient {
		t.Fatalf("expected default role client, got %s", result.User.Role)
	}
	if result.User.PasswordHash != "" {
		t.Fatalf("returned user carries password hash")
	}

	stored, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_TokenClaims(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "bob@example.com",
		Password: "pass123",
		Name:     "Bob",
		Role:     domain.RoleEmployer,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != result.User.ID {
		t.Fatalf("expected sub %s, got %v", result.User.ID, claims["sub"])
	}
	if claims["email"] != "bob@example.com" {
		t.Fatalf("unexpected email claim: %v", claims["email"])
	}
	if claims["role"] != domain.RoleEmployer {
		t.Fatalf("unexpected role claim: %v", claims["role"])
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	input := ports.RegisterInput{Email: "bob@example.com", Password: "pass123", Name: "Bob"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "carol@example.com", Password: "s3cret", Name: "Carol",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.User.PasswordHash != "" || result.User.ResetToken != "" {
		t.Fatalf("login response leaks credential state")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "dave@example.com", Password: "goodpass", Name: "Dave"})
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	// Unknown email reports the same error as a wrong password.
	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	if _, err := svc.OAuthLogin(context.Background(), ports.ExternalIdentity{
		Email: "erin@example.com", Provider: "github", ProviderID: "42",
	}); err != nil {
		t.Fatalf("oauth login failed: %v", err)
	}

	// An account without a password hash can never log in locally, not
	// even with an empty password.
	if _, err := svc.Login(context.Background(), "erin@example.com", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_OAuthLogin_CreatesUnassigned(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	result, err := svc.OAuthLogin(context.Background(), ports.ExternalIdentity{
		Email:      "frank@example.com",
		Provider:   "github",
		ProviderID: "1337",
		FirstName:  "Frank",
		LastName:   "Ocean",
		AvatarURL:  "https://avatars.example.com/frank",
	})
	if err != nil {
		t.Fatalf("oauth login failed: %v", err)
	}
	if result.User.Role != domain.RoleUnassigned {
		t.Fatalf("expected role unassigned, got %s", result.User.Role)
	}
	if result.User.Name != "Frank Ocean" {
		t.Fatalf("unexpected composed name: %q", result.User.Name)
	}

	stored, _ := repo.FindByEmail(context.Background(), "frank@example.com")
	if stored.PasswordHash != "" {
		t.Fatalf("oauth account should have no password hash")
	}
	if stored.Provider != "github" || stored.ProviderID != "1337" {
		t.Fatalf("provider fields not persisted: %+v", stored)
	}
}

func TestAuthService_OAuthLogin_SameProviderNoMutation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	identity := ports.ExternalIdentity{Email: "gina@example.com", Provider: "github", ProviderID: "7"}
	if _, err := svc.OAuthLogin(context.Background(), identity); err != nil {
		t.Fatalf("first oauth login failed: %v", err)
	}
	if _, err := svc.OAuthLogin(context.Background(), identity); err != nil {
		t.Fatalf("second oauth login failed: %v", err)
	}

	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(repo.users))
	}
	if repo.providerUpdates != 0 {
		t.Fatalf("matching provider must not be rewritten, got %d updates", repo.providerUpdates)
	}
}

func TestAuthService_OAuthLogin_RelinksProvider(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	// Local account without an external identity.
	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "hank@example.com", Password: "pass123", Name: "Hank",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.OAuthLogin(context.Background(), ports.ExternalIdentity{
		Email: "hank@example.com", Provider: "google", ProviderID: "g-9", AvatarURL: "https://lh3.example.com/hank",
	}); err != nil {
		t.Fatalf("oauth login failed: %v", err)
	}

	stored, _ := repo.FindByEmail(context.Background(), "hank@example.com")
	if stored.Provider != "google" || stored.ProviderID != "g-9" {
		t.Fatalf("provider not relinked: %+v", stored)
	}
	// Re-linking must not destroy the local credential.
	if stored.PasswordHash == "" {
		t.Fatalf("password hash lost during relink")
	}
}

func TestAuthService_ForgotPassword_AntiEnumeration(t *testing.T) {
	repo := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newAuthService(repo, notifier)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "iris@example.com", Password: "pass123", Name: "Iris"})

	known, err := svc.ForgotPassword(context.Background(), "iris@example.com")
	if err != nil {
		t.Fatalf("forgot password (known) failed: %v", err)
	}
	unknown, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("forgot password (unknown) failed: %v", err)
	}
	if known != unknown {
		t.Fatalf("messages differ: %q vs %q", known, unknown)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(notifier.sent))
	}
}

func TestAuthService_ForgotPassword_SetsTokenAndExpiry(t *testing.T) {
	repo := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newAuthService(repo, notifier)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "judy@example.com", Password: "pass123", Name: "Judy"})

	before := time.Now()
	if _, err := svc.ForgotPassword(context.Background(), "judy@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}

	stored, _ := repo.FindByEmail(context.Background(), "judy@example.com")
	if stored.ResetToken == "" {
		t.Fatalf("reset token not persisted")
	}
	if notifier.sent[0].token != stored.ResetToken {
		t.Fatalf("emailed token %q differs from stored %q", notifier.sent[0].token, stored.ResetToken)
	}
	min := before.Add(59 * time.Minute)
	max := time.Now().Add(61 * time.Minute)
	if stored.ResetExpires.Before(min) || stored.ResetExpires.After(max) {
		t.Fatalf("expiry %v not within the 1-hour window", stored.ResetExpires)
	}
}

func TestAuthService_ForgotPassword_DeliveryFailurePropagates(t *testing.T) {
	repo := newStubUserRepo()
	notifier := &stubNotifier{err: errors.New("smtp: connection refused")}
	svc := newAuthService(repo, notifier)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "kate@example.com", Password: "pass123", Name: "Kate"})

	if _, err := svc.ForgotPassword(context.Background(), "kate@example.com"); !errors.Is(err, domain.ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
}

func TestAuthService_ResetPassword_SingleUse(t *testing.T) {
	repo := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newAuthService(repo, notifier)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Email: "liam@example.com", Password: "oldpass", Name: "Liam"})
	_, _ = svc.ForgotPassword(context.Background(), "liam@example.com")
	token := notifier.sent[0].token

	msg, err := svc.ResetPassword(context.Background(), token, "newpass")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if msg != ResetPasswordMessage {
		t.Fatalf("unexpected message: %q", msg)
	}

	if _, err := svc.Login(context.Background(), "liam@example.com", "newpass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "liam@example.com", "oldpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}

	// Replaying the consumed token must fail.
	if _, err := svc.ResetPassword(context.Background(), token, "another"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken on replay, got %v", err)
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	result, _ := svc.Register(context.Background(), ports.RegisterInput{Email: "mia@example.com", Password: "pass123", Name: "Mia"})
	_ = repo.UpdateResetToken(context.Background(), result.User.ID, "stale-token", time.Now().Add(-time.Second))

	if _, err := svc.ResetPassword(context.Background(), "stale-token", "newpass"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_ResetPassword_UnknownToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubNotifier{})

	if _, err := svc.ResetPassword(context.Background(), "no-such-token", "newpass"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

type stubGuard struct {
	consumed map[string]bool
}

func (g *stubGuard) Consume(_ context.Context, token string) (bool, error) {
	if g.consumed == nil {
		g.consumed = make(map[string]bool)
	}
	if g.consumed[token] {
		return false, nil
	}
	g.consumed[token] = true
	return true, nil
}

func TestAuthService_ResetPassword_GuardBlocksSecondConsumer(t *testing.T) {
	repo := newStubUserRepo()
	notifier := &stubNotifier{}
	guard := &stubGuard{}
	svc := NewAuthService(repo, NewTokenIssuer("secret", time.Hour), notifier, guard, nil, zerolog.Nop())

	result, _ := svc.Register(context.Background(), ports.RegisterInput{Email: "nina@example.com", Password: "pass123", Name: "Nina"})
	_, _ = svc.ForgotPassword(context.Background(), "nina@example.com")
	token := notifier.sent[0].token

	// Simulate a racing request that consumed the token first.
	if ok, _ := guard.Consume(context.Background(), token); !ok {
		t.Fatalf("pre-consume failed")
	}

	if _, err := svc.ResetPassword(context.Background(), token, "newpass"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}

	// The losing request must not have changed the credential.
	if _, err := svc.Login(context.Background(), "nina@example.com", "pass123"); err != nil {
		t.Fatalf("original password no longer valid: %v", err)
	}
	_ = result
}
