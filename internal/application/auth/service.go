package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/dultive/dultive-api/internal/domain"
	"github.com/dultive/dultive-api/internal/pkg/brdoc"
	"github.com/dultive/dultive-api/internal/pkg/id"
	"github.com/dultive/dultive-api/internal/pkg/keylock"
	"github.com/dultive/dultive-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 12

type Service interface {
	// RequestVerificationCode issues a fresh 6-digit code for the email and
	// delivers it through the mailer. Resends inside the resend interval are
	// rejected with a RetryAfterError.
	RequestVerificationCode(ctx context.Context, email string) error
	// Register consumes a pending verification code and, if it matches,
	// promotes the registration into a durable verified account.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	// Login checks credentials and issues a signed bearer token.
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.EmailVerification) error
	Get(ctx context.Context, email string) (*domain.EmailVerification, error)
	Delete(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
}

type mailer interface {
	SendEmail(to, subject, text, html string) error
}

type tokenSigner interface {
	Sign(userID, userType string) (string, error)
}

type service struct {
	userRepo         userStore
	verificationRepo verificationStore
	mailer           mailer
	signer           tokenSigner
	codeTTL          time.Duration
	resendInterval   time.Duration
	maxAttempts      int
	emailLocks       *keylock.KeyLock
}

type ServiceDeps struct {
	UserRepo         userStore
	VerificationRepo verificationStore
	Mailer           mailer
	JWTProvider      tokenSigner
	CodeTTL          time.Duration
	ResendInterval   time.Duration
	MaxAttempts      int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:         deps.UserRepo,
		verificationRepo: deps.VerificationRepo,
		mailer:           deps.Mailer,
		signer:           deps.JWTProvider,
		codeTTL:          deps.CodeTTL,
		resendInterval:   deps.ResendInterval,
		maxAttempts:      deps.MaxAttempts,
		emailLocks:       keylock.New(),
	}
}

func (s *service) RequestVerificationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	resends := 0
	if prev, err := s.verificationRepo.Get(ctx, email); err == nil {
		wait := s.resendInterval - time.Since(time.Unix(prev.LastSentAt, 0))
		if wait > 0 {
			seconds := int((wait + time.Second - 1) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			return &domain.RetryAfterError{Seconds: seconds}
		}
		resends = prev.Resends + 1
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	now := time.Now()
	ticket := &domain.EmailVerification{
		Email:      email,
		CodeHash:   hashCode(email, code),
		ExpiresAt:  now.Add(s.codeTTL).Unix(),
		Attempts:   0,
		Resends:    resends,
		LastSentAt: now.Unix(),
	}
	if err := s.verificationRepo.Put(ctx, ticket); err != nil {
		return err
	}

	// The ticket is already persisted; a delivery failure is reported but not
	// rolled back, so a retry hits the resend throttle instead of re-sending
	// immediately.
	subject, text, html := verificationEmail(code)
	if err := s.mailer.SendEmail(email, subject, text, html); err != nil {
		slog.Error("verification email delivery failed", "email", email, "err", err)
		return fmt.Errorf("could not send verification email, try again later: %w", domain.ErrDeliveryFailed)
	}
	return nil
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.UserType != domain.UserTypePerson && req.UserType != domain.UserTypeCompany {
		return nil, fmt.Errorf("invalid user type: %w", domain.ErrBadRequest)
	}
	email := normalizeEmail(req.Email)

	cpf := trimmed(req.CPF)
	cnpj := trimmed(req.CNPJ)
	if req.UserType == domain.UserTypePerson && cpf != nil && !brdoc.ValidCPF(*cpf) {
		return nil, fmt.Errorf("invalid CPF: %w", domain.ErrBadRequest)
	}

	// Serialize match-then-promote per email so two concurrent submissions of
	// the same valid code cannot both pass validation before one deletes the
	// ticket. The store's unique constraints stay as the cross-process arbiter.
	s.emailLocks.Lock(email)
	defer s.emailLocks.Unlock(email)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	ticket, err := s.verificationRepo.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("no pending verification for this email, request a code first: %w", domain.ErrBadRequest)
	}
	if time.Now().Unix() > ticket.ExpiresAt {
		s.discardTicket(ctx, email)
		return nil, fmt.Errorf("verification code expired, request a new one: %w", domain.ErrBadRequest)
	}
	if ticket.Attempts >= s.maxAttempts {
		s.discardTicket(ctx, email)
		return nil, fmt.Errorf("too many failed attempts, request a new code: %w", domain.ErrBadRequest)
	}
	if !codeMatches(ticket.CodeHash, email, strings.TrimSpace(req.VerificationCode)) {
		if _, incErr := s.verificationRepo.IncrementAttempts(ctx, email); incErr != nil {
			slog.Warn("could not record failed verification attempt", "email", email, "err", incErr)
		}
		return nil, fmt.Errorf("invalid verification code: %w", domain.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		UserType:     req.UserType,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch req.UserType {
	case domain.UserTypePerson:
		u.CPF = cpf
	case domain.UserTypeCompany:
		u.CNPJ = cnpj
	}

	// On a uniqueness conflict the ticket is left intact so the legitimate
	// owner is not locked out by a racing registration with the same document.
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.verificationRepo.Delete(ctx, email); err != nil {
		slog.Warn("could not delete consumed verification ticket", "email", email, "err", err)
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return "", nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := normalizeEmail(req.Email)

	// Unknown email and wrong password intentionally share one message so the
	// endpoint cannot be used to enumerate accounts.
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrBadRequest)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrBadRequest)
	}

	token, err := s.signer.Sign(u.UserID, u.UserType)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) discardTicket(ctx context.Context, email string) {
	if err := s.verificationRepo.Delete(ctx, email); err != nil {
		slog.Warn("could not delete dead verification ticket", "email", email, "err", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// generateCode returns a uniformly random 6-digit code in [100000, 999999],
// so it never starts with a zero.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hashCode digests the code with the normalized email as salt. Only this hash
// is persisted; matching the stored hash is the only acceptance path.
func hashCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

func codeMatches(storedHash, email, code string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashCode(email, code))) == 1
}

func verificationEmail(code string) (subject, text, html string) {
	subject = "Your Dultive verification code"
	text = fmt.Sprintf("Hello!\n\nYour Dultive verification code is: %s.\nThe code expires in a few minutes. If you did not request it, just ignore this email.\n\nDultive team", code)
	html = fmt.Sprintf("<p>Hello!</p><p>Your Dultive verification code is: <strong>%s</strong>.</p><p>The code expires in a few minutes. If you did not request it, just ignore this email.</p><p>Dultive team</p>", code)
	return subject, text, html
}
