package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/pocketledger/internal/domain"
)

// UserUseCase registers owners and checks their credentials.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
	cost     int
	// decoy is compared against when the email is unknown so both paths pay for a bcrypt check.
	decoy []byte
}

// NewUserUseCase creates a new UserUseCase hashing at bcrypt.DefaultCost.
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return (&UserUseCase{userRepo: userRepo, idGen: idGen}).WithBcryptCost(bcrypt.DefaultCost)
}

// WithBcryptCost changes the hashing cost for newly registered passwords.
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
	uc.decoy, _ = bcrypt.GenerateFromPassword([]byte("pocketledger-decoy"), uc.cost)
	return uc
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates an owner account. The returned user never carries the hash.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	switch {
	case domain.ValidateEmail(email) != nil:
		return nil, domain.ErrInvalidEmail
	case domain.ValidatePassword(input.Password) != nil:
		return nil, domain.ErrPasswordTooWeak
	case name == "":
		return nil, domain.ErrInvalidUserInput
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// a concurrent registration of the same address loses on the unique index
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return withoutHash(user), nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(uc.decoy, []byte(password))
		return nil, domain.ErrUnauthorized
	case err != nil:
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return withoutHash(user), nil
}

// GetUser loads an owner by id.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return withoutHash(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func withoutHash(user *domain.User) *domain.User {
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
