package identity

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/siesta94/aioc-hospital-microservices/internal/platform/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfDeactivation   = errors.New("you cannot deactivate your own account")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger

	// verify is swappable so tests can observe that it runs on unknown
	// usernames too.
	verify func(password, hash string) bool
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "identity").Logger(),
		verify: auth.CheckPassword,
	}
}

// Authenticate checks credentials against the active user with the given
// role. A bcrypt comparison runs whether or not the username exists, so the
// response time does not leak which usernames are taken.
func (s *Service) Authenticate(ctx context.Context, username, password, role string) (*User, error) {
	user, err := s.repo.FindForLogin(ctx, username, role)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash := auth.DummyHash()
	if user != nil {
		hash = user.HashedPassword
	}
	ok := s.verify(password, hash)

	if user == nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if input.Role != auth.RoleUser && input.Role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:       input.Username,
		HashedPassword: hashed,
		Role:           input.Role,
		IsActive:       true,
		FullName:       input.FullName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, search string, limit, skip int) ([]*User, int, error) {
	return s.repo.List(ctx, search, limit, skip)
}

// UpdateUser applies the non-nil fields of input. Admins cannot deactivate
// themselves through this path either.
func (s *Service) UpdateUser(ctx context.Context, actorID, id int, input UpdateUserInput) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == actorID && input.IsActive != nil && !*input.IsActive {
		return nil, ErrSelfDeactivation
	}

	if input.Password != nil {
		hashed, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}
	if input.Role != nil {
		if *input.Role != auth.RoleUser && *input.Role != auth.RoleAdmin {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.FullName != nil {
		user.FullName = input.FullName
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateUser is the soft delete behind DELETE /api/users/:id.
func (s *Service) DeactivateUser(ctx context.Context, actorID, id int) error {
	if id == actorID {
		return ErrSelfDeactivation
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.repo.Update(ctx, user)
}

// DeleteUserPermanent removes the row entirely.
func (s *Service) DeleteUserPermanent(ctx context.Context, actorID, id int) error {
	if id == actorID {
		return ErrSelfDelete
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// FindActiveByUsername satisfies auth.UserDirectory so the login service can
// run with directory-backed identity resolution.
func (s *Service) FindActiveByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotFound
	}
	return user.Identity(), nil
}

type seedUser struct {
	username string
	password string
	role     string
	fullName string
}

var defaultUsers = []seedUser{
	{username: "user", password: "pass", role: auth.RoleUser, fullName: "Default User"},
	{username: "admin", password: "admin", role: auth.RoleAdmin, fullName: "Default Admin"},
}

// SeedDefaults inserts the development accounts when they are missing.
// Controlled by SEED_DEFAULT_USERS; disable it and delete the rows before
// going to production.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, entry := range defaultUsers {
		_, err := s.repo.GetByUsername(ctx, entry.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		hashed, err := auth.HashPassword(entry.password)
		if err != nil {
			return err
		}
		fullName := entry.fullName
		user := &User{
			Username:       entry.username,
			HashedPassword: hashed,
			Role:           entry.role,
			IsActive:       true,
			FullName:       &fullName,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return err
		}
		s.logger.Info().Str("username", entry.username).Str("role", entry.role).Msg("seeded default user")
	}
	return nil
}
