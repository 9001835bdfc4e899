package services

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"ecofinds/internal/domain"
	applog "ecofinds/internal/log"
	"ecofinds/internal/repos"
)

var (
	ErrBadCreds    = errors.New("invalid email or password")
	ErrEmailExists = errors.New("user with this email already exists")
	ErrNoSession   = errors.New("not logged in")
)

const defaultAvatar = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?w=150&h=150&fit=crop&crop=face"

// AuthService holds the current-user identity and checks credentials
// against a fixed seed directory. Signup never adds to that directory; a
// signed-up user only comes back via the persisted session restore.
type AuthService struct {
	KV *repos.KV
	// Delay simulates network latency on login/signup.
	Delay time.Duration

	mu      sync.Mutex
	seed    []domain.SeedUser
	user    *domain.User
	loading bool
}

type SignupData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

func NewAuthService(kv *repos.KV, delay time.Duration) *AuthService {
	return &AuthService{KV: kv, Delay: delay, seed: seedUsers(), loading: true}
}

func seedUsers() []domain.SeedUser {
	mk := func(id, name, email, avatar, phone, location, bio, raw string) domain.SeedUser {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return domain.SeedUser{
			User: domain.User{
				ID: id, Name: name, Email: email, Avatar: avatar,
				Phone: phone, Location: location, Bio: bio,
			},
			Hash: string(h),
		}
	}

	return []domain.SeedUser{
		mk("1", "John Doe", "john@example.com",
			"https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
			"+1 (555) 123-4567", "New York, NY",
			"Passionate about sustainable living and finding great deals!",
			"password123"),
		mk("2", "Jane Smith", "jane@example.com",
			"https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150&h=150&fit=crop&crop=face",
			"+1 (555) 987-6543", "Los Angeles, CA",
			"Love buying and selling second-hand items to reduce waste.",
			"password123"),
	}
}

// Init restores a persisted session, if any, without re-validating
// credentials.
func (s *AuthService) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var u domain.User
	if s.KV.Load(repos.KeySessionUser, &u) {
		s.user = &u
	}
	s.loading = false
}

// Login checks the seed directory for an exact email+password match. Either
// kind of mismatch yields the same generic error.
func (s *AuthService) Login(email, password string) (*domain.User, error) {
	s.setLoading(true)
	time.Sleep(s.Delay)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	for _, su := range s.seed {
		if su.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(su.Hash), []byte(password)) != nil {
			return nil, ErrBadCreds
		}
		u := su.User
		s.KV.Save(repos.KeySessionUser, u)
		s.user = &u
		applog.Audit(nil, "auth.login", map[string]any{"user_id": u.ID})
		return &u, nil
	}
	return nil, ErrBadCreds
}

// Signup rejects emails already present in the seed directory, mints a
// timestamp-derived id, and persists the sanitized record as the session.
func (s *AuthService) Signup(data SignupData) (*domain.User, error) {
	s.setLoading(true)
	time.Sleep(s.Delay)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	for _, su := range s.seed {
		if su.Email == data.Email {
			return nil, ErrEmailExists
		}
	}

	u := domain.User{
		ID:       ulid.Make().String(),
		Name:     data.Name,
		Email:    data.Email,
		Avatar:   defaultAvatar,
		Phone:    data.Phone,
		Location: data.Location,
		Bio:      data.Bio,
	}
	s.KV.Save(repos.KeySessionUser, u)
	s.user = &u
	applog.Audit(nil, "auth.signup", map[string]any{"user_id": u.ID})
	return &u, nil
}

func (s *AuthService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.KV.Remove(repos.KeySessionUser)
	s.user = nil
	s.loading = false
}

// UpdateProfile merges the patch into the current user and persists the
// result. Identity (id, avatar) is untouched.
func (s *AuthService) UpdateProfile(patch domain.ProfilePatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, ErrNoSession
	}
	if patch.Name != nil {
		s.user.Name = *patch.Name
	}
	if patch.Email != nil {
		s.user.Email = *patch.Email
	}
	if patch.Phone != nil {
		s.user.Phone = *patch.Phone
	}
	if patch.Location != nil {
		s.user.Location = *patch.Location
	}
	if patch.Bio != nil {
		s.user.Bio = *patch.Bio
	}
	s.KV.Save(repos.KeySessionUser, *s.user)
	u := *s.user
	return &u, nil
}

// CurrentUser returns a copy of the session user, or nil when anonymous.
func (s *AuthService) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AuthService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
