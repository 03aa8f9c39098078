package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/royalti/internal/auth/domain"
	"github.com/smallbiznis/royalti/internal/auth/password"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/smallbiznis/royalti/internal/principal"
	dbpkg "github.com/smallbiznis/royalti/pkg/db"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,32}$`)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Repo        domain.Repository
	SessionRepo domain.SessionRepository
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	repo            domain.Repository
	sessionRepo     domain.SessionRepository
	superAdminEmail string
	now             func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("auth.service"),
		genID:           p.GenID,
		repo:            p.Repo,
		sessionRepo:     p.SessionRepo,
		superAdminEmail: p.Cfg.SuperAdminEmail,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SignUp registers a local account. The very first account, and the account
// matching the configured super admin email, are granted super_admin.
func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, domain.ErrWeakPassword
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindByEmail(ctx, tx, email); err == nil {
			return domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}

		role := principal.RoleUser
		if count == 0 || (s.superAdminEmail != "" && email == s.superAdminEmail) {
			role = principal.RoleSuperAdmin
		}

		now := s.now()
		fullName := strings.TrimSpace(req.FullName)
		if fullName == "" {
			fullName = defaultFullName(email)
		}
		user = &domain.User{
			ID:           s.genID.Generate(),
			ExternalID:   uuid.NewString(),
			Email:        email,
			FullName:     fullName,
			Role:         role,
			PasswordHash: &hashed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Create(ctx, tx, user)
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		s.log.Debug("invalid credentials", zap.String("user_id", user.ID.String()))
		return nil, domain.ErrInvalidCredentials
	}

	if password.NeedsRehash(*user.PasswordHash) {
		if hashed, err := password.Hash(req.Password); err == nil {
			if err := s.repo.UpdateFields(ctx, s.db, user.ID, map[string]any{"password_hash": hashed}); err != nil {
				s.log.Warn("password rehash failed", zap.Error(err))
			}
		}
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	if session.RevokedAt != nil {
		return nil
	}

	return s.sessionRepo.RevokeSession(ctx, s.db, session.ID, s.now())
}

// Authenticate resolves a raw session token to its user.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.User, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, s.db, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, s.db, session.ID, now); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, s.db, p.UserID)
}

// GetUser is restricted to the user themself and admins.
func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if p.UserID != id && !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) ListUsers(ctx context.Context, req domain.ListUsersRequest) (domain.ListUsersResponse, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return domain.ListUsersResponse{}, domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return domain.ListUsersResponse{}, domain.ErrForbidden
	}

	page := pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(req.PageSize),
	}
	if page.PageSize <= 0 {
		page.PageSize = pagination.DefaultPageSize
	}

	items, err := s.repo.List(ctx, s.db, req.Search, page)
	if err != nil {
		return domain.ListUsersResponse{}, err
	}

	users, pageInfo := pagination.Trim(items, page.PageSize, func(u *domain.User) pagination.Cursor {
		return pagination.NewCursor(u.ID.String(), u.CreatedAt)
	})
	return domain.ListUsersResponse{PageInfo: pageInfo, Users: users}, nil
}

// UpdateRole changes another user's role. Only super admins may grant or
// revoke admin roles; admins may not change roles at all.
func (s *Service) UpdateRole(ctx context.Context, userID snowflake.ID, role principal.Role) (*domain.User, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if _, valid := principal.ParseRole(string(role)); !valid {
		return nil, domain.ErrInvalidRole
	}
	if !p.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	target, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !principal.IsSuperAdmin(p.Role) && (principal.IsAdmin(role) || principal.IsAdmin(target.Role)) {
		return nil, domain.ErrForbidden
	}
	if target.ID == p.UserID && role != target.Role {
		return nil, domain.ErrForbidden
	}

	if err := s.repo.UpdateFields(ctx, s.db, userID, map[string]any{
		"role":       role,
		"updated_at": s.now(),
	}); err != nil {
		return nil, err
	}

	s.log.Info("user role updated",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
		zap.String("by", p.UserID.String()),
	)
	return s.repo.FindByID(ctx, s.db, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	fields := map[string]any{}
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if !usernamePattern.MatchString(username) {
			return nil, domain.ErrInvalidUsername
		}
		existing, err := s.repo.FindByUsername(ctx, s.db, username)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != p.UserID {
			return nil, domain.ErrUsernameTaken
		}
		fields["username"] = username
	}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.AvatarURL != nil {
		value, err := normalizeURL(*req.AvatarURL)
		if err != nil {
			return nil, err
		}
		fields["avatar_url"] = value
	}
	if req.Website != nil {
		value, err := normalizeURL(*req.Website)
		if err != nil {
			return nil, err
		}
		fields["website"] = value
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.repo.UpdateFields(ctx, s.db, p.UserID, fields); err != nil {
			if dbpkg.IsDuplicateKeyErr(err) {
				return nil, domain.ErrUsernameTaken
			}
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, s.db, p.UserID)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ErrInvalidURL
	}
	return u.String(), nil
}

func defaultFullName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
