package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	CurrentUser(ctx context.Context) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	ListUsers(ctx context.Context, req ListUsersRequest) (ListUsersResponse, error)
	UpdateRole(ctx context.Context, userID snowflake.ID, role principal.Role) (*User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)
}

type SignUpRequest struct {
	Email    string
	Password string
	FullName string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

type ListUsersRequest struct {
	PageToken string
	PageSize  int32
	Search    string
}

type ListUsersResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

// UpdateProfileRequest changes the caller's own profile. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Website   *string
}
