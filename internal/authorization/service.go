package authorization

import (
	"context"

	"github.com/smallbiznis/royalti/internal/principal"
)

type Service interface {
	Authorize(ctx context.Context, role principal.Role, object string, action string) error
}
