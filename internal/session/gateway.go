//go:generate ${TOOLS_BIN}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Gateway=Gateway"
package session

import (
	"context"

	"github.com/mealforge/mealforge-go/internal/model"
)

// Gateway is the slice of the API client the session manager depends on.
// Errors returned by implementations must already be classified.
type Gateway interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, registration model.Registration) (model.Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (model.Profile, error)
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Profile, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}
