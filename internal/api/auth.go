package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/pkg/payload"
)

const (
	loginURL          = "/auth/login"
	registerURL       = "/auth/register"
	logoutURL         = "/auth/logout"
	meURL             = "/auth/me"
	profileURL        = "/auth/profile"
	changePasswordURL = "/auth/change-password"
)

func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	doc, err := c.send(ctx, false, http.MethodPost, loginURL, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return model.Session{}, err
	}

	return c.sessionFromResponse(doc)
}

func (c *Client) Register(ctx context.Context, registration model.Registration) (model.Session, error) {
	doc, err := c.send(ctx, false, http.MethodPost, registerURL, registration)
	if err != nil {
		return model.Session{}, err
	}

	return c.sessionFromResponse(doc)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, true, http.MethodPost, logoutURL, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (model.Profile, error) {
	doc, err := c.send(ctx, true, http.MethodGet, meURL, nil)
	if err != nil {
		return model.Profile{}, err
	}

	return decodeEntity[model.Profile](doc, "user")
}

func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Profile, error) {
	doc, err := c.send(ctx, true, http.MethodPut, profileURL, update)
	if err != nil {
		return model.Profile{}, err
	}

	return decodeEntity[model.Profile](doc, "user")
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := c.send(ctx, true, http.MethodPut, changePasswordURL, map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
	return err
}

// sessionFromResponse decodes the {token, user} credential payload. The
// token drives control flow, so its absence is a hard validation failure
// rather than a silent default.
func (c *Client) sessionFromResponse(doc payload.Document) (model.Session, error) {
	obj, err := payload.Extract(doc, payload.KindObject)
	if err != nil {
		return model.Session{}, fmt.Errorf("credential response: %w", err)
	}

	credentials, ok := obj.(map[string]any)
	if !ok {
		return model.Session{}, fmt.Errorf("credential response: unexpected payload shape")
	}
	if err := payload.RequireFields(credentials, "token", "user"); err != nil {
		return model.Session{}, fmt.Errorf("credential response: %w", err)
	}

	profile, err := decodeEntity[model.Profile](doc, "user")
	if err != nil {
		return model.Session{}, fmt.Errorf("credential response: %w", err)
	}

	return model.Session{
		Token:   payload.String(credentials["token"], ""),
		Profile: profile,
	}, nil
}
