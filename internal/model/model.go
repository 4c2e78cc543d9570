// Package model holds the shared data types of the mealforge client.
package model

import "time"

type (
	// Profile is the server's representation of an account, cached by the
	// session manager while the session is alive.
	Profile struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		Email        string      `json:"email"`
		Preferences  Preferences `json:"preferences"`
		SavedRecipes []string    `json:"savedRecipes"`
		CreatedAt    time.Time   `json:"createdAt"`
		LastLoginAt  *time.Time  `json:"lastLoginAt,omitempty"`
	}

	Preferences struct {
		DietaryRestrictions []string `json:"dietaryRestrictions"`
		FavoriteCuisines    []string `json:"favoriteCuisines"`
		SkillLevel          string   `json:"skillLevel"`
	}

	// Session pairs a bearer token with the profile it authenticates. The
	// two are always written and cleared together.
	Session struct {
		Token   string  `json:"token"`
		Profile Profile `json:"user"`
	}

	// Registration is the input of the register operation. Omitted
	// preferences get server-assigned defaults.
	Registration struct {
		Name        string       `json:"name"`
		Email       string       `json:"email"`
		Password    string       `json:"password"`
		Preferences *Preferences `json:"preferences,omitempty"`
	}

	// ProfileUpdate is a partial profile change. Nil fields are left
	// untouched by the server.
	ProfileUpdate struct {
		Name        *string      `json:"name,omitempty"`
		Email       *string      `json:"email,omitempty"`
		Preferences *Preferences `json:"preferences,omitempty"`
	}
)

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Preferences == nil
}

type (
	Recipe struct {
		ID           string       `json:"id"`
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		Cuisine      string       `json:"cuisine"`
		Ingredients  []Ingredient `json:"ingredients"`
		Instructions []string     `json:"instructions"`
		PrepMinutes  int          `json:"prepMinutes"`
		Servings     int          `json:"servings"`
	}

	Ingredient struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
	}

	// GenerateRequest describes what the recipe generator should cook up.
	GenerateRequest struct {
		Ingredients []string     `json:"ingredients"`
		Cuisine     string       `json:"cuisine,omitempty"`
		Preferences *Preferences `json:"preferences,omitempty"`
	}
)
