// Package recipe exposes the recipe-generation and saved-recipe operations
// of the mealforge backend.
package recipe

import (
	"context"
	"fmt"

	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/pkg/apperror"
	"github.com/mealforge/mealforge-go/pkg/retry"
)

type (
	// Gateway is the slice of the API client the recipe service depends on.
	Gateway interface {
		GenerateRecipe(ctx context.Context, request model.GenerateRequest) (model.Recipe, error)
		SavedRecipes(ctx context.Context) ([]model.Recipe, error)
		SaveRecipe(ctx context.Context, recipeID string) error
		UnsaveRecipe(ctx context.Context, recipeID string) error
	}

	Service struct {
		gateway Gateway
		policy  retry.Policy
	}
)

func NewService(gateway Gateway, policy retry.Policy) *Service {
	return &Service{
		gateway: gateway,
		policy:  policy,
	}
}

// Generate asks the backend to generate a recipe. Generation hits an
// upstream AI service that fails transiently under load, so transient
// failures are retried; validation and authentication failures are not.
func (s *Service) Generate(ctx context.Context, request model.GenerateRequest) (model.Recipe, error) {
	if len(request.Ingredients) == 0 {
		return model.Recipe{}, apperror.NewValidation(
			"at least one ingredient is required",
			map[string]string{"ingredients": "required"},
		)
	}

	result, err := retry.Do(ctx, s.policy, func(ctx context.Context) (model.Recipe, error) {
		return s.gateway.GenerateRecipe(ctx, request)
	})
	if err != nil {
		return model.Recipe{}, fmt.Errorf("generate recipe: %w", err)
	}

	return result, nil
}

func (s *Service) Saved(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := s.gateway.SavedRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved recipes: %w", err)
	}

	return recipes, nil
}

func (s *Service) Save(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return apperror.NewValidation("recipe id is required", map[string]string{"recipeId": "required"})
	}

	if err := s.gateway.SaveRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("save recipe: %w", err)
	}

	return nil
}

func (s *Service) Unsave(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return apperror.NewValidation("recipe id is required", map[string]string{"recipeId": "required"})
	}

	if err := s.gateway.UnsaveRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("unsave recipe: %w", err)
	}

	return nil
}
