package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mealforge/mealforge-go/internal/model"
)

const (
	generateRecipeURL = "/recipes/generate"
	savedRecipesURL   = "/recipes/saved"
)

func (c *Client) GenerateRecipe(ctx context.Context, request model.GenerateRequest) (model.Recipe, error) {
	doc, err := c.send(ctx, true, http.MethodPost, generateRecipeURL, request)
	if err != nil {
		return model.Recipe{}, err
	}

	return decodeEntity[model.Recipe](doc, "recipe")
}

func (c *Client) SavedRecipes(ctx context.Context) ([]model.Recipe, error) {
	doc, err := c.send(ctx, true, http.MethodGet, savedRecipesURL, nil)
	if err != nil {
		return nil, err
	}

	return decodeEntityList[model.Recipe](doc, "recipes")
}

func (c *Client) SaveRecipe(ctx context.Context, recipeID string) error {
	_, err := c.send(ctx, true, http.MethodPost, saveRecipeURL(recipeID), nil)
	return err
}

func (c *Client) UnsaveRecipe(ctx context.Context, recipeID string) error {
	_, err := c.send(ctx, true, http.MethodDelete, saveRecipeURL(recipeID), nil)
	return err
}

func saveRecipeURL(recipeID string) string {
	return fmt.Sprintf("/recipes/%s/save", url.PathEscape(recipeID))
}
