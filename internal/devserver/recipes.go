package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mealforge/mealforge-go/internal/model"
)

func (s *Server) handleGenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var request model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if len(request.Ingredients) == 0 {
		writeError(w, http.StatusBadRequest, "at least one ingredient is required",
			map[string]string{"ingredients": "required"})
		return
	}

	generated := canned(request)

	s.mu.Lock()
	s.recipeStore[generated.ID] = generated
	s.mu.Unlock()

	// The production backend wraps generation results one level deeper than
	// the auth endpoints. Keep the same shape so clients are exercised
	// against it.
	writeData(w, http.StatusOK, map[string]any{"data": map[string]any{"recipe": generated}})
}

func (s *Server) handleSavedRecipes(w http.ResponseWriter, r *http.Request) {
	acc := accountFromContext(r.Context())

	s.mu.Lock()
	recipes := make([]model.Recipe, 0, len(acc.profile.SavedRecipes))
	for _, id := range acc.profile.SavedRecipes {
		if recipe, ok := s.recipeStore[id]; ok {
			recipes = append(recipes, recipe)
		}
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (s *Server) handleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := mux.Vars(r)["recipeID"]
	acc := accountFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipeStore[recipeID]; !ok {
		writeError(w, http.StatusNotFound, "recipe not found", nil)
		return
	}

	for _, id := range acc.profile.SavedRecipes {
		if id == recipeID {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	acc.profile.SavedRecipes = append(acc.profile.SavedRecipes, recipeID)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnsaveRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := mux.Vars(r)["recipeID"]
	acc := accountFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := acc.profile.SavedRecipes[:0]
	for _, id := range acc.profile.SavedRecipes {
		if id != recipeID {
			saved = append(saved, id)
		}
	}
	acc.profile.SavedRecipes = saved

	w.WriteHeader(http.StatusNoContent)
}

// canned deterministically builds a plausible recipe from the request. Good
// enough for development; the real generator lives behind the production
// backend.
func canned(request model.GenerateRequest) model.Recipe {
	ingredients := make([]model.Ingredient, 0, len(request.Ingredients))
	for _, name := range request.Ingredients {
		ingredients = append(ingredients, model.Ingredient{Name: name, Quantity: "to taste"})
	}

	cuisine := request.Cuisine
	if cuisine == "" {
		cuisine = "fusion"
	}

	title := fmt.Sprintf("%s %s", titleCase(cuisine), titleCase(request.Ingredients[0]))

	return model.Recipe{
		ID:          uuid.NewString(),
		Title:       title,
		Description: fmt.Sprintf("A quick %s dish built around %s.", cuisine, strings.Join(request.Ingredients, ", ")),
		Cuisine:     cuisine,
		Ingredients: ingredients,
		Instructions: []string{
			"Prepare all ingredients.",
			"Combine and cook over medium heat.",
			"Season and serve.",
		},
		PrepMinutes: 10 + 5*len(request.Ingredients),
		Servings:    2,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
