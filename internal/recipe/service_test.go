package recipe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/internal/recipe"
	"github.com/mealforge/mealforge-go/pkg/apperror"
	"github.com/mealforge/mealforge-go/pkg/retry"
)

// fakeGateway is a hand-rolled fake: the recipe service only needs canned
// responses and call counting.
type fakeGateway struct {
	generateCalls int
	generateErrs  []error
	recipe        model.Recipe

	saved     []model.Recipe
	savedErr  error
	saveErr   error
	unsaveErr error
}

func (f *fakeGateway) GenerateRecipe(context.Context, model.GenerateRequest) (model.Recipe, error) {
	f.generateCalls++
	if len(f.generateErrs) > 0 {
		err := f.generateErrs[0]
		f.generateErrs = f.generateErrs[1:]
		if err != nil {
			return model.Recipe{}, err
		}
	}
	return f.recipe, nil
}

func (f *fakeGateway) SavedRecipes(context.Context) ([]model.Recipe, error) {
	return f.saved, f.savedErr
}

func (f *fakeGateway) SaveRecipe(context.Context, string) error { return f.saveErr }

func (f *fakeGateway) UnsaveRecipe(context.Context, string) error { return f.unsaveErr }

func testPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func TestGenerate_RequiresIngredients(t *testing.T) {
	gateway := &fakeGateway{}
	svc := recipe.NewService(gateway, testPolicy())

	_, err := svc.Generate(context.Background(), model.GenerateRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, 0, gateway.generateCalls)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	gateway := &fakeGateway{
		generateErrs: []error{
			apperror.FromStatus(503, "model overloaded", nil),
			apperror.FromStatus(503, "model overloaded", nil),
		},
		recipe: model.Recipe{ID: "r1", Title: "Garlic Noodles"},
	}
	svc := recipe.NewService(gateway, testPolicy())

	result, err := svc.Generate(context.Background(), model.GenerateRequest{Ingredients: []string{"garlic", "noodles"}})
	require.NoError(t, err)
	assert.Equal(t, "Garlic Noodles", result.Title)
	assert.Equal(t, 3, gateway.generateCalls)
}

func TestGenerate_AuthFailureNotRetried(t *testing.T) {
	gateway := &fakeGateway{
		generateErrs: []error{apperror.FromStatus(401, "token invalid", nil)},
	}
	svc := recipe.NewService(gateway, testPolicy())

	_, err := svc.Generate(context.Background(), model.GenerateRequest{Ingredients: []string{"eggs"}})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthentication))
	assert.Equal(t, 1, gateway.generateCalls)
}

func TestSaved_Returns(t *testing.T) {
	gateway := &fakeGateway{saved: []model.Recipe{{ID: "r1"}, {ID: "r2"}}}
	svc := recipe.NewService(gateway, testPolicy())

	recipes, err := svc.Saved(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestSaveUnsave_RequireID(t *testing.T) {
	svc := recipe.NewService(&fakeGateway{}, testPolicy())

	err := svc.Save(context.Background(), "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = svc.Unsave(context.Background(), "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSave_PropagatesNotFound(t *testing.T) {
	svc := recipe.NewService(&fakeGateway{saveErr: apperror.FromStatus(404, "no such recipe", nil)}, testPolicy())

	err := svc.Save(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
