// Command mealforge is a CLI client for the mealforge recipe service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mealforge/mealforge-go/internal/api"
	"github.com/mealforge/mealforge-go/internal/config"
	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/internal/recipe"
	"github.com/mealforge/mealforge-go/internal/session"
	"github.com/mealforge/mealforge-go/pkg/apperror"
	pkghttp "github.com/mealforge/mealforge-go/pkg/http"
	"github.com/mealforge/mealforge-go/pkg/kv"
	"github.com/mealforge/mealforge-go/pkg/lazy"
	"github.com/mealforge/mealforge-go/pkg/log"
	"github.com/mealforge/mealforge-go/pkg/retry"
	"github.com/mealforge/mealforge-go/pkg/sig"
)

const usage = `mealforge <command> [flags]

commands:
  register         create an account and sign in
  login            sign in with email and password
  logout           sign out and clear local state
  whoami           show the current profile
  update-profile   change profile fields
  change-password  change the account password
  generate         generate a recipe from ingredients
  saved            list saved recipes
  save             save a generated recipe
  unsave           remove a recipe from the saved list
`

type app struct {
	cfg    config.Config
	logger log.Logger

	sessions *lazy.Loader[*session.Manager]
	recipes  *lazy.Loader[*recipe.Service]
}

func newApp() *app {
	cfg := config.Load()
	logger := log.New(cfg.LogLevel)

	apiClient := lazy.New(func() (*api.Client, error) {
		httpClient := pkghttp.NewClient(
			pkghttp.WithBaseURL(cfg.APIBaseURL),
			pkghttp.WithTimeout(cfg.RequestTimeout),
			pkghttp.WithRequestLogging(logger, log.LevelDebug, log.LevelWarn),
		)
		return api.NewClient(httpClient, logger), nil
	})

	sessions := lazy.New(func() (*session.Manager, error) {
		store, err := kv.NewFileStore(cfg.StatePath)
		if err != nil {
			return nil, err
		}

		client, err := apiClient.Load()
		if err != nil {
			return nil, err
		}

		mgr := session.NewManager(client, store, logger)
		client.SetTokenSource(mgr)
		client.OnUnauthorized(mgr.HandleAuthFailure)
		return mgr, nil
	})

	recipes := lazy.New(func() (*recipe.Service, error) {
		client, err := apiClient.Load()
		if err != nil {
			return nil, err
		}
		return recipe.NewService(client, retry.DefaultPolicy()), nil
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		recipes:  recipes,
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := sig.TermContext(context.Background())
	defer cancel()

	a := newApp()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, apperror.UserMessage(err))
		a.logger.WithError(err).Debug(ctx, "command failed")
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "update-profile":
		return a.cmdUpdateProfile(ctx, args)
	case "change-password":
		return a.cmdChangePassword(ctx, args)
	case "generate":
		return a.cmdGenerate(ctx, args)
	case "saved":
		return a.cmdSaved(ctx)
	case "save":
		return a.cmdSaveRecipe(ctx, args, true)
	case "unsave":
		return a.cmdSaveRecipe(ctx, args, false)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// restoredSession loads the manager and rebuilds session state from the
// durable store, so authenticated commands have a token to send.
func (a *app) restoredSession(ctx context.Context) (*session.Manager, error) {
	mgr, err := a.sessions.Load()
	if err != nil {
		return nil, err
	}

	if mgr.State() == session.StateUnknown {
		if _, err := mgr.Restore(ctx); err != nil {
			return nil, err
		}
	}

	return mgr, nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	diet := fs.String("diet", "", "comma-separated dietary restrictions")
	cuisines := fs.String("cuisines", "", "comma-separated favorite cuisines")
	skill := fs.String("skill", "", "cooking skill level")
	_ = fs.Parse(args)

	mgr, err := a.sessions.Load()
	if err != nil {
		return err
	}

	registration := model.Registration{
		Name:     *name,
		Email:    *email,
		Password: *password,
	}
	if *diet != "" || *cuisines != "" || *skill != "" {
		registration.Preferences = &model.Preferences{
			DietaryRestrictions: splitList(*diet),
			FavoriteCuisines:    splitList(*cuisines),
			SkillLevel:          *skill,
		}
	}

	sess, err := mgr.Register(ctx, registration)
	if err != nil {
		return err
	}

	fmt.Printf("registered and signed in as %s\n", sess.Profile.Email)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	mgr, err := a.sessions.Load()
	if err != nil {
		return err
	}

	sess, err := mgr.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s\n", sess.Profile.Email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	mgr, err := a.restoredSession(ctx)
	if err != nil {
		return err
	}

	mgr.Logout(ctx)
	fmt.Println("signed out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	mgr, err := a.restoredSession(ctx)
	if err != nil {
		return err
	}

	profile, ok := mgr.Profile()
	if !ok {
		return errors.New("not signed in")
	}

	fmt.Printf("%s <%s>\n", profile.Name, profile.Email)
	if profile.Preferences.SkillLevel != "" {
		fmt.Printf("skill: %s\n", profile.Preferences.SkillLevel)
	}
	if len(profile.Preferences.DietaryRestrictions) > 0 {
		fmt.Printf("diet: %s\n", strings.Join(profile.Preferences.DietaryRestrictions, ", "))
	}
	fmt.Printf("saved recipes: %d\n", len(profile.SavedRecipes))
	return nil
}

func (a *app) cmdUpdateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	name := fs.String("name", "", "new display name")
	email := fs.String("email", "", "new account email")
	skill := fs.String("skill", "", "new cooking skill level")
	_ = fs.Parse(args)

	mgr, err := a.restoredSession(ctx)
	if err != nil {
		return err
	}

	var update model.ProfileUpdate
	if *name != "" {
		update.Name = name
	}
	if *email != "" {
		update.Email = email
	}
	if *skill != "" {
		profile, _ := mgr.Profile()
		preferences := profile.Preferences
		preferences.SkillLevel = *skill
		update.Preferences = &preferences
	}

	profile, err := mgr.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}

	fmt.Printf("profile updated: %s <%s>\n", profile.Name, profile.Email)
	return nil
}

func (a *app) cmdChangePassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("change-password", flag.ExitOnError)
	current := fs.String("current", "", "current password")
	newPassword := fs.String("new", "", "new password")
	_ = fs.Parse(args)

	mgr, err := a.restoredSession(ctx)
	if err != nil {
		return err
	}

	if err := mgr.ChangePassword(ctx, *current, *newPassword); err != nil {
		return err
	}

	fmt.Println("password changed")
	return nil
}

func (a *app) cmdGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	ingredients := fs.String("ingredients", "", "comma-separated ingredients")
	cuisine := fs.String("cuisine", "", "preferred cuisine")
	_ = fs.Parse(args)

	if _, err := a.restoredSession(ctx); err != nil {
		return err
	}
	svc, err := a.recipes.Load()
	if err != nil {
		return err
	}

	generated, err := svc.Generate(ctx, model.GenerateRequest{
		Ingredients: splitList(*ingredients),
		Cuisine:     *cuisine,
	})
	if err != nil {
		return err
	}

	printRecipe(generated)
	return nil
}

func (a *app) cmdSaved(ctx context.Context) error {
	if _, err := a.restoredSession(ctx); err != nil {
		return err
	}
	svc, err := a.recipes.Load()
	if err != nil {
		return err
	}

	saved, err := svc.Saved(ctx)
	if err != nil {
		return err
	}

	if len(saved) == 0 {
		fmt.Println("no saved recipes")
		return nil
	}
	for _, r := range saved {
		fmt.Printf("%s  %s (%s, %d min)\n", r.ID, r.Title, r.Cuisine, r.PrepMinutes)
	}
	return nil
}

func (a *app) cmdSaveRecipe(ctx context.Context, args []string, save bool) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	id := fs.String("id", "", "recipe id")
	_ = fs.Parse(args)

	if _, err := a.restoredSession(ctx); err != nil {
		return err
	}
	svc, err := a.recipes.Load()
	if err != nil {
		return err
	}

	if save {
		if err := svc.Save(ctx, *id); err != nil {
			return err
		}
		fmt.Println("recipe saved")
		return nil
	}

	if err := svc.Unsave(ctx, *id); err != nil {
		return err
	}
	fmt.Println("recipe removed from saved list")
	return nil
}

func printRecipe(r model.Recipe) {
	fmt.Printf("%s (%s, %d min, serves %d)\n", r.Title, r.Cuisine, r.PrepMinutes, r.Servings)
	fmt.Printf("id: %s\n\n", r.ID)
	for _, ingredient := range r.Ingredients {
		fmt.Printf("  - %s (%s)\n", ingredient.Name, ingredient.Quantity)
	}
	fmt.Println()
	for i, step := range r.Instructions {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
