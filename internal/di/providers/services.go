package providers

import (
	"github.com/samber/do/v2"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/extract"
	"github.com/simmerapp/simmer-server/internal/logger"
	"github.com/simmerapp/simmer-server/internal/media/images"
	"github.com/simmerapp/simmer-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideCookbookService provides the cookbook service.
func ProvideCookbookService(i do.Injector) (*service.CookbookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imageStorage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCookbookService(storeHandle.Store, imageStorage, log.Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imageStorage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, imageStorage, log.Logger), nil
}

// ProvideShareService provides the share token service.
func ProvideShareService(i do.Injector) (*service.ShareService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cookbookService := do.MustInvoke[*service.CookbookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShareService(storeHandle.Store, cookbookService, log.Logger), nil
}

// ProvideExtractionService provides the AI extraction service.
func ProvideExtractionService(i do.Injector) (*service.ExtractionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	recipeService := do.MustInvoke[*service.RecipeService](i)
	extractor := do.MustInvoke[*extract.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExtractionService(storeHandle.Store, recipeService, extractor, log.Logger), nil
}
