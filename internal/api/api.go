package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/regstat/internal/api/controller"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/store"
	"github.com/ougirez/regstat/internal/service/importer"
	"github.com/ougirez/regstat/internal/service/navigation"
	"github.com/ougirez/regstat/internal/service/records"
	"github.com/ougirez/regstat/internal/service/screen"
	"github.com/spf13/viper"
)

type APIService struct {
	router          *echo.Echo
	recordsService  *records.Service
	importerService *importer.Service
	screens         *screen.Registry
	journal         *navigation.Journal
}

// Serve blocks until the server stops. A graceful Shutdown is not an error.
func (svc *APIService) Serve(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// RunScreenSweeper expires idle screens until ctx is done.
func (svc *APIService) RunScreenSweeper(ctx context.Context) error {
	return svc.screens.Run(ctx)
}

func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(store store.Store, feed *records.Feed, poller *records.Poller) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.INFO)
	svc.router.JSONSerializer = sonicSerializer{}
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.RequestID())
	svc.router.Use(svc.RequestContextMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: viper.GetStringSlice(constants.ViperCORSOriginsKey),
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	svc.journal = navigation.NewJournal(viper.GetInt(constants.ViperNavHistoryKey))
	svc.recordsService = records.NewRecordsService(store, feed)
	svc.importerService = importer.NewImporterService(store, poller)
	svc.screens = screen.NewRegistry(feed, svc.journal, viper.GetDuration(constants.ViperScreenIdleTTLKey))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(svc.recordsService, svc.importerService, svc.screens, svc.journal)

	recordsGroup := api.Group("/records")
	recordsGroup.GET("", cntrl.ListRecords)
	recordsGroup.GET("/:id", cntrl.GetRecord)
	recordsGroup.POST("/import", cntrl.ImportRecords, svc.AdminMiddleware)

	screens := api.Group("/screens")
	screens.POST("", cntrl.EnterScreen)
	screens.GET("/:id", cntrl.GetScreen)
	screens.DELETE("/:id", cntrl.ExitScreen)
	screens.GET("/:id/events", cntrl.StreamScreen)
	screens.PUT("/:id/query", cntrl.SetQuery)
	screens.PUT("/:id/year", cntrl.SelectYear)
	screens.POST("/:id/facet-panel", cntrl.OpenFacetPanel)
	screens.DELETE("/:id/facet-panel", cntrl.DismissFacetPanel)
	screens.POST("/:id/records/:record_id/edit", cntrl.EditRecord)
	screens.POST("/:id/records/:record_id/delete", cntrl.DeleteRecord)
	screens.POST("/:id/back", cntrl.Back)
	screens.GET("/:id/navigation", cntrl.GetNavigation)

	return svc, nil
}
