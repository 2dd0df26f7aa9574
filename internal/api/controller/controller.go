package controller

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/service/importer"
	"github.com/ougirez/regstat/internal/service/navigation"
	"github.com/ougirez/regstat/internal/service/records"
	"github.com/ougirez/regstat/internal/service/screen"
)

type Controller struct {
	records  *records.Service
	importer *importer.Service
	screens  *screen.Registry
	journal  *navigation.Journal
}

func NewController(
	records *records.Service,
	importer *importer.Service,
	screens *screen.Registry,
	journal *navigation.Journal,
) *Controller {
	return &Controller{
		records:  records,
		importer: importer,
		screens:  screens,
		journal:  journal,
	}
}

func uuidParam(ctx echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, ctx.Param(name), constants.ErrBadRequest)
	}
	return id, nil
}

func (c *Controller) screenFromParam(ctx echo.Context) (*screen.Screen, error) {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return c.screens.Get(id)
}
