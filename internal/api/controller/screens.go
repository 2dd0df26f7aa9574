package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/domain/dto"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/ougirez/regstat/internal/service/screen"
)

func (c *Controller) EnterScreen(ctx echo.Context) error {
	s := c.screens.Enter(ctx.Request().Context())
	return ctx.JSON(http.StatusCreated, s.View())
}

func (c *Controller) GetScreen(ctx echo.Context) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.View())
}

// ExitScreen discards a screen the client no longer shows.
func (c *Controller) ExitScreen(ctx echo.Context) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}

	c.screens.Exit(ctx.Request().Context(), s.ID())
	return ctx.NoContent(http.StatusNoContent)
}

// StreamScreen sends the current view and then a new one for every record
// snapshot, as server-sent events, until the client leaves or the screen
// is exited.
func (c *Controller) StreamScreen(ctx echo.Context) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	send := func(view domain.ScreenView) error {
		data, err := sonic.ConfigStd.Marshal(view)
		if err != nil {
			return fmt.Errorf("sonic.Marshal: %w", err)
		}
		if _, err = fmt.Fprintf(resp, "event: view\ndata: %s\n\n", data); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}

	reqCtx := ctx.Request().Context()
	err = send(s.View())
	if err == nil {
		err = s.Watch(reqCtx, send)
	}
	if err != nil {
		logger.Warnf(reqCtx, "screen-%s stream: %s", s.ID(), err.Error())
	}

	return nil
}

func (c *Controller) SetQuery(ctx echo.Context) error {
	var req dto.SetQueryRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.SetQuery(req.Query))
}

func (c *Controller) SelectYear(ctx echo.Context) error {
	var req dto.SelectYearRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}

	if req.Year == nil {
		return ctx.JSON(http.StatusOK, s.ClearYear())
	}
	return ctx.JSON(http.StatusOK, s.SelectYear(*req.Year))
}

func (c *Controller) OpenFacetPanel(ctx echo.Context) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.OpenFacetPanel())
}

func (c *Controller) DismissFacetPanel(ctx echo.Context) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.DismissFacetPanel())
}

func (c *Controller) EditRecord(ctx echo.Context) error {
	return c.navigateToRecord(ctx, (*screen.Screen).Edit)
}

func (c *Controller) DeleteRecord(ctx echo.Context) error {
	return c.navigateToRecord(ctx, (*screen.Screen).Delete)
}

type recordNavigation = func(s *screen.Screen, ctx context.Context, recordID uuid.UUID) (domain.NavigationRequest, error)

func (c *Controller) navigateToRecord(ctx echo.Context, navigate recordNavigation) error {
	s, err := c.screenFromParam(ctx)
	if err != nil {
		return err
	}

	recordID, err := uuidParam(ctx, "record_id")
	if err != nil {
		return err
	}

	req, err := navigate(s, ctx.Request().Context(), recordID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, req)
}

func (c *Controller) Back(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	req, err := c.screens.Back(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, req)
}

// GetNavigation also answers for a recently exited screen, so the final
// back request can be picked up.
func (c *Controller) GetNavigation(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.screens.Known(id); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, c.journal.History(id))
}
