package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/regstat/internal/domain/dto"
	"github.com/ougirez/regstat/internal/pkg/constants"
)

func (c *Controller) ListRecords(ctx echo.Context) error {
	req := dto.ListRecordsRequest{
		Query:        ctx.QueryParams().Get("query"),
		ProvinceCode: ctx.QueryParams().Get("province_code"),
	}

	if yearStr := ctx.QueryParams().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", yearStr, constants.ErrBadRequest)
		}
		req.Year = &year
	}

	if err := ctx.Validate(&req); err != nil {
		return err
	}

	view, err := c.records.List(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, view)
}

func (c *Controller) ImportRecords(ctx echo.Context) error {
	var req dto.ImportRecordsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	resp, err := c.importer.ImportFromURL(ctx.Request().Context(), req.URL)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetRecord(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	record, err := c.records.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, record)
}
