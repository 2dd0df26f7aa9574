package api

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/ougirez/regstat/internal/pkg/utils"
	"github.com/spf13/viper"
)

// RequestContextMiddleware puts the request id into the logging context.
func (svc *APIService) RequestContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Response().Header().Get(echo.HeaderXRequestID)
		if id != "" {
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(logger.WithFields(req.Context(), constants.CtxKeyRequestID, id)))
		}
		return next(ctx)
	}
}

func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
		if err != nil {
			return constants.ErrUnauthorized
		}

		token, err := utils.ParseAuthToken(cookie.Value)
		if err != nil {
			return err
		}

		if token.Secret == "" || token.Secret != viper.GetString(constants.ViperSecretKey) {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}
