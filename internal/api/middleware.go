package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/internal/i18n"
	"github.com/dengun/assistant/server/internal/theme"
)

const languageKey = "language"

// ThemeHeader mirrors the theme cookie into the x-theme response header so
// the page can render the right palette on first paint.
func ThemeHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := ""
			if cookie, err := c.Cookie(theme.CookieName); err == nil {
				value = cookie.Value
			}
			c.Response().Header().Set(theme.HeaderName, string(theme.Parse(value)))
			return next(c)
		}
	}
}

// LanguageNegotiation stores the Accept-Language choice in the echo context
func LanguageNegotiation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(languageKey, i18n.Negotiate(c.Request().Header.Get("Accept-Language")))
			return next(c)
		}
	}
}

// RequestLanguage returns the negotiated language, English when none was negotiated
func RequestLanguage(c echo.Context) i18n.Language {
	if lang, ok := c.Get(languageKey).(i18n.Language); ok {
		return lang
	}
	return i18n.DefaultLanguage
}

// RequestLogger logs every request through zap
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}
