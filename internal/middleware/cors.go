package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORS returns middleware that handles Cross-Origin Resource Sharing headers
// for the single configured frontend origin.
//
// The frontend is deployed on a different origin than this API, and the
// session cookie must ride along on its requests, so credentials are always
// allowed. That is exactly why only one explicit origin is accepted here:
// a wildcard origin combined with credentials would let any website make
// authenticated requests to the API.
func CORS(allowedOrigin string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			origin := req.Header.Get("Origin")

			// No Origin header means same-origin request — skip CORS.
			if origin == "" {
				return next(c)
			}

			if origin != allowedOrigin {
				// Unknown origin — proceed without CORS headers. The
				// browser blocks the response on the client side.
				return next(c)
			}

			res.Header().Set("Access-Control-Allow-Origin", origin)
			res.Header().Set("Access-Control-Allow-Credentials", "true")
			res.Header().Set("Vary", "Origin")

			// Handle preflight OPTIONS requests.
			if req.Method == http.MethodOptions {
				res.Header().Set("Access-Control-Allow-Methods",
					strings.Join([]string{
						http.MethodGet,
						http.MethodPost,
						http.MethodPut,
						http.MethodDelete,
						http.MethodOptions,
					}, ", "))

				res.Header().Set("Access-Control-Allow-Headers",
					strings.Join([]string{
						"Origin",
						"Content-Type",
						"Accept",
						"Authorization",
						"X-Requested-With",
					}, ", "))

				// Cache preflight response for 1 hour.
				res.Header().Set("Access-Control-Max-Age", "3600")

				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
