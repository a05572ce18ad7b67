package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Loading is served in place of a gated page while the session of the
// browser is still being verified. The page refreshes itself.
func Loading(c echo.Context) error {
	return render(c, http.StatusOK, "loading", newPage(c, "Loading", nil))
}
