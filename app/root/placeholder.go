package root

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Placeholder serves the generated image used for videos without a
// thumbnail. The optional text parameter replaces the brand label.
func Placeholder(c *gin.Context, d *internal.Deps) {
	label := service.Label(c.Query("text"), d.Config.App.Brand)

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", service.Placeholder(label))
}
