package root

import (
	"bitwise74/emotube/internal"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UploadRedirect sends media requests to the object storage public URL when
// media isn't stored on local disk
func UploadRedirect(c *gin.Context, d *internal.Deps) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		c.Status(http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusFound, d.Media.URL(key))
}
