// Package feed serves the entry challenge and the video feed behind it
package feed

import (
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/middleware"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// newChallenge stores the answer of a fresh a + b question in the session,
// with a in [2,9] and b in [1,9], and returns the question
func newChallenge(c *gin.Context) string {
	a := rand.IntN(8) + 2
	b := rand.IntN(9) + 1

	middleware.GetSession(c).CaptchaAns = a + b
	middleware.SaveSession(c)

	return fmt.Sprintf("%d + %d = ?", a, b)
}

func EnterForm(c *gin.Context, d *internal.Deps) {
	page := d.Page(c, "Verification")
	question := newChallenge(c)

	c.HTML(http.StatusOK, "enter.html", view.EnterPage{
		Page:     page,
		Question: question,
	})
}

func EnterSubmit(c *gin.Context, d *internal.Deps) {
	s := middleware.GetSession(c)

	answer, err := strconv.Atoi(strings.TrimSpace(c.PostForm("answer")))
	if err == nil && s.CaptchaAns != 0 && answer == s.CaptchaAns {
		s.CaptchaOK = true
		s.CaptchaAns = 0
		middleware.SaveSession(c)

		c.Redirect(http.StatusFound, "/")
		return
	}

	s.Flash = "verification failed"
	EnterForm(c, d)
}
