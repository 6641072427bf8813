package app

import (
	"bitwise74/emotube/app/admin"
	"bitwise74/emotube/app/feed"
	"bitwise74/emotube/app/root"
	"bitwise74/emotube/app/user"
	"bitwise74/emotube/app/video"
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/internal/view"
	"bitwise74/emotube/pkg/cachestore"
	"bitwise74/emotube/pkg/middleware"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	formBodyLimit   = 1 << 20
	avatarBodyLimit = 6 << 20
)

func NewRouter(d *internal.Deps) (*gin.Engine, error) {
	router := gin.New()

	renderer, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates, %w", err)
	}
	router.HTMLRender = renderer

	if len(d.Config.Host.CORS) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Range"},
			ExposeHeaders:    []string{"Content-Length", "Content-Range"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("userID", v))
				}

				return fields
			},
		}),
		middleware.NewSessionMiddleware(d.Sessions, d.Store),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: d.Config.Security.RateLimit,
		Burst:             d.Config.Security.RateLimit * 2,
	}).Middleware()

	login := middleware.RequireLogin()
	formLimit := middleware.BodySizeLimiter(formBodyLimit)
	placeholderCache := cachestore.NewLazy(256)

	// GET /uploads/*		-> Stored videos, thumbnails and avatars
	if local, ok := d.Media.(*storage.Local); ok {
		router.Static(storage.PublicPrefix, local.Root)
	} else {
		router.GET(storage.PublicPrefix+"/*key", func(c *gin.Context) { root.UploadRedirect(c, d) })
	}

	// GET /static_placeholder	-> Generated placeholder image
	router.GET("/static_placeholder", cache.CacheByRequestURI(placeholderCache, time.Hour), func(c *gin.Context) { root.Placeholder(c, d) })

	// GET /			-> Video feed, ?q= filters it
	router.GET("/", func(c *gin.Context) { feed.Index(c, d) })

	// GET|POST /enter		-> Entry challenge
	router.GET("/enter", func(c *gin.Context) { feed.EnterForm(c, d) })
	router.POST("/enter", formLimit, func(c *gin.Context) { feed.EnterSubmit(c, d) })

	// POST /admin-login		-> Logs in an admin account
	router.POST("/admin-login", rateLimiter, formLimit, func(c *gin.Context) { user.UserAdminLogin(c, d) })

	// POST /logout			-> Clears the session
	router.POST("/logout", user.UserLogout)

	// POST /upload			-> Stores a new video
	router.POST("/upload", middleware.BodySizeLimiter(d.Config.Upload.MaxBytes()+formBodyLimit), func(c *gin.Context) { video.VideoUpload(c, d) })

	// POST /comment		-> Adds a comment to a video
	router.POST("/comment", login, formLimit, func(c *gin.Context) { video.CommentAdd(c, d) })

	// POST /like			-> Likes or dislikes a video
	router.POST("/like", formLimit, func(c *gin.Context) { video.VideoLike(c, d) })

	// POST /subscribe		-> Toggles a subscription
	router.POST("/subscribe", login, formLimit, func(c *gin.Context) { video.ChannelSubscribe(c, d) })

	// GET /watch/:id		-> Counts a view
	router.GET("/watch/:id", func(c *gin.Context) { video.VideoWatch(c, d) })

	// POST /delete_video/:id	-> Deletes a video owned by the user
	router.POST("/delete_video/:id", login, func(c *gin.Context) { video.VideoDelete(c, d) })

	// GET /profile/:username	-> Channel page
	router.GET("/profile/:username", func(c *gin.Context) { user.UserProfile(c, d) })

	me := router.Group("", login)
	{
		// GET /profile		-> Own channel page
		me.GET("/profile", func(c *gin.Context) { user.UserMyProfile(c, d) })

		// GET|POST /edit_profile	-> Display name, bio and avatar
		me.GET("/edit_profile", func(c *gin.Context) { user.UserEditProfileForm(c, d) })
		me.POST("/edit_profile", middleware.BodySizeLimiter(avatarBodyLimit), func(c *gin.Context) { user.UserEditProfile(c, d) })

		// POST /delete_account	-> Deletes the account and everything it owns
		me.POST("/delete_account", func(c *gin.Context) { user.UserDelete(c, d) })

		// GET /subs		-> Subscribed channels
		me.GET("/subs", func(c *gin.Context) { user.UserSubscriptions(c, d) })

		// GET /history		-> Watch history
		me.GET("/history", func(c *gin.Context) { user.UserHistory(c, d) })
	}

	a := router.Group("/admin", login, middleware.RequireAdmin())
	{
		// GET /admin			-> Lists users and videos
		a.GET("", func(c *gin.Context) { admin.AdminPanel(c, d) })

		// POST /admin/delete_video	-> Deletes any video
		a.POST("/delete_video", formLimit, func(c *gin.Context) { admin.AdminDeleteVideo(c, d) })

		// POST /admin/delete_user	-> Deletes any other account
		a.POST("/delete_user", formLimit, func(c *gin.Context) { admin.AdminDeleteUser(c, d) })
	}

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> 200 while the database answers
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// POST /api/register		-> Registers a new user
		m.POST("/register", rateLimiter, formLimit, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/login		-> Logs in a user
		m.POST("/login", rateLimiter, formLimit, func(c *gin.Context) { user.UserLogin(c, d) })

		// GET /api/video/:id		-> Video details
		m.GET("/video/:id", func(c *gin.Context) { video.VideoFetch(c, d) })

		// GET /api/comments/:id	-> Comments of a video
		m.GET("/comments/:id", func(c *gin.Context) { video.CommentsFetch(c, d) })

		// POST /api/record_history	-> Appends a watch event
		m.POST("/record_history", formLimit, func(c *gin.Context) { user.UserRecordHistory(c, d) })
	}

	return router, nil
}
