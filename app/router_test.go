package app

import (
	"bitwise74/emotube/config"
	"bitwise74/emotube/internal"
	"bitwise74/emotube/internal/model"
	"bitwise74/emotube/internal/service"
	"bitwise74/emotube/internal/storage"
	"bitwise74/emotube/pkg/security"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		App:     config.App{LogLevel: "error", Brand: "EmoTube99"},
		Host:    config.Host{Port: 8080},
		Session: config.Session{Secret: "test-secret", MaxAge: time.Hour},
		Admin: config.Admin{
			Username:    "admin@emotube.local",
			Password:    "admin1234",
			DisplayName: "Admin",
		},
		Database: config.Database{Driver: "sqlite", DSN: filepath.Join(dir, "emotube.db")},
		Storage:  config.Storage{Type: "local", Root: filepath.Join(dir, "uploads")},
		Upload:   config.Upload{MaxSize: 10},
		FFmpeg: config.FFmpeg{
			Path:        "/nonexistent/ffmpeg",
			FFprobePath: "/nonexistent/ffprobe",
			Timeout:     5 * time.Second,
			Embedded:    true,
		},
		Captcha: config.Captcha{RegisterQuestion: "3 + 4 = ?", RegisterAnswer: "7"},
	}
}

type testApp struct {
	t      *testing.T
	deps   *internal.Deps
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	d, err := NewDeps(context.Background(), testConfig(t))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	r, err := NewRouter(d)
	require.NoError(t, err)

	return &testApp{t: t, deps: d, router: r}
}

// client keeps the session cookie between requests like a browser would
type client struct {
	app     *testApp
	session *http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.session != nil {
		req.AddCookie(c.session)
	}

	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == security.SessionCookie {
			c.session = ck
		}
	}

	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) register(username, password string) *httptest.ResponseRecorder {
	return c.post("/api/register", url.Values{
		"username": {username},
		"password": {password},
		"captcha":  {"7"},
	})
}

func (c *client) upload(title string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	require.NoError(c.app.t, w.WriteField("title", title))
	require.NoError(c.app.t, w.WriteField("description", "a clip"))

	part, err := w.CreateFormFile("video", "clip.mp4")
	require.NoError(c.app.t, err)
	_, err = part.Write(data)
	require.NoError(c.app.t, err)
	require.NoError(c.app.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testApp) user(username string) *model.User {
	a.t.Helper()

	u, err := a.deps.Store.UserByUsername(context.Background(), username)
	require.NoError(a.t, err)
	return u
}

func (a *testApp) mediaPath(key string) string {
	return filepath.Join(a.deps.Config.Storage.Root, filepath.FromSlash(key))
}

// uploadVideo expects c to be logged in already
func (c *client) uploadVideo(title string) *model.Video {
	t := c.app.t
	t.Helper()

	w := c.upload(title, []byte("definitely not a video"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	require.Equal(t, true, body["ok"])

	v, err := c.app.deps.Store.VideoByID(context.Background(), uint(body["id"].(float64)))
	require.NoError(t, err)
	return v
}

func TestHeartbeat(t *testing.T) {
	a := newTestApp(t)

	w := a.client().do(httptest.NewRequest(http.MethodHead, "/api/heartbeat", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFeedRequiresChallenge(t *testing.T) {
	a := newTestApp(t)
	c := a.client()

	w := c.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/enter", w.Header().Get("Location"))

	w = c.get("/enter")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "= ?")

	w = c.post("/enter", url.Values{"answer": {"0"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "verification failed")

	sess, err := a.deps.Sessions.Parse(c.session.Value)
	require.NoError(t, err)
	require.NotZero(t, sess.CaptchaAns)

	w = c.post("/enter", url.Values{"answer": {fmt.Sprint(sess.CaptchaAns)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = c.get("/")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterTwice(t *testing.T) {
	a := newTestApp(t)

	w := a.client().register("alice", "pw")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"ok": true}, decode(t, w))

	w = a.client().register("alice", "other")
	assert.Equal(t, http.StatusConflict, w.Code)

	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "username taken", body["error"])
}

func TestRegisterWrongCaptcha(t *testing.T) {
	a := newTestApp(t)

	w := a.client().post("/api/register", url.Values{
		"username": {"alice"},
		"password": {"pw"},
		"captcha":  {"8"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "verification failed", decode(t, w)["error"])

	_, err := a.deps.Store.UserByUsername(context.Background(), "alice")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	a := newTestApp(t)
	require.Equal(t, http.StatusOK, a.client().register("alice", "pw").Code)

	c := a.client()

	w := c.post("/api/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.post("/api/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, w.Code)

	// logging in passes the entry challenge too
	assert.Equal(t, http.StatusOK, c.get("/").Code)

	w = c.post("/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/enter", w.Header().Get("Location"))
	assert.Equal(t, http.StatusFound, c.get("/").Code)
}

func TestUploadCorruptFileGetsPlaceholder(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)

	v := c.uploadVideo("Test")
	assert.Equal(t, "Test", v.Title)
	assert.Equal(t, a.user("alice").ID, v.UserID)
	assert.True(t, strings.HasSuffix(v.Filename, ".mp4"))
	assert.NotEqual(t, "clip.mp4", v.Filename)

	thumb, err := os.ReadFile(a.mediaPath(storage.ThumbKey(v.Thumb)))
	require.NoError(t, err)
	assert.Equal(t, service.Placeholder("Test"), thumb)

	stored, err := os.ReadFile(a.mediaPath(storage.VideoKey(v.Filename)))
	require.NoError(t, err)
	assert.Equal(t, "definitely not a video", string(stored))
}

func TestUploadUntitled(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)

	v := c.uploadVideo("   ")
	assert.Equal(t, "Untitled", v.Title)

	thumb, err := os.ReadFile(a.mediaPath(storage.ThumbKey(v.Thumb)))
	require.NoError(t, err)
	assert.Equal(t, service.Placeholder("EmoTube99"), thumb, "blank title draws the brand")
}

func TestUploadRequiresLogin(t *testing.T) {
	a := newTestApp(t)

	w := a.client().upload("Test", []byte("x"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadRejectsExtension(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("video", "evil.exe")
	require.NoError(t, err)
	_, err = io.WriteString(part, "MZ")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := c.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchIncrementsViews(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)
	v := c.uploadVideo("Test")

	w := a.client().get(fmt.Sprintf("/watch/%d", v.ID))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	got, err := a.deps.Store.VideoByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Views+1, got.Views)

	w = a.client().get("/watch/99999")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestVideoFetch(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)
	v := c.uploadVideo("Test")

	w := a.client().get(fmt.Sprintf("/api/video/%d", v.ID))
	require.Equal(t, http.StatusOK, w.Code)

	video := decode(t, w)["video"].(map[string]any)
	assert.Equal(t, "Test", video["title"])
	assert.Equal(t, "alice", video["username"])
	assert.Equal(t, "/uploads/"+v.Filename, video["url"])
	assert.Equal(t, "/uploads/thumbs/"+v.Thumb, video["thumb_url"])

	assert.Equal(t, http.StatusNotFound, a.client().get("/api/video/99999").Code)
	assert.Equal(t, http.StatusNotFound, a.client().get("/api/video/abc").Code)
}

func TestDeleteVideo(t *testing.T) {
	a := newTestApp(t)
	owner := a.client()
	require.Equal(t, http.StatusOK, owner.register("alice", "pw").Code)
	v := owner.uploadVideo("Test")

	other := a.client()
	require.Equal(t, http.StatusOK, other.register("bob", "pw").Code)

	w := other.post(fmt.Sprintf("/delete_video/%d", v.ID), nil)
	assert.Equal(t, http.StatusFound, w.Code, "only the owner may delete")

	w = owner.post(fmt.Sprintf("/delete_video/%d", v.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, a.client().get(fmt.Sprintf("/api/video/%d", v.ID)).Code)

	_, err := os.Stat(a.mediaPath(storage.VideoKey(v.Filename)))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(a.mediaPath(storage.ThumbKey(v.Thumb)))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLikeTwiceKeepsOneRow(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)
	v := c.uploadVideo("Test")

	id := fmt.Sprint(v.ID)

	w := a.client().post("/like", url.Values{"video_id": {id}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "login", decode(t, w)["error"])

	require.Equal(t, http.StatusNoContent, c.post("/like", url.Values{"video_id": {id}}).Code)
	require.Equal(t, http.StatusNoContent, c.post("/like", url.Values{"video_id": {id}, "type": {"dislike"}}).Code)

	var n int64
	require.NoError(t, a.deps.DB.Model(&model.Like{}).Where("video_id = ?", v.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	video := decode(t, a.client().get("/api/video/"+id))["video"].(map[string]any)
	assert.Equal(t, float64(0), video["likes"])
	assert.Equal(t, float64(1), video["dislikes"])
}

func TestCommentsAndHistory(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)
	v := c.uploadVideo("Test")
	id := fmt.Sprint(v.ID)

	require.Equal(t, http.StatusNoContent, c.post("/comment", url.Values{"video_id": {id}, "text": {"first!"}}).Code)

	comments := decode(t, a.client().get("/api/comments/"+id))["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].(map[string]any)["text"])
	assert.Equal(t, "alice", comments[0].(map[string]any)["username"])

	// anonymous visitors have no history to record into
	assert.Equal(t, http.StatusNoContent, a.client().post("/api/record_history", url.Values{"video_id": {id}}).Code)

	assert.Equal(t, http.StatusNoContent, c.post("/api/record_history", url.Values{"video_id": {id}}).Code)
	assert.Equal(t, http.StatusNoContent, c.post("/api/record_history", url.Values{"video_id": {id}}).Code)

	history, err := a.deps.Store.History(context.Background(), a.user("alice").ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSubscribeToggles(t *testing.T) {
	a := newTestApp(t)
	alice := a.client()
	require.Equal(t, http.StatusOK, alice.register("alice", "pw").Code)
	require.Equal(t, http.StatusOK, a.client().register("bob", "pw").Code)

	aliceID := a.user("alice").ID
	bobID := a.user("bob").ID
	form := url.Values{"channel_id": {fmt.Sprint(bobID)}}

	for _, want := range []bool{true, false, true} {
		w := alice.post("/subscribe", form)
		require.Equal(t, http.StatusFound, w.Code)

		subscribed, err := a.deps.Store.IsSubscribed(context.Background(), aliceID, bobID)
		require.NoError(t, err)
		assert.Equal(t, want, subscribed)
	}

	alice.post("/subscribe", url.Values{"channel_id": {fmt.Sprint(aliceID)}})
	self, err := a.deps.Store.IsSubscribed(context.Background(), aliceID, aliceID)
	require.NoError(t, err)
	assert.False(t, self)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	a := newTestApp(t)

	alice := a.client()
	require.Equal(t, http.StatusOK, alice.register("alice", "pw").Code)
	v := alice.uploadVideo("Test")

	bob := a.client()
	require.Equal(t, http.StatusOK, bob.register("bob", "pw").Code)
	id := fmt.Sprint(v.ID)
	require.Equal(t, http.StatusNoContent, bob.post("/comment", url.Values{"video_id": {id}, "text": {"hi"}}).Code)
	require.Equal(t, http.StatusNoContent, bob.post("/like", url.Values{"video_id": {id}}).Code)
	require.Equal(t, http.StatusFound, bob.post("/subscribe", url.Values{"channel_id": {fmt.Sprint(a.user("alice").ID)}}).Code)

	// regular users can't reach the panel
	w := bob.post("/admin/delete_user", url.Values{"user_id": {fmt.Sprint(a.user("alice").ID)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	admin := a.client()
	w = admin.post("/admin-login", url.Values{"email": {"admin@emotube.local"}, "password": {"admin1234"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	aliceID := a.user("alice").ID
	w = admin.post("/admin/delete_user", url.Values{"user_id": {fmt.Sprint(aliceID)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	_, err := a.deps.Store.UserByUsername(context.Background(), "alice")
	assert.Error(t, err)

	var videos int64
	require.NoError(t, a.deps.DB.Model(&model.Video{}).Where("user_id = ?", aliceID).Count(&videos).Error)
	assert.Zero(t, videos)

	for _, m := range []any{&model.Comment{}, &model.Like{}, &model.HistoryEntry{}} {
		var n int64
		require.NoError(t, a.deps.DB.Model(m).Where("video_id = ?", v.ID).Or("user_id = ?", aliceID).Count(&n).Error)
		assert.Zero(t, n, "%T rows left behind", m)
	}

	var subs int64
	require.NoError(t, a.deps.DB.Model(&model.Subscription{}).Where("subscriber_id = ? OR channel_id = ?", aliceID, aliceID).Count(&subs).Error)
	assert.Zero(t, subs)

	_, err = os.Stat(a.mediaPath(storage.VideoKey(v.Filename)))
	assert.ErrorIs(t, err, os.ErrNotExist)

	// the deleted account's session no longer authenticates
	assert.Equal(t, http.StatusForbidden, alice.upload("again", []byte("x")).Code)
}

func TestAdminCantDeleteSelf(t *testing.T) {
	a := newTestApp(t)
	admin := a.client()
	require.Equal(t, http.StatusOK, admin.post("/admin-login", url.Values{"email": {"admin@emotube.local"}, "password": {"admin1234"}}).Code)

	adminID := a.user("admin@emotube.local").ID
	admin.post("/admin/delete_user", url.Values{"user_id": {fmt.Sprint(adminID)}})

	_, err := a.deps.Store.UserByID(context.Background(), adminID)
	assert.NoError(t, err)
}

func TestAdminLoginRejectsRegularUser(t *testing.T) {
	a := newTestApp(t)
	require.Equal(t, http.StatusOK, a.client().register("alice", "pw").Code)

	w := a.client().post("/admin-login", url.Values{"email": {"alice"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceholderRoute(t *testing.T) {
	a := newTestApp(t)

	w := a.client().get("/static_placeholder")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, service.Placeholder("EmoTube99"), w.Body.Bytes())
}

func TestUploadEmptyFile(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)

	w := c.upload("Test", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	v, err := a.deps.Store.VideoByID(context.Background(), uint(decode(t, w)["id"].(float64)))
	require.NoError(t, err)

	thumb, err := os.ReadFile(a.mediaPath(storage.ThumbKey(v.Thumb)))
	require.NoError(t, err)
	assert.Equal(t, service.Placeholder("Test"), thumb)
}

func (c *client) editProfile(display, bio string, avatar []byte) *httptest.ResponseRecorder {
	t := c.app.t

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("display_name", display))
	require.NoError(t, w.WriteField("bio", bio))

	if avatar != nil {
		part, err := w.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = part.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/edit_profile", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func TestEditProfileReplacesAvatar(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	w := c.editProfile("Alice", "hello", img.Bytes())
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))

	first := a.user("alice")
	assert.Equal(t, "Alice", first.DisplayName)
	assert.Equal(t, "hello", first.Bio)
	require.NotEmpty(t, first.Avatar)
	assert.FileExists(t, a.mediaPath(storage.AvatarKey(first.Avatar)))

	require.Equal(t, http.StatusFound, c.editProfile("Alice", "", img.Bytes()).Code)

	second := a.user("alice")
	assert.NotEqual(t, first.Avatar, second.Avatar)
	assert.NoFileExists(t, a.mediaPath(storage.AvatarKey(first.Avatar)))
	assert.FileExists(t, a.mediaPath(storage.AvatarKey(second.Avatar)))

	// text that only claims to be a png is refused
	w = c.editProfile("Alice", "", []byte("not an image"))
	assert.Equal(t, "/edit_profile", w.Header().Get("Location"))
	assert.Equal(t, second.Avatar, a.user("alice").Avatar)
}

func TestPagesRender(t *testing.T) {
	a := newTestApp(t)
	c := a.client()
	require.Equal(t, http.StatusOK, c.register("alice", "pw").Code)
	v := c.uploadVideo("Test")
	require.Equal(t, http.StatusNoContent, c.post("/api/record_history", url.Values{"video_id": {fmt.Sprint(v.ID)}}).Code)

	for _, path := range []string{"/", "/?q=test", "/profile", "/profile/alice", "/edit_profile", "/subs", "/history"} {
		w := c.get(path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "EmoTube99", path)
	}

	assert.Contains(t, c.get("/?q=test").Body.String(), "Test")
	assert.Contains(t, c.get("/history").Body.String(), "Test")

	admin := a.client()
	require.Equal(t, http.StatusOK, admin.post("/admin-login", url.Values{"email": {"admin@emotube.local"}, "password": {"admin1234"}}).Code)

	w := admin.get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// anonymous visitors are sent to the entry page
	w = a.client().get("/subs")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/enter", w.Header().Get("Location"))
}

func TestLoginUpgradesOldHash(t *testing.T) {
	a := newTestApp(t)

	weak := security.New()
	weak.Params.Iterations = 1
	hash, err := weak.Hash("pw")
	require.NoError(t, err)
	require.NoError(t, a.deps.Store.CreateUser(context.Background(), &model.User{Username: "legacy", PasswordHash: hash}))

	w := a.client().post("/api/login", url.Values{"username": {"legacy"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, w.Code)

	stored := a.user("legacy").PasswordHash
	assert.NotEqual(t, hash, stored)

	ok, rehash, err := a.deps.Argon.Verify("pw", stored)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, rehash)
}
