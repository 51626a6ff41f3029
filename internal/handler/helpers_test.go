// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/cache"
	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/session"
	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/testutil"
	"github.com/olegiv/blogicum/web"
)

// testApp is the full router over a temporary database.
type testApp struct {
	t       *testing.T
	db      *sql.DB
	queries *store.Queries
	sm      *scs.SessionManager
	router  http.Handler
	uploads string
}

type testAppOption func(*RouterConfig)

func withLoginProtection(lp *middleware.LoginProtection) testAppOption {
	return func(cfg *RouterConfig) { cfg.LoginProtection = lp }
}

func withPerPage(n int) testAppOption {
	return func(cfg *RouterConfig) { cfg.PostsPerPage = n }
}

func newTestApp(t *testing.T, opts ...testAppOption) *testApp {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	require.NoError(t, err)
	static, err := fs.Sub(web.Static, "static")
	require.NoError(t, err)

	memory := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = memory.Close() })

	uploads := t.TempDir()
	cfg := RouterConfig{
		DB:            db,
		Sessions:      sm,
		Renderer:      renderer,
		Images:        imaging.NewProcessor(uploads),
		Categories:    cache.NewCategoryCache(memory, store.New(db), time.Minute),
		Cache:         memory,
		CacheBackend:  cache.BackendMemory,
		StaticFS:      static,
		PostsPerPage:  10,
		IsDevelopment: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testApp{
		t:       t,
		db:      db,
		queries: store.New(db),
		sm:      sm,
		router:  NewRouter(cfg),
		uploads: uploads,
	}
}

// login returns a session cookie for userID.
func (a *testApp) login(userID int64) *http.Cookie {
	a.t.Helper()
	ctx, err := a.sm.Load(context.Background(), "")
	require.NoError(a.t, err)
	a.sm.Put(ctx, middleware.SessionKeyUserID, userID)
	token, _, err := a.sm.Commit(ctx)
	require.NoError(a.t, err)
	return &http.Cookie{Name: a.sm.Cookie.Name, Value: token}
}

func (a *testApp) serve(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, target, nil), cookie)
}

func (a *testApp) post(target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, cookie)
}

// postMultipart sends form with an optional "image" file.
func (a *testApp) postMultipart(target string, form url.Values, image []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(a.t, mw.WriteField(k, v))
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(a.t, err)
		_, err = io.Copy(fw, bytes.NewReader(image))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.serve(req, cookie)
}

// world is a small fixture: two users, published and hidden taxonomy.
type world struct {
	alice, bob     store.User
	travel, hidden store.Category
	place          store.Location
}

func newWorld(t *testing.T, db *sql.DB) world {
	t.Helper()
	return world{
		alice:  testutil.CreateUser(t, db, "alice"),
		bob:    testutil.CreateUser(t, db, "bob"),
		travel: testutil.CreateCategory(t, db, "travel", true),
		hidden: testutil.CreateCategory(t, db, "hidden", false),
		place:  testutil.CreateLocation(t, db, "Old Town", true),
	}
}

// publicPost creates a post visible to everyone, published an hour ago.
func publicPost(t *testing.T, db *sql.DB, author store.User, category store.Category, title string) store.PostRow {
	t.Helper()
	return testutil.CreatePost(t, db, store.CreatePostParams{
		Title:       title,
		PubDate:     time.Now().Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
		CategoryID:  category.ID,
	})
}

// postForm returns valid post form values.
func postForm(title string, categoryID int64) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"Hello **world**."},
		"pub_date":     {time.Now().Add(-time.Minute).Local().Format(PubDateLayout)},
		"category":     {itoa(categoryID)},
		"is_published": {"on"},
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
