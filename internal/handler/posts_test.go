// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blogicum/internal/store"
	"github.com/olegiv/blogicum/internal/testutil"
)

func TestIndex_Visibility(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	now := time.Now()

	publicPost(t, app.db, w.alice, w.travel, "Visible post")
	testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Unpublished post", PubDate: now.Add(-48 * time.Hour), IsPublished: false,
		AuthorID: w.alice.ID, CategoryID: w.travel.ID,
	})
	testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Scheduled post", PubDate: now.Add(24 * time.Hour), IsPublished: true,
		AuthorID: w.alice.ID, CategoryID: w.travel.ID,
	})
	testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Hidden category post", PubDate: now.Add(-time.Hour), IsPublished: true,
		AuthorID: w.alice.ID, CategoryID: w.hidden.ID,
	})

	for _, cookie := range []*http.Cookie{nil, app.login(w.alice.ID)} {
		rr := app.get("/", cookie)
		require.Equal(t, http.StatusOK, rr.Code)

		body := rr.Body.String()
		assert.Contains(t, body, "Visible post")
		assert.NotContains(t, body, "Unpublished post")
		assert.NotContains(t, body, "Scheduled post")
		assert.NotContains(t, body, "Hidden category post")
	}
}

func TestIndex_OrderedByPubDate(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	now := time.Now()

	testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Older post", PubDate: now.Add(-48 * time.Hour), IsPublished: true,
		AuthorID: w.alice.ID, CategoryID: w.travel.ID,
	})
	testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Yesterday post", PubDate: now.Add(-24 * time.Hour), IsPublished: true,
		AuthorID: w.bob.ID, CategoryID: w.travel.ID,
	})

	body := app.get("/", nil).Body.String()
	newer := strings.Index(body, "Yesterday post")
	older := strings.Index(body, "Older post")
	require.NotEqual(t, -1, newer)
	require.NotEqual(t, -1, older)
	assert.Less(t, newer, older, "newer post should be listed first")
}

func TestIndex_Pagination(t *testing.T) {
	app := newTestApp(t, withPerPage(2))
	w := newWorld(t, app.db)
	now := time.Now()

	for i, title := range []string{"Post A", "Post B", "Post C"} {
		testutil.CreatePost(t, app.db, store.CreatePostParams{
			Title: title, PubDate: now.Add(-time.Duration(i+1) * time.Hour), IsPublished: true,
			AuthorID: w.alice.ID, CategoryID: w.travel.ID,
		})
	}

	tests := []struct {
		query   string
		want    []string
		notWant []string
	}{
		{"", []string{"Post A", "Post B"}, []string{"Post C"}},
		{"?page=2", []string{"Post C"}, []string{"Post A"}},
		{"?page=abc", []string{"Post A"}, []string{"Post C"}},
		{"?page=99", []string{"Post C"}, []string{"Post A"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := app.get("/"+tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			for _, s := range tt.want {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestIndex_ShowsCommentCount(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	p := publicPost(t, app.db, w.alice, w.travel, "Discussed")

	for range 3 {
		_, err := app.queries.CreateComment(context.Background(), store.CreateCommentParams{
			Text: "hi", PostID: p.ID, AuthorID: w.bob.ID, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	assert.Contains(t, app.get("/", nil).Body.String(), "Comments: 3")
}

func TestPostDetail(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)

	public := publicPost(t, app.db, w.alice, w.travel, "Public")
	draft := testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Draft", PubDate: time.Now().Add(time.Hour), IsPublished: false,
		AuthorID: w.alice.ID, CategoryID: w.travel.ID,
	})
	hiddenCat := testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "In hidden", PubDate: time.Now().Add(-time.Hour), IsPublished: true,
		AuthorID: w.alice.ID, CategoryID: w.hidden.ID,
	})

	alice := app.login(w.alice.ID)
	bob := app.login(w.bob.ID)

	tests := []struct {
		name   string
		path   string
		cookie *http.Cookie
		want   int
	}{
		{"public anonymous", postURL(public.ID), nil, http.StatusOK},
		{"public without trailing slash", strings.TrimSuffix(postURL(public.ID), "/"), nil, http.StatusOK},
		{"draft anonymous", postURL(draft.ID), nil, http.StatusNotFound},
		{"draft other user", postURL(draft.ID), bob, http.StatusNotFound},
		{"draft author", postURL(draft.ID), alice, http.StatusOK},
		{"hidden category other user", postURL(hiddenCat.ID), bob, http.StatusNotFound},
		{"hidden category author", postURL(hiddenCat.ID), alice, http.StatusOK},
		{"unknown id", "/posts/9999/", nil, http.StatusNotFound},
		{"non-numeric id", "/posts/abc/", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.get(tt.path, tt.cookie)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestPostDetail_RendersMarkdownSafely(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	p := testutil.CreatePost(t, app.db, store.CreatePostParams{
		Title: "Markup", Text: "**bold** <script>alert(1)</script>", PubDate: time.Now().Add(-time.Hour),
		IsPublished: true, AuthorID: w.alice.ID, CategoryID: w.travel.ID,
	})

	body := app.get(postURL(p.ID), nil).Body.String()
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestPostCreate_RequiresLogin(t *testing.T) {
	app := newTestApp(t)

	rr := app.get("/posts/create/", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", rr.Header().Get("Location"))

	rr = app.post("/posts/create/", postForm("x", 1), nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/auth/login/"))
}

func TestPostCreate(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	alice := app.login(w.alice.ID)

	rr := app.get("/posts/create/", alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Category travel")
	assert.NotContains(t, rr.Body.String(), "Category hidden", "unpublished categories are not offered")

	form := postForm("My trip", w.travel.ID)
	form.Set("location", itoa(w.place.ID))
	rr = app.post("/posts/create/", form, alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/profile/alice/", rr.Header().Get("Location"))

	posts, err := app.queries.ListPosts(context.Background(), store.PostFilter{}.ByAuthor(w.alice.ID), 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "My trip", posts[0].Title)
	assert.Equal(t, w.alice.ID, posts[0].AuthorID)
	assert.Equal(t, w.travel.ID, posts[0].CategoryID.Int64)
	assert.Equal(t, w.place.ID, posts[0].LocationID.Int64)
	assert.True(t, posts[0].IsPublished)
}

func TestPostCreate_ValidationErrors(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	alice := app.login(w.alice.ID)

	tests := []struct {
		name   string
		mutate func(url.Values)
		field  string
	}{
		{"missing title", func(v url.Values) { v.Set("title", "  ") }, "This field is required."},
		{"missing text", func(v url.Values) { v.Del("text") }, "This field is required."},
		{"title too long", func(v url.Values) { v.Set("title", strings.Repeat("x", MaxTitleLength+1)) }, "at most 256 characters"},
		{"bad date", func(v url.Values) { v.Set("pub_date", "yesterday") }, "Enter a valid date/time."},
		{"missing category", func(v url.Values) { v.Del("category") }, "This field is required."},
		{"unpublished category", func(v url.Values) { v.Set("category", itoa(w.hidden.ID)) }, "Select a valid choice."},
		{"unknown location", func(v url.Values) { v.Set("location", "999") }, "Select a valid choice."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := postForm("Title", w.travel.ID)
			tt.mutate(form)

			rr := app.post("/posts/create/", form, alice)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.field)

			n, err := app.queries.CountPosts(context.Background(), store.PostFilter{})
			require.NoError(t, err)
			assert.Zero(t, n, "nothing may be persisted")
		})
	}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestPostCreate_WithImage(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	alice := app.login(w.alice.ID)

	rr := app.postMultipart("/posts/create/", postForm("With image", w.travel.ID), pngBytes(t, 20, 10), alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	posts, err := app.queries.ListPosts(context.Background(), store.PostFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].Image)
	assert.True(t, strings.HasPrefix(posts[0].Image, "posts/"))

	_, err = os.Stat(filepath.Join(app.uploads, filepath.FromSlash(posts[0].Image)))
	assert.NoError(t, err)
}

func TestPostCreate_RejectsNonImage(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	alice := app.login(w.alice.ID)

	rr := app.postMultipart("/posts/create/", postForm("Bad image", w.travel.ID), []byte("not an image at all"), alice)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Upload a valid image")

	n, err := app.queries.CountPosts(context.Background(), store.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostEdit(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	p := publicPost(t, app.db, w.alice, w.travel, "Original")
	editURL := "/posts/" + itoa(p.ID) + "/edit/"

	t.Run("other user is sent to the post", func(t *testing.T) {
		bob := app.login(w.bob.ID)

		rr := app.get(editURL, bob)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, postURL(p.ID), rr.Header().Get("Location"))

		rr = app.post(editURL, postForm("Hacked", w.travel.ID), bob)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, postURL(p.ID), rr.Header().Get("Location"))

		got, err := app.queries.GetPostByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Title)

		rr = app.get(postURL(p.ID), bob)
		assert.Contains(t, rr.Body.String(), "Only the author can change this post.")
	})

	t.Run("unknown post", func(t *testing.T) {
		rr := app.get("/posts/9999/edit/", app.login(w.alice.ID))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("author updates", func(t *testing.T) {
		alice := app.login(w.alice.ID)

		rr := app.get(editURL, alice)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `value="Original"`)

		form := postForm("Renamed", w.travel.ID)
		form.Del("is_published")
		rr = app.post(editURL, form, alice)
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, postURL(p.ID), rr.Header().Get("Location"))

		got, err := app.queries.GetPostByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.False(t, got.IsPublished)
		assert.Equal(t, w.alice.ID, got.AuthorID)
	})
}

func TestPostEdit_ReplacesAndClearsImage(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	alice := app.login(w.alice.ID)

	rr := app.postMultipart("/posts/create/", postForm("Pic", w.travel.ID), pngBytes(t, 4, 4), alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	posts, err := app.queries.ListPosts(context.Background(), store.PostFilter{}, 1, 0)
	require.NoError(t, err)
	first := posts[0]
	editURL := "/posts/" + itoa(first.ID) + "/edit/"

	rr = app.postMultipart(editURL, postForm("Pic", w.travel.ID), pngBytes(t, 6, 6), alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	second, err := app.queries.GetPostByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Image, second.Image)
	_, err = os.Stat(filepath.Join(app.uploads, filepath.FromSlash(first.Image)))
	assert.True(t, os.IsNotExist(err), "replaced image should be removed")

	form := postForm("Pic", w.travel.ID)
	form.Set("image_clear", "on")
	rr = app.post(editURL, form, alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	third, err := app.queries.GetPostByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Empty(t, third.Image)
}

func TestPostDelete(t *testing.T) {
	app := newTestApp(t)
	w := newWorld(t, app.db)
	p := publicPost(t, app.db, w.alice, w.travel, "Doomed")
	deleteURL := "/posts/" + itoa(p.ID) + "/delete/"

	const comments = 4
	for range comments {
		_, err := app.queries.CreateComment(context.Background(), store.CreateCommentParams{
			Text: "bye", PostID: p.ID, AuthorID: w.bob.ID, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	bob := app.login(w.bob.ID)
	rr := app.post(deleteURL, nil, bob)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, postURL(p.ID), rr.Header().Get("Location"))
	_, err := app.queries.GetPostByID(context.Background(), p.ID)
	require.NoError(t, err, "post must survive a delete by another user")

	alice := app.login(w.alice.ID)
	rr = app.get(deleteURL, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Doomed")

	rr = app.post(deleteURL, nil, alice)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/profile/alice/", rr.Header().Get("Location"))

	_, err = app.queries.GetPostByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Zero(t, testutil.CountComments(t, app.db, p.ID))
}
