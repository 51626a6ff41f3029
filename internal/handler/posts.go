// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/imaging"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
)

// maxPostBodySize bounds a post form including its image.
const maxPostBodySize = imaging.MaxUploadSize + 1<<20

// PostList is one page of a post listing.
type PostList struct {
	Posts      []store.PostRow
	Pagination Pagination
}

// listPosts loads the page of posts matching filter selected by pageParam.
func listPosts(ctx context.Context, queries *store.Queries, filter store.PostFilter, pageParam string, perPage int, baseURL string) (PostList, error) {
	total, err := queries.CountPosts(ctx, filter)
	if err != nil {
		return PostList{}, fmt.Errorf("counting posts: %w", err)
	}
	pagination := NewPagination(pageParam, total, perPage, baseURL)

	posts, err := queries.ListPosts(ctx, filter, perPage, pagination.Offset())
	if err != nil {
		return PostList{}, fmt.Errorf("listing posts: %w", err)
	}
	return PostList{Posts: posts, Pagination: pagination}, nil
}

// PostHandler handles post listing, detail and editing routes.
type PostHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	errs     *ErrorPages
	images   *imaging.Processor
	perPage  int
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(db *sql.DB, renderer *render.Renderer, errs *ErrorPages, images *imaging.Processor, perPage int) *PostHandler {
	return &PostHandler{
		queries:  store.New(db),
		renderer: renderer,
		errs:     errs,
		images:   images,
		perPage:  perPage,
	}
}

// Index handles GET / - the public listing.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := listPosts(r.Context(), h.queries, store.PublicPosts(time.Now()), r.URL.Query().Get("page"), h.perPage, RouteRoot)
	if err != nil {
		h.errs.InternalError(w, r, "failed to load index", "error", err)
		return
	}
	renderPage(w, r, h.renderer, h.errs, TemplateIndex, render.TemplateData{
		Title: "Latest posts",
		Data:  list,
	})
}

// PostDetailData is passed to the detail template.
type PostDetailData struct {
	Post        store.PostRow
	Comments    []store.CommentRow
	CommentForm CommentForm
	Errors      FieldErrors
	CanComment  bool
	IsAuthor    bool
}

// loadVisiblePost returns the post with id if the viewer may see it.
func (h *PostHandler) loadVisiblePost(ctx context.Context, id, viewerID int64) (store.PostRow, error) {
	post, err := h.queries.GetPostByID(ctx, id)
	if err != nil {
		return post, blog.Lookup(err)
	}
	if !blog.CanView(post, viewerID, time.Now()) {
		return post, blog.ErrNotFound
	}
	return post, nil
}

// Detail handles GET /posts/{id}.
func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errs.NotFound(w, r)
		return
	}

	post, err := h.loadVisiblePost(r.Context(), id, middleware.GetUserID(r))
	if err != nil {
		h.errs.FromError(w, r, err, "failed to load post", "post_id", id)
		return
	}

	renderPostDetail(w, r, h.queries, h.renderer, h.errs, post, CommentForm{}, nil)
}

// renderPostDetail renders the detail page with an optional comment form
// state. Shared with the comment handler for invalid submissions.
func renderPostDetail(w http.ResponseWriter, r *http.Request, queries *store.Queries, renderer *render.Renderer, errs *ErrorPages, post store.PostRow, form CommentForm, formErrs FieldErrors) {
	comments, err := queries.ListCommentsForPost(r.Context(), post.ID)
	if err != nil {
		errs.InternalError(w, r, "failed to load comments", "error", err, "post_id", post.ID)
		return
	}

	viewerID := middleware.GetUserID(r)
	renderPage(w, r, renderer, errs, TemplateDetail, render.TemplateData{
		Title: post.Title,
		Data: PostDetailData{
			Post:        post,
			Comments:    comments,
			CommentForm: form,
			Errors:      formErrs,
			CanComment:  viewerID != 0 && blog.IsPublic(post, time.Now()),
			IsAuthor:    viewerID != 0 && post.AuthorID == viewerID,
		},
	})
}

// PostFormData is passed to the post form template.
type PostFormData struct {
	Form       PostForm
	Errors     FieldErrors
	Categories []store.Category
	Locations  []store.Location
	IsEdit     bool
	Action     string
}

func (h *PostHandler) renderForm(w http.ResponseWriter, r *http.Request, data PostFormData) {
	categories, err := h.queries.ListPublishedCategories(r.Context())
	if err != nil {
		h.errs.InternalError(w, r, "failed to list categories", "error", err)
		return
	}
	locations, err := h.queries.ListPublishedLocations(r.Context())
	if err != nil {
		h.errs.InternalError(w, r, "failed to list locations", "error", err)
		return
	}
	data.Categories = categories
	data.Locations = locations

	title := "New post"
	if data.IsEdit {
		title = "Edit post"
	}
	renderPage(w, r, h.renderer, h.errs, TemplatePostForm, render.TemplateData{Title: title, Data: data})
}

// NewForm handles GET /posts/create.
func (h *PostHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, PostFormData{Form: newPostForm(time.Now()), Action: "/posts/create/"})
}

// Create handles POST /posts/create.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := parsePostRequest(w, r); err != nil {
		h.renderForm(w, r, PostFormData{
			Form:   parsePostForm(r, ""),
			Errors: FieldErrors{"image": {err.Error()}},
			Action: "/posts/create/",
		})
		return
	}

	form := parsePostForm(r, "")
	pubDate, formErrs, err := form.validate(r.Context(), h.queries)
	if err != nil {
		h.errs.InternalError(w, r, "failed to validate post", "error", err)
		return
	}
	if formErrs.Any() {
		h.renderForm(w, r, PostFormData{Form: form, Errors: formErrs, Action: "/posts/create/"})
		return
	}

	image, formErrs, err := h.saveUpload(r)
	if err != nil {
		h.errs.InternalError(w, r, "failed to store image", "error", err)
		return
	}
	if formErrs.Any() {
		h.renderForm(w, r, PostFormData{Form: form, Errors: formErrs, Action: "/posts/create/"})
		return
	}

	id, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     pubDate,
		IsPublished: form.IsPublished,
		AuthorID:    user.ID,
		LocationID:  form.LocationID,
		CategoryID:  form.CategoryID,
		Image:       image,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		h.removeImage(image)
		h.errs.InternalError(w, r, "failed to create post", "error", err)
		return
	}

	slog.Info("post created", "post_id", id, "author_id", user.ID)
	flashSuccess(w, r, h.renderer, profileURL(user.Username), "Post published.")
}

// loadOwnPost resolves the post for edit and delete. Unknown ids are 404;
// other authors are sent back to the post detail page.
func (h *PostHandler) loadOwnPost(w http.ResponseWriter, r *http.Request) (store.PostRow, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errs.NotFound(w, r)
		return store.PostRow{}, false
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load post", "post_id", id)
		return post, false
	}

	if err := blog.RequireAuthor(post.AuthorID, middleware.GetUserID(r)); err != nil {
		slog.Debug("post change refused", "post_id", id, "user_id", middleware.GetUserID(r))
		flashError(w, r, h.renderer, postURL(id), "Only the author can change this post.")
		return post, false
	}
	return post, true
}

// EditForm handles GET /posts/{id}/edit.
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, PostFormData{
		Form:   postFormFromPost(post.Post),
		IsEdit: true,
		Action: fmt.Sprintf("/posts/%d/edit/", post.ID),
	})
}

// Update handles POST /posts/{id}/edit.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}
	action := fmt.Sprintf("/posts/%d/edit/", post.ID)

	if err := parsePostRequest(w, r); err != nil {
		h.renderForm(w, r, PostFormData{
			Form:   parsePostForm(r, post.Image),
			Errors: FieldErrors{"image": {err.Error()}},
			IsEdit: true,
			Action: action,
		})
		return
	}

	form := parsePostForm(r, post.Image)
	pubDate, formErrs, err := form.validate(r.Context(), h.queries)
	if err != nil {
		h.errs.InternalError(w, r, "failed to validate post", "error", err, "post_id", post.ID)
		return
	}
	if formErrs.Any() {
		h.renderForm(w, r, PostFormData{Form: form, Errors: formErrs, IsEdit: true, Action: action})
		return
	}

	uploaded, formErrs, err := h.saveUpload(r)
	if err != nil {
		h.errs.InternalError(w, r, "failed to store image", "error", err, "post_id", post.ID)
		return
	}
	if formErrs.Any() {
		h.renderForm(w, r, PostFormData{Form: form, Errors: formErrs, IsEdit: true, Action: action})
		return
	}

	image := post.Image
	switch {
	case uploaded != "":
		image = uploaded
	case form.ClearImage:
		image = ""
	}

	err = h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		ID:          post.ID,
		Title:       form.Title,
		Text:        form.Text,
		PubDate:     pubDate,
		IsPublished: form.IsPublished,
		LocationID:  form.LocationID,
		CategoryID:  form.CategoryID,
		Image:       image,
	})
	if err != nil {
		h.removeImage(uploaded)
		h.errs.InternalError(w, r, "failed to update post", "error", err, "post_id", post.ID)
		return
	}
	if image != post.Image {
		h.removeImage(post.Image)
	}

	slog.Info("post updated", "post_id", post.ID)
	flashSuccess(w, r, h.renderer, postURL(post.ID), "Post updated.")
}

// DeleteConfirm handles GET /posts/{id}/delete.
func (h *PostHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.renderer, h.errs, TemplatePostDelete, render.TemplateData{
		Title: "Delete post",
		Data:  post,
	})
}

// Delete handles POST /posts/{id}/delete. Comments go with the post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeletePost(r.Context(), post.ID); err != nil {
		h.errs.InternalError(w, r, "failed to delete post", "error", err, "post_id", post.ID)
		return
	}
	h.removeImage(post.Image)

	user := middleware.GetUser(r)
	slog.Info("post deleted", "post_id", post.ID, "author_id", user.ID)
	flashSuccess(w, r, h.renderer, profileURL(user.Username), "Post deleted.")
}

// parsePostRequest parses a multipart or urlencoded post form. The returned
// error is user-facing.
func parsePostRequest(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodySize)
	err := r.ParseMultipartForm(imaging.MaxUploadSize)
	var maxBytesErr *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	case errors.As(err, &maxBytesErr):
		return imaging.ErrTooLarge
	default:
		slog.Debug("invalid post form", "error", err)
		return errors.New("the submitted form could not be read")
	}
}

// saveUpload stores the "image" file if one was sent. Rejected images are
// reported as field errors.
func (h *PostHandler) saveUpload(r *http.Request) (string, FieldErrors, error) {
	if r.MultipartForm == nil {
		return "", nil, nil
	}
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	rel, err := h.images.SavePostImage(file)
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "", FieldErrors{"image": {"Upload a valid image. The file you uploaded was either not an image or a corrupted image."}}, nil
	case errors.Is(err, imaging.ErrTooLarge):
		return "", FieldErrors{"image": {"The image must be at most 10 MB."}}, nil
	case err != nil:
		return "", nil, err
	}
	return rel, nil, nil
}

func (h *PostHandler) removeImage(rel string) {
	if rel == "" {
		return
	}
	if err := h.images.Remove(rel); err != nil {
		slog.Warn("failed to remove post image", "image", rel, "error", err)
	}
}
