// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/blogicum/internal/blog"
	"github.com/olegiv/blogicum/internal/middleware"
	"github.com/olegiv/blogicum/internal/render"
	"github.com/olegiv/blogicum/internal/store"
)

// CommentHandler handles comment routes.
type CommentHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	errs     *ErrorPages
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(db *sql.DB, renderer *render.Renderer, errs *ErrorPages) *CommentHandler {
	return &CommentHandler{
		queries:  store.New(db),
		renderer: renderer,
		errs:     errs,
	}
}

// Create handles POST /posts/{id}/comment. Only publicly visible posts
// accept comments, including for their author.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := parseIDParam(r, "id")
	if err != nil {
		h.errs.NotFound(w, r)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), postID)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load post", "post_id", postID)
		return
	}
	if !blog.IsPublic(post, time.Now()) {
		h.errs.NotFound(w, r)
		return
	}

	form := CommentForm{Text: strings.TrimSpace(r.FormValue("text"))}
	if formErrs := form.validate(); formErrs.Any() {
		renderPostDetail(w, r, h.queries, h.renderer, h.errs, post, form, formErrs)
		return
	}

	user := middleware.GetUser(r)
	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		Text:      form.Text,
		PostID:    post.ID,
		AuthorID:  user.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.errs.InternalError(w, r, "failed to create comment", "error", err, "post_id", post.ID)
		return
	}

	slog.Info("comment created", "comment_id", comment.ID, "post_id", post.ID, "author_id", user.ID)
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// loadOwnComment resolves the comment for edit and delete. The comment
// must belong to the post in the URL; other authors get a 403.
func (h *CommentHandler) loadOwnComment(w http.ResponseWriter, r *http.Request) (store.Comment, bool) {
	postID, err := parseIDParam(r, "id")
	if err != nil {
		h.errs.NotFound(w, r)
		return store.Comment{}, false
	}
	commentID, err := parseIDParam(r, "commentID")
	if err != nil {
		h.errs.NotFound(w, r)
		return store.Comment{}, false
	}

	comment, err := h.queries.GetCommentByID(r.Context(), commentID)
	if err != nil {
		h.errs.FromError(w, r, blog.Lookup(err), "failed to load comment", "comment_id", commentID)
		return comment, false
	}
	if comment.PostID != postID {
		h.errs.NotFound(w, r)
		return comment, false
	}

	if err := blog.RequireAuthor(comment.AuthorID, middleware.GetUserID(r)); err != nil {
		slog.Warn("comment change refused", "comment_id", commentID, "user_id", middleware.GetUserID(r))
		h.errs.Forbidden(w, r)
		return comment, false
	}
	return comment, true
}

// CommentFormData is passed to the comment edit and delete templates.
type CommentFormData struct {
	Comment store.Comment
	Form    CommentForm
	Errors  FieldErrors
}

// EditForm handles GET /posts/{id}/comment/{commentID}/edit.
func (h *CommentHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.renderer, h.errs, TemplateCommentForm, render.TemplateData{
		Title: "Edit comment",
		Data:  CommentFormData{Comment: comment, Form: CommentForm{Text: comment.Text}},
	})
}

// Update handles POST /posts/{id}/comment/{commentID}/edit. Only the text
// changes; author and creation time stay as they were.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	form := CommentForm{Text: strings.TrimSpace(r.FormValue("text"))}
	if formErrs := form.validate(); formErrs.Any() {
		renderPage(w, r, h.renderer, h.errs, TemplateCommentForm, render.TemplateData{
			Title: "Edit comment",
			Data:  CommentFormData{Comment: comment, Form: form, Errors: formErrs},
		})
		return
	}

	if err := h.queries.UpdateCommentText(r.Context(), comment.ID, form.Text); err != nil {
		h.errs.InternalError(w, r, "failed to update comment", "error", err, "comment_id", comment.ID)
		return
	}

	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}

// DeleteConfirm handles GET /posts/{id}/comment/{commentID}/delete.
func (h *CommentHandler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}
	renderPage(w, r, h.renderer, h.errs, TemplateCommentDelete, render.TemplateData{
		Title: "Delete comment",
		Data:  CommentFormData{Comment: comment},
	})
}

// Delete handles POST /posts/{id}/comment/{commentID}/delete.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.loadOwnComment(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteComment(r.Context(), comment.ID); err != nil {
		h.errs.InternalError(w, r, "failed to delete comment", "error", err, "comment_id", comment.ID)
		return
	}

	slog.Info("comment deleted", "comment_id", comment.ID, "post_id", comment.PostID)
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}
