// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
)

// Route pattern constants for chi router registration. Routes are
// registered without a trailing slash; StripSlashes maps "/x/" to "/x".
const (
	// RouteRoot is the index listing.
	RouteRoot = "/"
	// RoutePostCreate is the new post form.
	RoutePostCreate = "/posts/create"
	// RoutePostDetail is a single post.
	RoutePostDetail = "/posts/{id}"
	// RoutePostEdit is the post edit form.
	RoutePostEdit = "/posts/{id}/edit"
	// RoutePostDelete is the post delete confirmation.
	RoutePostDelete = "/posts/{id}/delete"
	// RouteCommentCreate accepts new comments.
	RouteCommentCreate = "/posts/{id}/comment"
	// RouteCommentEdit is the comment edit form.
	RouteCommentEdit = "/posts/{id}/comment/{commentID}/edit"
	// RouteCommentDelete is the comment delete confirmation.
	RouteCommentDelete = "/posts/{id}/comment/{commentID}/delete"
	// RouteCommentEditLegacy and RouteCommentDeleteLegacy keep the older
	// edit_comment/delete_comment links working.
	RouteCommentEditLegacy   = "/posts/{id}/edit_comment/{commentID}"
	RouteCommentDeleteLegacy = "/posts/{id}/delete_comment/{commentID}"
	// RouteCategory is a category listing.
	RouteCategory = "/category/{slug}"
	// RouteProfile is a user's profile.
	RouteProfile = "/profile/{username}"
	// RouteProfileEdit is the profile edit form.
	RouteProfileEdit = "/profile/{username}/edit"

	// RouteLogin is the login route.
	RouteLogin = "/auth/login"
	// RouteLogout is the logout route.
	RouteLogout = "/auth/logout"
	// RouteRegistration is the sign-up route.
	RouteRegistration = "/auth/registration"

	// RouteAbout is the about page.
	RouteAbout = "/pages/about"
	// RouteRules is the rules page.
	RouteRules = "/pages/rules"
	// RouteHealth is the health check.
	RouteHealth = "/health"
	// RouteSitemap is the XML sitemap.
	RouteSitemap = "/sitemap.xml"
	// RouteRobots is robots.txt.
	RouteRobots = "/robots.txt"
)

// Template names as registered by the renderer.
const (
	TemplateIndex         = "blog/index"
	TemplateDetail        = "blog/detail"
	TemplateCategory      = "blog/category"
	TemplateProfile       = "blog/profile"
	TemplatePostForm      = "blog/post_form"
	TemplatePostDelete    = "blog/post_delete"
	TemplateCommentForm   = "blog/comment_form"
	TemplateCommentDelete = "blog/comment_delete"
	TemplateProfileForm   = "blog/profile_form"
	TemplateLogin         = "auth/login"
	TemplateRegistration  = "auth/registration"
	TemplateAbout         = "pages/about"
	TemplateRules         = "pages/rules"
	TemplateNotFound      = "errors/404"
	TemplateForbidden     = "errors/403"
	TemplateCSRFFailure   = "errors/403csrf"
	TemplateServerError   = "errors/500"
)

// Flash message types.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
)

func postURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func categoryURL(slug string) string {
	return "/category/" + url.PathEscape(slug) + "/"
}
