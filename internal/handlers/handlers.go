// Package handlers registers the routes and before-filters of the site.
package handlers

import (
	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/application"
	"github.com/gatlingbook/gatlingbook/internal/auth"
	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
)

// Handlers serves every page of the site.
type Handlers struct {
	users        *user.Service
	timeline     *timeline.Service
	applications *application.Service
}

// New creates the site handlers.
func New(users *user.Service, tl *timeline.Service, apps *application.Service) *Handlers {
	return &Handlers{users: users, timeline: tl, applications: apps}
}

// Routes implements internal.Handler. Filters run in the order listed here.
func (h *Handlers) Routes(r internal.Router) {
	r.Before("/", auth.RequireUser("/public"))
	r.Before("/login", auth.RedirectIfAuthenticated("/"))
	r.Before("/register", auth.RedirectIfAuthenticated("/"))
	r.Before("/application", auth.RequireUser("/application"))
	r.Before("/message", auth.RequireUser("/login"))
	r.Before("/t/:username", h.requireProfile)
	r.Before("/t/:username/follow", auth.RequireUser("/login"))
	r.Before("/t/:username/unfollow", auth.RequireUser("/login"))

	r.GET("/", h.home)
	r.GET("/public", h.public)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
	r.GET("/application", h.applicationForm)
	r.POST("/application", h.apply)
	r.POST("/message", h.postMessage)
	r.GET("/t/:username", h.profile)
	r.GET("/t/:username/follow", h.follow)
	r.GET("/t/:username/unfollow", h.unfollow)
	r.GET("/logout", h.logout)
}
