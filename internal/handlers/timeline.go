package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/auth"
	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/internal/views"
)

type profileUserKey struct{}

// requireProfile halts with 404 when /t/:username names nobody and keeps
// the looked up user for the handlers behind it.
func (h *Handlers) requireProfile(c internal.Context) (internal.Outcome, error) {
	profile, err := h.users.FindByUsername(c, c.Param("username"))
	if err != nil {
		return internal.Outcome{}, err
	}
	if profile == nil {
		return internal.Respond(http.StatusNotFound, "User not Found"), nil
	}
	c.Set(profileUserKey{}, profile)
	return internal.Continue(), nil
}

// profileUser returns the user stored by requireProfile, loading it when
// the filter did not run.
func (h *Handlers) profileUser(c internal.Context) (*user.User, error) {
	if u := internal.ContextValue[*user.User](c, profileUserKey{}); u != nil {
		return u, nil
	}
	u, err := h.users.FindByUsername(c, c.Param("username"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrNotFound("User not Found")
	}
	return u, nil
}

func (h *Handlers) home(c internal.Context) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	if current == nil {
		return internal.Redirect("/public"), nil
	}

	messages, err := h.timeline.Full(c, current)
	if err != nil {
		return internal.Outcome{}, err
	}
	return internal.View(views.Timeline, map[string]any{
		"pageTitle": "JobsTimeline",
		"user":      current,
		"messages":  messages,
	}), nil
}

func (h *Handlers) public(c internal.Context) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	messages, err := h.timeline.Public(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	return internal.View(views.Timeline, map[string]any{
		"pageTitle": "Posted Jobs",
		"user":      current,
		"messages":  messages,
	}), nil
}

func (h *Handlers) profile(c internal.Context) (internal.Outcome, error) {
	profile, err := h.profileUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}

	followed, err := h.timeline.IsFollowing(c, current, profile)
	if err != nil {
		return internal.Outcome{}, err
	}
	messages, err := h.timeline.User(c, profile)
	if err != nil {
		return internal.Outcome{}, err
	}

	return internal.View(views.Timeline, map[string]any{
		"pageTitle":   profile.Username + "'s Timeline",
		"user":        current,
		"profileUser": profile,
		"followed":    followed,
		"messages":    messages,
	}), nil
}

func (h *Handlers) follow(c internal.Context) (internal.Outcome, error) {
	return h.changeFollow(c, h.timeline.Follow)
}

func (h *Handlers) unfollow(c internal.Context) (internal.Outcome, error) {
	return h.changeFollow(c, h.timeline.Unfollow)
}

func (h *Handlers) changeFollow(c internal.Context, change func(ctx context.Context, who, whom *user.User) error) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	if current == nil {
		return internal.Redirect("/login"), nil
	}
	profile, err := h.profileUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}

	if err := change(c, current, profile); err != nil && !errors.Is(err, timeline.ErrSelfFollow) {
		return internal.Outcome{}, err
	}
	return internal.Redirect("/t/" + profile.Username), nil
}

type messageForm struct {
	Title string `form:"title"`
	Text  string `form:"text"`
}

// postMessage publishes a job posting. An empty posting is dropped
// silently; both cases end on the user's timeline.
func (h *Handlers) postMessage(c internal.Context) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	if current == nil {
		return internal.Redirect("/login"), nil
	}

	var in messageForm
	if err := c.Bind(&in); err != nil {
		return internal.Outcome{}, err
	}
	if _, err := h.timeline.Post(c, current, in.Title, in.Text); err != nil && !errors.Is(err, timeline.ErrEmptyMessage) {
		return internal.Outcome{}, err
	}
	return internal.Redirect("/"), nil
}
