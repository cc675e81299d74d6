package handlers

import (
	"errors"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/auth"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/internal/views"
)

const registeredMessage = "You were successfully registered and can login now"

func (h *Handlers) loginForm(c internal.Context) (internal.Outcome, error) {
	data := map[string]any{}
	if c.Request().URL.Query().Has("r") {
		data["message"] = registeredMessage
	}
	return internal.View(views.Login, data), nil
}

func (h *Handlers) login(c internal.Context) (internal.Outcome, error) {
	var in user.User
	if err := c.Bind(&in); err != nil {
		return internal.Outcome{}, err
	}

	res, err := h.users.CheckUser(c, &in)
	if err != nil {
		return internal.Outcome{}, err
	}
	if res.OK() {
		if err := auth.AddAuthenticatedUser(c, res.User); err != nil {
			return internal.Outcome{}, err
		}
		return internal.Redirect("/"), nil
	}

	return internal.View(views.Login, map[string]any{
		"error":    res.Error,
		"username": in.Username,
	}), nil
}

func (h *Handlers) registerForm(internal.Context) (internal.Outcome, error) {
	return internal.View(views.Register, nil), nil
}

func (h *Handlers) register(c internal.Context) (internal.Outcome, error) {
	var in user.User
	if err := c.Bind(&in); err != nil {
		return internal.Outcome{}, err
	}

	var msg string
	switch err := h.users.Register(c, &in); {
	case err == nil:
		return internal.Redirect("/login?r=1"), nil
	case user.IsValidationError(err):
		msg = err.Error()
	case errors.Is(err, user.ErrDuplicate):
		msg = user.MsgUsernameTaken
	default:
		return internal.Outcome{}, err
	}

	return internal.View(views.Register, map[string]any{
		"error":    msg,
		"username": in.Username,
		"email":    in.Email,
	}), nil
}

// logout always ends on the public timeline, with or without a session user.
func (h *Handlers) logout(c internal.Context) (internal.Outcome, error) {
	if err := auth.RemoveAuthenticatedUser(c); err != nil {
		return internal.Outcome{}, err
	}
	if err := c.DestroySession(); err != nil {
		return internal.Outcome{}, err
	}
	return internal.Redirect("/public"), nil
}
