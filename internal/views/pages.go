package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
)

type timelineData struct {
	Title    string
	Current  *user.User
	Profile  *user.User
	Followed bool
	Messages []timeline.Message
}

type loginData struct {
	Username string
	Error    string
	Message  string
}

type registerData struct {
	Username string
	Email    string
	Error    string
}

type applicationData struct {
	Current     *user.User
	Job         *timeline.Message
	JobID       string
	CoverLetter string
	Error       string
	Message     string
}

// timelinePage keys: pageTitle, user, profileUser, followed, messages.
func timelinePage(data map[string]any) templ.Component {
	return timelineView(timelineData{
		Title:    value[string](data, "pageTitle"),
		Current:  value[*user.User](data, "user"),
		Profile:  value[*user.User](data, "profileUser"),
		Followed: value[bool](data, "followed"),
		Messages: value[[]timeline.Message](data, "messages"),
	})
}

// loginPage keys: username, error, message.
func loginPage(data map[string]any) templ.Component {
	return loginView(loginData{
		Username: value[string](data, "username"),
		Error:    value[string](data, "error"),
		Message:  value[string](data, "message"),
	})
}

// registerPage keys: username, email, error.
func registerPage(data map[string]any) templ.Component {
	return registerView(registerData{
		Username: value[string](data, "username"),
		Email:    value[string](data, "email"),
		Error:    value[string](data, "error"),
	})
}

// applicationPage keys: user, job, coverLetter, error, message.
func applicationPage(data map[string]any) templ.Component {
	d := applicationData{
		Current:     value[*user.User](data, "user"),
		Job:         value[*timeline.Message](data, "job"),
		CoverLetter: value[string](data, "coverLetter"),
		Error:       value[string](data, "error"),
		Message:     value[string](data, "message"),
	}
	if d.Job != nil {
		d.JobID = strconv.FormatInt(d.Job.ID, 10)
	}
	return applicationView(d)
}
