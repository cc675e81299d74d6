package views_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/internal/views"
)

func render(t *testing.T, view string, data map[string]any) string {
	t.Helper()
	out, err := views.NewRenderer().Render(context.Background(), view, data)
	require.NoError(t, err)
	return string(out)
}

func TestRenderer_UnknownView(t *testing.T) {
	t.Parallel()

	_, err := views.NewRenderer().Render(context.Background(), "nope", nil)
	require.ErrorIs(t, err, views.ErrUnknownView)
}

func TestLoginPage(t *testing.T) {
	t.Parallel()

	html := render(t, views.Login, map[string]any{
		"username": `<b>bob</b>`,
		"error":    "Invalid username",
		"message":  "You were successfully registered and can login now",
	})

	assert.Contains(t, html, "<title>Sign In | Gatlingbook</title>")
	assert.Contains(t, html, `value="&lt;b&gt;bob&lt;/b&gt;"`)
	assert.Contains(t, html, "Invalid username")
	assert.Contains(t, html, "successfully registered")
	assert.NotContains(t, html, "<b>bob</b>")
}

func TestRegisterPage(t *testing.T) {
	t.Parallel()

	html := render(t, views.Register, map[string]any{"username": "bob", "email": "bob@x.com", "error": "The username is already taken"})
	assert.Contains(t, html, `name="email" size="30" value="bob@x.com"`)
	assert.Contains(t, html, "The username is already taken")

	empty := render(t, views.Register, map[string]any{})
	assert.NotContains(t, empty, `class="error"`)
}

func TestTimelinePage(t *testing.T) {
	t.Parallel()

	alice := &user.User{ID: 1, Username: "alice"}
	bob := &user.User{ID: 2, Username: "bob"}
	messages := []timeline.Message{
		{ID: 7, AuthorID: 2, Author: "bob", Title: "Go dev", HTML: "<p><strong>remote</strong></p>", PubDate: time.Now()},
	}

	t.Run("own timeline has post form", func(t *testing.T) {
		t.Parallel()

		html := render(t, views.Timeline, map[string]any{"pageTitle": "JobsTimeline", "user": alice, "messages": messages})
		assert.Contains(t, html, `action="/message"`)
		assert.Contains(t, html, "sign out [alice]")
		assert.Contains(t, html, "<strong>remote</strong>")
		assert.Contains(t, html, `href="/application?job=7"`)
	})

	t.Run("profile shows follow state", func(t *testing.T) {
		t.Parallel()

		html := render(t, views.Timeline, map[string]any{"pageTitle": "bob's Timeline", "user": alice, "profileUser": bob, "followed": true})
		assert.Contains(t, html, `href="/t/bob/unfollow"`)
		assert.Contains(t, html, "bob&#39;s Timeline")
		assert.NotContains(t, html, `action="/message"`)
		assert.Contains(t, html, "There's no message so far.")
	})

	t.Run("anonymous public timeline", func(t *testing.T) {
		t.Parallel()

		html := render(t, views.Timeline, map[string]any{"pageTitle": "Posted Jobs", "messages": messages})
		assert.Contains(t, html, `href="/login"`)
		assert.NotContains(t, html, "apply</a>")
		assert.NotContains(t, html, "followstatus")
	})
}

func TestApplicationPage(t *testing.T) {
	t.Parallel()

	html := render(t, views.Application, map[string]any{
		"user":        &user.User{ID: 2, Username: "bob"},
		"job":         &timeline.Message{ID: 3, Title: "Go dev", Author: "acme", HTML: "<p>Write Go.</p>"},
		"coverLetter": "Hire me",
		"message":     "Your application was submitted",
	})

	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, `name="job" value="3"`)
	assert.Contains(t, html, ">Hire me</textarea>")
	assert.Contains(t, html, "Your application was submitted")
}

func TestRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := views.NewRenderer().Render(ctx, views.Login, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestApplicationPage_EscapesJobTitle(t *testing.T) {
	t.Parallel()

	html := render(t, views.Application, map[string]any{
		"job": &timeline.Message{ID: 4, Title: "<script>x</script>", Author: "acme"},
	})
	assert.Contains(t, html, "<h3>&lt;script&gt;x&lt;/script&gt;</h3>")
	assert.NotContains(t, html, "<script>")
}
