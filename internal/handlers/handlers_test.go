package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/application"
	"github.com/gatlingbook/gatlingbook/internal/handlers"
	"github.com/gatlingbook/gatlingbook/internal/tasks"
	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/internal/views"
	"github.com/gatlingbook/gatlingbook/pkg/cookie"
	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/session"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type enqueued struct {
	name    string
	payload any
}

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueued
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, enqueued{name: name, payload: payload})
	return nil
}

func (e *recordingEnqueuer) all() []enqueued {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]enqueued(nil), e.jobs...)
}

type site struct {
	url      string
	store    *storage.Memory
	enqueuer *recordingEnqueuer
	timeline *timeline.Service
	users    *user.Service
}

func newSite(t *testing.T) *site {
	t.Helper()

	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)

	users := user.NewService(user.NewMemoryRepository(), user.WithLimiter(user.NewLimiter(5)))
	tl := timeline.NewService(timeline.NewMemoryRepository(), nil)
	apps := application.NewService(application.NewMemoryRepository(), tl, nil)

	s := &site{
		store:    storage.NewMemory(),
		enqueuer: &recordingEnqueuer{},
		timeline: tl,
		users:    users,
	}

	app := internal.New(
		internal.WithSession(session.NewMemoryStore(), cookies),
		internal.WithRenderer(views.NewRenderer()),
		internal.WithEnqueuer(s.enqueuer),
		internal.WithStorage(s.store),
		internal.WithHandlers(handlers.New(users, tl, apps)),
	)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	s.url = srv.URL
	return s
}

// client returns a browser-like client that keeps cookies and does not
// follow redirects.
func (s *site) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func read(t *testing.T, resp *http.Response, err error) response {
	t.Helper()
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (s *site) get(t *testing.T, c *http.Client, path string) response {
	t.Helper()
	resp, err := c.Get(s.url + path)
	return read(t, resp, err)
}

func (s *site) post(t *testing.T, c *http.Client, path string, form url.Values) response {
	t.Helper()
	resp, err := c.PostForm(s.url+path, form)
	return read(t, resp, err)
}

func (s *site) register(t *testing.T, c *http.Client, name, password string) response {
	t.Helper()
	return s.post(t, c, "/register", url.Values{
		"username":  {name},
		"email":     {name + "@example.com"},
		"password":  {password},
		"password2": {password},
	})
}

func (s *site) login(t *testing.T, c *http.Client, name, password string) response {
	t.Helper()
	return s.post(t, c, "/login", url.Values{"username": {name}, "password": {password}})
}

// signedIn registers name and returns a client logged in as that user.
func (s *site) signedIn(t *testing.T, name string) *http.Client {
	t.Helper()
	c := s.client(t)
	require.Equal(t, "/login?r=1", s.register(t, c, name, "secret").location)
	require.Equal(t, "/", s.login(t, c, name, "secret").location)
	return c
}

func (s *site) postJob(t *testing.T, author string, title string) *timeline.Message {
	t.Helper()
	u, err := s.users.FindByUsername(context.Background(), author)
	require.NoError(t, err)
	require.NotNil(t, u)
	m, err := s.timeline.Post(context.Background(), u, title, "We are *hiring*.")
	require.NoError(t, err)
	return m
}

func TestAnonymousAccess(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	c := s.client(t)

	tests := []struct {
		path     string
		location string
	}{
		{"/", "/public"},
		{"/application", "/application"},
		{"/logout", "/public"},
		{"/t/nobody/follow", "/login"},
	}
	for _, tt := range tests {
		resp := s.get(t, c, tt.path)
		assert.Equal(t, http.StatusFound, resp.status, tt.path)
		assert.Equal(t, tt.location, resp.location, tt.path)
	}

	resp := s.post(t, c, "/message", url.Values{"title": {"x"}, "text": {"y"}})
	assert.Equal(t, "/login", resp.location)

	resp = s.get(t, c, "/public")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Posted Jobs")
	assert.Contains(t, resp.body, "There's no message so far.")
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	c := s.client(t)

	resp := s.register(t, c, "alice", "secret")
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/login?r=1", resp.location)

	resp = s.get(t, c, "/login?r=1")
	assert.Contains(t, resp.body, "You were successfully registered and can login now")

	resp = s.get(t, c, "/login")
	assert.NotContains(t, resp.body, "successfully registered")

	resp = s.register(t, c, "alice", "other")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "The username is already taken")

	resp = s.login(t, c, "bob", "secret")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Invalid username")

	resp = s.login(t, c, "alice", "wrong")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Invalid password")
	assert.Contains(t, resp.body, `value="alice"`)

	resp = s.login(t, c, "alice", "secret")
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/", resp.location)

	resp = s.get(t, c, "/")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "JobsTimeline")
	assert.Contains(t, resp.body, "Post a job, alice")

	for _, path := range []string{"/login", "/register"} {
		resp = s.get(t, c, path)
		assert.Equal(t, "/", resp.location, path)
	}

	resp = s.get(t, c, "/logout")
	assert.Equal(t, "/public", resp.location)
	assert.Equal(t, "/public", s.get(t, c, "/").location)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	c := s.client(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"username", url.Values{"email": {"a@x.com"}, "password": {"p"}}, "You have to enter a username"},
		{"email", url.Values{"username": {"a"}, "email": {"nope"}, "password": {"p"}}, "You have to enter a valid email address"},
		{"password", url.Values{"username": {"a"}, "email": {"a@x.com"}}, "You have to enter a password"},
		{"repeat", url.Values{"username": {"a"}, "email": {"a@x.com"}, "password": {"p"}, "password2": {"q"}}, "The two passwords do not match"},
		{"long password", url.Values{"username": {"a"}, "email": {"a@x.com"}, "password": {strings.Repeat("p", 73)}, "password2": {strings.Repeat("p", 73)}}, "Password must be at most 72 bytes"},
		{"username with slash", url.Values{"username": {"a/b"}, "email": {"a@x.com"}, "password": {"p"}}, "Username must not contain /, ? or #"},
	}
	for _, tt := range tests {
		resp := s.post(t, c, "/register", tt.form)
		assert.Equal(t, http.StatusOK, resp.status, tt.name)
		assert.Contains(t, resp.body, tt.want, tt.name)
	}
}

func TestLoginThrottled(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	c := s.client(t)
	s.register(t, c, "alice", "secret")

	for range 5 {
		s.login(t, c, "alice", "wrong")
	}
	resp := s.login(t, c, "alice", "secret")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Too many login attempts, try again later")
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	resp, err := s.client(t).Post(s.url+"/login", "application/x-www-form-urlencoded", strings.NewReader("username=%zz"))
	r := read(t, resp, err)
	assert.Equal(t, http.StatusNotImplemented, r.status)
	assert.Contains(t, r.body, "Something gone wrong")
}

func TestPostMessage(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	c := s.signedIn(t, "alice")

	resp := s.post(t, c, "/message", url.Values{"title": {"Go developer"}, "text": {"Remote, **full time**."}})
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/", resp.location)

	resp = s.post(t, c, "/message", url.Values{"title": {" "}, "text": {""}})
	assert.Equal(t, "/", resp.location, "empty posting is dropped")

	resp = s.get(t, c, "/")
	assert.Contains(t, resp.body, "Go developer")
	assert.Contains(t, resp.body, "<strong>full time</strong>")

	public, err := s.timeline.Public(context.Background())
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestProfileAndFollow(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	alice := s.signedIn(t, "alice")
	s.signedIn(t, "bob")
	s.postJob(t, "bob", "Rust engineer")

	resp := s.get(t, alice, "/t/nobody")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "User not Found")

	resp = s.get(t, s.client(t), "/t/bob")
	assert.Equal(t, http.StatusOK, resp.status, "profiles are public")
	assert.Contains(t, resp.body, "bob&#39;s Timeline")
	assert.NotContains(t, resp.body, "Follow user")

	resp = s.get(t, alice, "/t/bob")
	assert.Contains(t, resp.body, "You are not yet following this user.")
	assert.NotContains(t, s.get(t, alice, "/").body, "Rust engineer")

	resp = s.get(t, alice, "/t/bob/follow")
	assert.Equal(t, http.StatusFound, resp.status)
	assert.Equal(t, "/t/bob", resp.location)

	resp = s.get(t, alice, "/t/bob")
	assert.Contains(t, resp.body, "You are currently following this user.")
	assert.Contains(t, s.get(t, alice, "/").body, "Rust engineer")

	resp = s.get(t, alice, "/t/bob/unfollow")
	assert.Equal(t, "/t/bob", resp.location)
	assert.NotContains(t, s.get(t, alice, "/").body, "Rust engineer")

	resp = s.get(t, alice, "/t/alice/follow")
	assert.Equal(t, "/t/alice", resp.location, "following yourself is ignored")

	resp = s.get(t, alice, "/t/nobody/follow")
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func multipartBody(t *testing.T, fields map[string]string, resume []byte) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if resume != nil {
		fw, err := w.CreateFormFile("resume", "resume.txt")
		require.NoError(t, err)
		_, err = fw.Write(resume)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func TestApplication(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	s.signedIn(t, "bob")
	alice := s.signedIn(t, "alice")
	posting := s.postJob(t, "bob", "Rust engineer")
	jobID := strconv.FormatInt(posting.ID, 10)

	resp := s.get(t, alice, "/application?job="+jobID)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Rust engineer")

	resp = s.get(t, alice, "/application?job=999")
	assert.Contains(t, resp.body, application.FormMessage(application.ErrJobNotFound))

	apply := func(fields map[string]string, resume []byte) response {
		ct, body := multipartBody(t, fields, resume)
		r, err := alice.Post(s.url+"/application", ct, body)
		return read(t, r, err)
	}

	resp = apply(map[string]string{"job": jobID, "cover_letter": " "}, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "You have to write a cover letter")
	assert.Empty(t, s.enqueuer.all())

	resp = apply(map[string]string{"job": jobID, "cover_letter": "Hire me"}, []byte("Ten years of Rust.\n"))
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Your application was submitted")

	require.Len(t, s.store.Objects(), 1)
	jobs := s.enqueuer.all()
	require.Len(t, jobs, 1)
	assert.Equal(t, tasks.ApplicationSubmitted, jobs[0].name)

	p, ok := jobs[0].payload.(tasks.ApplicationPayload)
	require.True(t, ok)
	assert.Equal(t, "Rust engineer", p.JobTitle)
	assert.Equal(t, "bob@example.com", p.PosterEmail)
	assert.Equal(t, "alice", p.Applicant)
	assert.Equal(t, "alice@example.com", p.ApplicantEmail)
	assert.Equal(t, "Hire me", p.CoverLetter)
	assert.Equal(t, posting.ID, p.JobID)
	assert.Contains(t, s.store.Objects(), p.ResumeKey)
}

func TestApplication_OwnJob(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	bob := s.signedIn(t, "bob")
	posting := s.postJob(t, "bob", "Rust engineer")

	ct, body := multipartBody(t, map[string]string{
		"job":          strconv.FormatInt(posting.ID, 10),
		"cover_letter": "Me again",
	}, nil)
	r, err := bob.Post(s.url+"/application", ct, body)
	resp := read(t, r, err)

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "You cannot apply to your own job posting")
	assert.Empty(t, s.enqueuer.all())
}
