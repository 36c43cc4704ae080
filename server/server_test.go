package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jrsteele09/go-gym-client/exercises"
	"github.com/jrsteele09/go-gym-client/history"
	"github.com/jrsteele09/go-gym-client/server"
	"github.com/jrsteele09/go-gym-client/server/servertest"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/users"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	stub *servertest.Stub
}

func setupTestFixture(t *testing.T, options ...server.ServerOption) *testFixture {
	t.Helper()
	return &testFixture{stub: servertest.New(t, options...)}
}

func (f *testFixture) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.stub.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return f.send(t, req)
}

func (f *testFixture) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := f.stub.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (f *testFixture) signIn(t *testing.T, email, password string) sessions.SignInResponse {
	t.Helper()
	status, body := f.do(t, http.MethodPost, sessions.RouteSessions, "", sessions.SignInRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))
	var resp sessions.SignInResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NoError(t, resp.Validate())
	return resp
}

func requireMessage(t *testing.T, body []byte, message string) {
	t.Helper()
	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, message, payload.Message)
}

func TestServer_RegistersEveryRoute(t *testing.T) {
	f := setupTestFixture(t)
	require.ElementsMatch(t, []string{
		"POST /sessions",
		"POST /sessions/refresh-token",
		"POST /users",
		"PUT /users",
		"PATCH /users/avatar",
		"GET /groups",
		"GET /exercises/bygroup/{group}",
		"GET /exercises/{id}",
		"POST /history",
		"GET /history",
		"GET /avatar/{file}",
		"GET /exercise/{kind}/{file}",
	}, f.stub.API.Routes())
}

func TestSignIn(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword)
	require.Equal(t, int64(1), resp.User.ID)
	require.Equal(t, servertest.DemoEmail, resp.User.Email)

	status, body := f.do(t, http.MethodGet, exercises.RouteGroups, resp.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var groups []string
	require.NoError(t, json.Unmarshal(body, &groups))
	require.NotEmpty(t, groups)
}

func TestSignIn_BadCredentials(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, sessions.RouteSessions, "", sessions.SignInRequest{Email: servertest.DemoEmail, Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, status)
	requireMessage(t, body, "Incorrect e-mail or password.")

	status, _ = f.do(t, http.MethodPost, sessions.RouteSessions, "", sessions.SignInRequest{Email: "nobody@b.com", Password: "secret1"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireAuth(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodGet, history.RouteHistory, "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	requireMessage(t, body, "token.missing")

	status, body = f.do(t, http.MethodGet, history.RouteHistory, "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	requireMessage(t, body, "token.invalid")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	f := setupTestFixture(t, server.WithAccessTokenTTL(-time.Minute))
	resp := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword)

	status, body := f.do(t, http.MethodGet, exercises.RouteGroups, resp.Token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	requireMessage(t, body, "token.expired")
}

func TestRefreshToken_RotatesOnce(t *testing.T) {
	f := setupTestFixture(t)
	signedIn := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword)

	status, body := f.do(t, http.MethodPost, sessions.RouteRefreshToken, "", sessions.RefreshRequest{RefreshToken: signedIn.RefreshToken})
	require.Equal(t, http.StatusOK, status, string(body))
	var refreshed sessions.RefreshResponse
	require.NoError(t, json.Unmarshal(body, &refreshed))
	require.NotEmpty(t, refreshed.Token)
	require.NotEqual(t, signedIn.RefreshToken, refreshed.RefreshToken)

	status, _ = f.do(t, http.MethodGet, exercises.RouteGroups, refreshed.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodPost, sessions.RouteRefreshToken, "", sessions.RefreshRequest{RefreshToken: signedIn.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, status)
	requireMessage(t, body, "Invalid refresh token.")

	status, _ = f.do(t, http.MethodPost, sessions.RouteRefreshToken, "", sessions.RefreshRequest{})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCreateUser(t *testing.T) {
	f := setupTestFixture(t)

	status, body := f.do(t, http.MethodPost, users.RouteUsers, "", users.SignUpRequest{Name: "Ana", Email: "ana@gym.local", Password: "secret1"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created users.User
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, "Ana", created.Name)
	require.NotZero(t, created.ID)
	require.NotContains(t, string(body), "secret1")

	status, body = f.do(t, http.MethodPost, users.RouteUsers, "", users.SignUpRequest{Name: "Ana", Email: "ANA@gym.local", Password: "secret1"})
	require.Equal(t, http.StatusBadRequest, status)
	requireMessage(t, body, "E-mail already in use.")

	status, _ = f.do(t, http.MethodPost, users.RouteUsers, "", users.SignUpRequest{Name: "Bo", Email: "bo@gym.local", Password: "123"})
	require.Equal(t, http.StatusBadRequest, status)

	f.signIn(t, "ana@gym.local", "secret1")
}

func TestUpdateUser(t *testing.T) {
	f := setupTestFixture(t)
	resp := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword)

	status, body := f.do(t, http.MethodPut, users.RouteUsers, resp.Token, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated users.User
	require.NoError(t, json.Unmarshal(body, &updated))
	require.Equal(t, "Renamed", updated.Name)

	status, body = f.do(t, http.MethodPut, users.RouteUsers, resp.Token, map[string]string{"name": "Renamed", "password": "newpass1", "old_password": "wrong-one"})
	require.Equal(t, http.StatusBadRequest, status)
	requireMessage(t, body, "Old password does not match.")

	status, _ = f.do(t, http.MethodPut, users.RouteUsers, resp.Token, map[string]string{"name": "Renamed", "password": "newpass1", "old_password": servertest.DemoPassword})
	require.Equal(t, http.StatusOK, status)
	f.signIn(t, servertest.DemoEmail, "newpass1")
}

func TestUpdateAvatar(t *testing.T) {
	f := setupTestFixture(t)
	resp := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword)

	png := []byte("\x89PNG\r\n\x1a\nfake-image")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPatch, f.stub.URL+users.RouteAvatar, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	status, body := f.send(t, req)
	require.Equal(t, http.StatusOK, status, string(body))

	var updated users.User
	require.NoError(t, json.Unmarshal(body, &updated))
	require.NotEmpty(t, updated.Avatar)
	require.Contains(t, updated.Avatar, ".png")

	status, body = f.do(t, http.MethodGet, "/avatar/"+updated.Avatar, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, png, body)

	status, _ = f.do(t, http.MethodGet, "/avatar/unknown.png", "", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestExercisesAndHistory(t *testing.T) {
	f := setupTestFixture(t)
	token := f.signIn(t, servertest.DemoEmail, servertest.DemoPassword).Token

	status, body := f.do(t, http.MethodGet, exercises.RouteExercisesByGroup+"costas", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []exercises.Exercise
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	for _, e := range list {
		require.Equal(t, "costas", e.Group)
	}

	status, body = f.do(t, http.MethodGet, "/exercises/9999", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	requireMessage(t, body, "Exercise not found.")

	status, body = f.do(t, http.MethodPost, history.RouteHistory, token, history.RegisterRequest{})
	require.Equal(t, http.StatusBadRequest, status)
	requireMessage(t, body, "Exercise not informed.")

	status, _ = f.do(t, http.MethodPost, history.RouteHistory, token, history.RegisterRequest{ExerciseID: list[0].ID})
	require.Equal(t, http.StatusCreated, status)
	status, _ = f.do(t, http.MethodPost, history.RouteHistory, token, history.RegisterRequest{ExerciseID: list[1].ID})
	require.Equal(t, http.StatusCreated, status)

	status, body = f.do(t, http.MethodGet, history.RouteHistory, token, nil)
	require.Equal(t, http.StatusOK, status)
	var days []history.ByDay
	require.NoError(t, json.Unmarshal(body, &days))
	require.Len(t, days, 1)
	require.Len(t, days[0].Data, 2)
	require.Equal(t, time.Now().UTC().Format("02.01.2006"), days[0].Title)
	require.NotEmpty(t, days[0].Data[0].Hour)
}

func TestExerciseMedia(t *testing.T) {
	media := fstest.MapFS{
		"exercise/thumb/puxada_frontal.png": {Data: []byte("thumb")},
		"exercise/demo/puxada_frontal.gif":  {Data: []byte("demo")},
	}
	f := setupTestFixture(t, server.WithMedia(media))

	req, err := http.NewRequest(http.MethodGet, f.stub.URL+"/exercise/thumb/puxada_frontal.png", nil)
	require.NoError(t, err)
	resp, err := f.stub.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	status, body := f.do(t, http.MethodGet, "/exercise/demo/puxada_frontal.gif", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "demo", string(body))

	status, _ = f.do(t, http.MethodGet, "/exercise/demo/missing.gif", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = f.do(t, http.MethodGet, "/exercise/other/puxada_frontal.png", "", nil)
	require.Equal(t, http.StatusNotFound, status)
}
