package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/mutker/hostctl/internal/auth"
	"codeberg.org/mutker/hostctl/internal/control"
	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/launcher"
	"codeberg.org/mutker/hostctl/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	volume     control.Outcome
	brightness control.Outcome
	setValues  []int
	media      []string
}

func (f *fakeController) SetVolume(_ context.Context, v int) control.Outcome {
	f.setValues = append(f.setValues, v)
	return control.Success("volume", v)
}

func (f *fakeController) Volume(context.Context) control.Outcome { return f.volume }

func (f *fakeController) ToggleMute(context.Context) control.Outcome {
	return control.Failure(control.KindUnavailable, "nircmd not found; install nircmd")
}

func (f *fakeController) SetBrightness(_ context.Context, v int) control.Outcome {
	f.setValues = append(f.setValues, v)
	return control.Success("brightness", v)
}

func (f *fakeController) Brightness(context.Context) control.Outcome { return f.brightness }

func (f *fakeController) ToggleTheme(context.Context) control.Outcome {
	return control.Success("theme", "dark")
}

func (f *fakeController) Media(_ context.Context, action string) control.Outcome {
	f.media = append(f.media, action)
	if action != "next" {
		return control.Failure(control.KindClient, "unknown action")
	}
	return control.Success("action", action)
}

func (f *fakeController) Power(_ context.Context, action string) control.Outcome {
	return control.Failure(control.KindExecution, "shutdown exited with status 1")
}

type fakeMonitor struct{}

func (fakeMonitor) Snapshot(context.Context) telemetry.Snapshot {
	snap := telemetry.EmptySnapshot()
	snap.CPUUsage = 12.5
	return snap
}

type fakeLauncher struct {
	lists    int
	launches []string
}

func (f *fakeLauncher) List() ([]launcher.Entry, error) {
	f.lists++
	return []launcher.Entry{{ID: "code", Label: "VS Code", Icon: "code.png"}}, nil
}

func (f *fakeLauncher) Launch(_ context.Context, id string) error {
	f.launches = append(f.launches, id)
	if id != "code" {
		return errors.New().WithMessage(errors.ErrResourceNotFound, "unknown app id")
	}
	return nil
}

type fixture struct {
	ctrl     *fakeController
	launcher *fakeLauncher
	handler  http.Handler
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := &fakeController{
		volume:     control.Success("volume", 40),
		brightness: control.Failure(control.KindExecution, "not supported"),
	}
	l := &fakeLauncher{}
	srv := New(ctrl, fakeMonitor{}, l, auth.StaticToken{Token: "secret"}, opts)

	return fixture{ctrl: ctrl, launcher: l, handler: srv.Handler()}
}

func (f fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func TestLaunchRequiresTokenBeforeConfig(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPost, "/launch/code", "", auth.Header, "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid token"}`, rec.Body.String())
	assert.Empty(t, f.launcher.launches)
	assert.Zero(t, f.launcher.lists)
}

func TestLaunch(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPost, "/launch/code", "", auth.Header, "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"launched":"code"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/launch/doom", "", auth.Header, "secret")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"unknown app id"}`, rec.Body.String())
}

func TestListTargets(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"code","label":"VS Code","icon":"code.png"}]`, rec.Body.String())
}

func TestStatusOmitsUnreadableValues(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/system/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"volume":40,"now_playing":{}}`, rec.Body.String())
}

func TestMonitoring(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodGet, "/system/monitoring", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cpu_usage":12.5,"cpu_temp":-1,"gpu_usage":-1,"gpu_temp":-1,"ram_usage":-1,"battery_level":-1}`,
		rec.Body.String())
}

func TestVolumeValues(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(http.MethodPost, "/system/volume", `{"value": 55}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"volume":55}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/system/volume", `{"value": "42"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/system/brightness", `{"value": 70.9}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{55, 42, 70}, f.ctrl.setValues)

	rec = f.do(http.MethodPost, "/system/volume", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"missing value"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/system/volume", `{"value": "loud"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid value"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/system/volume", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutcomeStatusCodes(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Equal(t, http.StatusNotImplemented, f.do(http.MethodPost, "/system/mute", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/system/media", `{"action":"rewind"}`).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/system/media", `{"action":"next"}`).Code)
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodPost, "/system/power", `{"action":"shutdown"}`).Code)

	rec := f.do(http.MethodPost, "/system/theme", "")
	assert.JSONEq(t, `{"ok":true,"theme":"dark"}`, rec.Body.String())
}

func TestProtectControl(t *testing.T) {
	f := newFixture(t, Options{ProtectControl: true})

	rec := f.do(http.MethodPost, "/system/media", `{"action":"next"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.ctrl.media)

	rec = f.do(http.MethodPost, "/system/media", `{"action":"next"}`, auth.Header, "secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reads stay open.
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/system/status", "").Code)
}

func TestStaticAndHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hostctl</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.js"), []byte("//"), 0o600))

	f := newFixture(t, Options{StaticDir: dir})

	rec := f.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hostctl")

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/static/script.js", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "").Code)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusCode(control.KindUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(control.KindExecution))
	assert.Equal(t, http.StatusOK, StatusCode(control.KindNone))
}
