package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/authgate/pkg/assertion"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

/*
 * Container setup and request helpers for the gateway end-to-end tests.
 */

const (
	testImageName = "authgate-test:latest"

	loginSecret   = "e2e-login-secret"
	webhookSecret = "e2e-webhook-secret"
	adminEmail    = "owner@example.com"
)

var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// TestMain builds the image once for the whole suite and removes it afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building authgate Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up authgate Docker image...")
	_ = exec.Command("docker", "rmi", "-f", testImageName).Run()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/authgate/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

type gateway struct {
	baseURL   string
	container testcontainers.Container
	client    *http.Client
}

// setupGateway starts a container with relaxed rate limits.
func setupGateway(t *testing.T) *gateway {
	return startGateway(t, relaxedLimits)
}

func startGateway(t *testing.T, extraEnv map[string]string) *gateway {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTHGATE_PUBLIC_URL":      "http://localhost:8080",
		"AUTHGATE_SECURE_COOKIES":  "false",
		"AUTHGATE_ADMIN_LOGIN_URL": "https://login.example.com/start",
		"ENV":                      "test",
		"LOG_LEVEL":                "info",
		"LOG_FORMAT":               "json",
	}
	maps.Copy(env, extraEnv)

	secrets := strings.Join([]string{
		"GOOGLE_INTERNAL_CLIENT_SECRET=" + loginSecret,
		"WEBHOOK_SECRET=" + webhookSecret,
		"SESSION_SECRET=e2e-session-secret",
		"",
	}, "\n")

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		Files: []testcontainers.ContainerFile{{
			Reader:            strings.NewReader(secrets),
			ContainerFilePath: "/data/secrets.env",
			FileMode:          0o666,
		}},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &gateway{
		baseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		container: container,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// cli runs an authgate management command inside the container.
func (g *gateway) cli(t *testing.T, args ...string) string {
	t.Helper()
	code, out, err := g.container.Exec(t.Context(), append([]string{"authgate"}, args...), tcexec.Multiplexed())
	require.NoError(t, err)
	body, err := io.ReadAll(out)
	require.NoError(t, err)
	require.Equal(t, 0, code, string(body))
	return string(body)
}

func (g *gateway) get(t *testing.T, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, g.baseURL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := g.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (g *gateway) post(t *testing.T, cookie *http.Cookie, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, g.baseURL+"/admin", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := g.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// login bootstraps the admin principal and exchanges a login assertion for
// a session cookie.
func (g *gateway) login(t *testing.T) *http.Cookie {
	t.Helper()
	g.cli(t, "principal", "add", adminEmail, "--admin")

	tok, err := assertion.Sign(assertion.Claim{Email: adminEmail, Name: "Owner"}, []byte(loginSecret))
	require.NoError(t, err)

	resp := g.get(t, "/admin?token="+url.QueryEscape(tok), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "authgate_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func assertHealthy(t *testing.T, health *relaysdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
