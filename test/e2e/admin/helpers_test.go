package admin_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/peakform/peakform/pkg/adminsdk"
)

/*
 * Common constants and helper functions for admin service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "peakform-admin-test:latest"

	adminName     = "Administrator"
	adminEmail    = "admin@peakform.test"
	adminPassword = "Admin123!secure"

	jwtSecret = "e2e-test-secret-0123456789abcdef0123456789abcdef"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Admin Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Admin Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/admind/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAdminContainer starts the admin service in a container, bootstraps the
// first admin account, and returns the base URL.
func setupAdminContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"ADMIN_JWT_SECRET":         jwtSecret,
			"ADMIN_ISSUER":             "peakform-admin-e2e",
			"ADMIN_DATABASE_FILE":      "/tmp/admin.db",
			"ADMIN_PEPPER_FILE":        "/tmp/pepper",
			"ADMIN_AVATAR_DIR":         "/tmp/avatars",
			"ADMIN_BOOTSTRAP_NAME":     adminName,
			"ADMIN_BOOTSTRAP_EMAIL":    adminEmail,
			"ADMIN_BOOTSTRAP_PASSWORD": adminPassword,
			"ENV":                      "test",
			"LOG_LEVEL":                "info",
			"LOG_FORMAT":               "json",
			// Relax rate limits so rapid test requests do not trip the
			// production thresholds.
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// loginAsAdmin authenticates with the bootstrapped admin account.
func loginAsAdmin(t *testing.T, client *adminsdk.Client) *adminsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), adminsdk.LoginRequest{
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err, "Admin login should succeed")
	require.NotNil(t, session)
	require.NotEmpty(t, session.AccessToken())

	return session
}

// registerViaInvite mints an invitation as admin and registers a new account
// with it, returning the registered user and their session.
func registerViaInvite(t *testing.T, client *adminsdk.Client, session *adminsdk.Session, name, email, password string) (adminsdk.User, *adminsdk.Session) {
	t.Helper()
	ctx := t.Context()

	invite, err := session.CreateInvite(ctx, adminsdk.InviteCreateRequest{Email: email, Days: 7})
	require.NoError(t, err)
	require.NotEmpty(t, invite.Token)

	user, err := client.Register(ctx, adminsdk.RegisterRequest{
		Name:        name,
		Email:       email,
		Password:    password,
		InviteToken: invite.Token,
	})
	require.NoError(t, err)
	require.Equal(t, email, user.Email)

	userSession, err := client.Login(ctx, adminsdk.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)

	return user, userSession
}

// assertAPIError checks that err is an APIError with the given status code.
func assertAPIError(t *testing.T, err error, statusCode int, context string) {
	t.Helper()
	require.Error(t, err, context)

	var apiErr *adminsdk.APIError
	require.ErrorAs(t, err, &apiErr, context)
	require.Equal(t, statusCode, apiErr.StatusCode, "%s - unexpected status, code=%s desc=%s",
		context, apiErr.Code, apiErr.Description)
}
