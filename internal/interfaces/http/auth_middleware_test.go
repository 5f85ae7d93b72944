package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/seu-usuario/nfe-gateway/internal/interfaces/http"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	pkgjwt "github.com/seu-usuario/nfe-gateway/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testAPIToken  = "token-estatico-de-teste"
	testIssuer    = "nfe-gateway-test"
	testExpMin    = 60
)

// buildTestApp constrói uma aplicação Fiber mínima com o middleware de auth
// e um handler que devolve 200 com o usuário autenticado.
func buildTestApp(cfg config.AuthConfig) *fiber.App {
	app := fiber.New()
	app.Get("/protegido",
		apphttp.AuthMiddleware(cfg),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"usuario": apphttp.GetUsuario(c),
			})
		},
	)
	return app
}

func cfgCompleta() config.AuthConfig {
	return config.AuthConfig{
		APIToken:  testAPIToken,
		JWTSecret: testJWTSecret,
		JWTExpMin: testExpMin,
		JWTIssuer: testIssuer,
	}
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenEstaticoValido(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	resp := doRequest(t, app, "Bearer "+testAPIToken)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_JWTValido(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	token, err := pkgjwt.Generate(testJWTSecret, "operador", "operador", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+token)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_SemHeader(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	resp := doRequest(t, app, "")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	resp := doRequest(t, app, "Basic abc123")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	resp := doRequest(t, app, "Bearer token-que-nao-existe")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_JWTComSecretErrado(t *testing.T) {
	app := buildTestApp(cfgCompleta())

	token, err := pkgjwt.Generate("outro-secret", "operador", "operador", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+token)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ConfiguracaoVaziaRecusaTudo(t *testing.T) {
	// Sem tokens configurados nenhuma credencial é aceita: não há padrão
	// embutido no binário.
	app := buildTestApp(config.AuthConfig{})

	token, err := pkgjwt.Generate(testJWTSecret, "operador", "operador", testIssuer, testExpMin)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+token).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "Bearer "+testAPIToken).StatusCode)
}
