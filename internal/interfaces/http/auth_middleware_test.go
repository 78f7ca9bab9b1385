package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/fatoora-tn/compta-api/internal/interfaces/http"
	pkgjwt "github.com/fatoora-tn/compta-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testClientID  = "cabinet-comptable-01"
	testIssuer    = "compta-api-test"
	testExpMin    = 60
)

// buildTestApp construit une application Fiber minimale avec AuthMiddleware et
// un handler factice qui renvoie 200 si le middleware laisse passer.
func buildTestApp() *fiber.App {
	app := fiber.New(fiber.Config{
		// Silencier les erreurs internes dans les tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":        true,
				"client_id": apphttp.GetClientID(c),
			})
		},
	)
	return app
}

// tokenFor génère un JWT valide pour le client indiqué.
func tokenFor(t *testing.T, clientID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, clientID, testIssuer, testExpMin)
	require.NoError(t, err, "un token JWT valide doit être généré")
	return "Bearer " + tok
}

// doRequest lance une requête GET /protected et retourne la réponse.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Cas 1 : token valide → 200 et le client_id est exposé dans les Locals.
func TestAuthMiddleware_TokenValide(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, tokenFor(t, testClientID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"un token valide doit donner accès à la route protégée")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"], "la réponse doit inclure ok:true")
	assert.Equal(t, testClientID, body["client_id"], "le client_id doit venir des claims")
}

// Cas 2 : pas d'en-tête Authorization → 401 MISSING_TOKEN.
func TestAuthMiddleware_SansAuthHeader_Retourne401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "") // sans en-tête
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN",
		"la réponse d'erreur doit inclure le code MISSING_TOKEN")
}

// Cas 3 : mauvais schéma (Basic au lieu de Bearer) → 401 INVALID_TOKEN.
func TestAuthMiddleware_SchemaBasic_Retourne401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Cas 4 : token malformé → 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalide_Retourne401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Bearer token.invalide.ici")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Cas 5 : "Bearer " suivi de rien → 401 MISSING_TOKEN.
func TestAuthMiddleware_TokenVide_Retourne401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Bearer  ")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests pkg/jwt — intégrité du generate/parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateEtParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testClientID, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	clientID, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testClientID, clientID)
}

func TestJWT_TokenExpire_RetourneErreur(t *testing.T) {
	// Expiration -1 minute : déjà expiré à l'émission
	tok, err := pkgjwt.Generate(testJWTSecret, testClientID, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "un token expiré doit retourner une erreur")
}

func TestJWT_SecretIncorrect_RetourneErreur(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testClientID, testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("un-autre-secret-complement-different", tok)
	assert.Error(t, err, "un secret incorrect doit invalider le token")
}
