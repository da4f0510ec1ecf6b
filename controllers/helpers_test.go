package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agendafacil/agenda-api/auth"
	"github.com/agendafacil/agenda-api/config"
	"github.com/agendafacil/agenda-api/controllers"
	"github.com/agendafacil/agenda-api/middleware"
	"github.com/agendafacil/agenda-api/models"
	"github.com/agendafacil/agenda-api/routes"
	"github.com/agendafacil/agenda-api/scheduling"
)

const testSecret = "test-secret"

// stubMailer records outgoing mail instead of talking to SMTP.
type stubMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newStubMailer() *stubMailer {
	return &stubMailer{codes: map[string]string{}}
}

func (m *stubMailer) SendRecoveryCode(to, username, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *stubMailer) SendReminder(to, username, professionalName, when string) error {
	return nil
}

func (m *stubMailer) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *auth.TokenService
	mailer *stubMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A pooled second connection to :memory: would be a different
	// database, so pin the pool to one.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Professional{}, &models.Appointment{}))

	cfg := &config.Config{
		JWTSecret:       testSecret,
		TokenTTL:        time.Hour,
		RecoveryCodeTTL: time.Hour,
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	mailer := newStubMailer()
	svc := scheduling.NewService(gdb, cfg.StrictClaim, cfg.UniqueSlotTimes)

	app := fiber.New()
	protected := middleware.Protected(tokens, nil)
	routes.SetupAuthRoutes(app, controllers.NewAuthController(gdb, tokens, mailer, nil, cfg), protected)
	routes.SetupProfessionalRoutes(app, controllers.NewProfessionalController(gdb), protected)
	routes.SetupAppointmentRoutes(app, controllers.NewAppointmentController(gdb, svc), protected)

	return &testApp{app: app, db: gdb, tokens: tokens, mailer: mailer}
}

// seedUser writes a user with a bcrypt-hashed password straight into the
// store and returns a fresh token for it.
func (ta *testApp) seedUser(t *testing.T, username string, role models.Role) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Segura#123"), bcrypt.MinCost)
	require.NoError(t, err)

	email := username + "@example.com"
	user := models.User{
		Username: username,
		Password: string(hashed),
		Email:    &email,
		Role:     role,
	}
	require.NoError(t, ta.db.Create(&user).Error)

	token, err := ta.tokens.Issue(&user)
	require.NoError(t, err)
	return &user, token
}

func (ta *testApp) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if resp.Body != nil {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
	}
	return resp, decoded
}
