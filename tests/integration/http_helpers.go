//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/jobboard/internal/middleware"
	"github.com/BradenHooton/jobboard/internal/repositories"
	"github.com/BradenHooton/jobboard/internal/routes"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
)

// TestPassword satisfies the password policy
const TestPassword = "TestPassword123!"

// SentEmail represents a captured feedback email
type SentEmail struct {
	To       string
	Subject  string
	Response string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendFeedbackResponse records the email
func (m *MockEmailService) SendFeedbackResponse(ctx context.Context, email, subject, response string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Subject: subject, Response: response})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with the full router over a real database
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
}

// NewTestServer wires repositories, services and handlers exactly like cmd/api
func NewTestServer(db *database.DB, defaultLoc *time.Location) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	email := &MockEmailService{}

	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	appRepo := repositories.NewApplicationRepository(db)

	dataValidator, err := services.NewApplicationDataValidator()
	if err != nil {
		panic(err)
	}

	tokens := auth.NewTokenManager("integration-secret-32-characters!", time.Hour)
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(db), views.NewUnreadCache(views.DefaultUnreadTTL), logger)

	h := routes.Handlers{
		Auth: handlers.NewAuthHandler(
			services.NewAuthService(userRepo, sessionRepo, tokens, auth.NewLoginDelay(0, 0), notifications, logger),
			auth.CookieConfig{SameSite: "lax"},
		),
		Users: handlers.NewUserHandler(
			services.NewUserService(userRepo, logger),
			services.NewReferralService(repositories.NewReferralRepository(db), userRepo, "http://jobs.test", logger),
		),
		Jobs:          handlers.NewJobHandler(services.NewJobService(jobRepo, logger)),
		Reports:       handlers.NewReportHandler(services.NewReportService(repositories.NewReportRepository(db), jobRepo, notifications, logger)),
		Applications:  handlers.NewApplicationHandler(services.NewApplicationService(appRepo, jobRepo, userRepo, dataValidator, notifications, defaultLoc, logger)),
		Credits:       handlers.NewCreditHandler(services.NewCreditService(userRepo, appRepo, repositories.NewCreditRepository(db), notifications, defaultLoc, logger)),
		Notifications: handlers.NewNotificationHandler(notifications),
		Feedback:      handlers.NewFeedbackHandler(services.NewFeedbackService(repositories.NewFeedbackRepository(db), userRepo, notifications, email, logger)),
		Admin:         handlers.NewAdminHandler(services.NewAdminService(repositories.NewStatsRepository(db), defaultLoc, logger)),
	}

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router, h, routes.Deps{
		Tokens:   tokens,
		Sessions: sessionRepo,
		Users:    userRepo,
		Limits:   routes.Limits{Auth: 1000, Apply: 1000, Report: 1000},
	})

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		EmailService: email,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Client is a browser-like client that keeps the session cookie between requests
type Client struct {
	ts   *TestServer
	http *http.Client
}

// NewClient returns a client with an empty cookie jar
func (ts *TestServer) NewClient() *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{ts: ts, http: &http.Client{Jar: jar}}
}

// Do sends a JSON request; headers may be nil
func (c *Client) Do(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.http.Do(req)
}

// Register creates an account and keeps its session
func (c *Client) Register(username, referralCode string) (*http.Response, error) {
	return c.Do("POST", "/api/auth/register", map[string]string{
		"username":     username,
		"email":        username + "@example.com",
		"password":     TestPassword,
		"referralCode": referralCode,
	}, nil)
}

// Login starts a session for an existing account
func (c *Client) Login(email string) (*http.Response, error) {
	return c.Do("POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, nil)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorCode extracts the error code from an error response
func GetErrorCode(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	code, _ := errResp["error"].(string)
	return code, nil
}
