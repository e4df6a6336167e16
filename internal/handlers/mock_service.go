package handlers

import (
	"context"
	"net/http"
	"time"

	"audioscribe/internal/models"
	"audioscribe/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID       int
	signUpErr      error
	genTokenToken  string
	genTokenErr    error
	parsePrincipal service.Principal
	parseErr       error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (service.Principal, error) {
	m.lastParseToken = token
	return m.parsePrincipal, m.parseErr
}

type mockSession struct {
	state models.Session

	uploadErr     error
	transcribeErr error
	summarizeErr  error
	saveErr       error
	reviewErr     error
	backErr       error
	endErr        error

	beginCalls      int
	snapshotCalls   int
	uploadCalls     int
	transcribeCalls int
	summarizeCalls  int
	saveCalls       int
	reviewCalls     int
	backCalls       int
	endCalls        int

	lastPrincipal  service.Principal
	lastUploadName string
	lastUploadData []byte
	lastSentences  int
	lastTitle      string
	lastTags       string
}

func (m *mockSession) Begin(ctx context.Context, p service.Principal) models.Session {
	m.beginCalls++
	m.lastPrincipal = p
	return m.state
}
func (m *mockSession) Snapshot(p service.Principal) models.Session {
	m.snapshotCalls++
	m.lastPrincipal = p
	return m.state
}
func (m *mockSession) Upload(ctx context.Context, p service.Principal, filename string, data []byte) (models.Session, error) {
	m.uploadCalls++
	m.lastPrincipal = p
	m.lastUploadName = filename
	m.lastUploadData = data
	return m.state, m.uploadErr
}
func (m *mockSession) Transcribe(ctx context.Context, p service.Principal) (models.Session, error) {
	m.transcribeCalls++
	m.lastPrincipal = p
	return m.state, m.transcribeErr
}
func (m *mockSession) Summarize(ctx context.Context, p service.Principal, sentences int) (models.Session, error) {
	m.summarizeCalls++
	m.lastPrincipal = p
	m.lastSentences = sentences
	return m.state, m.summarizeErr
}
func (m *mockSession) SaveSummary(ctx context.Context, p service.Principal, title, tags string) (models.Session, error) {
	m.saveCalls++
	m.lastPrincipal = p
	m.lastTitle = title
	m.lastTags = tags
	return m.state, m.saveErr
}
func (m *mockSession) Review(ctx context.Context, p service.Principal) (models.Session, error) {
	m.reviewCalls++
	m.lastPrincipal = p
	return m.state, m.reviewErr
}
func (m *mockSession) Back(ctx context.Context, p service.Principal) (models.Session, error) {
	m.backCalls++
	m.lastPrincipal = p
	return m.state, m.backErr
}
func (m *mockSession) End(ctx context.Context, p service.Principal) error {
	m.endCalls++
	m.lastPrincipal = p
	return m.endErr
}

type mockLibrary struct {
	resp      []models.SavedSummary
	listErr   error
	deleteErr error

	lastListUsername string
	lastDeleteID     int64
	lastDeleteUser   string
}

func (m *mockLibrary) List(ctx context.Context, username string) ([]models.SavedSummary, error) {
	m.lastListUsername = username
	return m.resp, m.listErr
}
func (m *mockLibrary) Delete(ctx context.Context, p service.Principal, id int64) error {
	m.lastDeleteUser = p.Username
	m.lastDeleteID = id
	return m.deleteErr
}

type mockEventLog struct {
	resp []models.ActivityEvent
	err  error

	lastUsername string
	lastFrom     time.Time
	lastTo       time.Time
	lastType     string
}

func (m *mockEventLog) List(ctx context.Context, username string, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastUsername = username
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockJanitor struct{}

func (mockJanitor) Run(ctx context.Context, tick time.Duration) {}

// ---- Shared Test Helpers ----

// newMockService assembles a Service from the given mocks, filling the rest
// with inert defaults.
func newMockService(auth *mockAuth, sess *mockSession, lib *mockLibrary, logs *mockEventLog) *service.Service {
	if auth == nil {
		auth = &mockAuth{}
	}
	if sess == nil {
		sess = &mockSession{}
	}
	if lib == nil {
		lib = &mockLibrary{}
	}
	if logs == nil {
		logs = &mockEventLog{}
	}
	return &service.Service{
		Authorization: auth,
		Session:       sess,
		Library:       lib,
		EventLog:      logs,
		Janitor:       mockJanitor{},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
