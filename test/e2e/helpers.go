//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pledgewatch/pledgewatch/internal/api/handlers"
	"github.com/pledgewatch/pledgewatch/internal/gateway"
	"github.com/pledgewatch/pledgewatch/internal/index"
	"github.com/pledgewatch/pledgewatch/internal/realtime"
	"github.com/pledgewatch/pledgewatch/internal/repository"
	"github.com/pledgewatch/pledgewatch/internal/server"
	"github.com/pledgewatch/pledgewatch/internal/service"
	"github.com/pledgewatch/pledgewatch/internal/storage"
	"github.com/pledgewatch/pledgewatch/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	HTTPClient   *http.Client
	cancelHub    context.CancelFunc
}

// SetupE2EEnv creates a full E2E test environment with containers and
// an in-process server running the heuristic assessor.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-archive",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser, cancelHub := startServer(t, pool, s3Client, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		cancelHub:    cancelHub,
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.cancelHub != nil {
		e.cancelHub()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DialWS opens a WebSocket subscription to the event feed.
func (e *E2ETestEnv) DialWS() (*websocket.Conn, error) {
	wsURL := "ws" + e.ServerURL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	return conn, err
}

// ReadEvent reads one event from the WebSocket with a deadline.
func ReadEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) realtime.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	var ev realtime.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	return ev
}

// startServer wires the full pipeline with hashing embeddings and the
// fallback assessor, so no external providers are needed.
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, port int) (string, func(), context.CancelFunc) {
	hubCtx, cancelHub := context.WithCancel(context.Background())

	companyRepo := repository.NewCompanyRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)

	embedder := service.NewHashingEmbedder(0)
	passageIndex := index.New(embedder.Dimension())
	assessor := gateway.New(nil, gateway.Config{})

	hub := realtime.NewHub(realtime.HubConfig{ReplaySize: 10}, nil)
	go hub.Run(hubCtx)

	alertSvc := service.NewAlertService(alertRepo, hub, service.AlertConfig{
		Cooldown: 30 * time.Second,
	})
	companySvc := service.NewCompanyService(companyRepo)
	documentSvc := service.NewDocumentService(companyRepo, documentRepo, embedder, passageIndex, s3Client)
	newsSvc := service.NewNewsService(newsRepo, companyRepo, alertSvc, hub, nil)
	analysisSvc := service.NewAnalysisService(
		companyRepo, documentRepo, newsRepo, analysisRepo,
		embedder, passageIndex, assessor, alertSvc, hub,
		service.AnalysisConfig{}, nil,
	)

	router := server.NewRouter(server.RouterConfig{
		CompanyHandler:  handlers.NewCompanyHandler(companySvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		NewsHandler:     handlers.NewNewsHandler(newsSvc),
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc),
		AlertHandler:    handlers.NewAlertHandler(alertSvc),
		WebSocket:       hub.Handle,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, cancelHub
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
