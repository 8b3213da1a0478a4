package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/appointments"
	"github.com/medifed/portal/internal/config"
	"github.com/medifed/portal/internal/models"
	"github.com/medifed/portal/internal/sessions"
	"github.com/medifed/portal/internal/studies"
	"github.com/medifed/portal/internal/tokens"
	"github.com/medifed/portal/internal/users"
	"github.com/medifed/portal/pkg/middleware"
	"github.com/minio/minio-go/v7"
)

const testSecret = "handlers-test-secret"

// memUserRepo is an in-memory users.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
	seq    int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return nil, users.ErrUserExists
	}
	r.seq++
	cp := *u
	cp.ID = fmt.Sprintf("user_%d", r.seq)
	cp.CreatedAt = time.Now()
	r.byName[cp.Username] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// memSessionRepo is an in-memory sessions.Repository.
type memSessionRepo struct {
	mu   sync.Mutex
	byID map[string]*sessions.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{byID: make(map[string]*sessions.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessions.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessions.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// memObjectStore is an in-memory studies.ObjectStore.
type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: make(map[string][]byte)}
}

func (s *memObjectStore) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memObjectStore) ListObjects(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []minio.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, minio.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: time.Now()})
		}
	}
	return out, nil
}

func (s *memObjectStore) RemoveObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://store.test/" + key + "?expires=" + fmt.Sprint(int(expires.Seconds())), nil
}

// fakeAnswerer returns a canned reply and records the question.
type fakeAnswerer struct {
	reply string
	asked []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string) string {
	f.asked = append(f.asked, question)
	return f.reply
}

// fakeToken carries fixed claims through the middleware.Verifier path.
type fakeToken struct{ claims map[string]interface{} }

func (t fakeToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*m = t.claims
	return nil
}

type fakeIDVerifier struct {
	email string
	err   error
}

func (v fakeIDVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if v.err != nil {
		return nil, v.err
	}
	return fakeToken{claims: map[string]interface{}{"email": v.email}}, nil
}

// testEnv assembles the full router over in-memory stores.
type testEnv struct {
	router   *gin.Engine
	cfg      *config.Config
	users    *users.Service
	sessions *sessions.Service
	appts    *appointments.Service
	apptRepo *appointments.MemoryRepository
	store    *memObjectStore
	answerer *fakeAnswerer
	verifier middleware.Verifier
}

func newTestEnv() *testEnv {
	return newTestEnvWithVerifier(nil)
}

// newTestEnvWithVerifier wires a stubbed Google verifier into the auth handler.
func newTestEnvWithVerifier(v middleware.Verifier) *testEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Session.Secret = testSecret
	cfg.Session.TTL = time.Hour

	env := &testEnv{
		cfg:      cfg,
		users:    users.NewService(newMemUserRepo()),
		sessions: sessions.NewService(newMemSessionRepo()),
		apptRepo: appointments.NewMemoryRepository(),
		store:    newMemObjectStore(),
		answerer: &fakeAnswerer{reply: "respuesta"},
		verifier: v,
	}
	env.appts = appointments.NewService(env.apptRepo, env.users)

	ver := tokens.NewCookieVerifier(cfg.Session.Secret)
	pageGuard := middleware.SessionRequired(ver, env.sessions)
	apiGuard := middleware.SessionRequiredJSON(ver, env.sessions)

	r := gin.New()
	NewAuthHandler(cfg, env.users, env.sessions, env.verifier).Register(r, pageGuard)
	NewPortalHandler(env.appts).Register(r, pageGuard)
	NewAppointmentHandler(env.appts).Register(r, pageGuard, apiGuard)
	NewStudiesHandler(studies.NewService(env.store)).Register(r, apiGuard)
	NewChatHandler(env.answerer).Register(r, pageGuard, apiGuard)
	RegisterSwagger(r)

	env.router = r
	return env
}

// loginAs registers (or seeds) an account and returns a session cookie.
func (e *testEnv) loginAs(username, role string) (*http.Cookie, *models.User) {
	ctx := context.Background()
	var u *models.User
	var err error
	if role == models.RoleDoctor {
		u, err = e.users.SeedDoctor(ctx, username, "secret123")
	} else {
		u, err = e.users.Register(ctx, username, "secret123")
	}
	if err != nil {
		panic(err)
	}
	sid, err := e.sessions.Create(ctx, u.ID, u.Username, u.Role, time.Hour)
	if err != nil {
		panic(err)
	}
	tok, err := tokens.GenerateSessionToken(testSecret, u, sid, time.Hour)
	if err != nil {
		panic(err)
	}
	return &http.Cookie{Name: middleware.CookieName, Value: tok}, u
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
