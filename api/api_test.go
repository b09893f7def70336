package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─────────────────────────────────────────────────────────────────────────────
// Test server
// ─────────────────────────────────────────────────────────────────────────────

type testServer struct {
	t        *testing.T
	router   http.Handler
	tokens   *auth.Tokens
	u1Token  string
	adminTok string
	jobIDs   []int64
}

func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	counters := &db.QueryCounters{}
	database, err := db.Open(db.Config{
		DSN:          ":memory:?_foreign_keys=on",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		Hooks:        []db.Hook{db.NewMetricsHook(counters)},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.ApplySchema(ctx, database))

	companies := repo.NewCompanyRepo(database)
	jobs := repo.NewJobRepo(database)
	users := repo.NewUserRepo(database, auth.NewHasher(bcrypt.MinCost))
	tokens := auth.NewTokens("test-secret", time.Hour)

	for _, c := range []models.CreateCompanyParams{
		{Handle: "c1", Name: "C1", Description: "Desc1", NumEmployees: intp(1)},
		{Handle: "c2", Name: "C2", Description: "Desc2", NumEmployees: intp(2)},
		{Handle: "c3", Name: "C3", Description: "Desc3", NumEmployees: intp(3)},
	} {
		_, err := companies.Create(ctx, c)
		require.NoError(t, err)
	}

	s := &testServer{t: t, tokens: tokens}
	for _, j := range []models.CreateJobParams{
		{Title: "J1", Salary: intp(1), Equity: floatp(0.1), CompanyHandle: "c1"},
		{Title: "J2", Salary: intp(2), Equity: floatp(0.2), CompanyHandle: "c1"},
		{Title: "J3", Salary: intp(3), CompanyHandle: "c1"},
	} {
		job, err := jobs.Create(ctx, j)
		require.NoError(t, err)
		s.jobIDs = append(s.jobIDs, job.ID)
	}

	for _, u := range []models.RegisterUserParams{
		{Username: "u1", Password: "password1", FirstName: "U1F", LastName: "U1L", Email: "user1@user.com"},
		{Username: "u2", Password: "password2", FirstName: "U2F", LastName: "U2L", Email: "user2@user.com"},
		{Username: "admin", Password: "password3", FirstName: "A", LastName: "D", Email: "admin@user.com", IsAdmin: true},
	} {
		_, err := users.Register(ctx, u)
		require.NoError(t, err)
	}

	s.u1Token, err = tokens.Issue("u1", false)
	require.NoError(t, err)
	s.adminTok, err = tokens.Issue("admin", true)
	require.NoError(t, err)

	s.router = api.NewRouter(api.Deps{
		Companies: companies,
		Jobs:      jobs,
		Users:     users,
		Tokens:    tokens,
		Store:     database,
		Counters:  counters,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return s
}

type response struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

func (s *testServer) do(method, path, token string, body any) response {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	}
	return out
}

func errorMessage(t *testing.T, r response) any {
	t.Helper()
	e, ok := r.Body["error"].(map[string]any)
	require.True(t, ok, "expected error body, got %v", r.Body)
	assert.EqualValues(t, r.Code, e["status"])
	return e["message"]
}

func listField(t *testing.T, r response, key, field string) []any {
	t.Helper()
	items, ok := r.Body[key].([]any)
	require.True(t, ok, "expected %s list, got %v", key, r.Body)
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.(map[string]any)[field]
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// ParseBool
// ─────────────────────────────────────────────────────────────────────────────

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want *bool
	}{
		{"true", boolp(true)},
		{"1", boolp(true)},
		{"false", boolp(false)},
		{"0", boolp(false)},
		{"", nil},
		{"TRUE", nil},
		{"yes", nil},
		{"2", nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, api.ParseBool(tc.in), "ParseBool(%q)", tc.in)
	}
}

func boolp(b bool) *bool { return &b }

// ─────────────────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────────────────

func TestAuthToken(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "u1", "password": "password1"})
	require.Equal(t, http.StatusOK, r.Code)
	claims, err := s.tokens.Verify(r.Body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Username)
	assert.False(t, claims.IsAdmin)

	r = s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "u1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "invalid username/password", errorMessage(t, r))

	r = s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "nope", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	r = s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "u1"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestAuthRegister(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": "new", "password": "password", "firstName": "F", "lastName": "L",
		"email": "new@email.com", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, r.Code)
	claims, err := s.tokens.Verify(r.Body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "new", claims.Username)
	assert.False(t, claims.IsAdmin, "self-registration must not grant admin")

	r = s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": "new", "password": "password", "firstName": "F", "lastName": "L", "email": "new@email.com",
	})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "duplicate username: new", errorMessage(t, r))

	r = s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": "other", "password": "pw", "firstName": "F", "lastName": "L", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	msgs, ok := errorMessage(t, r).([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestBadTokenIsIgnored(t *testing.T) {
	s := newTestServer(t)

	forged, err := auth.NewTokens("other-secret", time.Hour).Issue("admin", true)
	require.NoError(t, err)

	r := s.do(http.MethodGet, "/companies", forged, nil)
	assert.Equal(t, http.StatusOK, r.Code, "public routes ignore invalid tokens")

	r = s.do(http.MethodDelete, "/companies/c1", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Companies
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateCompany(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"handle": "new", "name": "New", "description": "DescNew", "numEmployees": 10, "logoUrl": "http://new.img"}

	r := s.do(http.MethodPost, "/companies", s.adminTok, body)
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, map[string]any{
		"handle": "new", "name": "New", "description": "DescNew", "numEmployees": float64(10), "logoUrl": "http://new.img",
	}, r.Body["company"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/companies", s.u1Token, body).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/companies", "", body).Code)

	r = s.do(http.MethodPost, "/companies", s.adminTok, body)
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "duplicate company: new", errorMessage(t, r))
}

func TestCreateCompany_StrictBody(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodPost, "/companies", s.adminTok,
		gin.H{"handle": "x", "name": "X", "description": "d", "extra": true})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Contains(t, errorMessage(t, r), "unknown field")

	r = s.do(http.MethodPost, "/companies", s.adminTok, gin.H{"handle": "x", "name": "X"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, []any{"description is required"}, errorMessage(t, r))

	r = s.do(http.MethodPost, "/companies", s.adminTok, `{"handle":`)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = s.do(http.MethodPost, "/companies", s.adminTok, gin.H{"handle": "x", "name": "X", "description": "d", "numEmployees": "ten"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestListCompanies(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		want  []any
	}{
		{"", []any{"c1", "c2", "c3"}},
		{"?minEmployees=2", []any{"c2", "c3"}},
		{"?maxEmployees=2", []any{"c1", "c2"}},
		{"?minEmployees=2&maxEmployees=2", []any{"c2"}},
		{"?nameLike=3", []any{"c3"}},
		{"?nameLike=nope", []any{}},
		{"?maxEmployees=", []any{"c1", "c2", "c3"}},
		{"?minEmployees=&maxEmployees=&nameLike=", []any{"c1", "c2", "c3"}},
		{"?minEmployees=2&maxEmployees=", []any{"c2", "c3"}},
	}
	for _, tc := range tests {
		r := s.do(http.MethodGet, "/companies"+tc.query, "", nil)
		require.Equal(t, http.StatusOK, r.Code, tc.query)
		assert.Equal(t, tc.want, listField(t, r, "companies", "handle"), tc.query)
	}
}

func TestListCompanies_BadQuery(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"?minEmployees=3&maxEmployees=1", "?minEmployees=abc", "?minEmployees=-1", "?bogus=1"} {
		r := s.do(http.MethodGet, "/companies"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, r.Code, q)
	}
}

func TestGetCompany(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodGet, "/companies/c1", "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	company := r.Body["company"].(map[string]any)
	assert.Equal(t, "C1", company["name"])
	assert.Len(t, company["jobs"], 3)

	r = s.do(http.MethodGet, "/companies/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "no company: nope", errorMessage(t, r))
}

func TestUpdateCompany(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodPatch, "/companies/c1", s.adminTok, gin.H{"name": "C1-new"})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "C1-new", r.Body["company"].(map[string]any)["name"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, "/companies/c1", s.u1Token, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/companies/nope", s.adminTok, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/companies/c1", s.adminTok, gin.H{"handle": "c1-new"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/companies/c1", s.adminTok, gin.H{}).Code)
}

func TestRemoveCompany(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, "/companies/c1", s.u1Token, nil).Code)

	r := s.do(http.MethodDelete, "/companies/c1", s.adminTok, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "c1", r.Body["deleted"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/companies/c1", s.adminTok, nil).Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Jobs
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateJob(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"title": "J-new", "salary": 10, "equity": 0.2, "companyHandle": "c2"}

	r := s.do(http.MethodPost, "/jobs", s.adminTok, body)
	require.Equal(t, http.StatusCreated, r.Code)
	job := r.Body["job"].(map[string]any)
	assert.Equal(t, "J-new", job["title"])
	assert.NotZero(t, job["id"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/jobs", s.u1Token, body).Code)

	r = s.do(http.MethodPost, "/jobs", s.adminTok, gin.H{"title": "x", "equity": 1.5, "companyHandle": "c2"})
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = s.do(http.MethodPost, "/jobs", s.adminTok, gin.H{"title": "x", "companyHandle": "nope"})
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestListJobs(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		want  []any
	}{
		{"", []any{"J1", "J2", "J3"}},
		{"?minSalary=2", []any{"J2", "J3"}},
		{"?hasEquity=true", []any{"J1", "J2"}},
		{"?hasEquity=false", []any{"J1", "J2", "J3"}},
		{"?hasEquity=1&minSalary=2", []any{"J2"}},
		{"?title=j1", []any{"J1"}},
		{"?minSalary=", []any{"J1", "J2", "J3"}},
		{"?minSalary=&hasEquity=&title=", []any{"J1", "J2", "J3"}},
	}
	for _, tc := range tests {
		r := s.do(http.MethodGet, "/jobs"+tc.query, "", nil)
		require.Equal(t, http.StatusOK, r.Code, tc.query)
		assert.Equal(t, tc.want, listField(t, r, "jobs", "title"), tc.query)
	}

	for _, q := range []string{"?hasEquity=maybe", "?minSalary=x", "?salary=1"} {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/jobs"+q, "", nil).Code, q)
	}
}

func TestGetJob(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodGet, "/jobs/"+itoa(s.jobIDs[0]), "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	job := r.Body["job"].(map[string]any)
	assert.Equal(t, "J1", job["title"])
	assert.Equal(t, "c1", job["company"].(map[string]any)["handle"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/jobs/0", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/jobs/abc", "", nil).Code)
}

func TestUpdateJob(t *testing.T) {
	s := newTestServer(t)
	path := "/jobs/" + itoa(s.jobIDs[0])

	r := s.do(http.MethodPatch, path, s.adminTok, gin.H{"title": "J1-new", "salary": 100})
	require.Equal(t, http.StatusOK, r.Code)
	job := r.Body["job"].(map[string]any)
	assert.Equal(t, "J1-new", job["title"])
	assert.EqualValues(t, 100, job["salary"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, path, s.u1Token, gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, path, s.adminTok, gin.H{"companyHandle": "c2"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/jobs/0", s.adminTok, gin.H{"title": "x"}).Code)
}

func TestRemoveJob(t *testing.T) {
	s := newTestServer(t)
	path := "/jobs/" + itoa(s.jobIDs[0])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, path, s.u1Token, nil).Code)
	r := s.do(http.MethodDelete, path, s.adminTok, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, s.jobIDs[0], r.Body["deleted"])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, s.adminTok, nil).Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{
		"username": "u-new", "password": "password-new", "firstName": "F", "lastName": "L",
		"email": "new@email.com", "isAdmin": true,
	}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/users", s.u1Token, body).Code)

	r := s.do(http.MethodPost, "/users", s.adminTok, body)
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, true, r.Body["user"].(map[string]any)["isAdmin"])
	assert.NotEmpty(t, r.Body["token"])
	assert.NotContains(t, r.Body["user"], "password")
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users", s.u1Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users", "", nil).Code)

	r := s.do(http.MethodGet, "/users", s.adminTok, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, []any{"admin", "u1", "u2"}, listField(t, r, "users", "username"))

	r = s.do(http.MethodGet, "/users?isAdmin=false&username=u", s.adminTok, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, []any{"u1", "u2"}, listField(t, r, "users", "username"))

	r = s.do(http.MethodGet, "/users?isAdmin=&username=", s.adminTok, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, []any{"admin", "u1", "u2"}, listField(t, r, "users", "username"))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/users?isAdmin=nah", s.adminTok, nil).Code)
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodGet, "/users/u1", s.u1Token, nil)
	require.Equal(t, http.StatusOK, r.Code)
	user := r.Body["user"].(map[string]any)
	assert.Equal(t, "U1F", user["firstName"])
	assert.Equal(t, []any{}, user["applications"])

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/u1", s.adminTok, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users/u2", s.u1Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/users/u1", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/users/nope", s.adminTok, nil).Code)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodPatch, "/users/u1", s.u1Token, gin.H{"firstName": "New"})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "New", r.Body["user"].(map[string]any)["firstName"])

	r = s.do(http.MethodPatch, "/users/u1", s.u1Token, gin.H{"isAdmin": true})
	assert.Equal(t, http.StatusUnauthorized, r.Code, "users cannot promote themselves")

	r = s.do(http.MethodPatch, "/users/u1", s.adminTok, gin.H{"isAdmin": true})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, true, r.Body["user"].(map[string]any)["isAdmin"])

	r = s.do(http.MethodPatch, "/users/u1", s.u1Token, gin.H{"password": "new-password"})
	require.Equal(t, http.StatusOK, r.Code)
	r = s.do(http.MethodPost, "/auth/token", "", gin.H{"username": "u1", "password": "new-password"})
	assert.Equal(t, http.StatusOK, r.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPatch, "/users/u2", s.u1Token, gin.H{"firstName": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/users/u1", s.u1Token, gin.H{"username": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/users/nope", s.adminTok, gin.H{"firstName": "x"}).Code)
}

func TestRemoveUser(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodDelete, "/users/u2", s.u1Token, nil).Code)

	r := s.do(http.MethodDelete, "/users/u1", s.u1Token, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "u1", r.Body["deleted"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/users/u1", s.adminTok, nil).Code)
}

func TestApplyToJob(t *testing.T) {
	s := newTestServer(t)
	path := "/users/u1/jobs/" + itoa(s.jobIDs[1])

	r := s.do(http.MethodPost, path, s.u1Token, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, s.jobIDs[1], r.Body["applied"])

	r = s.do(http.MethodPost, path, s.u1Token, nil)
	assert.Equal(t, http.StatusBadRequest, r.Code)

	r = s.do(http.MethodGet, "/users/u1", s.u1Token, nil)
	assert.Equal(t, []any{float64(s.jobIDs[1])}, r.Body["user"].(map[string]any)["applications"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/users/u2/jobs/"+itoa(s.jobIDs[1]), s.u1Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/users/u1/jobs/0", s.u1Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/users/nope/jobs/"+itoa(s.jobIDs[1]), s.adminTok, nil).Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Misc
// ─────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "ok", r.Body["status"])
	assert.Contains(t, r.Body, "pool")
	queries := r.Body["queries"].(map[string]any)
	assert.Greater(t, queries["total"], float64(0))
}

func TestRequestIDAndNotFound(t *testing.T) {
	s := newTestServer(t)

	r := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Len(t, r.Header.Get("X-Request-ID"), 26)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
