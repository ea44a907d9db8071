package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/coachdesk/apps/api/echo"
	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/session"
	"github.com/trezcool/coachdesk/core/sms"
	emailsvc "github.com/trezcool/coachdesk/services/email"
	"github.com/trezcool/coachdesk/services/metrics"
	inmemdb "github.com/trezcool/coachdesk/storage/inmem"
	"github.com/trezcool/coachdesk/testutil"
)

var (
	conf     *core.Config
	codec    *session.Codec
	admRepo  admin.Repository
	acdRepo  academy.Repository
	tmplRepo sms.TemplateRepository
	logRepo  sms.LogRepository
	gateway  *testutil.Gateway

	errUnauthorized = httpErr{Error: "not authenticated"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	conf = testutil.NewConfig()
	logger := testutil.NewLogger()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	admRepo = inmemdb.NewAdminRepository(db)
	acdRepo = inmemdb.NewAcademyRepository(db)
	tmplRepo = inmemdb.NewTemplateRepository(db)
	logRepo = inmemdb.NewLogRepository(db)
	gateway = testutil.NewGateway()
	codec = session.NewCodec(conf)

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	dispDeps := sms.NewDispatcherDeps(conf)
	dispDeps.Templates = tmplRepo
	dispDeps.Academy = acdRepo
	dispDeps.Gateway = gateway
	dispDeps.Logs = logRepo
	dispDeps.Logger = logger

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		AdminSvc:       admin.NewService(admRepo, mailSvc, conf),
		Codec:          codec,
		Revoker:        session.NewMemoryRevoker(),
		AcademySvc:     academy.NewService(acdRepo),
		SMSSvc:         sms.NewService(tmplRepo, logRepo, gateway),
		Dispatcher:     sms.NewDispatcher(dispDeps),
		Metrics:        metrics.New(),
		DisableReqLogs: true,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: conf.Session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, adm admin.Administrator) string {
	token, _, err := codec.Sign(session.NewClaims(adm))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// sessionCookie returns the session cookie set by the response, if any.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == conf.Session.CookieName {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code)
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, srv *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
