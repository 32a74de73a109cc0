package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	. "github.com/darasa-app/darasa/apps/api/echo"
	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/billing"
	"github.com/darasa-app/darasa/core/catalog"
	"github.com/darasa-app/darasa/core/user"
	emailsvc "github.com/darasa-app/darasa/services/email"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

var (
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Darasa",
		SecretKey:        []byte("secret-for-tests-only"),
		DefaultFromEmail: mail.Address{Name: "Darasa", Address: "noreply@darasa.app"},
		Server: core.ServerConfig{
			JWTAccessExpirationDelta:  30 * time.Minute,
			JWTRefreshExpirationDelta: 7 * 24 * time.Hour,
		},
	}

	validate = validator.New()
	translator = newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type testEnv struct {
	app Server

	usrRepo user.Repository
	catRepo catalog.Repository
	payRepo billing.Repository

	usrSvc user.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	env := &testEnv{
		usrRepo: inmemdb.NewUserRepository(db),
		catRepo: inmemdb.NewCatalogRepository(db),
		payRepo: inmemdb.NewPaymentRepository(db),
	}
	env.usrSvc = user.NewService(env.usrRepo, emailsvc.NewConsoleServiceMock(conf), conf)

	env.app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         testLogger{t},
			UserSvc:        env.usrSvc,
			CatalogSvc:     catalog.NewService(env.catRepo),
			BillingSvc:     billing.NewService(env.payRepo, env.catRepo),
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
	return env
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Log(msg, args) }

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
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	access, _, err := GenerateTokenPair(conf, usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return access
}

func getRefreshToken(t *testing.T, usr user.User) string {
	t.Helper()
	_, refresh, err := GenerateTokenPair(conf, usr)
	if err != nil {
		t.Fatalf("getRefreshToken(): %v", err)
	}
	return refresh
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func ctx() context.Context { return context.Background() }

// fixtures

func createUser(t *testing.T, env *testEnv, email, firstName string, role access.Role, isStaff, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Email:     email,
		FirstName: firstName,
		Role:      role,
		IsStaff:   isStaff,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("Sup3rStr0ng!"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(ctx(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createCourse(t *testing.T, env *testEnv, owner user.User, title string, price core.Amount) catalog.Course {
	t.Helper()
	now := time.Now().UTC()
	course, err := env.catRepo.CreateCourse(ctx(), catalog.Course{
		Title:     title,
		Price:     price,
		Owner:     null.StringFrom(owner.ID),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return course
}

func createLesson(t *testing.T, env *testEnv, owner user.User, course catalog.Course, title string, position int) catalog.Lesson {
	t.Helper()
	now := time.Now().UTC()
	lesson, err := env.catRepo.CreateLesson(ctx(), catalog.Lesson{
		CourseID:  course.ID,
		Title:     title,
		Position:  position,
		Owner:     null.StringFrom(owner.ID),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLesson(): %v", err)
	}
	return lesson
}

func createPayment(t *testing.T, env *testEnv, usr user.User, course catalog.Course, amount core.Amount, method string, date time.Time) billing.Payment {
	t.Helper()
	pmt, err := env.payRepo.CreatePayment(ctx(), billing.Payment{
		UserID:        usr.ID,
		CourseID:      null.StringFrom(course.ID),
		Amount:        amount,
		PaymentMethod: method,
		PaymentDate:   date,
	})
	if err != nil {
		t.Fatalf("CreatePayment(): %v", err)
	}
	return pmt
}
