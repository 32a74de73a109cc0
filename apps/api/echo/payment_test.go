package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/billing"
)

func Test_paymentApi_create(t *testing.T) {
	env := setup(t)

	member := createUser(t, env, "member@test.cd", "Member", access.RoleMember, false, true)
	course := createCourse(t, env, member, "Chemistry", 1500_00)

	token := getToken(t, member)

	tests := []httpTest{
		{name: "auth required", body: []byte(`{}`), wantCode: http.StatusUnauthorized},
		{name: "missing fields", body: []byte(`{}`), token: token, wantCode: http.StatusBadRequest},
		{name: "zero amount", body: []byte(`{"amount":"0.00","payment_method":"cash"}`), token: token, wantCode: http.StatusBadRequest},
		{name: "negative amount", body: []byte(`{"amount":"-5.00","payment_method":"cash"}`), token: token, wantCode: http.StatusBadRequest},
		{name: "malformed amount", body: []byte(`{"amount":"1.2.3","payment_method":"cash"}`), token: token, wantCode: http.StatusBadRequest},
		{name: "unknown method", body: []byte(`{"amount":"1500.00","payment_method":"card"}`), token: token, wantCode: http.StatusBadRequest},
		{
			name: "dangling course", body: []byte(`{"course":"3f9c86b2-58d1-4e2c-9a7b-1d0a4f6c8e21","amount":"10.00","payment_method":"cash"}`),
			token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"course":"course not found"}`),
		},
		{
			name: "dangling lesson", body: []byte(`{"lesson":"7b2de4a9-6c3f-4f81-b5d2-90e7a1c35f44","amount":"10.00","payment_method":"cash"}`),
			token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"lesson":"lesson not found"}`),
		},
		{
			name: "ok", body: []byte(`{"course":"` + course.ID + `","amount":"1500.00","payment_method":"transfer"}`),
			token: token, wantCode: http.StatusCreated,
		},
		{
			name: "method is case-insensitive", body: []byte(`{"amount":"100.00","payment_method":"CASH"}`),
			token: token, wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/payments", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "ok" {
				var pmt billing.Payment
				decodeBody(t, rec, &pmt)
				assert.Equal(t, member.ID, pmt.UserID) // the payer is the caller
				assert.Equal(t, course.ID, pmt.CourseID.String)
				assert.Equal(t, billing.MethodTransfer, pmt.PaymentMethod)
				assert.False(t, pmt.PaymentDate.IsZero())
				// fixed-point decimal survives the round trip
				assert.Contains(t, rec.Body.String(), `"1500.00"`)
			}
		})
	}
}

func Test_paymentApi_list(t *testing.T) {
	env := setup(t)

	alice := createUser(t, env, "alice@test.cd", "Alice", access.RoleMember, false, true)
	bob := createUser(t, env, "bob@test.cd", "Bob", access.RoleMember, false, true)
	moderator := createUser(t, env, "mod@test.cd", "Mod", access.RoleModerator, false, true)
	staff := createUser(t, env, "staff@test.cd", "Staff", access.RoleMember, true, true)

	maths := createCourse(t, env, alice, "Maths", 1000_00)
	music := createCourse(t, env, bob, "Music", 500_00)

	now := time.Now().UTC()
	p1 := createPayment(t, env, alice, maths, 1000_00, billing.MethodCash, now.AddDate(0, 0, -3))
	p2 := createPayment(t, env, alice, music, 500_00, billing.MethodTransfer, now.AddDate(0, 0, -1))
	p3 := createPayment(t, env, bob, music, 750_00, billing.MethodTransfer, now.AddDate(0, 0, -2))

	list := func(t *testing.T, token, query string) []billing.Payment {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/api/payments"+query, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var payments []billing.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
		return payments
	}
	ids := func(payments []billing.Payment) []string {
		out := make([]string, 0, len(payments))
		for _, p := range payments {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/payments")
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("members see their own rows, newest first", func(t *testing.T) {
		payments := list(t, getToken(t, alice), "")
		assert.Equal(t, []string{p2.ID, p1.ID}, ids(payments))
	})

	t.Run("joined titles are filled in", func(t *testing.T) {
		payments := list(t, getToken(t, alice), "")
		require.NotEmpty(t, payments)
		assert.Equal(t, "Music", payments[0].CourseTitle.String)
	})

	t.Run("moderator audits everything", func(t *testing.T) {
		payments := list(t, getToken(t, moderator), "")
		assert.Equal(t, []string{p2.ID, p3.ID, p1.ID}, ids(payments))
	})

	t.Run("staff audits everything", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "")
		assert.Len(t, payments, 3)
	})

	t.Run("filter by course", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?course="+music.ID)
		assert.ElementsMatch(t, []string{p2.ID, p3.ID}, ids(payments))
	})

	t.Run("malformed course filter yields an empty list", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?course=lol")
		assert.Empty(t, payments)
	})

	t.Run("malformed lesson filter yields an empty list", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?lesson=lol")
		assert.Empty(t, payments)
	})

	t.Run("filter by payment method", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?payment_method=cash")
		assert.Equal(t, []string{p1.ID}, ids(payments))
	})

	t.Run("filter by amount range", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?amount_gte=600.00&amount_lte=800.00")
		assert.Equal(t, []string{p3.ID}, ids(payments))
	})

	t.Run("malformed amount filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/payments?amount_gte=lol", getToken(t, staff))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("order by amount", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?ordering=amount")
		assert.Equal(t, []string{p2.ID, p3.ID, p1.ID}, ids(payments))

		payments = list(t, getToken(t, staff), "?ordering=-amount")
		assert.Equal(t, []string{p1.ID, p3.ID, p2.ID}, ids(payments))
	})

	t.Run("unknown ordering falls back to newest first", func(t *testing.T) {
		payments := list(t, getToken(t, staff), "?ordering=lol")
		assert.Equal(t, []string{p2.ID, p3.ID, p1.ID}, ids(payments))
	})

	t.Run("filters and scope combine", func(t *testing.T) {
		payments := list(t, getToken(t, alice), "?payment_method=transfer")
		assert.Equal(t, []string{p2.ID}, ids(payments))
	})

	t.Run("member with nothing gets an empty list", func(t *testing.T) {
		loner := createUser(t, env, "loner@test.cd", "Loner", access.RoleMember, false, true)
		req, rec := newAuthRequest(http.MethodGet, "/api/payments", getToken(t, loner))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}
