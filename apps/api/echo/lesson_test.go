package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/catalog"
)

type lessonPage struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []catalog.Lesson `json:"results"`
}

func Test_lessonApi_create(t *testing.T) {
	env := setup(t)

	member := createUser(t, env, "member@test.cd", "Member", access.RoleMember, false, true)
	moderator := createUser(t, env, "mod@test.cd", "Mod", access.RoleModerator, false, true)
	course := createCourse(t, env, member, "Chemistry", 1500_00)

	body := func(courseID, videoURL string) []byte {
		return []byte(`{"course":"` + courseID + `","title":"Acids","position":1,"video_url":"` + videoURL + `"}`)
	}
	memberToken := getToken(t, member)

	tests := []httpTest{
		{name: "auth required", body: body(course.ID, ""), wantCode: http.StatusUnauthorized},
		{name: "moderators do not author", body: body(course.ID, ""), token: getToken(t, moderator), wantCode: http.StatusForbidden},
		{name: "course required", body: []byte(`{"title":"Orphan"}`), token: memberToken, wantCode: http.StatusBadRequest},
		{name: "unknown course", body: body("lol", ""), token: memberToken, wantCode: http.StatusNotFound},
		{
			name: "external video host", body: body(course.ID, "https://vimeo.com/123456"), token: memberToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"video_url": "only YouTube links are allowed"}),
		},
		{
			name: "no scheme still must be youtube", body: body(course.ID, "example.com/watch"), token: memberToken,
			wantCode: http.StatusBadRequest,
		},
		{name: "youtube.com ok", body: body(course.ID, "https://www.youtube.com/watch?v=dQw4w9WgXcQ"), token: memberToken, wantCode: http.StatusCreated},
		{name: "youtu.be ok", body: body(course.ID, "https://youtu.be/dQw4w9WgXcQ"), token: memberToken, wantCode: http.StatusCreated},
		{name: "no video ok", body: body(course.ID, ""), token: memberToken, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/lessons", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var lesson catalog.Lesson
				decodeBody(t, rec, &lesson)
				assert.Equal(t, course.ID, lesson.CourseID)
				assert.Equal(t, member.ID, lesson.Owner.String)
			}
		})
	}
}

func Test_lessonApi_list(t *testing.T) {
	env := setup(t)

	owner := createUser(t, env, "owner@test.cd", "Owner", access.RoleMember, false, true)
	course := createCourse(t, env, owner, "Biology", 1000_00)
	for i := 1; i <= 25; i++ {
		createLesson(t, env, owner, course, fmt.Sprintf("Lesson %02d", i), i)
	}

	token := getToken(t, owner)

	t.Run("first page defaults to 20", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/lessons", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page lessonPage
		decodeBody(t, rec, &page)
		assert.Equal(t, 25, page.Count)
		assert.Len(t, page.Results, 20)
		require.NotNil(t, page.Next)
		assert.Nil(t, page.Previous)
	})

	t.Run("second page holds the rest", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/lessons?page=2", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page lessonPage
		decodeBody(t, rec, &page)
		assert.Len(t, page.Results, 5)
		assert.Nil(t, page.Next)
		assert.NotNil(t, page.Previous)
	})
}

func Test_lessonApi_update(t *testing.T) {
	env := setup(t)

	owner := createUser(t, env, "owner@test.cd", "Owner", access.RoleMember, false, true)
	intruder := createUser(t, env, "intruder@test.cd", "Intruder", access.RoleMember, false, true)
	moderator := createUser(t, env, "mod@test.cd", "Mod", access.RoleModerator, false, true)

	course := createCourse(t, env, owner, "Physics", 2000_00)
	lesson := createLesson(t, env, owner, course, "Waves", 3)
	path := "/api/lessons/" + lesson.ID

	t.Run("non-owner member is forbidden, not hidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, intruder), []byte(`{"title":"Hacked"}`))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner reorders and swaps the video", func(t *testing.T) {
		body := []byte(`{"position":1,"video_url":"https://youtu.be/abc123"}`)
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, owner), body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated catalog.Lesson
		decodeBody(t, rec, &updated)
		assert.Equal(t, 1, updated.Position)
		assert.Equal(t, "https://youtu.be/abc123", updated.VideoURL.String)
		assert.Equal(t, "Waves", updated.Title)
		assert.Equal(t, course.ID, updated.CourseID) // relation is fixed
	})

	t.Run("video swap is still validated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, owner), []byte(`{"video_url":"https://dailymotion.com/x"}`))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("moderator curates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, moderator), []byte(`{"title":"Waves and Sound"}`))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_lessonApi_destroy(t *testing.T) {
	env := setup(t)

	owner := createUser(t, env, "owner@test.cd", "Owner", access.RoleMember, false, true)
	moderator := createUser(t, env, "mod@test.cd", "Mod", access.RoleModerator, false, true)

	course := createCourse(t, env, owner, "Maths", 1200_00)
	lesson := createLesson(t, env, owner, course, "Algebra", 1)
	path := "/api/lessons/" + lesson.ID

	tests := []httpTest{
		{name: "moderators never delete", token: getToken(t, moderator), wantCode: http.StatusForbidden},
		{name: "owner", token: getToken(t, owner), wantCode: http.StatusNoContent},
		{name: "gone afterwards", token: getToken(t, owner), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, path, tt.token)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
