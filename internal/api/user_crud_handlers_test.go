package api

import (
	"fmt"
	"net/http"
	"testing"

	"go-shop/internal/dbtest"
	"go-shop/internal/paging"
	"go-shop/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userListBody struct {
	Message string      `json:"message"`
	Data    []user.User `json:"data"`
	Meta    paging.Meta `json:"meta"`
}

func TestListUsers_Paginated(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAndToken("Admin", "admin@example.com", user.RoleAdmin)
	for i := 0; i < 11; i++ {
		dbtest.SeedUser(t, s.db, "u", fmt.Sprintf("u%d@example.com", i), "secret1", user.RoleUser)
	}

	w := s.do("GET", "/api/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var body userListBody
	decode(t, w, &body)
	assert.Len(t, body.Data, 10)
	assert.Equal(t, paging.Meta{CurrentPage: 1, PerPage: 10, Total: 12, LastPage: 2}, body.Meta)

	w = s.do("GET", "/api/users?page=2", nil, token)
	decode(t, w, &body)
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 2, body.Meta.CurrentPage)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestServer(t)
	_, token := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)

	for _, path := range []string{"/api/users/999", "/api/users/abc"} {
		w := s.do("GET", path, nil, token)
		require.Equal(t, http.StatusNotFound, w.Code, path)
		var e errorBody
		decode(t, w, &e)
		assert.Equal(t, "User not found", e.Error)
	}
}

func TestCreateUser_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	_, userToken := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)
	_, adminToken := s.seedAndToken("Root", "root@example.com", user.RoleAdmin)
	payload := map[string]any{"name": "Ed", "email": "ed@example.com", "password": "secret1", "role_id": 2}

	assert.Equal(t, http.StatusForbidden, s.do("POST", "/api/users", payload, userToken).Code)

	w := s.do("POST", "/api/users", payload, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created user.User
	decode(t, w, &created)
	assert.Equal(t, user.RoleEditor, created.Role)

	w = s.do("POST", "/api/users", payload, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteUser_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	victim, _ := s.seedAndToken("Victim", "victim@example.com", user.RoleUser)
	_, editorToken := s.seedAndToken("Editor", "editor@example.com", user.RoleEditor)
	_, adminToken := s.seedAndToken("Root", "root@example.com", user.RoleAdmin)
	path := fmt.Sprintf("/api/users/%d", victim.ID)

	w := s.do("DELETE", path, nil, editorToken)
	require.Equal(t, http.StatusForbidden, w.Code)
	var e errorBody
	decode(t, w, &e)
	assert.Equal(t, "Forbidden", e.Error)

	assert.Equal(t, http.StatusOK, s.do("DELETE", path, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, s.do("DELETE", path, nil, adminToken).Code)
}

func TestDeleteUser_RemovesTheirComments(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seedAndToken("Root", "root@example.com", user.RoleAdmin)
	author := dbtest.SeedUser(t, s.db, "Author", "author@example.com", "secret1", user.RoleUser)
	other := dbtest.SeedUser(t, s.db, "Other", "other@example.com", "secret1", user.RoleUser)
	p := dbtest.SeedProduct(t, s.db, "lamp", 10, 1)
	gone := dbtest.SeedComment(t, s.db, author.ID, p.ID, 5, "love it")
	kept := dbtest.SeedComment(t, s.db, other.ID, p.ID, 3, "ok")

	require.Equal(t, http.StatusOK, s.do("DELETE", fmt.Sprintf("/api/users/%d", author.ID), nil, adminToken).Code)

	assert.Equal(t, http.StatusNotFound, s.do("GET", fmt.Sprintf("/api/comentario/%d", gone.ID), nil, adminToken).Code)
	assert.Equal(t, http.StatusOK, s.do("GET", fmt.Sprintf("/api/comentario/%d", kept.ID), nil, adminToken).Code)

	w := s.do("GET", "/api/comentario", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var list commentListBody
	decode(t, w, &list)
	require.Len(t, list.Data, 1)
	assert.Equal(t, kept.ID, list.Data[0].ID)
}

func TestUpdateRole(t *testing.T) {
	s := newTestServer(t)
	target, targetToken := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)
	_, adminToken := s.seedAndToken("Root", "root@example.com", user.RoleAdmin)
	path := fmt.Sprintf("/api/users/%d/role", target.ID)

	assert.Equal(t, http.StatusForbidden, s.do("PATCH", path, map[string]int{"role_id": 1}, targetToken).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("PATCH", path, map[string]int{"role_id": 4}, adminToken).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("PATCH", path, map[string]int{}, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, s.do("PATCH", "/api/users/999/role", map[string]int{"role_id": 2}, adminToken).Code)

	w := s.do("PATCH", path, map[string]int{"role_id": 2}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Message string    `json:"message"`
		User    user.User `json:"user"`
	}
	decode(t, w, &body)
	assert.Equal(t, user.RoleEditor, body.User.Role)

	// the old token now carries the new role since identity is re-read per request
	var me user.User
	decode(t, s.do("GET", "/api/me", nil, targetToken), &me)
	assert.Equal(t, user.RoleEditor, me.Role)
}

func TestUpdateInfo_KeepsUnsentFields(t *testing.T) {
	s := newTestServer(t)
	target, token := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)
	dbtest.SeedUser(t, s.db, "Bob", "bob@example.com", "secret1", user.RoleUser)
	path := fmt.Sprintf("/api/users/%d/info", target.ID)

	w := s.do("PATCH", path, map[string]string{"email": "bob@example.com"}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do("PATCH", path, map[string]string{"email": "ana@example.com", "name": "Ana Maria"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		User user.User `json:"user"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Ana Maria", body.User.Name)
	assert.Equal(t, "ana@example.com", body.User.Email)
	assert.Equal(t, user.RoleUser, body.User.Role)
}

func TestUpdateUser_MultipartPicture(t *testing.T) {
	s := newTestServer(t)
	target, token := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)

	w := s.doMultipart("PUT", fmt.Sprintf("/api/users/%d", target.ID), nil,
		map[string][]byte{"profile_picture": pngBytes}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got user.User
	decode(t, w, &got)
	require.NotNil(t, got.ProfilePicture)
	assert.Equal(t, s.up.uploaded[0], *got.ProfilePicture)
	assert.Equal(t, "Ana", got.Name)
}

func TestUpdateUser_PasswordThenLogin(t *testing.T) {
	s := newTestServer(t)
	target, token := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)

	w := s.do("PUT", fmt.Sprintf("/api/users/%d", target.ID), map[string]string{"password": "brand-new"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	login := s.do("POST", "/api/login", map[string]string{"email": "ana@example.com", "password": "brand-new"}, "")
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServer(t)
	target, token := s.seedAndToken("Ana", "ana@example.com", user.RoleUser)
	path := fmt.Sprintf("/api/users/%d/password", target.ID)

	w := s.do("PATCH", path, map[string]string{
		"current_password": "wrong", "new_password": "newsecret", "new_password_confirmation": "newsecret",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do("PATCH", path, map[string]string{
		"current_password": "secret1", "new_password": "newsecret", "new_password_confirmation": "different",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var v validationBody
	decode(t, w, &v)
	assert.Contains(t, v.Errors, "new_password_confirmation")

	w = s.do("PATCH", "/api/users/999/password", map[string]string{
		"current_password": "secret1", "new_password": "newsecret", "new_password_confirmation": "newsecret",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("PATCH", path, map[string]string{
		"current_password": "secret1", "new_password": "newsecret", "new_password_confirmation": "newsecret",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	login := s.do("POST", "/api/login", map[string]string{"email": "ana@example.com", "password": "newsecret"}, "")
	assert.Equal(t, http.StatusOK, login.Code)
}
