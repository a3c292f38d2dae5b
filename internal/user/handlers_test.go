package user

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	actingID = "11111111-1111-1111-1111-111111111111"
	targetID = "22222222-2222-2222-2222-222222222222"
)

var userColumns = []string{"id", "username", "email", "password", "picture", "playlists", "is_admin", "created_at"}

func accountRow() *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(actingID, "alice", "alice@example.com", "$2a$10$hash", "default.png", 2, false,
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
}

// fakeStore records storage calls without touching disk.
type fakeStore struct {
	saved   []string
	removed []string
}

func (f *fakeStore) Save(name string, r io.Reader) error {
	f.saved = append(f.saved, name)
	return nil
}

func (f *fakeStore) Open(name string) (*os.File, error) { return nil, os.ErrNotExist }

func (f *fakeStore) Remove(name string) error {
	f.removed = append(f.removed, name)
	return nil
}

type noopSessions struct{ invalidated bool }

func (n *noopSessions) InvalidateSession(w http.ResponseWriter, r *http.Request) {
	n.invalidated = true
}

func passThrough(next http.Handler) http.Handler { return next }

func setupMockServer(t *testing.T) (http.Handler, pgxmock.PgxPoolIface, *fakeStore, *noopSessions) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	files := &fakeStore{}
	sessions := &noopSessions{}
	h := NewServer(mock, files, sessions).Router(passThrough, passThrough)
	return h, mock, files, sessions
}

func doRequest(t *testing.T, h http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetAccount(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(actingID).
		WillReturnRows(accountRow())

	rec := doRequest(t, h, http.MethodGet, "/account", actingID, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"alice"`)
	assert.NotContains(t, rec.Body.String(), "$2a$", "the password hash must never be serialized")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountRejectsPassword(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	rec := doRequest(t, h, http.MethodPatch, "/account", actingID, `{"password":"newpass"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can change password on /changePassword route.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountRejectsPicture(t *testing.T) {
	h, _, _, _ := setupMockServer(t)

	rec := doRequest(t, h, http.MethodPatch, "/account", actingID, `{"picture":"evil.png"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can change picture on /changePicture route.")
}

func TestUpdateAccount(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(actingID).
		WillReturnRows(accountRow())
	mock.ExpectExec("UPDATE users SET username").
		WithArgs(actingID, "alice2", "alice2@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := doRequest(t, h, http.MethodPatch, "/account", actingID,
		`{"username":"alice2","email":"Alice2@Example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"alice2@example.com"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	h, mock, _, sessions := setupMockServer(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(actingID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	rec := doRequest(t, h, http.MethodDelete, "/account", actingID, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, sessions.invalidated, "deleting the account must invalidate the session")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func multipartPicture(t *testing.T, fieldName, fileName, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestChangePictureRejectsNonImage(t *testing.T) {
	h, _, files, _ := setupMockServer(t)

	body, contentType := multipartPicture(t, "picture", "notes.txt", "text/plain")
	req := httptest.NewRequest(http.MethodPatch, "/account/picture", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userIDHeader, actingID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You can upload only images.")
	assert.Empty(t, files.saved, "nothing may be written for a rejected upload")
}

func TestChangePicture(t *testing.T) {
	h, mock, files, _ := setupMockServer(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(actingID).
		WillReturnRows(accountRow())
	mock.ExpectExec("UPDATE users SET picture").
		WithArgs(actingID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body, contentType := multipartPicture(t, "picture", "me.png", "image/png")
	req := httptest.NewRequest(http.MethodPatch, "/account/picture", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userIDHeader, actingID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, files.saved, 1)
	assert.True(t, strings.HasSuffix(files.saved[0], ".png"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePicture(t *testing.T) {
	h, mock, files, _ := setupMockServer(t)

	rows := pgxmock.NewRows(userColumns).
		AddRow(actingID, "alice", "alice@example.com", "$2a$10$hash", "custom.png", 2, false,
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(actingID).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET picture").
		WithArgs(actingID, DefaultPicture).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := doRequest(t, h, http.MethodDelete, "/account/picture", actingID, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"custom.png"}, files.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminListUsers(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at").
		WillReturnRows(accountRow())

	rec := doRequest(t, h, http.MethodGet, "/", actingID, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"results":1`)
	assert.NotContains(t, rec.Body.String(), "$2a$")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateUser(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	rows := pgxmock.NewRows(userColumns).
		AddRow(targetID, "bob", "bob@example.com", "$2a$10$hash", "default.png", 0, false,
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(targetID).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET username").
		WithArgs(targetID, "bob", "bob@example.com", 0, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := doRequest(t, h, http.MethodPatch, "/"+targetID, actingID, `{"isAdmin":true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"isAdmin":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDeleteUserNotFound(t *testing.T) {
	h, mock, _, _ := setupMockServer(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(targetID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	rec := doRequest(t, h, http.MethodDelete, "/"+targetID, actingID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resource not found.")
}

func TestAdminGetUserMalformedID(t *testing.T) {
	h, _, _, _ := setupMockServer(t)

	rec := doRequest(t, h, http.MethodGet, "/not-a-uuid", actingID, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
