package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleWrite_Success(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	content := base64.StdEncoding.EncodeToString([]byte("hello"))
	mockMgr.On("WriteFile", "abc123", "/a.txt", []byte("hello")).Return(nil)

	body := `{"path":"/a.txt","content_base64":"` + content + `"}`
	req := httptest.NewRequest("POST", "/v1/sessions/abc123/fs/write", strings.NewReader(body))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleWrite(rec, req)

	assert.Equal(t, 200, rec.Code)
}

func TestHandleWrite_InvalidBase64(t *testing.T) {
	s := testAPIServer(&MockSessionService{})

	body := `{"path":"/a.txt","content_base64":"!!not-base64!!"}`
	req := httptest.NewRequest("POST", "/v1/sessions/abc123/fs/write", strings.NewReader(body))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleWrite(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleWrite_PathEscape(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("WriteFile", "abc123", "../etc/passwd", mock.Anything).Return(session.ErrPathEscape)

	content := base64.StdEncoding.EncodeToString([]byte("x"))
	body := `{"path":"../etc/passwd","content_base64":"` + content + `"}`
	req := httptest.NewRequest("POST", "/v1/sessions/abc123/fs/write", strings.NewReader(body))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleWrite(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleRead_Success(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("ReadFile", "abc123", "/a.txt", int64(64<<20)).Return([]byte("hello"), false, nil)

	req := httptest.NewRequest("GET", "/v1/sessions/abc123/fs/read?path=/a.txt", nil)
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleRead(rec, req)

	require.Equal(t, 200, rec.Code)
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), out["content_base64"])
	assert.Equal(t, false, out["truncated"])
}

func TestHandleRead_MissingPath(t *testing.T) {
	s := testAPIServer(&MockSessionService{})

	req := httptest.NewRequest("GET", "/v1/sessions/abc123/fs/read", nil)
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleRead(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleListDirectory_Success(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("ListDirectory", "abc123", "/").Return([]session.DirEntry{
		{Name: "a.txt", IsDir: false},
		{Name: "sub", IsDir: true},
	}, nil)

	req := httptest.NewRequest("GET", "/v1/sessions/abc123/fs/list", nil)
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleListDirectory(rec, req)

	assert.Equal(t, 200, rec.Code)
}

func TestHandleUpload_Success(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("WriteFile", "abc123", "/upload.txt", []byte("payload")).Return(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("payload"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/v1/sessions/abc123/fs/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleUpload(rec, req)

	assert.Equal(t, 200, rec.Code)
}
