package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/app/models/dto"
	"github.com/yigit/lorebase/internal/app/services"
	"github.com/yigit/lorebase/internal/middleware"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	got     services.AddFileRequest
	content string
	id      int64
	err     error
}

func (s *stubStore) Add(_ context.Context, req services.AddFileRequest) (int64, error) {
	s.got = req
	if req.Content != nil {
		b, _ := io.ReadAll(req.Content)
		s.content = string(b)
	}
	return s.id, s.err
}

type stubRetriever struct {
	gotOwner *int64
	content  *services.FileContent
	err      error
}

func (s *stubRetriever) Get(_ context.Context, _ int64, ownerID *int64) (*services.FileContent, error) {
	s.gotOwner = ownerID
	return s.content, s.err
}

type stubLifecycle struct {
	actingUser int64
	deleted    *bool
	err        error
}

func (s *stubLifecycle) SetDeleted(_ context.Context, actingUserID, fileID int64, deleted *bool) (int64, error) {
	s.actingUser = actingUserID
	s.deleted = deleted
	return fileID, s.err
}

type stubLister struct {
	kind  string
	owner int64
	items []dto.FileListItem
	err   error
}

func (s *stubLister) List(_ context.Context, ownerKind string, ownerID int64) ([]dto.FileListItem, error) {
	s.kind, s.owner = ownerKind, ownerID
	return s.items, s.err
}

type stubCatalog struct {
	types []*models.FileType
}

func (s *stubCatalog) Resolve(context.Context, string) (*models.FileType, error) {
	return nil, apperrors.ErrUnknownFileType
}

func (s *stubCatalog) List(context.Context) ([]*models.FileType, error) { return s.types, nil }

type fileHarness struct {
	router    *gin.Engine
	store     *stubStore
	retriever *stubRetriever
	lifecycle *stubLifecycle
	lister    *stubLister
}

// newFileHarness mounts the controller on a bare router. actingUser > 0
// pretends an auth middleware already ran.
func newFileHarness(actingUser int64) *fileHarness {
	h := &fileHarness{
		store:     &stubStore{id: 11},
		retriever: &stubRetriever{},
		lifecycle: &stubLifecycle{},
		lister:    &stubLister{},
	}
	catalog := &stubCatalog{types: []*models.FileType{{ID: 1, Alias: "User", Name: "User files", RootPath: "uploads/users"}}}
	fc := NewFileController(h.store, h.retriever, h.lifecycle, h.lister, catalog, zerolog.Nop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actingUser > 0 {
			c.Set(middleware.ContextUserID, actingUser)
		}
		c.Next()
	})
	r.POST("/files/:ownerKind/:ownerId", fc.Upload)
	r.GET("/files/:fileId", fc.Download)
	r.PATCH("/files/:fileId/deleted", fc.SetDeleted)
	r.GET("/users/:ownerId/files", fc.ListOwnerFiles(models.OwnerKindUser))
	r.GET("/owners/:ownerKind/:ownerId/files", fc.ListFiles)
	r.GET("/file-types", fc.ListFileTypes)
	h.router = r
	return h
}

func (h *fileHarness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, url, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestFileController_Upload(t *testing.T) {
	h := newFileHarness(5)

	rec := h.do(multipartUpload(t, "/files/User/42", "avatar.png", "PNGDATA"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.FileIDResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(11), resp.ID)

	assert.Equal(t, int64(42), h.store.got.OwnerID)
	assert.Equal(t, "User", h.store.got.FileTypeAlias)
	assert.Equal(t, "avatar.png", h.store.got.Name)
	assert.Equal(t, "PNGDATA", h.store.content)
	require.NotNil(t, h.store.got.CreatedBy)
	assert.Equal(t, int64(5), *h.store.got.CreatedBy)
}

func TestFileController_UploadWithoutFileLetsServiceValidate(t *testing.T) {
	h := newFileHarness(0)
	h.store.err = apperrors.ErrFileNameRequired

	rec := h.do(multipartUpload(t, "/files/User/42", "", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.store.got.Name)
	assert.Nil(t, h.store.got.Content)
	assert.Nil(t, h.store.got.CreatedBy)
}

func TestFileController_UploadBadOwnerIDBecomesZero(t *testing.T) {
	h := newFileHarness(0)
	h.store.err = apperrors.ErrOwnerIDRequired

	rec := h.do(multipartUpload(t, "/files/User/abc", "a.png", "x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), h.store.got.OwnerID)
}

func TestFileController_UploadDuplicate(t *testing.T) {
	h := newFileHarness(0)
	h.store.err = apperrors.ErrDuplicateFile

	rec := h.do(multipartUpload(t, "/files/User/42", "a.png", "x"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.ErrDuplicateFile.Error())
}

func TestFileController_Download(t *testing.T) {
	h := newFileHarness(0)
	h.retriever.content = &services.FileContent{FileID: 3, Name: "map.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/files/3?ownerId=42", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=map.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
	require.NotNil(t, h.retriever.gotOwner)
	assert.Equal(t, int64(42), *h.retriever.gotOwner)
}

func TestFileController_DownloadFailuresHaveEmptyBody(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":   {apperrors.ErrFileNotFound, http.StatusNotFound},
		"bad request": {apperrors.ErrUnsupportedContentType, http.StatusBadRequest},
		"server":      {assert.AnError, http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newFileHarness(0)
			h.retriever.err = tc.err

			rec := h.do(httptest.NewRequest(http.MethodGet, "/files/3", nil))

			assert.Equal(t, tc.want, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Nil(t, h.retriever.gotOwner)
		})
	}
}

func TestFileController_SetDeleted(t *testing.T) {
	h := newFileHarness(9)

	req := httptest.NewRequest(http.MethodPatch, "/files/3/deleted", strings.NewReader(`{"isDeleted":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.FileIDResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, int64(3), resp.ID)
	assert.Equal(t, int64(9), h.lifecycle.actingUser)
	require.NotNil(t, h.lifecycle.deleted)
	assert.True(t, *h.lifecycle.deleted)
}

func TestFileController_SetDeletedNullLeavesStateAlone(t *testing.T) {
	h := newFileHarness(9)

	req := httptest.NewRequest(http.MethodPatch, "/files/3/deleted", strings.NewReader(`{"isDeleted":null}`))
	rec := h.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, h.lifecycle.deleted)
}

func TestFileController_SetDeletedRequiresActingUser(t *testing.T) {
	h := newFileHarness(0)

	req := httptest.NewRequest(http.MethodPatch, "/files/3/deleted", strings.NewReader(`{"isDeleted":true}`))
	rec := h.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), h.lifecycle.actingUser)
}

func TestFileController_Listings(t *testing.T) {
	h := newFileHarness(0)
	h.lister.items = []dto.FileListItem{{ID: 1, Name: "a.png"}, {ID: 2, Name: "b.png"}}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/users/42/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []dto.FileListItem
	decodeData(t, rec, &items)
	assert.Equal(t, h.lister.items, items)
	assert.Equal(t, "User", h.lister.kind)
	assert.Equal(t, int64(42), h.lister.owner)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/owners/NewsDetail/8/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NewsDetail", h.lister.kind)
	assert.Equal(t, int64(8), h.lister.owner)

	h.lister.err = apperrors.ErrNoFilesForOwner
	rec = h.do(httptest.NewRequest(http.MethodGet, "/users/43/files", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileController_ListFileTypes(t *testing.T) {
	h := newFileHarness(0)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/file-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var types []dto.FileTypeResponse
	decodeData(t, rec, &types)
	assert.Equal(t, []dto.FileTypeResponse{{ID: 1, Alias: "User", Name: "User files"}}, types)
	assert.NotContains(t, rec.Body.String(), "uploads/users", "root paths stay server side")
}
