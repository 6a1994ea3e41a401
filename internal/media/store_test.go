package media

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutBuildsKeyAndURL(t *testing.T) {
	s3c := &fakeS3{}
	store := NewStore(s3c, "clinic-media", "https://media.clinica.example/")

	obj, err := store.Put(context.Background(), FolderPresupuestos, "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Path, "presupuestos/"))
	assert.True(t, strings.HasSuffix(obj.Path, ".png"))
	assert.Equal(t, "https://media.clinica.example/"+obj.Path, obj.URL)

	require.Len(t, s3c.puts, 1)
	assert.Equal(t, "clinic-media", *s3c.puts[0].Bucket)
	assert.Equal(t, "image/png", *s3c.puts[0].ContentType)
}

func TestStorePutRejectsBadInput(t *testing.T) {
	store := NewStore(&fakeS3{}, "clinic-media", "https://media.clinica.example")

	_, err := store.Put(context.Background(), "secret", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidFolder)

	_, err = store.Put(context.Background(), FolderGeneral, "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedContent)

	_, err = store.Put(context.Background(), FolderGeneral, "image/jpeg", make([]byte, MaxUploadBytes+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestStoreDelete(t *testing.T) {
	s3c := &fakeS3{}
	store := NewStore(s3c, "clinic-media", "https://media.clinica.example")

	require.NoError(t, store.Delete(context.Background(), "general/a.jpg"))
	require.Len(t, s3c.deletes, 1)
	assert.Equal(t, "general/a.jpg", *s3c.deletes[0].Key)
}

func multipartBody(t *testing.T, folder, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	s3c := &fakeS3{}
	h := NewHandler(NewStore(s3c, "clinic-media", "https://media.clinica.example"), nil)

	body, contentType := multipartBody(t, FolderTratamientos, "molar.jpg", "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "tratamientos/")
	require.Len(t, s3c.puts, 1)
}

func TestHandlerUploadDefaultsFolder(t *testing.T) {
	s3c := &fakeS3{}
	h := NewHandler(NewStore(s3c, "clinic-media", "https://media.clinica.example"), nil)

	body, contentType := multipartBody(t, "", "foto.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "general/")
}

func TestHandlerUploadRejectsContentType(t *testing.T) {
	h := NewHandler(NewStore(&fakeS3{}, "clinic-media", "https://media.clinica.example"), nil)

	body, contentType := multipartBody(t, FolderGeneral, "doc.pdf", "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUploadMissingFile(t *testing.T) {
	h := NewHandler(NewStore(&fakeS3{}, "clinic-media", "https://media.clinica.example"), nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", FolderGeneral))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
