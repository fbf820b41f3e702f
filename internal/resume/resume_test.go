package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/config"
)

var pdf = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func docx(t *testing.T) []byte {
	return zipOf(t, "[Content_Types].xml", "word/document.xml")
}

func zipOf(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	mime, err := Validate("cv.PDF", pdf, 0)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	mime, err = Validate("cv.docx", docx(t), 0)
	require.NoError(t, err)
	assert.Equal(t, MimeDOCX, mime)

	_, err = Validate("cv.txt", []byte("plain text"), 0)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = Validate("cv.pdf", []byte("plain text pretending"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")

	_, err = Validate("cv.pdf", nil, 0)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	big := append(append([]byte{}, pdf...), bytes.Repeat([]byte{' '}, 100)...)
	_, err = Validate("cv.pdf", big, 64)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
}

func TestValidateRejectsContainersThatAreNotWordFiles(t *testing.T) {
	_, err := Validate("cv.docx", zipOf(t, "payload.txt"), 0)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = Validate("cv.docx", zipOf(t, "[Content_Types].xml", "xl/workbook.xml"), 0)
	assert.True(t, apperr.Is(err, apperr.ErrValidation), "a spreadsheet package is not a docx")

	// bare OLE compound file header, no Word stream
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 2048)...)
	_, err = Validate("cv.doc", ole, 0)
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
}

func TestStoreSaveOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	disk, err := NewDiskBackend(dir, "uploads/")
	require.NoError(t, err)
	store := NewStore(disk, 1024)

	saved, err := store.Save(context.Background(), "My CV.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(saved.URL, ".pdf"))
	assert.Equal(t, MimePDF, saved.MimeType)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.Base(saved.URL)))
	require.NoError(t, err)
	assert.Equal(t, pdf, onDisk)

	tooBig := append(append([]byte{}, pdf...), bytes.Repeat([]byte{' '}, 2048)...)
	_, err = store.Save(context.Background(), "cv.pdf", bytes.NewReader(tooBig))
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "rejected files are not written")
}

type fakeS3 struct {
	s3iface.S3API
	puts   []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestStoreSaveToS3(t *testing.T) {
	client := &fakeS3{}
	backend := newS3Backend(client, config.S3{
		Bucket:   "jobx-resumes",
		Region:   "blr1",
		Endpoint: "https://blr1.digitaloceanspaces.com",
		Prefix:   "/resumes/",
	})
	store := NewStore(backend, 0)

	saved, err := store.Save(context.Background(), "cv.docx", bytes.NewReader(docx(t)))
	require.NoError(t, err)
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "jobx-resumes", aws.StringValue(put.Bucket))
	assert.True(t, strings.HasPrefix(aws.StringValue(put.Key), "resumes/"))
	assert.True(t, strings.HasSuffix(aws.StringValue(put.Key), ".docx"))
	assert.Equal(t, MimeDOCX, aws.StringValue(put.ContentType))
	assert.Equal(t, s3.ObjectCannedACLPublicRead, aws.StringValue(put.ACL))
	assert.Equal(t, docx(t), client.bodies[0])
	assert.Equal(t, "https://jobx-resumes.blr1.digitaloceanspaces.com/"+aws.StringValue(put.Key), saved.URL)

	_, err = store.Save(context.Background(), "cv.docx", bytes.NewReader(zipOf(t, "payload.txt")))
	assert.True(t, apperr.Is(err, apperr.ErrValidation))
	assert.Len(t, client.puts, 1, "invalid files are not uploaded")

	client.err = apperr.New("connection reset")
	_, err = store.Save(context.Background(), "cv.pdf", bytes.NewReader(pdf))
	assert.Error(t, err)
}

func TestObjectBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		objectBaseURL(config.S3{Bucket: "b", Region: "r", PublicURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		objectBaseURL(config.S3{Bucket: "b", Region: "eu-west-1"}))
	assert.Equal(t, "http://minio:9000/b",
		objectBaseURL(config.S3{Bucket: "b", Region: "us-east-1", Endpoint: "http://minio:9000", ForcePathStyle: true}))
}

func TestOpen(t *testing.T) {
	cfg := &config.Config{}
	cfg.Uploads.Backend = config.UploadsDisk
	cfg.Uploads.Dir = filepath.Join(t.TempDir(), "up")
	cfg.Uploads.PublicPath = "/uploads"
	store, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &DiskBackend{}, store.Backend)
	assert.Equal(t, DefaultMaxBytes, store.MaxBytes)

	cfg.Uploads.Backend = config.UploadsS3
	_, err = Open(cfg)
	assert.Error(t, err, "bucket and region are required")
}
