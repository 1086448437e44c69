// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/httputil"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// buildPDF assembles a one-page PDF whose content stream shows text in
// Helvetica. Offsets in the xref table are computed from the written bytes.
func buildPDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc \n", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "", Truncate("   ", 5))
}

func TestNativeExtractor_FirstPage(t *testing.T) {
	p := writeFile(t, "paper.pdf", buildPDF("Tsinghua University"))

	text, err := NativeExtractor{}.FirstPage(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, text, "Tsinghua University")
}

func TestNativeExtractor_NotAPDF(t *testing.T) {
	p := writeFile(t, "junk.pdf", []byte("this is not a pdf"))

	_, err := NativeExtractor{}.FirstPage(context.Background(), p)
	assert.Error(t, err)
}

func TestNativeExtractor_MissingFile(t *testing.T) {
	_, err := NativeExtractor{}.FirstPage(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	body := buildPDF("hello")
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(body)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "temp_pdfs")
	path, err := Download(context.Background(), srv.Client(), srv.URL+"/pdf/2501.00001v1", dir, "2501.00001v1.pdf", "arxiv-digest/test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2501.00001v1.pdf"), path)
	assert.Equal(t, "arxiv-digest/test", gotUA)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should have been renamed")
}

func TestDownload_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), srv.Client(), srv.URL, dir, "x.pdf", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownload_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := Download(context.Background(), srv.Client(), srv.URL, dir, "x.pdf", "")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file should be removed")
}

// fakeRuntime implements container.Runtime for extractor tests.
type fakeRuntime struct {
	imageErr error
	runErr   error
	output   string
	gotImage string
	gotArgs  []string
	gotStdin []byte
}

func (f *fakeRuntime) Name() string                     { return "fake" }
func (f *fakeRuntime) Available(_ context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	f.gotImage = image
	return f.imageErr
}

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	f.gotArgs = args
	f.gotStdin, _ = io.ReadAll(stdin)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestContainerExtractor_FirstPage(t *testing.T) {
	rt := &fakeRuntime{output: "MIT CSAIL\nAbstract"}
	ex, err := NewContainerExtractor(context.Background(), rt, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPopplerImage, rt.gotImage)

	p := writeFile(t, "p.pdf", []byte("%PDF-fake"))
	text, err := ex.FirstPage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "MIT CSAIL\nAbstract", text)
	assert.Equal(t, "pdftotext -f 1 -l 1 -enc UTF-8 - -", strings.Join(rt.gotArgs, " "))
	assert.Equal(t, []byte("%PDF-fake"), rt.gotStdin)
}

func TestContainerExtractor_MissingImage(t *testing.T) {
	rt := &fakeRuntime{imageErr: errors.New("no such image")}
	_, err := NewContainerExtractor(context.Background(), rt, "custom/poppler")
	require.Error(t, err)
	assert.Equal(t, "custom/poppler", rt.gotImage)
}

func TestContainerExtractor_Errors(t *testing.T) {
	p := writeFile(t, "p.pdf", []byte("%PDF-fake"))

	rt := &fakeRuntime{runErr: errors.New("exit status 1")}
	ex, err := NewContainerExtractor(context.Background(), rt, "")
	require.NoError(t, err)
	_, err = ex.FirstPage(context.Background(), p)
	assert.Error(t, err)

	rt = &fakeRuntime{}
	ex, err = NewContainerExtractor(context.Background(), rt, "")
	require.NoError(t, err)
	_, err = ex.FirstPage(context.Background(), p)
	assert.Error(t, err, "empty output is an error")
}

func TestNewExtractor(t *testing.T) {
	ex, err := NewExtractor(context.Background(), types.ExtractorNative)
	require.NoError(t, err)
	assert.IsType(t, NativeExtractor{}, ex)

	ex, err = NewExtractor(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, NativeExtractor{}, ex)

	_, err = NewExtractor(context.Background(), "ocr")
	assert.Error(t, err)
}
