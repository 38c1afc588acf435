package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeesCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("Age,Experience,City,Salary\n")
	cities := []string{"Tokyo", "Osaka", "Nagoya"}
	for i := 0; i < n; i++ {
		age := 22 + i
		exp := i / 2
		fmt.Fprintf(&sb, "%d,%d,%s,%d\n", age, exp, cities[i%3], 30000+1000*age+500*exp)
	}
	return sb.String()
}

func upload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexWithoutData(t *testing.T) {
	h := New(Options{}).Handler()
	rec := get(h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload data")
	assert.NotContains(t, rec.Body.String(), "Summary")

	assert.Equal(t, http.StatusNotFound, get(h, "/missing").Code)
}

func TestUploadAndPreview(t *testing.T) {
	s := New(Options{})
	h := s.Handler()

	rec := upload(t, h, "employees.csv", employeesCSV(20))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "employees.csv (20 rows, 4 columns)")
	assert.Contains(t, body, "<th>Salary</th>")
	assert.Contains(t, body, "Summary")
	assert.Contains(t, body, "Tokyo")

	name, data := s.dataset()
	assert.Equal(t, "employees.csv", name)
	assert.Equal(t, 20, data.NRows())

	rec = get(h, "/")
	assert.Contains(t, rec.Body.String(), "<th>Salary</th>")
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	h := New(Options{}).Handler()
	rec := upload(t, h, "data.parquet", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported")
}

func TestPlot(t *testing.T) {
	h := New(Options{}).Handler()

	rec := get(h, "/plot?type=histogram&column=Age")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, upload(t, h, "employees.csv", employeesCSV(20)).Code)

	for _, target := range []string{
		"/plot?type=histogram&column=Age",
		"/plot?type=box&column=Salary",
		"/plot?type=scatter&x=Age&y=Salary",
		"/plot?type=line&x=Age&y=Salary",
		"/plot?type=heatmap",
		"/plot?type=heatmap&columns=Age,Salary",
	} {
		rec := get(h, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "echarts", target)
	}

	assert.Equal(t, http.StatusBadRequest, get(h, "/plot?type=pie").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/plot?type=histogram&column=Height").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/plot?type=histogram&column=City").Code)
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTrain(t *testing.T) {
	h := New(Options{NEstimators: 10}).Handler()

	rec := postForm(h, "/train", url.Values{"target": {"Salary"}, "model_type": {"regressor"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, upload(t, h, "employees.csv", employeesCSV(30)).Code)

	rec = postForm(h, "/train", url.Values{"target": {"Salary"}, "model_type": {"regressor"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Mean Squared Error (MSE):")
	assert.Contains(t, rec.Body.String(), "R^2 Score:")

	rec = postForm(h, "/train", url.Values{"target": {"City"}, "model_type": {"classifier"}, "test_size": {"0.3"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "weighted avg")

	rec = postForm(h, "/train", url.Values{"target": {"Salary"}, "model_type": {"svm"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(h, "/train", url.Values{"target": {"Bonus"}, "model_type": {"regressor"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(h, "/train", url.Values{"target": {"Salary"}, "model_type": {"regressor"}, "test_size": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "127.0.0.1:0", Options{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunListenError(t *testing.T) {
	err := Run(context.Background(), "256.0.0.1:bad", Options{})
	assert.Error(t, err)
}
