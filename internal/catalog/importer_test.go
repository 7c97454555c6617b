package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calorina/internal/llm/llmtest"
	"calorina/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `
<html>
	<head>
		<title>Tasty Recipe | Blog</title>
		<meta property="og:title" content="Lemon Herb Chicken">
		<meta property="og:description" content="Juicy chicken with lemon.">
		<meta property="og:image" content="https://img.test/chicken.jpg">
		<script>alert('bad');</script>
	</head>
	<body>
		<h1>Lemon Herb Chicken</h1>
		<div class="ads">Buy stuff!</div>
		<p>Marinate the chicken in lemon and herbs.</p>
		<footer>Copyright 2024</footer>
	</body>
</html>`

func newPageServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestImportURL_MetadataOnly(t *testing.T) {
	ts := newPageServer(t, recipePage, http.StatusOK)

	d, err := NewImporter(nil).ImportURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Lemon Herb Chicken", d.Name)
	assert.Equal(t, "Juicy chicken with lemon.", d.Description)
	assert.Equal(t, "https://img.test/chicken.jpg", d.Image)
	assert.Equal(t, ts.URL, d.SourceURL)
	assert.Zero(t, d.Calories)

	m := d.Meal(MuscleGain, Dinner, 8.5)
	assert.Equal(t, MuscleGain, m.Category)
	assert.Equal(t, 8.5, m.Price)
}

func TestImportURL_WithExtraction(t *testing.T) {
	ts := newPageServer(t, recipePage, http.StatusOK)
	mock := &llmtest.MockCompleter{Responses: []string{"```json\n{\"name\":\"Lemon Chicken\",\"description\":\"High protein dinner.\",\"calories\":520}\n```"}}

	d, err := NewImporter(mock).ImportURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Lemon Chicken", d.Name)
	assert.Equal(t, "High protein dinner.", d.Description)
	assert.Equal(t, 520, d.Calories)
	assert.Equal(t, "https://img.test/chicken.jpg", d.Image)

	sent := mock.LastRequest().History[0].Text
	assert.Contains(t, sent, "Marinate the chicken")
	assert.NotContains(t, sent, "alert('bad')")
	assert.NotContains(t, sent, "Buy stuff!")
	assert.NotContains(t, sent, "Copyright 2024")
	assert.NotNil(t, mock.LastRequest().ResponseSchema)
}

func TestImportURL_ExtractionFailureKeepsMetadata(t *testing.T) {
	ts := newPageServer(t, recipePage, http.StatusOK)

	d, err := NewImporter(&llmtest.MockCompleter{Err: errors.New("boom")}).ImportURL(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Lemon Herb Chicken", d.Name)
	assert.Equal(t, "Juicy chicken with lemon.", d.Description)
	assert.Zero(t, d.Calories)
}

func TestImportURL_Errors(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		ts := newPageServer(t, "gone", http.StatusNotFound)
		_, err := NewImporter(nil).ImportURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("NoMeal", func(t *testing.T) {
		ts := newPageServer(t, "<html><body>nothing</body></html>", http.StatusOK)
		_, err := NewImporter(nil).ImportURL(context.Background(), ts.URL)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("CompleterFailureWithoutMetadata", func(t *testing.T) {
		ts := newPageServer(t, "<html><body>nothing</body></html>", http.StatusOK)
		_, err := NewImporter(&llmtest.MockCompleter{Err: errors.New("boom")}).ImportURL(context.Background(), ts.URL)
		assert.ErrorContains(t, err, "ai extraction failed")
	})

	t.Run("BadJSON", func(t *testing.T) {
		ts := newPageServer(t, recipePage, http.StatusOK)
		_, err := NewImporter(&llmtest.MockCompleter{Responses: []string{"not json"}}).ImportURL(context.Background(), ts.URL)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "failed to parse AI response"))
	})
}
