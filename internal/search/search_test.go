package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result result--ad"><a class="result__a" href="https://ads.example/">Ad</a></div>
<div class="result results_links web-result">
  <div class="result__body">
    <h2 class="result__title"><a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwiki.example%2Fdragonsong&amp;rut=abc">絶竜詩 <b>攻略</b></a></h2>
    <a class="result__snippet" href="#">竜詩戦争の   絶コンテンツ。</a>
  </div>
</div>
<div class="result"><a class="result__a" href="https://two.example/">Two</a><div class="result__snippet">second</div></div>
<div class="result"><a class="result__a" href="https://three.example/">Three</a></div>
<div class="result"><a class="result__a" href="https://four.example/">Four</a></div>
</body></html>`

func TestSearchParsesResults(t *testing.T) {
	var gotQuery, gotRegion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery, gotRegion = r.PostForm.Get("q"), r.PostForm.Get("kl")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient("jp-jp", 3)
	c.Endpoint = srv.URL
	results, err := c.Search(context.Background(), "FF14 絶竜詩")
	require.NoError(t, err)

	assert.Equal(t, "FF14 絶竜詩", gotQuery)
	assert.Equal(t, "jp-jp", gotRegion)
	require.Len(t, results, 3)
	assert.Equal(t, Result{
		Title:   "絶竜詩 攻略",
		Snippet: "竜詩戦争の 絶コンテンツ。",
		URL:     "https://wiki.example/dragonsong",
	}, results[0])
	assert.Equal(t, "https://three.example/", results[2].URL)
}

func TestSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("", 0)
	c.Endpoint = srv.URL
	_, err := c.Search(context.Background(), "x")
	assert.Error(t, err)

	_, err = c.Search(context.Background(), "  ")
	assert.Error(t, err)
}

func TestFormatResults(t *testing.T) {
	got := FormatResults([]Result{{Title: "T", Snippet: "S", URL: "U"}})
	assert.Equal(t, "【Web検索結果】\nタイトル: T\n内容: S\nURL: U\n---\n", got)
}
