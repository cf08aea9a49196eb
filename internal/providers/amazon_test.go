package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amazonSearchHTML = `<!DOCTYPE html>
<html><body>
<div class="s-main-slot">
  <div data-component-type="s-search-result">
    <span data-component-type="sp-sponsored-result"></span>
    <h2><a href="/dp/B0SPONSORED"><span>Promoted Wireless Earbuds With Very Long Name</span></a></h2>
    <span class="a-price"><span class="a-offscreen">$29.99</span></span>
    <span class="a-icon-alt">3.9 out of 5 stars</span>
    <span class="a-size-base s-underline-text">(412)</span>
    <img class="s-image" src="https://img.example.com/sponsored.jpg"/>
  </div>
  <div data-component-type="s-search-result">
    <h2><a href="/dp/B0ORGANIC"><span>Sony WH-1000XM5 Noise Cancelling Headphones</span></a></h2>
    <span class="a-price"><span class="a-offscreen">$348.00</span></span>
    <span class="a-icon-alt">4.7 out of 5 stars</span>
    <span class="a-size-base s-underline-text">(12,501)</span>
    <img class="s-image" src="https://img.example.com/sony.jpg"/>
  </div>
  <div data-component-type="s-search-result">
    <h2><a href="/dp/B0NOPRICE"><span>Generic Headphones Without Any Price Listed</span></a></h2>
  </div>
</div>
</body></html>`

func TestAmazonSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "headphones", r.URL.Query().Get("k"))
		w.Write([]byte(amazonSearchHTML))
	}))
	defer server.Close()

	provider := NewAmazonUSProvider(server.Client(), "", "")
	provider.baseURL = server.URL

	products, err := provider.Search(context.Background(), "headphones", 10, RenderStatic)
	require.NoError(t, err)
	require.Len(t, products, 3)

	sponsored := products[0]
	assert.True(t, sponsored.Sponsored)
	assert.Equal(t, "amazon.com", sponsored.Source)
	require.NotNil(t, sponsored.Price)
	assert.Equal(t, 29.99, *sponsored.Price)

	organic := products[1]
	assert.False(t, organic.Sponsored)
	assert.Equal(t, "Sony WH-1000XM5 Noise Cancelling Headphones", organic.Title)
	assert.Equal(t, server.URL+"/dp/B0ORGANIC", organic.URL)
	require.NotNil(t, organic.Rating)
	assert.Equal(t, 4.7, *organic.Rating)
	require.NotNil(t, organic.RatingCount)
	assert.Equal(t, 12501, *organic.RatingCount)
	assert.Equal(t, "USD", organic.Currency)

	noPrice := products[2]
	assert.Nil(t, noPrice.Price)
}

func TestAmazonSearch_MaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(amazonSearchHTML))
	}))
	defer server.Close()

	provider := NewAmazonIndiaProvider(server.Client(), "", "")
	provider.baseURL = server.URL

	products, err := provider.Search(context.Background(), "headphones", 1, RenderStatic)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "amazon.in", products[0].Source)
}

func TestAmazonSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewAmazonUSProvider(server.Client(), "", "")
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "headphones", 10, RenderStatic)
	require.Error(t, err)
}
