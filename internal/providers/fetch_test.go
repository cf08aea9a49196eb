package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantNil  bool
	}{
		{"rupee with commas", "Boat Airdopes ₹1,299 4.1(2,345)", 1299, false},
		{"dollar with decimals", "Headphones $49.99 great deal", 49.99, false},
		{"symbol with space", "₹ 24,999", 24999, false},
		{"no price", "Sponsored listing", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePrice(tt.input)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantNil  bool
	}{
		{"amazon style", "4.5 out of 5 stars", 4.5, false},
		{"flipkart style", "4.1(2,345)", 4.1, false},
		{"no rating", "₹1,299 only", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRating(tt.input)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseBareNumber(t *testing.T) {
	got := parseBareNumber("1,299.")
	require.NotNil(t, got)
	assert.Equal(t, float64(1299), *got)

	assert.Nil(t, parseBareNumber(""))
	assert.Nil(t, parseBareNumber("free"))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://www.flipkart.com/p/x", absoluteURL("https://www.flipkart.com", "/p/x"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", absoluteURL("https://www.flipkart.com", "https://cdn.example.com/a.jpg"))
	assert.Equal(t, "", absoluteURL("https://www.flipkart.com", ""))
}
