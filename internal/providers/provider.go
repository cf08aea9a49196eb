// internal/providers/provider.go
package providers

import (
	"context"

	"shopper-agents/internal/models"
)

// RenderMode tells a provider whether the target page needs JavaScript
// rendering before extraction. Static pages are fetched directly;
// rendered pages go through the rendering proxy when one is configured.
type RenderMode string

const (
	RenderStatic RenderMode = "static"
	RenderJS     RenderMode = "js"
)

// Provider is one product source for a marketplace or internal index.
// Implementations may block internally; callers bound the call with the
// batch deadline on ctx. A provider returns at most maxResults items.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error)
}
