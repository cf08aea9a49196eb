package discoverproducts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
	"shopper-agents/internal/providers"
)

type fakeProvider struct {
	name  string
	items []models.Product
	err   error
	delay time.Duration
	panic bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, _ int, _ providers.RenderMode) ([]models.Product, error) {
	if f.panic {
		panic("selector blew up")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	tagged := make([]models.Product, len(f.items))
	for i, item := range f.items {
		tagged[i] = item
		tagged[i].Source = f.name
		tagged[i].Title = query + " " + item.Title
	}
	return tagged, nil
}

func newHandler(deadlineMS int) *Handler {
	return NewHandler(config.DiscoveryConfig{
		BatchDeadline:      deadlineMS,
		MaxQueries:         2,
		MaxResultsPerQuery: 10,
	}, logger.NewNoOpLogger())
}

func item(title string) models.Product {
	return models.Product{Title: title, URL: "https://example.com/" + title}
}

func TestExecute_ConcatenatesInSlotOrder(t *testing.T) {
	chain := []providers.Provider{
		&fakeProvider{name: "flipkart", items: []models.Product{item("a"), item("b")}},
		&fakeProvider{name: "amazon.in", items: []models.Product{item("c")}},
	}

	batch, err := newHandler(5000).Execute(context.Background(), []string{"q1", "q2"}, chain)
	require.NoError(t, err)
	require.Len(t, batch, 6)

	// Slot order: (q1,flipkart), (q1,amazon.in), (q2,flipkart), (q2,amazon.in).
	assert.Equal(t, "q1 a", batch[0].Title)
	assert.Equal(t, "q1 b", batch[1].Title)
	assert.Equal(t, "q1 c", batch[2].Title)
	assert.Equal(t, "q2 a", batch[3].Title)
	assert.Equal(t, "flipkart", batch[0].Source)
	assert.Equal(t, "amazon.in", batch[2].Source)
}

func TestExecute_CapsQueries(t *testing.T) {
	provider := &fakeProvider{name: "flipkart", items: []models.Product{item("a")}}

	batch, err := newHandler(5000).Execute(context.Background(), []string{"q1", "q2", "q3", "q4"}, []providers.Provider{provider})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestExecute_OneFailingProviderDoesNotAffectOthers(t *testing.T) {
	chain := []providers.Provider{
		&fakeProvider{name: "flipkart", err: errors.New("blocked by anti-bot")},
		&fakeProvider{name: "amazon.in", items: []models.Product{item("c")}},
	}

	batch, err := newHandler(5000).Execute(context.Background(), []string{"q1"}, chain)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "amazon.in", batch[0].Source)
}

func TestExecute_PanickingProviderIsIsolated(t *testing.T) {
	chain := []providers.Provider{
		&fakeProvider{name: "flipkart", panic: true},
		&fakeProvider{name: "amazon.in", items: []models.Product{item("c")}},
	}

	batch, err := newHandler(5000).Execute(context.Background(), []string{"q1"}, chain)
	require.NoError(t, err)
	require.Len(t, batch, 1)
}

func TestExecute_SlowProviderAbandonedAtDeadline(t *testing.T) {
	chain := []providers.Provider{
		&fakeProvider{name: "flipkart", items: []models.Product{item("a")}},
		&fakeProvider{name: "amazon.in", delay: 2 * time.Second, items: []models.Product{item("c")}},
	}

	started := time.Now()
	batch, err := newHandler(200).Execute(context.Background(), []string{"q1"}, chain)
	require.NoError(t, err)
	assert.Less(t, time.Since(started), time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, "flipkart", batch[0].Source)
}

func TestExecute_AllProvidersFailingIsEmptyBatch(t *testing.T) {
	chain := []providers.Provider{
		&fakeProvider{name: "flipkart", err: errors.New("down")},
		&fakeProvider{name: "amazon.in", err: errors.New("down")},
	}

	_, err := newHandler(5000).Execute(context.Background(), []string{"q1", "q2"}, chain)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEmptyBatch, apperrors.CodeOf(err))
}

func TestExecute_NoQueriesIsEmptyBatch(t *testing.T) {
	_, err := newHandler(5000).Execute(context.Background(), nil, []providers.Provider{&fakeProvider{name: "flipkart"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEmptyBatch, apperrors.CodeOf(err))
}
