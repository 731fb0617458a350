package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/domain"
)

type networkFunc func(ctx context.Context, q domain.NetworkQuery) (domain.Network, error)

func (f networkFunc) FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error) {
	return f(ctx, q)
}

type pathFunc func(ctx context.Context, q domain.IntroPathQuery) (domain.IntroPathResult, error)

func (f pathFunc) FindIntroPath(ctx context.Context, q domain.IntroPathQuery) (domain.IntroPathResult, error) {
	return f(ctx, q)
}

func TestLoadNetworkTimeoutIsRetryable(t *testing.T) {
	slow := networkFunc(func(ctx context.Context, _ domain.NetworkQuery) (domain.Network, error) {
		<-ctx.Done()
		return domain.Network{}, ctx.Err()
	})

	msg := LoadNetwork(context.Background(), slow, GraphRequest{Ticket: 7}, 20*time.Millisecond)
	assert.Equal(t, uint64(7), msg.Ticket)
	require.Error(t, msg.Err)
	assert.True(t, domain.IsRetryable(msg.Err))
	assert.Contains(t, msg.Err.Error(), "timed out")
}

func TestLoadNetworkWrapsCollaboratorErrors(t *testing.T) {
	broken := networkFunc(func(context.Context, domain.NetworkQuery) (domain.Network, error) {
		return domain.Network{}, errors.New("connection refused")
	})
	msg := LoadNetwork(context.Background(), broken, GraphRequest{Ticket: 1}, time.Second)
	assert.ErrorIs(t, msg.Err, domain.ErrDataFetch)
	assert.Contains(t, msg.Err.Error(), "connection refused")
}

func TestLoadNetworkPassesQuery(t *testing.T) {
	var got domain.NetworkQuery
	src := networkFunc(func(_ context.Context, q domain.NetworkQuery) (domain.Network, error) {
		got = q
		return sampleNetwork(), nil
	})

	c := New("rm-1")
	req := c.SetFilters(domain.GraphFilters{Sectors: []string{"Tech"}})
	msg := LoadNetwork(context.Background(), src, req, 0)
	require.NoError(t, msg.Err)
	assert.Equal(t, "rm-1", got.OwnerID)
	assert.Equal(t, []string{"tech"}, got.Filters.Sectors)

	assert.True(t, c.Apply(msg))
	assert.Len(t, c.State().Network.Nodes, 5)
}

func TestQueryIntroPathClassification(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		target    error
		retryable bool
	}{
		{"not found passes through", domain.ErrPathNotFound, domain.ErrPathNotFound, false},
		{"invalid passes through", domain.ErrInvalidPathRequest, domain.ErrInvalidPathRequest, false},
		{"transport failure is retryable", errors.New("503"), domain.ErrDataFetch, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := pathFunc(func(context.Context, domain.IntroPathQuery) (domain.IntroPathResult, error) {
				return domain.IntroPathResult{}, tc.err
			})
			msg := QueryIntroPath(context.Background(), src, PathRequest{Ticket: 3}, time.Second)
			assert.ErrorIs(t, msg.Err, tc.target)
			assert.Equal(t, tc.retryable, domain.IsRetryable(msg.Err))
		})
	}
}

func TestApplyIgnoresUnknownMessages(t *testing.T) {
	assert.False(t, New("rm-1").Apply("noise"))
}
