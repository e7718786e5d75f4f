package platform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) (*Credentials, error) {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	n := r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &Credentials{AccessToken: "token-" + string(rune('0'+n))}, nil
}

// scriptedAPI answers GetOrganization from a script keyed by call number.
type scriptedAPI struct {
	API
	mu     sync.Mutex
	tokens []string
	errs   []error
}

func (s *scriptedAPI) next(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

type tokenAPI struct {
	API
	token  string
	script *scriptedAPI
}

func (t *tokenAPI) GetOrganization(_ context.Context, id string) (*Organization, error) {
	if err := t.script.next(t.token); err != nil {
		return nil, err
	}
	return &Organization{ID: id}, nil
}

func (t *tokenAPI) AdjustCustomerPointsBalance(_ context.Context, _, _, _ string, _ float64, _ string) error {
	return t.script.next(t.token)
}

func newScriptedAuthClient(t *testing.T, refresher Refresher, errs ...error) (*AuthClient, *scriptedAPI) {
	t.Helper()
	script := &scriptedAPI{errs: errs}
	a, err := NewAuthClient(context.Background(), refresher, func(token string) (API, error) {
		return &tokenAPI{token: token, script: script}, nil
	})
	require.NoError(t, err)
	return a, script
}

func TestAuthClientRetriesOnceAfterUnauthorized(t *testing.T) {
	refresher := &countingRefresher{}
	a, script := newScriptedAuthClient(t, refresher, newAPIError(401, "expired", ""))

	org, err := a.GetOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", org.ID)

	// one refresh at startup, one after the 401
	assert.EqualValues(t, 2, refresher.calls.Load())
	assert.Equal(t, []string{"token-1", "token-2"}, script.tokens)
}

func TestAuthClientGivesUpAfterSecondUnauthorized(t *testing.T) {
	refresher := &countingRefresher{}
	a, script := newScriptedAuthClient(t, refresher,
		newAPIError(401, "expired", ""),
		newAPIError(401, "still expired", ""),
		newAPIError(401, "never reached", ""),
	)

	err := a.AdjustCustomerPointsBalance(context.Background(), "org", "cust", "ref", 10, "")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.EqualValues(t, 2, refresher.calls.Load())
	assert.Len(t, script.tokens, 2)
}

func TestAuthClientPassesThroughOtherErrors(t *testing.T) {
	refresher := &countingRefresher{}
	a, script := newScriptedAuthClient(t, refresher, newAPIError(500, "down", ""))

	_, err := a.GetOrganization(context.Background(), "org-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
	assert.EqualValues(t, 1, refresher.calls.Load())
	assert.Len(t, script.tokens, 1)
}

func TestAuthClientRefreshFailureIsReturned(t *testing.T) {
	grantErr := &GrantError{Err: errors.New("invalid_client")}
	refresher := &countingRefresher{err: grantErr}
	a, script := newScriptedAuthClient(t, refresher, newAPIError(401, "no token", ""))

	_, err := a.GetOrganization(context.Background(), "org-1")
	require.Error(t, err)

	var ge *GrantError
	assert.True(t, errors.As(err, &ge))
	// the client built before the failed startup refresh has no token
	assert.Equal(t, []string{""}, script.tokens)
	assert.EqualValues(t, 2, refresher.calls.Load())
}

func TestAuthClientWaitsForInitialRefresh(t *testing.T) {
	refresher := &countingRefresher{gate: make(chan struct{})}
	a, script := newScriptedAuthClient(t, refresher)

	done := make(chan error, 1)
	go func() {
		_, err := a.GetOrganization(context.Background(), "org-1")
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("call finished before the initial refresh")
	case <-time.After(50 * time.Millisecond):
	}

	close(refresher.gate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"token-1"}, script.tokens)
}

func TestAuthClientReadyHonoursContext(t *testing.T) {
	refresher := &countingRefresher{gate: make(chan struct{})}
	defer close(refresher.gate)
	a, _ := newScriptedAuthClient(t, refresher)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Ready(ctx), context.DeadlineExceeded)
}
