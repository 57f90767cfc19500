package jwks

import (
	"context"
	"testing"

	newsroom "github.com/goliatone/go-newsroom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The emit/subscribe plumbing does not touch the key set, so tests build the
// provider directly instead of going through New.

func TestProviderReplaysCurrentStateOnSubscribe(t *testing.T) {
	p := &Provider{}
	p.emit(&newsroom.Principal{ID: "u1"}, nil)

	var got []*newsroom.Principal
	unsub := p.OnChange(func(principal *newsroom.Principal, err error) {
		require.NoError(t, err)
		got = append(got, principal)
	})
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].ID)
}

func TestProviderErrorClearsCurrentPrincipal(t *testing.T) {
	p := &Provider{}
	p.emit(&newsroom.Principal{ID: "u1"}, nil)
	p.emit(nil, newsroom.ErrAuthTransport)

	var replayed *newsroom.Principal
	p.OnChange(func(principal *newsroom.Principal, _ error) {
		replayed = principal
	})

	assert.Nil(t, replayed)
}

func TestProviderSignOutEmitsSignedOut(t *testing.T) {
	p := &Provider{}
	p.emit(&newsroom.Principal{ID: "u1"}, nil)

	var transitions []*newsroom.Principal
	p.OnChange(func(principal *newsroom.Principal, _ error) {
		transitions = append(transitions, principal)
	})

	require.NoError(t, p.SignOut(context.Background()))

	require.Len(t, transitions, 2)
	assert.NotNil(t, transitions[0])
	assert.Nil(t, transitions[1])
}

func TestProviderUnsubscribeStopsDelivery(t *testing.T) {
	p := &Provider{}

	calls := 0
	unsub := p.OnChange(func(*newsroom.Principal, error) { calls++ })
	require.Equal(t, 1, calls) // replay

	unsub()
	p.emit(&newsroom.Principal{ID: "u1"}, nil)
	assert.Equal(t, 1, calls)
}

func TestStringClaim(t *testing.T) {
	claims := map[string]any{
		"email": "dana@example.com",
		"aud":   []string{"site"},
	}

	assert.Equal(t, "dana@example.com", stringClaim(claims, "email"))
	assert.Equal(t, "", stringClaim(claims, "aud"))
	assert.Equal(t, "", stringClaim(claims, "missing"))
}
