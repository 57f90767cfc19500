package newsroomgate

import (
	"context"

	"github.com/goliatone/go-featuregate/gate"
	newsroom "github.com/goliatone/go-newsroom"
)

const defaultActorRefType = "principal"

// SnapshotSource exposes the current session snapshot; the session context
// satisfies it directly.
type SnapshotSource interface {
	Current() newsroom.Snapshot
}

// RoleMapper builds role identifiers from a session snapshot.
type RoleMapper func(snapshot newsroom.Snapshot) []string

// PermMapper builds permission identifiers from a session snapshot.
type PermMapper func(snapshot newsroom.Snapshot) []string

// Option customizes ClaimsProvider behavior.
type Option func(*ClaimsProvider)

// ClaimsProvider derives feature gate claims from the live session, so gate
// rules can target roles and capabilities without knowing the session types.
type ClaimsProvider struct {
	source     SnapshotSource
	roleMapper RoleMapper
	permMapper PermMapper
}

// NewClaimsProvider builds a claims provider over a session snapshot source.
func NewClaimsProvider(source SnapshotSource, opts ...Option) *ClaimsProvider {
	provider := &ClaimsProvider{
		source:     source,
		roleMapper: defaultRoleMapper,
		permMapper: defaultPermMapper,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}
	if provider.roleMapper == nil {
		provider.roleMapper = defaultRoleMapper
	}
	if provider.permMapper == nil {
		provider.permMapper = defaultPermMapper
	}
	return provider
}

// WithRoleMapper overrides the default role mapper.
func WithRoleMapper(mapper RoleMapper) Option {
	return func(provider *ClaimsProvider) {
		if provider == nil {
			return
		}
		provider.roleMapper = mapper
	}
}

// WithPermMapper overrides the default permission mapper.
func WithPermMapper(mapper PermMapper) Option {
	return func(provider *ClaimsProvider) {
		if provider == nil {
			return
		}
		provider.permMapper = mapper
	}
}

// ClaimsFromContext implements gate.ClaimsProvider.
func (p *ClaimsProvider) ClaimsFromContext(_ context.Context) (gate.ActorClaims, error) {
	if p == nil || p.source == nil {
		return gate.ActorClaims{}, nil
	}
	return claimsFromSnapshot(p.source.Current(), p.roleMapper, p.permMapper), nil
}

// ClaimsFromSnapshot builds ActorClaims from a session snapshot using
// defaults.
func ClaimsFromSnapshot(snapshot newsroom.Snapshot) gate.ActorClaims {
	return claimsFromSnapshot(snapshot, defaultRoleMapper, defaultPermMapper)
}

func claimsFromSnapshot(snapshot newsroom.Snapshot, roleMapper RoleMapper, permMapper PermMapper) gate.ActorClaims {
	if !snapshot.SignedIn() {
		return gate.ActorClaims{}
	}
	claims := gate.ActorClaims{
		SubjectID: snapshot.Principal.ID,
	}
	if roleMapper != nil {
		claims.Roles = roleMapper(snapshot)
	}
	if permMapper != nil {
		claims.Perms = permMapper(snapshot)
	}
	return claims
}

func defaultRoleMapper(snapshot newsroom.Snapshot) []string {
	if snapshot.Profile == nil || snapshot.Profile.Role == "" {
		return nil
	}
	return []string{string(snapshot.Profile.Role)}
}

// defaultPermMapper surfaces the granted capabilities as permissions, so gate
// rules can require e.g. "edit-any-content" directly.
func defaultPermMapper(snapshot newsroom.Snapshot) []string {
	if snapshot.Profile == nil {
		return nil
	}
	capabilities := snapshot.Profile.Role.Capabilities()
	if len(capabilities) == 0 {
		return nil
	}
	perms := make([]string, 0, len(capabilities))
	for _, capability := range capabilities {
		perms = append(perms, string(capability))
	}
	return perms
}

// ActorRefFromSnapshot builds a gate.ActorRef from a session snapshot.
func ActorRefFromSnapshot(snapshot newsroom.Snapshot) gate.ActorRef {
	if !snapshot.SignedIn() {
		return gate.ActorRef{}
	}
	ref := gate.ActorRef{
		ID:   snapshot.Principal.ID,
		Type: defaultActorRefType,
	}
	if snapshot.Profile != nil {
		ref.Name = string(snapshot.Profile.Role)
	}
	return ref
}

var _ gate.ClaimsProvider = (*ClaimsProvider)(nil)
