package newsroom_test

import (
	"testing"

	newsroom "github.com/goliatone/go-newsroom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHierarchyIsCapabilitySuperset(t *testing.T) {
	roles := newsroom.AllRoles()

	for i, lower := range roles {
		for _, higher := range roles[i:] {
			require.True(t, higher.IsAtLeast(lower))
			for _, capability := range newsroom.AllCapabilities() {
				if lower.Can(capability) {
					assert.True(t, higher.Can(capability),
						"role %s should inherit %s from %s", higher, capability, lower)
				}
			}
		}
	}
}

func TestEditorCapabilities(t *testing.T) {
	assert.True(t, newsroom.RoleEditor.Can(newsroom.CapabilityEditAnyContent))
	assert.True(t, newsroom.RoleEditor.Can(newsroom.CapabilityAuthorContent))
	assert.True(t, newsroom.RoleEditor.Can(newsroom.CapabilityViewOwnDashboard))
	assert.False(t, newsroom.RoleEditor.Can(newsroom.CapabilityAdministerSite))
}

func TestWriterCapabilities(t *testing.T) {
	assert.True(t, newsroom.RoleWriter.Can(newsroom.CapabilityAuthorContent))
	assert.False(t, newsroom.RoleWriter.Can(newsroom.CapabilityEditAnyContent))
	assert.False(t, newsroom.RoleWriter.Can(newsroom.CapabilityAdministerSite))
}

func TestReaderCapabilities(t *testing.T) {
	assert.True(t, newsroom.RoleReader.Can(newsroom.CapabilityViewOwnDashboard))
	assert.False(t, newsroom.RoleReader.Can(newsroom.CapabilityAuthorContent))
}

func TestAdminGrantsEverything(t *testing.T) {
	for _, capability := range newsroom.AllCapabilities() {
		assert.True(t, newsroom.RoleAdmin.Can(capability), "admin should grant %s", capability)
	}
}

func TestUnknownRoleAndCapabilityDeny(t *testing.T) {
	assert.False(t, newsroom.Role("superuser").Can(newsroom.CapabilityAdministerSite))
	assert.False(t, newsroom.RoleAdmin.Can(newsroom.Capability("launch-rockets")))
	assert.False(t, newsroom.Role("superuser").IsAtLeast(newsroom.RoleReader))
	assert.False(t, newsroom.RoleAdmin.IsAtLeast(newsroom.Role("superuser")))
}

func TestParseRole(t *testing.T) {
	role, ok := newsroom.ParseRole("editor")
	require.True(t, ok)
	assert.Equal(t, newsroom.RoleEditor, role)

	_, ok = newsroom.ParseRole("Editor")
	assert.False(t, ok)

	_, ok = newsroom.ParseRole("")
	assert.False(t, ok)
}

func TestCapabilitiesListing(t *testing.T) {
	assert.Len(t, newsroom.RoleReader.Capabilities(), 1)
	assert.Len(t, newsroom.RoleAdmin.Capabilities(), len(newsroom.AllCapabilities()))
}
