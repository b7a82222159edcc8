package user

import (
	"testing"

	"github.com/evergreen-ci/gimlet"
	"github.com/rectransport/rideshare"
	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	assert := assert.New(t)

	u := New("Alice", "  Alice@Example.COM ", "555", rideshare.RolePassenger, "hash")
	assert.NotEmpty(u.Id)
	assert.Equal("alice@example.com", u.Email())
	assert.Equal("alice@example.com", u.Username())
	assert.Equal("Alice", u.DisplayName())
	assert.True(u.IsActive)
	assert.True(u.IsPassenger())
	assert.False(u.IsDriver())
	assert.Equal([]string{rideshare.RolePassenger}, u.Roles())
	assert.False(u.IsNil())

	var _ gimlet.User = u
}

func TestDisplayNameFallsBackToEmail(t *testing.T) {
	u := &DBUser{EmailAddress: "bob@example.com"}
	assert.Equal(t, "bob@example.com", u.DisplayName())
	assert.Empty(t, u.Roles())
}

func TestValidRole(t *testing.T) {
	for _, role := range rideshare.ValidRoles {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}

func TestHasPermission(t *testing.T) {
	assert := assert.New(t)

	admin := New("a", "a@example.com", "", rideshare.RoleAdmin, "")
	driver := New("d", "d@example.com", "", rideshare.RoleDriver, "")

	assert.True(admin.HasPermission(gimlet.PermissionOpts{ResourceType: rideshare.RoleDriver}))
	assert.True(driver.HasPermission(gimlet.PermissionOpts{ResourceType: rideshare.RoleDriver}))
	assert.False(driver.HasPermission(gimlet.PermissionOpts{ResourceType: rideshare.RoleAdmin}))
	assert.False(driver.HasPermission(gimlet.PermissionOpts{}))

	admin.IsActive = false
	assert.False(admin.HasPermission(gimlet.PermissionOpts{ResourceType: rideshare.RoleAdmin}))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "_id", IdKey)
	assert.Equal(t, "email", EmailKey)
	assert.Equal(t, "password_hash", PasswordHashKey)
}
