package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdoptionRequest_TerminalStatesAbsorb(t *testing.T) {
	cases := []struct {
		from     AdoptionStatus
		to       AdoptionStatus
		allowed  bool
		terminal bool
	}{
		{AdoptionStatusPending, AdoptionStatusApproved, true, false},
		{AdoptionStatusPending, AdoptionStatusRejected, true, false},
		{AdoptionStatusApproved, AdoptionStatusRejected, false, true},
		{AdoptionStatusRejected, AdoptionStatusApproved, false, true},
		{AdoptionStatusApproved, AdoptionStatusPending, false, true},
	}
	for _, tc := range cases {
		req := AdoptionRequest{Status: tc.from}
		assert.Equal(t, tc.allowed, req.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.terminal, req.IsTerminal(), "%s terminal", tc.from)
	}
}

func TestVendorApplication_ApprovedCanStillBeRejected(t *testing.T) {
	approved := VendorApplication{Status: ApplicationStatusApproved}
	assert.True(t, approved.CanTransition(ApplicationStatusRejected))
	assert.False(t, approved.CanTransition(ApplicationStatusPending))

	rejected := VendorApplication{Status: ApplicationStatusRejected}
	assert.False(t, rejected.CanTransition(ApplicationStatusApproved))
}

func TestBanState_UnbanDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	assert.False(t, BanState{}.UnbanDue(now))
	assert.False(t, BanState{IsBanned: true}.UnbanDue(now))
	assert.False(t, BanState{IsBanned: true, ScheduledUnbanAt: &later}.UnbanDue(now))
	assert.True(t, BanState{IsBanned: true, ScheduledUnbanAt: &later}.UnbanDue(later))
}

func TestValidEnums(t *testing.T) {
	assert.True(t, RoleVendor.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, PetStatusAdopted.Valid())
	assert.False(t, PetStatus("adopted").Valid())
	assert.True(t, VendorStatusActive.Valid())
}

func TestVendorAndUserHelpers(t *testing.T) {
	var nilVendor *Vendor
	assert.False(t, nilVendor.CanList())
	assert.True(t, (&Vendor{Status: VendorStatusActive}).CanList())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestToken_ExpiresIn(t *testing.T) {
	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	token := Token{IssuedAt: issued, ExpiresAt: issued.Add(time.Hour)}

	assert.Equal(t, time.Hour, token.ExpiresIn(issued))
	assert.Zero(t, token.ExpiresIn(issued.Add(2*time.Hour)))
}
