package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrincipalKind(t *testing.T) {
	tests := []struct {
		in      string
		want    PrincipalKind
		wantErr bool
	}{
		{in: "user", want: KindUser},
		{in: "admin", want: KindAdmin},
		{in: "Admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrincipalKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestPrincipal_HasRefreshToken(t *testing.T) {
	p := &Principal{RefreshTokens: []string{"r1", "r2"}}

	assert.True(t, p.HasRefreshToken("r2"))
	assert.False(t, p.HasRefreshToken("r3"))
	assert.False(t, (&Principal{}).HasRefreshToken(""))
}

func TestProfile_Level(t *testing.T) {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	personal := Profile{
		PhoneNumber: "+44 20 7946 0000",
		DateOfBirth: &dob,
		Address:     "221B Baker Street",
		Gender:      "female",
	}
	work := personal
	work.NextOfKinName = "Bob"
	work.NextOfKinPhoneNumber = "+44 20 7946 0001"
	work.Occupation = "engineer"
	owner := work
	owner.ProofOfOwnershipDocs = []string{"https://example.com/deed.pdf"}
	ownerWithoutWork := personal
	ownerWithoutWork.ProofOfOwnershipDocs = owner.ProofOfOwnershipDocs

	tests := []struct {
		name    string
		profile *Profile
		want    int
	}{
		{name: "nil", profile: nil, want: 1},
		{name: "empty", profile: &Profile{}, want: 1},
		{name: "personal details", profile: &personal, want: 2},
		{name: "next of kin and work", profile: &work, want: 3},
		{name: "ownership documents", profile: &owner, want: 4},
		{name: "documents without work", profile: &ownerWithoutWork, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.Level())
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("u-1")

	assert.Equal(t, "u-1", s.UserID)
	assert.True(t, s.NotificationSettings.EmailNotification)
	assert.False(t, s.NotificationSettings.DoNotDisturb)
	assert.False(t, s.PrivacyAndSecurity.DarkMode)
}
