package model

import (
	"testing"
	"time"
)

func TestAccessToken_Can(t *testing.T) {
	testCases := []struct {
		name      string
		abilities []string
		checkFor  string
		want      bool
	}{
		{
			name:      "has exact ability",
			abilities: []string{AbilityNotesRead, AbilityNotesWrite},
			checkFor:  AbilityNotesRead,
			want:      true,
		},
		{
			name:      "does not have ability",
			abilities: []string{AbilityNotesRead},
			checkFor:  AbilityNotesWrite,
			want:      false,
		},
		{
			name:      "wildcard implies read",
			abilities: []string{AbilityAll},
			checkFor:  AbilityNotesRead,
			want:      true,
		},
		{
			name:      "wildcard implies write",
			abilities: []string{AbilityAll},
			checkFor:  AbilityNotesWrite,
			want:      true,
		},
		{
			name:      "empty abilities",
			abilities: []string{},
			checkFor:  AbilityNotesRead,
			want:      false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := &AccessToken{Abilities: tc.abilities}
			if got := token.Can(tc.checkFor); got != tc.want {
				t.Errorf("Can(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}

			authCtx := &AuthContext{Abilities: tc.abilities}
			if got := authCtx.Can(tc.checkFor); got != tc.want {
				t.Errorf("AuthContext.Can(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}
		})
	}
}

func TestAccessToken_IsRevoked(t *testing.T) {
	token := &AccessToken{}
	if token.IsRevoked() {
		t.Error("expected fresh token not to be revoked")
	}

	now := time.Now()
	token.RevokedAt = &now
	if !token.IsRevoked() {
		t.Error("expected token with revoked_at to be revoked")
	}
}

func TestAccessToken_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	testCases := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, false},
		{"expired", &past, true},
		{"expires exactly now", &now, true},
		{"not yet expired", &future, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token := &AccessToken{ExpiresAt: tc.expiresAt}
			if got := token.IsExpired(now); got != tc.want {
				t.Errorf("IsExpired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNote_IsOwnedBy(t *testing.T) {
	note := &Note{UserID: "user-1"}

	if !note.IsOwnedBy("user-1") {
		t.Error("expected owner match")
	}
	if note.IsOwnedBy("user-2") {
		t.Error("expected other user not to own note")
	}
	if note.IsOwnedBy("") {
		t.Error("expected empty user id never to own a note")
	}
}

func TestTenant_Hostnames(t *testing.T) {
	tenant := &Tenant{
		ID: "acme",
		Domains: []Domain{
			{Domain: "acme.localhost", TenantID: "acme"},
			{Domain: "acme.example.com", TenantID: "acme"},
		},
	}

	hosts := tenant.Hostnames()
	if len(hosts) != 2 || hosts[0] != "acme.localhost" || hosts[1] != "acme.example.com" {
		t.Errorf("unexpected hostnames: %v", hosts)
	}
}
