package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{DisplayName: " Ada Lovelace ", Email: "ada@example.com"}.Name())
	assert.Equal(t, "ada", User{Email: "ada@example.com"}.Name())
	assert.Equal(t, "User", User{}.Name())
	assert.Equal(t, "AL", User{DisplayName: "ada lovelace byron"}.Initials())
}

func TestParseDocumentStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseDocumentStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseDocumentStatus(" Under-Review ")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, got)

	_, err = ParseDocumentStatus("published")
	assert.Error(t, err)
}

func TestStatusRules(t *testing.T) {
	assert.True(t, StatusDraft.ValidOnUpload())
	assert.True(t, StatusApproved.ValidOnUpload())
	assert.False(t, StatusRejected.ValidOnUpload())
	assert.False(t, StatusArchived.ValidOnUpload())
	assert.Equal(t, "Pending", StatusUnderReview.Label())
	assert.Equal(t, "Archived", StatusArchived.Label())
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{name: "pdf", file: "report.pdf", size: 1024},
		{name: "upper case extension", file: "SCAN.JPEG", size: 2048},
		{name: "exactly max size", file: "sheet.xlsx", size: MaxUploadSize},
		{name: "too large", file: "sheet.xlsx", size: MaxUploadSize + 1, wantErr: true},
		{name: "not allowed", file: "script.exe", size: 10, wantErr: true},
		{name: "no extension", file: "README", size: 10, wantErr: true},
		{name: "negative size", file: "a.png", size: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.file, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrackingIDAndStoragePath(t *testing.T) {
	assert.Equal(t, "#TRK-2026-001", TrackingID(2026, 1))
	assert.Equal(t, "#TRK-2026-042", TrackingID(2026, 42))
	assert.Equal(t, "#TRK-2026-1000", TrackingID(2026, 1000))

	assert.Equal(t, "u1/d1/d1.pdf", StoragePath("u1", "d1", ".pdf"))
	assert.Equal(t, "u1/d1/d1.bin", StoragePath("u1", "d1", ""))
}

func TestFileSizeLabel(t *testing.T) {
	assert.Equal(t, "", Document{}.FileSizeLabel())
	assert.Equal(t, "1.5 kB", Document{FileSize: 1500}.FileSizeLabel())
}

func TestParseTeamRole(t *testing.T) {
	tests := map[string]TeamRole{
		"admin":   RoleAdmin,
		"owner":   RoleAdmin,
		"Manager": RoleManager,
		"member":  RoleMember,
	}
	for in, want := range tests {
		got, err := ParseTeamRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTeamRole("guest")
	assert.ErrorIs(t, err, ErrInvalidTeamRole)
	assert.True(t, RoleAdmin > RoleManager && RoleManager > RoleMember)
}

func TestTeamRoleJSON(t *testing.T) {
	b, err := json.Marshal(TeamMember{UserID: "u1", Role: RoleManager})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"role":"manager"`)

	var m TeamMember
	require.NoError(t, json.Unmarshal([]byte(`{"role":"owner"}`), &m))
	assert.Equal(t, RoleAdmin, m.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &m))
}
