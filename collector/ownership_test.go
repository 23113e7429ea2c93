package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e2e-infra/run-reporter/types"
)

func TestTeamRoster_Resolve(t *testing.T) {
	roster := NewTeamRoster([]string{"Frontend", "Backend", "Platform"}, "Platform")

	tests := []struct {
		name        string
		title       string
		annotations []types.Annotation
		want        string
	}{
		{
			name:  "bracket tag in title wins",
			title: "[Backend] validates payload",
			want:  "Backend",
		},
		{
			name:  "first configured team wins when several tags present",
			title: "[Backend] and [Frontend] integration",
			want:  "Frontend",
		},
		{
			name:  "unrelated bracketed text is not a team tag",
			title: "[smoke] loads homepage",
			want:  "Platform", // falls through to configured fallback
		},
		{
			name:        "team annotation beats owner annotation",
			title:       "renders chart",
			annotations: []types.Annotation{{Type: "owner", Description: "Backend"}, {Type: "team", Description: "Frontend"}},
			want:        "Frontend",
		},
		{
			name:        "owner annotation consulted after team",
			title:       "renders chart",
			annotations: []types.Annotation{{Type: "owner", Description: "Backend"}},
			want:        "Backend",
		},
		{
			name:        "unrecognized annotation value is ignored",
			title:       "renders chart",
			annotations: []types.Annotation{{Type: "team", Description: "Nobody"}},
			want:        "Platform",
		},
		{
			name:  "fallback used when nothing matches",
			title: "renders chart",
			want:  "Platform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roster.Resolve(tt.title, tt.annotations))
		})
	}
}

func TestTeamRoster_UnrecognizedFallbackYieldsUnknown(t *testing.T) {
	roster := NewTeamRoster([]string{"Frontend"}, "NotATeam")
	assert.Equal(t, UnknownTeam, roster.Resolve("renders chart", nil),
		"fallback only applies when it names a known team")
}

func TestTeamRoster_EmptyRoster(t *testing.T) {
	roster := NewTeamRoster(nil, "")
	assert.Equal(t, UnknownTeam, roster.Resolve("[Frontend] renders chart", nil))
	assert.Empty(t, roster.Teams())
}

func TestTeamRoster_DeduplicatesNames(t *testing.T) {
	roster := NewTeamRoster([]string{"Frontend", "Frontend", " Backend "}, "")
	assert.Equal(t, []string{"Frontend", "Backend"}, roster.Teams())
}

func TestLoadTeamRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teams.yaml")
	content := "teams:\n  - Frontend\n  - Backend\nfallback: Backend\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	roster, err := LoadTeamRoster(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend", "Backend"}, roster.Teams())
	assert.Equal(t, "Backend", roster.Resolve("no tags here", nil), "file fallback honored")

	// An explicit fallback overrides the file's.
	roster, err = LoadTeamRoster(path, "Frontend")
	require.NoError(t, err)
	assert.Equal(t, "Frontend", roster.Resolve("no tags here", nil))
}

func TestLoadTeamRoster_Errors(t *testing.T) {
	_, err := LoadTeamRoster(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams: {not: a list"), 0644))
	_, err = LoadTeamRoster(path, "")
	require.Error(t, err)
}
