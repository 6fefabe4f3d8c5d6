package labels_test

import (
	"testing"

	"github.com/sgaunet/gitlab-backport/internal/labels"
	"github.com/stretchr/testify/assert"
)

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		prefix string
		want   []string
	}{
		{
			name:   "single backport label",
			labels: []string{"bug", "backport-release-1.0"},
			prefix: labels.DefaultPrefix,
			want:   []string{"release-1.0"},
		},
		{
			name:   "multiple labels keep order",
			labels: []string{"backport-release-2.0", "feature", "backport-release-1.0"},
			prefix: labels.DefaultPrefix,
			want:   []string{"release-2.0", "release-1.0"},
		},
		{
			name:   "branch with slashes",
			labels: []string{"backport-release/v1.x"},
			prefix: labels.DefaultPrefix,
			want:   []string{"release/v1.x"},
		},
		{
			name:   "remainder kept verbatim",
			labels: []string{"backport- rel", "backport-rel "},
			prefix: labels.DefaultPrefix,
			want:   []string{" rel", "rel "},
		},
		{
			name:   "no matching label",
			labels: []string{"bug", "documentation"},
			prefix: labels.DefaultPrefix,
			want:   []string{},
		},
		{
			name:   "nil labels",
			labels: nil,
			prefix: labels.DefaultPrefix,
			want:   []string{},
		},
		{
			name:   "label equal to prefix is ignored",
			labels: []string{"backport-", "backport-main"},
			prefix: labels.DefaultPrefix,
			want:   []string{"main"},
		},
		{
			name:   "duplicates collapse",
			labels: []string{"backport-1.0", "backport-1.0"},
			prefix: labels.DefaultPrefix,
			want:   []string{"1.0"},
		},
		{
			name:   "prefix match is case sensitive",
			labels: []string{"Backport-1.0"},
			prefix: labels.DefaultPrefix,
			want:   []string{},
		},
		{
			name:   "prefix must be at the start",
			labels: []string{"needs-backport-1.0"},
			prefix: labels.DefaultPrefix,
			want:   []string{},
		},
		{
			name:   "custom prefix",
			labels: []string{"cherry-pick/stable", "backport-1.0"},
			prefix: "cherry-pick/",
			want:   []string{"stable"},
		},
		{
			name:   "empty prefix matches nothing",
			labels: []string{"backport-1.0"},
			prefix: "",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels.ParseTargets(tt.labels, tt.prefix)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every returned element is a prefixed label with the prefix removed, and
// every prefixed label shows up in the result.
func TestParseTargets_StripsExactlyPrefixedLabels(t *testing.T) {
	input := []string{"a", "backport-x", "b", "backport-y", "backportz", "backport-z"}
	got := labels.ParseTargets(input, "backport-")

	assert.Equal(t, []string{"x", "y", "z"}, got)
	for _, branch := range got {
		assert.True(t, labels.Contains(input, "backport-"+branch))
	}
}

func TestContains(t *testing.T) {
	assert.True(t, labels.Contains([]string{"bug", "failed-backport"}, "failed-backport"))
	assert.False(t, labels.Contains([]string{"bug"}, "failed-backport"))
	assert.False(t, labels.Contains(nil, "bug"))
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		add      []string
		want     []string
	}{
		{"adds missing label", []string{"bug"}, []string{"failed-backport"}, []string{"bug", "failed-backport"}},
		{"never duplicates", []string{"bug", "failed-backport"}, []string{"failed-backport"}, []string{"bug", "failed-backport"}},
		{"dedupes existing", []string{"bug", "bug"}, nil, []string{"bug"}},
		{"empty existing", nil, []string{"x"}, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels.Union(tt.existing, tt.add...))
		})
	}
}

func TestUnion_DoesNotModifyInput(t *testing.T) {
	existing := make([]string, 1, 4)
	existing[0] = "bug"

	_ = labels.Union(existing, "failed-backport")

	assert.Equal(t, []string{"bug"}, existing)
}
