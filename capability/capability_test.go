package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	check := assert.New(t)

	s := Parse([]string{
		"  " + Base10 + "\n",
		Base10,
		Candidate,
		"urn:example:vendor:frobnicate:2.1",
		WithDefaults + "?basic-mode=explicit",
	})
	check.Equal(4, s.Len())
	check.True(s.Has(Base10))
	check.True(s.Has(Candidate))
	check.True(s.Has("urn:example:vendor:frobnicate:2.1"))
	// query-string insensitive membership
	check.True(s.Has(WithDefaults))
	check.True(s.Has(WithDefaults+"?basic-mode=trim"))
	check.False(s.Has(Base11))
	check.Equal(WithDefaultsExplicit, s.Attributes().WithDefaults)

	// unrecognized URIs round-trip verbatim
	check.Contains(s.URIs(), "urn:example:vendor:frobnicate:2.1")
	check.Contains(s.URIs(), WithDefaults+"?basic-mode=explicit")
}

func TestParseEmpty(t *testing.T) {
	check := assert.New(t)
	s := Parse(nil)
	check.Equal(0, s.Len())
	check.False(s.HasBase())
	check.Equal(WithDefaultsUnset, s.Attributes().WithDefaults)
}

func TestIntersect(t *testing.T) {
	for _, tc := range []struct {
		name        string
		local, peer []string
		want        []string
		wantWD      WithDefaultsMode
	}{
		{
			name:  "base only effective set",
			local: []string{Base10},
			peer:  []string{Base10, Candidate, WithDefaults + "?basic-mode=explicit"},
			want:  []string{Base10},
			// peer attribute survives even though the capability URI does not intersect
			wantWD: WithDefaultsExplicit,
		},
		{
			name:   "agreement",
			local:  []string{Base10, Base11, Candidate},
			peer:   []string{Candidate, Base10},
			want:   []string{Base10, Candidate},
			wantWD: WithDefaultsUnset,
		},
		{
			name:   "local with-defaults wins over peer",
			local:  []string{Base10, WithDefaults + "?basic-mode=trim"},
			peer:   []string{Base10, WithDefaults + "?basic-mode=report-all"},
			want:   []string{Base10},
			wantWD: WithDefaultsTrim,
		},
		{
			name:   "peer with-defaults used when local silent",
			local:  []string{Base10},
			peer:   []string{Base10, WithDefaults + "?basic-mode=report-all-tagged"},
			want:   []string{Base10},
			wantWD: WithDefaultsReportAllTagged,
		},
		{
			name:  "no base capability",
			local: []string{Candidate},
			peer:  []string{Base10},
			want:  nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			effective := Intersect(Parse(tc.local), Parse(tc.peer))
			check.Equal(tc.want, effective.URIs())
			check.Equal(tc.wantWD, effective.Attributes().WithDefaults)
		})
	}
}

func TestWithDefaultsModeString(t *testing.T) {
	check := assert.New(t)
	check.Equal("unset", WithDefaultsUnset.String())
	check.Equal("report-all", WithDefaultsReportAll.String())
	check.Equal("trim", WithDefaultsTrim.String())
	check.Equal("explicit", WithDefaultsExplicit.String())
	check.Equal("report-all-tagged", WithDefaultsReportAllTagged.String())
}
