package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	v34 := MustParse("3.4")
	v310 := MustParse("3.10")
	assert.True(t, v34.LessThan(v310), "dotted comparison must order 3.4 below 3.10")

	_, err := Parse("not-a-version")
	require.Error(t, err)
}

func TestWindowAppliesTo(t *testing.T) {
	t.Parallel()

	win := Apply("2.6", "3.5")

	tests := []struct {
		name    string
		target  string
		applies bool
	}{
		{"below the range", "2.5", false},
		{"lower bound inclusive", "2.6", true},
		{"inside the range", "3.0", true},
		{"upper bound inclusive", "3.5", true},
		{"above the range", "3.6", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.applies, win.AppliesTo(MustParse(tc.target)))
		})
	}
}

func TestWindowCompatibleWith(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the apply range, open ended forward", func(t *testing.T) {
		t.Parallel()
		win := Apply("2.6", "2.7")
		assert.False(t, win.CompatibleWith(MustParse("2.5")))
		assert.True(t, win.CompatibleWith(MustParse("2.6")))
		assert.True(t, win.CompatibleWith(MustParse("3.9")), "nil works_until extends indefinitely")
	})

	t.Run("explicit works range bounds compatibility", func(t *testing.T) {
		t.Parallel()
		win := Window{
			ApplySince: MustParse("2.6"),
			ApplyUntil: MustParse("2.7"),
			WorksSince: MustParse("2.0"),
			WorksUntil: MustParse("3.4"),
		}
		assert.True(t, win.CompatibleWith(MustParse("2.0")))
		assert.True(t, win.CompatibleWith(MustParse("3.4")))
		assert.False(t, win.CompatibleWith(MustParse("3.5")))
		assert.False(t, win.CompatibleWith(MustParse("1.9")))
	})
}

func TestWindowValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		win     Window
		wantErr bool
	}{
		{
			name:    "valid default works range",
			win:     Apply("2.6", "2.7"),
			wantErr: false,
		},
		{
			name:    "missing apply range",
			win:     Window{},
			wantErr: true,
		},
		{
			name: "empty apply range",
			win: Window{
				ApplySince: MustParse("2.7"),
				ApplyUntil: MustParse("2.6"),
			},
			wantErr: true,
		},
		{
			name: "apply range escapes works range",
			win: Window{
				ApplySince: MustParse("2.6"),
				ApplyUntil: MustParse("3.5"),
				WorksUntil: MustParse("2.7"),
			},
			wantErr: true,
		},
		{
			name: "apply range starts before works range",
			win: Window{
				ApplySince: MustParse("2.0"),
				ApplyUntil: MustParse("2.7"),
				WorksSince: MustParse("2.6"),
			},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.win.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
