package golden_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/golden"
)

func TestMatchLineWildcards(t *testing.T) {
	r := golden.NewRedactions()
	tests := []struct {
		pattern string
		actual  string
		want    bool
	}{
		{"[..]", "", true},
		{"[..]", "anything at all", true},
		{"he[..]o", "hello", true},
		{"he[..]o", "heo", true},
		{"he[..]o", "help", false},
		{"a[..]b[..]c", "a1b2c", true},
		{"a[..]b[..]c", "abbbc", true},
		{"a[..]c", "ab", false},
		{"[..] ms", "12 ms", true},
		{"[NOT_REGISTERED]", "[NOT_REGISTERED]", true},
		{"[NOT_REGISTERED]", "x", false},
		{"[..", "[..", true},
		{"plain", "plain", true},
		{"plain", "plane", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.actual, func(t *testing.T) {
			assert.Equal(t, tt.want, r.MatchLine(tt.pattern, tt.actual))
		})
	}
}

func TestMatchLinePlaceholders(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[USER]", "alice", "bob"))

	assert.True(t, r.MatchLine("hi [USER]!", "hi alice!"))
	assert.True(t, r.MatchLine("hi [USER]!", "hi bob!"))
	assert.False(t, r.MatchLine("hi [USER]!", "hi carol!"))
	assert.True(t, r.MatchLine("[USER] and [..]", "bob and carol"))
}

func TestPlaceholderMatchesItsOwnName(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[USER]", "alice"))
	require.NoError(t, r.InsertRegexp("[NUM]", `[0-9]+`))
	require.NoError(t, r.InsertUUID("[ID]"))

	assert.True(t, r.MatchLine("id=[USER] at [..]", "id=[USER] at home"))
	assert.True(t, r.MatchLine("took [NUM]ms at [..]", "took [NUM]ms at noon"))
	assert.True(t, r.MatchLine("request [ID] by [USER]", "request [ID] by alice"))
	assert.False(t, r.MatchLine("id=[USER] at [..]", "id=[USERS] at home"))
}

func TestInsertErrors(t *testing.T) {
	r := golden.NewRedactions()

	var ue *golden.UsageError
	assert.True(t, errors.As(r.Insert(golden.PhRoot, "/x"), &ue))
	assert.True(t, errors.As(r.Insert(golden.AnyText, "x"), &ue))

	var re *golden.RedactionError
	assert.True(t, errors.As(r.Insert("lower", "x"), &re))
	assert.True(t, errors.As(r.Insert("[A-B]", "x"), &re))
	assert.True(t, errors.As(r.Insert("[EMPTY]"), &re))
	assert.True(t, errors.As(r.InsertRegexp("[BAD]", "("), &re))
	assert.Equal(t, "[BAD]", re.Placeholder)

	require.NoError(t, r.InsertRegexp("[NUM]", `[0-9]+`))
	assert.True(t, errors.As(r.Insert("[NUM]", "1"), &re))
	assert.True(t, errors.As(r.InsertRegexp("[NUM]", `[0-9]`), &re))
	assert.True(t, errors.As(r.InsertUUID("[NUM]"), &re))
}

func TestValuesLongestFirst(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[V]", "ab", "abcd", "abc"))
	assert.Equal(t, []string{"abcd", "abc", "ab"}, r.Values("[V]"))
	assert.Nil(t, r.Values("[NONE]"))
}

func TestInsertAddsValues(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[V]", "a"))
	require.NoError(t, r.Insert("[V]", "b"))
	assert.ElementsMatch(t, []string{"a", "b"}, r.Values("[V]"))
}

func TestRedactLongestWins(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[SHORT]", "foo"))
	require.NoError(t, r.Insert("[LONG]", "foobar"))
	assert.Equal(t, "[LONG] and [SHORT]", r.Redact("foobar and foo"))
}

func TestRegexpRedactionLongLine(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.InsertRegexp("[PORT]", `:(?<redacted>[0-9]+)`))

	pattern := strings.Repeat("h:[PORT] ", 2000)
	actual := strings.Repeat("h:8080 ", 2000)
	assert.True(t, r.MatchLine(pattern, actual))
	assert.False(t, r.MatchLine(pattern, actual+"h:x "))
}

func TestRegexpRedaction(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.InsertRegexp("[PORT]", `:(?<redacted>[0-9]+)`))

	assert.Equal(t, "host:[PORT]/", r.Redact("host:8080/"))
	assert.True(t, r.MatchLine("host:[PORT]/", "host:9090/"))
	assert.False(t, r.MatchLine("host:[PORT]/", "host:http/"))

	whole := golden.NewRedactions()
	require.NoError(t, whole.InsertRegexp("[NUM]", `[0-9]+`))
	assert.Equal(t, "took [NUM]ms", whole.Redact("took 42ms"))
	assert.True(t, whole.MatchLine("took [NUM]ms", "took 42ms"))
	assert.False(t, whole.MatchLine("took [NUM]ms", "took fast"))
}

func TestUUIDRedaction(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.InsertUUID("[ID]"))
	id := uuid.NewString()

	assert.True(t, r.MatchLine("request [ID] done", "request "+id+" done"))
	assert.False(t, r.MatchLine("request [ID] done", "request not-a-uuid done"))
	assert.Equal(t, "id=[ID]", r.Redact("id="+id))
}

func TestPathRedaction(t *testing.T) {
	dir := t.TempDir()
	r := golden.NewRedactions()
	require.NoError(t, r.InsertPath("[TMP]", dir))

	assert.Equal(t, "[TMP]/out.txt", r.Redact(filepath.Join(dir, "out.txt")))
	assert.True(t, r.MatchLine("wrote [TMP]/out.txt", "wrote "+filepath.ToSlash(filepath.Join(dir, "out.txt"))))
}

func TestBuiltinPlaceholders(t *testing.T) {
	r := golden.NewRedactions()
	assert.Contains(t, r.Placeholders(), golden.PhCwd)
	assert.Contains(t, r.Placeholders(), golden.PhExe)
	assert.Contains(t, r.Placeholders(), golden.PhRoot)
	assert.NotEmpty(t, r.Values(golden.PhRoot))
}

func TestCloneIsIndependent(t *testing.T) {
	r := golden.NewRedactions()
	require.NoError(t, r.Insert("[A]", "1"))
	c := r.Clone()
	require.NoError(t, c.Insert("[A]", "2"))
	require.NoError(t, c.Insert("[B]", "3"))

	assert.Equal(t, []string{"1"}, r.Values("[A]"))
	assert.Nil(t, r.Values("[B]"))
	assert.ElementsMatch(t, []string{"1", "2"}, c.Values("[A]"))
}
