package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries(t *testing.T) {
	src := `# leading comment
top = 1
[Project]
; another comment
name: Nim
quoted = "a \"b\" \\ c\td"
multi = """first
second"""
inline = """same line"""
url = http://x.org/a=b
`
	entries, err := parseEntries("t.ini", strings.NewReader(src))
	require.NoError(t, err)

	var kv []entry
	for _, e := range entries {
		if e.kind == entryKeyValue {
			kv = append(kv, e)
		}
	}
	require.Len(t, kv, 6)

	assert.Equal(t, entry{kind: entryKeyValue, section: "", key: "top", value: "1", line: 2}, kv[0])
	assert.Equal(t, "project", kv[1].section)
	assert.Equal(t, "Nim", kv[1].value)
	assert.Equal(t, "a \"b\" \\ c\td", kv[2].value)
	assert.Equal(t, "first\nsecond", kv[3].value)
	assert.Equal(t, 7, kv[3].line)
	assert.Equal(t, "same line", kv[4].value)
	assert.Equal(t, "http://x.org/a=b", kv[5].value)
	assert.Equal(t, 10, kv[5].line)
}

func TestParseEntries_Errors(t *testing.T) {
	tests := map[string]string{
		"unterminated section": "[project\n",
		"missing separator":    "[project]\njustakey\n",
		"unterminated quote":   "k = \"abc\n",
		"trailing text":        "k = \"abc\" def\n",
		"unterminated triple":  "k = \"\"\"abc\nmore\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseEntries("t.ini", strings.NewReader(src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "t.ini")
		})
	}
}

func TestVarsExpand(t *testing.T) {
	v := newVars()
	v.set("name", "Nim")
	v.set("ver", "2.0")

	tests := map[string]string{
		"plain":             "plain",
		"$name":             "Nim",
		"${name}-${ver}":    "Nim-2.0",
		"$name$ver":         "Nim2.0",
		"cost $$5":          "cost $5",
		"$unknown stays":    "$unknown stays",
		"${unknown} stays":  "${unknown} stays",
		"trailing $":        "trailing $",
		"$1 not identifier": "$1 not identifier",
		"${unterminated":    "${unterminated",
	}
	for in, want := range tests {
		assert.Equal(t, want, v.Expand(in), in)
	}
}

func TestVarsPinned(t *testing.T) {
	v := newVars()
	v.pin("who", "cli")
	v.set("WHO", "file")

	got, ok := v.Get("who")
	require.True(t, ok)
	assert.Equal(t, "cli", got)
	assert.Equal(t, map[string]string{"who": "cli"}, v.Map())
}
