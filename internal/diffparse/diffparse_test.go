package diffparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/app/config.py b/app/config.py
index 1111111..2222222 100644
--- a/app/config.py
+++ b/app/config.py
@@ -1,4 +1,5 @@
 import os
-DEBUG = False
+DEBUG = True
+SECRET = os.environ["SECRET"]
 TIMEOUT = 30
`

func TestParse(t *testing.T) {
	hunks, err := Parse(sampleDiff)
	require.NoError(t, err)
	require.Len(t, hunks, 1)

	h := hunks[0]
	assert.Equal(t, "app/config.py", h.FilePath)

	require.Len(t, h.Added, 2)
	assert.Equal(t, Line{Number: 2, Text: "DEBUG = True"}, h.Added[0])
	assert.Equal(t, Line{Number: 3, Text: `SECRET = os.environ["SECRET"]`}, h.Added[1])

	require.Len(t, h.Removed, 1)
	assert.Equal(t, Line{Number: 2, Text: "DEBUG = False"}, h.Removed[0])
}

func TestParseEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n"} {
		hunks, err := Parse(raw)
		assert.NoError(t, err)
		assert.Nil(t, hunks)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("this is not a diff\njust some prose\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDiff)
}

func TestParseStripsTrailingWhitespace(t *testing.T) {
	raw := "diff --git a/f.py b/f.py\n" +
		"--- a/f.py\n" +
		"+++ b/f.py\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-old\n" +
		"+new value   \t\n"

	hunks, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "new value", hunks[0].Added[0].Text)
}

func TestParseMultipleFiles(t *testing.T) {
	raw := sampleDiff + `diff --git a/app/db.py b/app/db.py
index 3333333..4444444 100644
--- a/app/db.py
+++ b/app/db.py
@@ -10,3 +10,4 @@ def query():
 	conn = connect()
+	conn.execute(sql)
 	return conn
`
	hunks, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, hunks, 2)
	assert.Equal(t, "app/config.py", hunks[0].FilePath)
	assert.Equal(t, "app/db.py", hunks[1].FilePath)
	require.Len(t, hunks[1].Added, 1)
	assert.Equal(t, 11, hunks[1].Added[0].Number)
}

func TestParseDeletedFileUsesOrigName(t *testing.T) {
	raw := `diff --git a/old.py b/old.py
deleted file mode 100644
--- a/old.py
+++ /dev/null
@@ -1,2 +0,0 @@
-print("gone")
-exit()
`
	hunks, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, "old.py", hunks[0].FilePath)
	assert.Empty(t, hunks[0].Added)
	assert.Len(t, hunks[0].Removed, 2)
}

func TestParseSnippet(t *testing.T) {
	hunks := ParseSnippet("x = 1\ny = 2\n")
	require.Len(t, hunks, 1)

	h := hunks[0]
	assert.Equal(t, "snippet", h.FilePath)
	assert.Empty(t, h.Removed)
	require.Len(t, h.Added, 2)
	assert.Equal(t, Line{Number: 1, Text: "x = 1"}, h.Added[0])
	assert.Equal(t, Line{Number: 2, Text: "y = 2"}, h.Added[1])
}

func TestParseSnippetEmpty(t *testing.T) {
	assert.Nil(t, ParseSnippet(""))
}
