package scan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/sift/internal/model"
)

func TestNormalizeClassification(t *testing.T) {
	content := "#include <stdio.h>\n" +
		"// Function prototype declaration\n" +
		"\n" +
		"//\n" +
		"  int main() {\n" +
		"\t\n"

	snap, err := Normalize("main.c", content, DefaultSyntax())
	require.NoError(t, err)
	require.Equal(t, 6, snap.Len())

	assert.False(t, snap.Lines[0].IsComment)
	assert.False(t, snap.Lines[0].IsBlank)

	assert.True(t, snap.Lines[1].IsComment)
	assert.False(t, snap.Lines[1].IsBlank)

	assert.True(t, snap.Lines[2].IsBlank, "empty line is blank")

	assert.True(t, snap.Lines[3].IsComment)
	assert.True(t, snap.Lines[3].IsBlank, "bare comment token is blank")

	assert.False(t, snap.Lines[4].IsComment)
	assert.Equal(t, "  int main() {", snap.Lines[4].Raw, "indentation preserved")

	assert.True(t, snap.Lines[5].IsBlank, "whitespace-only line is blank")

	for i, line := range snap.Lines {
		assert.Equal(t, i, line.Index)
	}
}

func TestNormalizeBlockComments(t *testing.T) {
	t.Run("spanning lines", func(t *testing.T) {
		content := "/* first\nsecond\nthird */\nint x;\n"
		snap, err := Normalize("a.c", content, DefaultSyntax())
		require.NoError(t, err)

		assert.True(t, snap.Lines[0].IsComment)
		assert.True(t, snap.Lines[1].IsComment)
		assert.True(t, snap.Lines[2].IsComment)
		assert.False(t, snap.Lines[3].IsComment)
	})

	t.Run("open and close on one line", func(t *testing.T) {
		content := "/* inline */\nint x;\n"
		snap, err := Normalize("a.c", content, DefaultSyntax())
		require.NoError(t, err)
		assert.True(t, snap.Lines[0].IsComment)
		assert.False(t, snap.Lines[1].IsComment)
	})

	t.Run("unterminated", func(t *testing.T) {
		content := "int x;\n/* never closed\nint y;\n"
		_, err := Normalize("a.c", content, DefaultSyntax())
		var malformed *model.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "a.c", malformed.File)
		assert.Equal(t, 1, malformed.Line)
	})

	t.Run("close without open", func(t *testing.T) {
		content := "int x; */\n"
		_, err := Normalize("a.c", content, DefaultSyntax())
		var malformed *model.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 0, malformed.Line)
	})
}

func TestNormalizeBlockTokensInsideLineComments(t *testing.T) {
	t.Run("close token in a line comment", func(t *testing.T) {
		snap, err := Normalize("a.c", "// note: a close token */ is fine here\nint x;\n", DefaultSyntax())
		require.NoError(t, err)
		assert.True(t, snap.Lines[0].IsComment)
		assert.False(t, snap.Lines[1].IsComment)
	})

	t.Run("open token in a line comment", func(t *testing.T) {
		snap, err := Normalize("a.c", "// see /* below\nint x;\n", DefaultSyntax())
		require.NoError(t, err)
		assert.False(t, snap.Lines[1].IsComment, "no block comment was opened")
	})

	t.Run("trailing comment after code", func(t *testing.T) {
		snap, err := Normalize("a.c", "int x; // was: */\nint y;\n", DefaultSyntax())
		require.NoError(t, err)
		assert.False(t, snap.Lines[0].IsComment)
		assert.False(t, snap.Lines[1].IsComment)
	})

	t.Run("line-comment token inside a block comment", func(t *testing.T) {
		snap, err := Normalize("a.c", "/* see // note */\nint x;\n", DefaultSyntax())
		require.NoError(t, err)
		assert.True(t, snap.Lines[0].IsComment)
		assert.False(t, snap.Lines[1].IsComment, "block comment closed on its own line")
	})

	t.Run("block still tracked after trailing comment", func(t *testing.T) {
		_, err := Normalize("a.c", "int x; // */\n/* open\n", DefaultSyntax())
		var malformed *model.MalformedInputError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 1, malformed.Line)
	})
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	content := "int x;\n" + string([]byte{0xff, 0xfe}) + "\n"
	_, err := Normalize("bad.c", content, DefaultSyntax())

	var malformed *model.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "bad.c", malformed.File)
	assert.Equal(t, 1, malformed.Line)
}

func TestNormalizeEmptyContent(t *testing.T) {
	snap, err := Normalize("empty.c", "", DefaultSyntax())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestNormalizeCustomSyntax(t *testing.T) {
	syn := Syntax{LineComments: []string{"#"}}
	snap, err := Normalize("conf", "# comment\nvalue = 1\n", syn)
	require.NoError(t, err)
	assert.True(t, snap.Lines[0].IsComment)
	assert.False(t, snap.Lines[1].IsComment)
}
