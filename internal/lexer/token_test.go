package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNumberToken(t *testing.T) {
	loc := Location{"file.mc", 2, 3}
	tok, err := NewNumberToken("123", loc)
	require.NoError(t, err)
	require.Equal(t, TypeNumber, tok.Type)
	require.Equal(t, 123, tok.NumberVal)
	require.Equal(t, "123", tok.StringVal)
	require.Equal(t, loc, tok.Location)

	_, err = NewNumberToken("notanumber", loc)
	require.Error(t, err)
}

func TestNewIdentOrKeywordToken(t *testing.T) {
	loc := Location{"file.mc", 3, 4}

	tok := NewIdentOrKeywordToken("if", loc)
	require.Equal(t, TypeKeyword, tok.Type)
	require.Equal(t, KeywordIf, tok.Keyword)
	require.Equal(t, "if", tok.StringVal)
	require.Equal(t, loc, tok.Location)

	tok = NewIdentOrKeywordToken("true", loc)
	require.Equal(t, TypeKeyword, tok.Type)
	require.Equal(t, KeywordTrue, tok.Keyword)

	tok = NewIdentOrKeywordToken("foobar", loc)
	require.Equal(t, TypeIdent, tok.Type)
	require.Equal(t, "foobar", tok.Identifier)
	require.Equal(t, "foobar", tok.StringVal)
}

func TestCheckKeyword(t *testing.T) {
	for _, kw := range keywords {
		got, ok := checkKeyword(string(kw))
		require.True(t, ok)
		require.Equal(t, kw, got)
	}

	_, ok := checkKeyword("main")
	require.False(t, ok)
}
