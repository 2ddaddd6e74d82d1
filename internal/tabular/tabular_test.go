package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordCountMatchesDataLines(t *testing.T) {
	text := " school_name , learners ,location_code\nA,10,D01\nB,20,D01S02\nC,30,D01S02P03\n"
	tbl, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 3)
	assert.Equal(t, []string{"school_name", "learners", "location_code"}, tbl.Header)
	for _, r := range tbl.Records {
		assert.Len(t, r, 3)
		for _, h := range tbl.Header {
			_, ok := r[h]
			assert.True(t, ok, "missing key %q", h)
		}
	}
	assert.Empty(t, tbl.Warnings)
}

func TestParseQuotedComma(t *testing.T) {
	tbl, err := Parse("name,count\n\"Bukasa, A\",\"5\"\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 1)
	assert.Equal(t, Record{"name": "Bukasa, A", "count": "5"}, tbl.Records[0])
}

func TestParseEscapedQuote(t *testing.T) {
	tbl, err := Parse("name,note\n\"St. Mary\"\"s\",\"said \"\"ok\"\"\"\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 1)
	assert.Equal(t, `St. Mary"s`, tbl.Records[0].Get("name"))
	assert.Equal(t, `said "ok"`, tbl.Records[0].Get("note"))
}

func TestParseSkipsBlankLines(t *testing.T) {
	tbl, err := Parse("\n\na,b\n\n1,2\n   \n3,4\n\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "1", tbl.Records[0].Get("a"))
	assert.Equal(t, "4", tbl.Records[1].Get("b"))
}

func TestParsePadsShortRows(t *testing.T) {
	tbl, err := Parse("a,b,c\n1\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 1)
	assert.Equal(t, Record{"a": "1", "b": "", "c": ""}, tbl.Records[0])
	require.Len(t, tbl.Warnings, 1)
	assert.Equal(t, WarnShortRow, tbl.Warnings[0].Kind)
	assert.Equal(t, 2, tbl.Warnings[0].Line)
}

func TestParseTruncatesLongRows(t *testing.T) {
	tbl, err := Parse("a,b\n1,2,3\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 1)
	assert.Equal(t, Record{"a": "1", "b": "2"}, tbl.Records[0])
	require.Len(t, tbl.Warnings, 1)
	assert.Equal(t, WarnLongRow, tbl.Warnings[0].Kind)
}

func TestParseTrimsValues(t *testing.T) {
	tbl, err := Parse("a,b\n  x  ,\" y \"\n")
	require.NoError(t, err)
	assert.Equal(t, "x", tbl.Records[0].Get("a"))
	assert.Equal(t, "y", tbl.Records[0].Get("b"))
}

func TestParseQuotedNewline(t *testing.T) {
	tbl, err := Parse("name,note\n\"Kangulumira\",\"line one\nline two\"\nNext,x\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "line one\nline two", tbl.Records[0].Get("note"))
	assert.Equal(t, "Next", tbl.Records[1].Get("name"))
}

func TestParseCRLFAndBOM(t *testing.T) {
	tbl, err := Parse("\ufeffname,count\r\nA,1\r\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "count"}, tbl.Header)
	assert.Equal(t, "1", tbl.Records[0].Get("count"))
}

func TestParseEmptyInput(t *testing.T) {
	tbl, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, tbl.Header)
	assert.Empty(t, tbl.Records)
}

func TestParseDuplicateHeaderKeepsFirst(t *testing.T) {
	tbl, err := Parse("a,a\n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, "1", tbl.Records[0].Get("a"))
	require.Len(t, tbl.Warnings, 1)
	assert.Equal(t, WarnDuplicateHead, tbl.Warnings[0].Kind)
}

func TestParseReaderLargeInput(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 0; i < 2000; i++ {
		b.WriteString("x,1,000\n")
	}
	tbl, err := ParseReader(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 2000)
	assert.Len(t, tbl.Warnings, 2000)
}

func kinds(ws []Warning) []WarningKind {
	var out []WarningKind
	for _, w := range ws {
		out = append(out, w.Kind)
	}
	return out
}

func TestParseUnterminatedQuoteKeepsLaterRows(t *testing.T) {
	tbl, err := Parse("name,count\n\"Bukasa, A,5\nKayunga,3\nNazigo,4\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 3)
	assert.Equal(t, "Bukasa, A,5", tbl.Records[0].Get("name"))
	assert.Equal(t, Record{"name": "Kayunga", "count": "3"}, tbl.Records[1])
	assert.Equal(t, Record{"name": "Nazigo", "count": "4"}, tbl.Records[2])
	require.NotEmpty(t, tbl.Warnings)
	assert.Equal(t, WarnMalformed, tbl.Warnings[0].Kind)
	assert.Equal(t, 2, tbl.Warnings[0].Line)
}

func TestParseSpaceAfterClosingQuote(t *testing.T) {
	tbl, err := Parse("name,count\n\"Bukasa, A\" ,\"5\"\nKayunga,3\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, Record{"name": "Bukasa, A", "count": "5"}, tbl.Records[0])
	assert.Equal(t, Record{"name": "Kayunga", "count": "3"}, tbl.Records[1])
	assert.Equal(t, []WarningKind{WarnMalformed}, kinds(tbl.Warnings))
}

func TestParseBareQuoteInUnquotedField(t *testing.T) {
	tbl, err := Parse("name,count\nSt. Mary\"s,5\nKayunga,3\n")
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, Record{"name": `St. Mary"s`, "count": "5"}, tbl.Records[0])
	assert.Equal(t, "3", tbl.Records[1].Get("count"))
	assert.Equal(t, []WarningKind{WarnMalformed}, kinds(tbl.Warnings))
}

func TestParseQuotedSpanIsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,count\n\"Open,1\n")
	for i := 0; i < MaxQuotedLines+2; i++ {
		b.WriteString("row,2\n")
	}
	b.WriteString("tail\",9\n")
	tbl, err := Parse(b.String())
	require.NoError(t, err)
	require.Len(t, tbl.Records, MaxQuotedLines+4)
	assert.Equal(t, "Open,1", tbl.Records[0].Get("name"))
	assert.Equal(t, Record{"name": "row", "count": "2"}, tbl.Records[1])
	assert.Equal(t, WarnMalformed, tbl.Warnings[0].Kind)
}
