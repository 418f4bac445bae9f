package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionText(t *testing.T) {
	section := SectionText(FileExcerpt{RelativePath: "src/app.py", Content: "print(1)"})

	expected := "FILE: src/app.py\n" +
		strings.Repeat("-", 40) + "\n" +
		"print(1)\n" +
		strings.Repeat("=", 80) + "\n\n"
	assert.Equal(t, expected, section)
}

func TestSectionText_Truncated(t *testing.T) {
	section := SectionText(FileExcerpt{
		RelativePath:  "big.txt",
		Content:       "a\nb\n",
		Truncated:     true,
		LinesIncluded: 2,
		TotalLines:    500,
	})

	assert.Contains(t, section, "a\nb\n... [File truncated after 2 lines; 500 lines total] ...\n")
}

func TestPayloadText_OmitsTreeWhenFlagged(t *testing.T) {
	payload := Payload{
		Tree:     "root/\n  a.txt\n",
		Excerpts: []FileExcerpt{{RelativePath: "a.txt", Content: "a\n"}},
		Manifest: AggregationManifest{Root: ResolvedPath{ResolvedAbsolute: "/root"}},
	}

	withTree := payload.Text()
	assert.True(t, strings.HasPrefix(withTree, HeaderText("/root", 1)+"root/\n  a.txt\n"))

	payload.Manifest.TreeOmitted = true
	withoutTree := payload.Text()
	assert.Equal(t, HeaderText("/root", 1)+SectionText(payload.Excerpts[0]), withoutTree)
}

func TestHeaderText(t *testing.T) {
	assert.Equal(t, "Directory Analysis: /srv/app\nFiles analyzed: 3\n"+strings.Repeat("=", 80)+"\n", HeaderText("/srv/app", 3))
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest("payload"), 16)
	assert.Equal(t, Digest("payload"), Digest("payload"))
	assert.NotEqual(t, Digest("payload"), Digest("payload "))
}

func TestManifestHelpers(t *testing.T) {
	manifest := AggregationManifest{Skipped: []SkippedEntry{
		{Path: "a.png", Reason: BinarySuspected},
		{Path: "b.txt", Reason: ExtensionFiltered},
		{Path: "c.bin", Reason: BinarySuspected},
	}}

	assert.Equal(t, []SkippedEntry{{Path: "a.png", Reason: BinarySuspected}, {Path: "c.bin", Reason: BinarySuspected}}, manifest.SkippedBy(BinarySuspected))
	assert.Nil(t, manifest.SkippedBy(Unreadable))
	assert.Equal(t, map[SkipReason]int{BinarySuspected: 2, ExtensionFiltered: 1}, manifest.ReasonCounts())
}

func TestPayloadJSONFieldNames(t *testing.T) {
	payload := Payload{
		Excerpts: []FileExcerpt{},
		Manifest: AggregationManifest{
			Root:    ResolvedPath{Requested: "~/proj", ResolvedAbsolute: "/home/u/proj", Existed: true, IsDir: true, Strategy: HomeExpanded},
			Skipped: []SkippedEntry{{Path: "x.bin", Reason: BinarySuspected}},
		},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"resolution_strategy":"HOME_EXPANDED"`)
	assert.Contains(t, string(data), `"reason":"BINARY_SUSPECTED"`)
	assert.NotContains(t, string(data), `"detail"`)
}
