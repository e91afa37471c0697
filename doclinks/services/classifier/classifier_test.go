package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFileType(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://site.com/file.pdf", "PDF"},
		{"https://site.com/FILE.PDF", "PDF"},
		{"/exports/q3.xlsx", "XLSX"},
		{"/data.csv?download=1", "CSV"},
		{"/letter.doc", "DOC"},
		{"/letter.docx", "DOC"},
		{"/bundle.zip", "ZIP"},
		{"/readme.txt", "TXT"},
		{"/deck.ppt", "PPT"},
		{"/deck.pptx", "PPT"},
		{"https://x.com/report.docx", "DOC"},
		{"/q3.xlsx.pdf", "PDF"},
		{"https://site.com/about", UnknownFileType},
		{"", UnknownFileType},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, FileType(tt.href))
		})
	}
}

func TestFileTypeFirstListedWins(t *testing.T) {
	for _, ext := range DocumentFileTypes {
		want := strings.ToUpper(strings.TrimPrefix(ext, "."))
		switch ext {
		case ".docx":
			want = "DOC"
		case ".pptx":
			want = "PPT"
		}
		assert.Equal(t, want, FileType("https://example.com/file"+ext), ext)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name, href, text, want string
	}{
		{"default", "https://site.com/about", "Learn more", GeneralCategory},
		{"report in href", "/annual-report", "", "report"},
		{"analysis in text", "/x", "Market Analysis", "report"},
		{"data", "/exports", "", "data"},
		{"csv", "/file.csv", "", "data"},
		{"documentation", "/user-guide", "", "documentation"},
		{"report wins over guide", "/guide/report", "", "report"},
		{"data wins over manual", "/manual", "Data sheet", "data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.href, tt.text))
		})
	}
}

func TestIsDocumentLink(t *testing.T) {
	dl, doc := IsDocumentLink("https://site.com/file.pdf", "")
	assert.True(t, dl, "extension marks a download")
	assert.True(t, doc, "keyword file marks a document")

	dl, doc = IsDocumentLink("https://site.com/about", "Learn more")
	assert.False(t, dl)
	assert.False(t, doc)

	dl, doc = IsDocumentLink("https://site.com/download/latest", "")
	assert.True(t, dl)
	assert.True(t, doc)

	dl, doc = IsDocumentLink("https://site.com/news", "Save this page")
	assert.False(t, dl)
	assert.True(t, doc, "keywords in text count")

	dl, doc = IsDocumentLink("https://site.com/q3.xlsx", "Q3")
	assert.True(t, dl)
	assert.False(t, doc)
}

func TestClassifyKeep(t *testing.T) {
	c := Classify("/reports/2024.pdf", "Annual Report")
	assert.Equal(t, Classification{FileType: "PDF", Category: "report", IsDownload: true, IsDocument: true}, c)
	assert.True(t, c.Keep())

	assert.False(t, Classify("/contact", "Contact us").Keep())
}
