package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeFileNames(t *testing.T) {
	page := []byte(`<html><body>
		<a href="/sofacoustics/SOFAtoolbox/blob/master/SOFAtoolbox/conventions/GeneralFIR.csv">GeneralFIR.csv</a>
		<a href="/sofacoustics/SOFAtoolbox/blob/master/SOFAtoolbox/conventions/GeneralFIR.csv">duplicate link</a>
		<a href="/sofacoustics/SOFAtoolbox/blob/master/SOFAtoolbox/conventions/SimpleFreeFieldHRIR.csv">SimpleFreeFieldHRIR.csv</a>
		<a href="/sofacoustics/SOFAtoolbox/blob/master/SOFAtoolbox/conventions/readme.md">readme</a>
		<a href="/sofacoustics/SOFAtoolbox">no extension</a>
	</body></html>`)

	names := scrapeFileNames(page, ".csv")
	assert.Equal(t, []string{"GeneralFIR.csv", "SimpleFreeFieldHRIR.csv"}, names)
}

func TestScrapeFileNamesKeepsPageOrder(t *testing.T) {
	page := []byte(`<html><body>
		<a href="/c/Zebra.csv">z</a>
		<a href="/c/Alpha.csv">a</a>
		<a href="/c/Middle.csv">m</a>
	</body></html>`)

	names := scrapeFileNames(page, ".csv")
	assert.Equal(t, []string{"Zebra.csv", "Alpha.csv", "Middle.csv"}, names)
}

func TestScrapeFileNamesNoAnchors(t *testing.T) {
	assert.Empty(t, scrapeFileNames([]byte("<html><body>nothing here</body></html>"), ".csv"))
}

func TestScrapeFileNamesMalformedHTML(t *testing.T) {
	// the parser is lenient, severed markup still yields the link
	page := []byte(`<a href="/c/GeneralTF.csv">Gen`)
	names := scrapeFileNames(page, ".csv")
	assert.Equal(t, []string{"GeneralTF.csv"}, names)
}
