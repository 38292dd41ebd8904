package rewrite

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<div class="mw-parser-output">
<h1>Manzanar</h1>
<div class="alert published">This page is complete and awaiting publication.</div>
<p><br />
</p>
<div class="thumb tright"><div class="thumbinner"><a href="/mediawiki/index.php/File:en-denshopd-i37-00239-1.jpg" class="image"><img src="/mediawiki/images/thumb/a/ab/en-denshopd-i37-00239-1.jpg/200px-en-denshopd-i37-00239-1.jpg"></a><div class="thumbcaption">Guard tower</div></div></div>
<p>Manzanar was one of ten <a href="/mediawiki/index.php/Concentration_camps">camps</a>.
See <a href="/mediawiki/index.php?title=Nisei&amp;action=edit&amp;redlink=1">Nisei</a>.</p>
<h2>Background<span class="mw-editsection">[<a href="/mediawiki/index.php?title=Manzanar&amp;action=edit&amp;section=1">edit</a>]</span></h2>
<p>One</p>
<h2>Construction<span class="mw-editsection">[<a href="/mediawiki/index.php?title=Manzanar&amp;action=edit&amp;section=2">edit</a>]</span></h2>
<p>Two</p>
<h2>Closing<span class="mw-editsection">[<a href="/mediawiki/index.php?title=Manzanar&amp;action=edit&amp;section=3">edit</a>]</span></h2>
<p>Three <a class="image" href="/File:en-denshopd-i67-00070-1.jpg"><img src="/mediawiki/images/c/cd/en-denshopd-i67-00070-1.jpg"></a></p>
</div>`

func sampleOptions() Options {
	opts := defaultOptions()
	opts.SourceIDs = map[string]struct{}{
		"en-denshopd-i37-00239-1": {},
		"en-denshopd-i67-00070-1": {},
	}
	return opts
}

func TestDefaultStages_Order(t *testing.T) {
	assert.Equal(t, []string{
		StageStripTitleHeading,
		StageStripComments,
		StageStripEditLinks,
		StageRewriteLinks,
		StageRewritePagination,
		StageStripStatusMarkers,
		StageTopLinks,
		StageStripPrimarySources,
	}, Default().Names())
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	assert.Equal(t, 0, p.Len())

	p.Add(Stage{Name: "noop", Apply: func(*goquery.Document, Options) {}})
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, []string{"noop"}, p.Names())
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var order []string
	record := func(name string) Stage {
		return Stage{Name: name, Apply: func(*goquery.Document, Options) { order = append(order, name) }}
	}

	_, err := NewPipeline(record("first"), record("second"), record("third")).Run("<p>x</p>", Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPipeline_Run_FullPage(t *testing.T) {
	out, err := Default().Run(samplePage, sampleOptions())
	require.NoError(t, err)

	doc := parse(t, out)
	assert.Equal(t, 0, doc.Find("h1").Length())
	assert.Equal(t, 0, doc.Find("span.mw-editsection").Length())
	assert.NotContains(t, out, "awaiting publication")
	assert.NotContains(t, out, "action=edit")
	assert.NotContains(t, out, "/mediawiki")
	assert.NotContains(t, out, "<p><br/>")
	assert.NotContains(t, out, "<html>")
	assert.NotContains(t, out, "<body>")

	assert.Equal(t, "/Concentration_camps", href(t, doc, `a:contains("camps")`))
	assert.Equal(t, "/Nisei", href(t, doc, `a:contains("Nisei")`))
	assert.Equal(t, 2, doc.Find("div.toplink").Length())
	assert.Equal(t, 3, doc.Find("h2").Length())
}

func TestPipeline_Run_PrimarySourceRemovalComplete(t *testing.T) {
	opts := sampleOptions()
	out, err := Default().Run(samplePage, opts)
	require.NoError(t, err)

	for id := range opts.SourceIDs {
		assert.NotContains(t, out, id)
	}
	assert.NotContains(t, out, "Guard tower")
	assert.Contains(t, out, "Three")
}

func TestPipeline_Run_Printed(t *testing.T) {
	opts := sampleOptions()
	opts.Printed = true

	out, err := Default().Run(samplePage, opts)

	require.NoError(t, err)
	assert.NotContains(t, out, "toplink")
}

func TestPipeline_Run_OnlyHeadingIsTitle(t *testing.T) {
	out, err := Default().Run(`<h1>Tule Lake</h1>`, Options{Printed: true})

	require.NoError(t, err)
	assert.Equal(t, 0, parse(t, out).Find("h1").Length())
	assert.Equal(t, "", strings.TrimSpace(out))
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	first, err := Default().Run(samplePage, sampleOptions())
	require.NoError(t, err)

	second, err := Default().Run(first, sampleOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_Run_Empty(t *testing.T) {
	out, err := Default().Run("", sampleOptions())

	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestExtractAuthors(t *testing.T) {
	body := `<div id="authorByline"><b>Authored by
<a href="/mediawiki/index.php/Jane_L._Scheiber" title="Jane L. Scheiber">Jane L. Scheiber</a>
and
<a href="/mediawiki/index.php/Harry_N._Scheiber" title="Harry N. Scheiber">Harry N. Scheiber</a></b></div>
<div id="citationAuthor" style="display:none;">Scheiber,Jane; Scheiber,Harry and Alexander, Brian</div>`

	info := ExtractAuthors(parse(t, body))

	assert.Equal(t, []string{"Jane L. Scheiber", "Harry N. Scheiber"}, info.Display)
	assert.Equal(t, [][]string{
		{"Scheiber", "Jane"},
		{"Scheiber", "Harry"},
		{"Alexander", "Brian"},
	}, info.Parsed)
}

func TestExtractAuthors_UnsplittableName(t *testing.T) {
	info := ExtractAuthors(parse(t, `<div id="citationAuthor">Densho</div>`))

	assert.Empty(t, info.Display)
	assert.Equal(t, [][]string{{"Densho"}}, info.Parsed)
}

func TestExtractAuthors_NoByline(t *testing.T) {
	info := ExtractAuthors(parse(t, `<p>No authors here.</p>`))

	assert.Empty(t, info.Display)
	assert.Empty(t, info.Parsed)
}
