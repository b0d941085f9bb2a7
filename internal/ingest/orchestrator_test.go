package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"jobboard-api/internal/ingest/extract"
	"jobboard-api/internal/ingest/source"
	"jobboard-api/pkg/models"
)

func testExtractorRules() extract.Ruleset {
	return extract.Ruleset{
		Source:  "fake",
		BaseURL: "https://fake.example.com",
		Title:   []extract.Rule{{Selector: "h2.title"}},
		Company: []extract.Rule{{Selector: "span.company"}},
	}
}

// makeFragments renders n listing cards and slices them back into
// fragments, numbering titles from start so records are distinguishable
func makeFragments(t *testing.T, n, start int) []extract.Fragment {
	t.Helper()

	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb,
			`<div class="card"><h2 class="title">Job %d</h2><span class="company">Company %d</span></div>`,
			start+i, start+i)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("failed to parse fixture html: %v", err)
	}

	var fragments []extract.Fragment
	doc.Find("div.card").Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, extract.Fragment{Selection: s})
	})
	return fragments
}

// fakeAdapter serves canned pages keyed by offset and records the offsets
// it was asked for. Offsets without a canned page fall back to defaultPage.
type fakeAdapter struct {
	pageSize    int
	pages       map[int][]extract.Fragment
	defaultPage []extract.Fragment
	failAt      map[int]error
	offsets     []int
}

func (f *fakeAdapter) Name() string  { return "fake" }
func (f *fakeAdapter) PageSize() int { return f.pageSize }

func (f *fakeAdapter) FetchPage(_ context.Context, _, _ string, offset int) ([]extract.Fragment, error) {
	f.offsets = append(f.offsets, offset)
	if err, ok := f.failAt[offset]; ok {
		return nil, err
	}
	if page, ok := f.pages[offset]; ok {
		return page, nil
	}
	return f.defaultPage, nil
}

func testRuntime(adapter source.Adapter) *source.Runtime {
	return &source.Runtime{
		Adapter:   adapter,
		Extractor: extract.New(testExtractorRules()),
		Config:    models.SourceConfig{Name: "fake", IsActive: true},
	}
}

func TestRunPagesStopsAtLimit(t *testing.T) {
	adapter := &fakeAdapter{
		pageSize: 10,
		pages: map[int][]extract.Fragment{
			0:  makeFragments(t, 10, 0),
			10: makeFragments(t, 10, 10),
			20: makeFragments(t, 10, 20),
			30: makeFragments(t, 10, 30),
		},
	}

	result, err := runPages(context.Background(), testRuntime(adapter), "go", "", 25, testLogger())
	if err != nil {
		t.Fatalf("runPages: %v", err)
	}
	if result.PagesFetched != 3 {
		t.Errorf("pages fetched = %d, want 3", result.PagesFetched)
	}
	if result.TotalFetched != 30 {
		t.Errorf("total fetched = %d, want 30", result.TotalFetched)
	}
	if len(result.Records) != 25 {
		t.Errorf("records = %d, want 25 after truncation", len(result.Records))
	}
	wantOffsets := []int{0, 10, 20}
	for i, want := range wantOffsets {
		if adapter.offsets[i] != want {
			t.Errorf("offset[%d] = %d, want %d", i, adapter.offsets[i], want)
		}
	}
	if result.FetchErr != nil {
		t.Errorf("unexpected fetch error: %v", result.FetchErr)
	}
}

func TestRunPagesStopsOnShortPage(t *testing.T) {
	adapter := &fakeAdapter{
		pageSize: 10,
		pages: map[int][]extract.Fragment{
			0:  makeFragments(t, 10, 0),
			10: makeFragments(t, 4, 10),
		},
	}

	result, err := runPages(context.Background(), testRuntime(adapter), "go", "", 50, testLogger())
	if err != nil {
		t.Fatalf("runPages: %v", err)
	}
	if len(result.Records) != 14 {
		t.Errorf("records = %d, want 14", len(result.Records))
	}
	if len(adapter.offsets) != 2 {
		t.Errorf("adapter called %d times, want 2 (short page ends the run)", len(adapter.offsets))
	}
}

func TestRunPagesFirstPageFailureFailsRun(t *testing.T) {
	fetchErr := &source.FetchError{Source: "fake", Offset: 0, Transient: true, Attempts: 3}
	adapter := &fakeAdapter{
		pageSize: 10,
		failAt:   map[int]error{0: fetchErr},
	}

	_, err := runPages(context.Background(), testRuntime(adapter), "go", "", 25, testLogger())
	if err == nil {
		t.Fatal("expected run to fail when nothing was fetched")
	}
	if !source.IsTransient(err) {
		t.Errorf("error should carry the transient classification, got %v", err)
	}
}

func TestRunPagesLaterPageFailureKeepsPartialResults(t *testing.T) {
	fetchErr := &source.FetchError{Source: "fake", Offset: 10, Transient: true, Attempts: 3}
	adapter := &fakeAdapter{
		pageSize: 10,
		pages:    map[int][]extract.Fragment{0: makeFragments(t, 10, 0)},
		failAt:   map[int]error{10: fetchErr},
	}

	result, err := runPages(context.Background(), testRuntime(adapter), "go", "", 25, testLogger())
	if err != nil {
		t.Fatalf("partial failure should not fail the run: %v", err)
	}
	if len(result.Records) != 10 {
		t.Errorf("records = %d, want 10", len(result.Records))
	}
	if result.FetchErr == nil {
		t.Error("result should surface the page fetch error")
	}
}

func TestRunPagesSkipsNoiseFragments(t *testing.T) {
	// Two real cards plus one ad fragment with neither title nor company
	html := `<div class="card"><h2 class="title">Job A</h2><span class="company">Acme</span></div>` +
		`<div class="card"><div class="ad">sponsored</div></div>` +
		`<div class="card"><h2 class="title">Job B</h2><span class="company">Globex</span></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture html: %v", err)
	}
	var fragments []extract.Fragment
	doc.Find("div.card").Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, extract.Fragment{Selection: s})
	})

	adapter := &fakeAdapter{pageSize: 10, pages: map[int][]extract.Fragment{0: fragments}}

	result, err := runPages(context.Background(), testRuntime(adapter), "go", "", 25, testLogger())
	if err != nil {
		t.Fatalf("runPages: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("records = %d, want 2 (noise dropped)", len(result.Records))
	}
}

func TestRunPagesBoundsOffsetsWhenEveryCardIsNoise(t *testing.T) {
	// Ad-only cards keep pages full while yielding zero records, so the
	// limit alone never stops the loop
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(`<div class="card"><div class="ad">sponsored</div></div>`)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("failed to parse fixture html: %v", err)
	}
	var noisePage []extract.Fragment
	doc.Find("div.card").Each(func(_ int, s *goquery.Selection) {
		noisePage = append(noisePage, extract.Fragment{Selection: s})
	})

	adapter := &fakeAdapter{pageSize: 10, defaultPage: noisePage}

	result, err := runPages(context.Background(), testRuntime(adapter), "go", "", 25, testLogger())
	if err != nil {
		t.Fatalf("runPages: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("records = %d, want 0", len(result.Records))
	}
	// ceil(25/10) pages for the limit plus the slack pages, nothing beyond
	if len(adapter.offsets) != 5 {
		t.Errorf("adapter called %d times, want 5", len(adapter.offsets))
	}
}

func TestRunPagesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := &fakeAdapter{pageSize: 10}
	if _, err := runPages(ctx, testRuntime(adapter), "go", "", 25, testLogger()); err == nil {
		t.Fatal("expected context cancellation error")
	}
	if len(adapter.offsets) != 0 {
		t.Error("no pages should be fetched after cancellation")
	}
}
