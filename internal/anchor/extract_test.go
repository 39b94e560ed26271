package anchor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

type fakeRecorder struct {
	got []domain.Highlight
	err error
}

func (f *fakeRecorder) Record(_ context.Context, h domain.Highlight) error {
	f.got = append(f.got, h)
	return f.err
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

var page = PageInfo{Address: "https://example.com/article", Title: "Article"}

func TestExtractMultiLeaf(t *testing.T) {
	body := parseBody(t, "<p>hello <b>world</b></p>")
	rec := &fakeRecorder{}
	ex := NewExtractor(rec, logger.Nop(), fixedClock(1000))

	sel := NewSelection(NewRange(textNode(t, body, "hello"), 0, textNode(t, body, "world"), 5))
	got, ok := ex.Extract(context.Background(), sel, yellow(t), "greeting", page)

	require.True(t, ok)
	assert.Equal(t, "hello world", got.Highlight.Text)
	assert.Equal(t, int64(1000), got.Highlight.ID)
	assert.Equal(t, got.Highlight.ID, got.Highlight.Timestamp)
	assert.Equal(t, page.Address, got.Highlight.URL)
	assert.Equal(t, "Article", got.Highlight.Title)
	assert.Equal(t, Tally{Marked: 2}, got.Tally)

	ms := markers(body)
	require.Len(t, ms, 2)
	assert.Equal(t, "hello ", markerText(ms[0]))
	assert.Equal(t, "world", markerText(ms[1]))
	for _, m := range ms {
		assert.Equal(t, "greeting", attr(m, "title"))
		assert.Equal(t, yellow(t).CSS(), attr(m, "style"))
	}

	require.Len(t, rec.got, 1)
	assert.Equal(t, got.Highlight, rec.got[0])

	_, live := sel.Range()
	assert.False(t, live, "selection should be cleared")
}

func TestExtractPartialLeaves(t *testing.T) {
	body := parseBody(t, "<p>one two</p><p>three four</p>")
	ex := NewExtractor(nil, logger.Nop(), fixedClock(1))

	sel := NewSelection(NewRange(textNode(t, body, "one"), 4, textNode(t, body, "three"), 5))
	got, ok := ex.Extract(context.Background(), sel, yellow(t), "", page)

	require.True(t, ok)
	assert.Equal(t, "twothree", got.Highlight.Text)
	assert.Equal(t,
		`<p>one <span class="rh-highlighted-text" title="" style="`+yellow(t).CSS()+`">two</span></p>`+
			`<p><span class="rh-highlighted-text" title="" style="`+yellow(t).CSS()+`">three</span> four</p>`,
		inner(t, body))
}

func TestExtractNoOps(t *testing.T) {
	body := parseBody(t, "<p>text</p>")
	leaf := textNode(t, body, "text")
	rec := &fakeRecorder{}
	ex := NewExtractor(rec, logger.Nop(), nil)

	tests := []struct {
		name string
		sel  *Selection
	}{
		{"nil selection", nil},
		{"cleared selection", func() *Selection { s := NewSelection(NewRange(leaf, 0, leaf, 1)); s.Clear(); return s }()},
		{"collapsed range", NewSelection(NewRange(leaf, 2, leaf, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ex.Extract(context.Background(), tt.sel, yellow(t), "", page)
			assert.False(t, ok)
			_, live := tt.sel.Range()
			assert.False(t, live)
		})
	}

	assert.Empty(t, rec.got)
	assert.Empty(t, markers(body))
}

func TestExtractKeepsRecordWhenPersistFails(t *testing.T) {
	body := parseBody(t, "<p>keep me</p>")
	leaf := textNode(t, body, "keep")
	rec := &fakeRecorder{err: errors.New("store down")}
	ex := NewExtractor(rec, logger.Nop(), fixedClock(5))

	got, ok := ex.Extract(context.Background(), NewSelection(NewRange(leaf, 0, leaf, 4)), yellow(t), "", page)

	require.True(t, ok)
	assert.Equal(t, "keep", got.Highlight.Text)
	assert.Len(t, markers(body), 1)
}

func TestExtractIDsStayUnique(t *testing.T) {
	ex := NewExtractor(nil, logger.Nop(), fixedClock(42))

	var ids []int64
	for i := 0; i < 3; i++ {
		body := parseBody(t, "<p>same instant</p>")
		leaf := textNode(t, body, "same")
		got, ok := ex.Extract(context.Background(), NewSelection(NewRange(leaf, 0, leaf, 4)), yellow(t), "", page)
		require.True(t, ok)
		ids = append(ids, got.Highlight.ID)
		assert.Equal(t, got.Highlight.ID, got.Highlight.Timestamp)
	}
	assert.Equal(t, []int64{42, 43, 44}, ids)
}
