package replay

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"foo/bar", []string{"foo", "bar"}},
		{"foo/bar(baz)", []string{"foo", "bar", "baz"}},
		{`C:\Users\foo`, []string{"C:", "Users", "foo"}},
		{"a b  c", []string{"a", "b", "c"}},
		{"a/b c", []string{"a", "b", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := tokenize(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("tokenize(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLCS(t *testing.T) {
	m := lcs([]string{"a", "b", "c"}, []string{"a", "b", "c"})
	if m.matched != 3 || m.gapRuns != 0 || !m.endTouch {
		t.Errorf("exact match: got %+v", m)
	}

	m = lcs([]string{"a", "x", "b"}, []string{"a", "b"})
	if m.matched != 2 {
		t.Errorf("want 2 matched tokens, got %+v", m)
	}

	m = lcs([]string{"a", "b"}, []string{"x", "y"})
	if m.matched != 0 {
		t.Errorf("want no match, got %+v", m)
	}
}

func TestIsBetterMatch(t *testing.T) {
	moreMatched := lcsMatch{matched: 3}
	fewerMatched := lcsMatch{matched: 2}
	if !isBetterMatch(moreMatched, fewerMatched, 0, 0) {
		t.Error("more matched tokens should win regardless of gaps")
	}

	fewerGaps := lcsMatch{matched: 2, gapRuns: 1}
	moreGaps := lcsMatch{matched: 2, gapRuns: 2}
	if !isBetterMatch(fewerGaps, moreGaps, 0, 0) {
		t.Error("fewer gap runs should win a matched-count tie")
	}

	endTouch := lcsMatch{matched: 2, gapRuns: 1, endTouch: true}
	noEndTouch := lcsMatch{matched: 2, gapRuns: 1, endTouch: false}
	if !isBetterMatch(endTouch, noEndTouch, 0, 0) {
		t.Error("an end-touching match should beat a non-end-touching match with the same nominal gap count")
	}

	sameShape := lcsMatch{matched: 2, gapRuns: 1}
	if !isBetterMatch(sameShape, sameShape, 5, 2) {
		t.Error("more remaining response groups should break a full tie")
	}
}

func TestMatchFuzzy(t *testing.T) {
	idx := Load("<-CMD:cd /home/foo (build)\n->OUT:ok\n" +
		"<-CMD:cd /home/bar (test)\n->OUT:ok2\n")

	entries, ok := idx.Match("<-CMD:cd /home/foo (build extra)", "CMD", false)
	if !ok || len(entries) != 1 || entries[0].Body != "ok" {
		t.Fatalf("Match = %v, %v, want the /home/foo group", entries, ok)
	}
}

func TestMatchRespectsTag(t *testing.T) {
	idx := Load("<-CMD:same text\n->OUT:a\n<-FIL:same text\n->OUT:b\n")
	entries, ok := idx.Match("<-CMD:same text changed", "CMD", false)
	if !ok || len(entries) != 1 || entries[0].Body != "a" {
		t.Fatalf("Match crossed tags: got %v, %v", entries, ok)
	}
}

func TestMatchEnquiryOnlySkipsFuzzy(t *testing.T) {
	idx := Load("<-CMD:cd /home/foo (build)\n->OUT:ok\n")
	_, ok := idx.Match("<-CMD:cd /home/foo (build extra)", "CMD", true)
	if ok {
		t.Fatal("enquiry-only miss should not fall back to fuzzy matching")
	}
}
