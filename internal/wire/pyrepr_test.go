package wire

import (
	"reflect"
	"testing"
)

func TestParsePyStringList(t *testing.T) {
	got, err := parsePyStringList(`['a', 'b c', "d"]`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePyStringListEscapedQuote(t *testing.T) {
	got, err := parsePyStringList(`['it\'s here']`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "it's here" {
		t.Errorf("got %v", got)
	}
}

func TestParsePyStringListRejectsNonList(t *testing.T) {
	if _, err := parsePyStringList(`{'a': 'b'}`); err == nil {
		t.Fatal("expected an error for a non-list literal")
	}
}

func TestParsePyStringDict(t *testing.T) {
	got, err := parsePyStringDict(`{'PATH': '/usr/bin', 'HOME': '/root'}`)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"PATH": "/usr/bin", "HOME": "/root"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePyStringDictEmpty(t *testing.T) {
	got, err := parsePyStringDict(`{}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("want empty map, got %v", got)
	}
}
