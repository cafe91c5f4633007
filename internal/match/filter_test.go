package match

import (
	"testing"

	"brickmatch/internal/marketplace"
)

func TestFilterRelevant(t *testing.T) {
	filter := NewFilter([]string{"LEGO", " Technic "})

	cases := []struct {
		name      string
		candidate marketplace.Candidate
		want      bool
	}{
		{"keyword in title", marketplace.Candidate{Title: "LEGO Star Wars 75192"}, true},
		{"keyword in brand only", marketplace.Candidate{Title: "Millennium Falcon Building Kit", Brand: "LEGO"}, true},
		{"case insensitive", marketplace.Candidate{Title: "lego technic crane"}, true},
		{"second keyword", marketplace.Candidate{Title: "Technic Compatible Motor", Brand: "Acme"}, true},
		{"unrelated listing", marketplace.Candidate{Title: "Playmobil Castle", Brand: "Playmobil"}, false},
	}
	for _, tc := range cases {
		if got := filter.Relevant(tc.candidate); got != tc.want {
			t.Errorf("%s: Relevant = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFilterEmptyKeywordsAcceptsAll(t *testing.T) {
	filter := NewFilter(nil)
	if !filter.Relevant(marketplace.Candidate{Title: "Playmobil Castle"}) {
		t.Fatal("empty keyword list should accept every candidate")
	}
}

func TestFilterApplyPreservesOrder(t *testing.T) {
	filter := NewFilter([]string{"lego"})
	in := []marketplace.Candidate{
		{ASIN: "B001", Title: "LEGO City Fire Station"},
		{ASIN: "B002", Title: "Mega Bloks Station"},
		{ASIN: "B003", Title: "LEGO Police HQ"},
	}
	out := filter.Apply(in)
	if len(out) != 2 || out[0].ASIN != "B001" || out[1].ASIN != "B003" {
		t.Fatalf("unexpected filtered candidates: %+v", out)
	}
}
