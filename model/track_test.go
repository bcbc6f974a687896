package model

import (
	"encoding/json"
	"testing"
)

func TestTrackRecordIDKeys(t *testing.T) {
	for doc, want := range map[string]string{
		`{"track_id": "42"}`:            "42",
		`{"id": "7"}`:                   "7",
		`{"track_id": "42", "id": "7"}`: "42",
	} {
		var tr TrackRecord
		if err := json.Unmarshal([]byte(doc), &tr); err != nil {
			t.Fatalf("%s: %v", doc, err)
		}
		if tr.ID != want {
			t.Errorf("%s: id = %q; want %q", doc, tr.ID, want)
		}
	}

	out, err := json.Marshal(TrackRecord{ID: "42"})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	_ = json.Unmarshal(out, &raw)
	if raw["track_id"] != "42" {
		t.Errorf("encoded = %s; want track_id key", out)
	}
}

func TestYearDecoding(t *testing.T) {
	cases := []struct {
		doc  string
		want Year
	}{
		{`{"year": "2019"}`, "2019"},
		{`{"year": "-"}`, "-"},
		{`{"year": 2021}`, "2021"},
		{`{"year": null}`, ""},
		{`{"year": [1]}`, ""},
		{`{}`, ""},
	}
	for _, c := range cases {
		var tr TrackRecord
		if err := json.Unmarshal([]byte(c.doc), &tr); err != nil {
			t.Fatalf("%s: %v", c.doc, err)
		}
		if tr.Year != c.want {
			t.Errorf("%s: year = %q; want %q", c.doc, tr.Year, c.want)
		}
	}
}
