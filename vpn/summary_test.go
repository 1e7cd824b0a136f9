package vpn

import (
	"encoding/json"
	"testing"
)

func TestBuildSummary(t *testing.T) {
	ranked := []Server{
		{Name: "de2", Country: "Germany", City: "Berlin", Load: 10, Distance: 878.4},
		{Name: "de1", Country: "Germany", City: "Berlin", Load: 40, Distance: 878.4},
		{Name: "fr1", Country: "France", City: "Paris", Load: 90, Distance: 342.9},
	}

	summary := BuildSummary(ranked)

	if len(summary) != 2 {
		t.Fatalf("countries = %d, want 2", len(summary))
	}

	berlin := summary["Germany"]["Berlin"]
	if berlin == nil {
		t.Fatal("missing Germany/Berlin entry")
	}
	if berlin.Distance != 878 {
		t.Errorf("Berlin distance = %d, want 878", berlin.Distance)
	}
	if len(berlin.Servers) != 2 {
		t.Fatalf("Berlin servers = %d, want 2", len(berlin.Servers))
	}
	if berlin.Servers[0].Name != "de2" || berlin.Servers[1].Name != "de1" {
		t.Errorf("Berlin servers not ordered by load: %+v", berlin.Servers)
	}

	paris := summary["France"]["Paris"]
	if paris == nil || len(paris.Servers) != 1 || paris.Servers[0].Load != 90 {
		t.Errorf("Paris entry = %+v", paris)
	}
}

func TestServerLoad_MarshalsAsPair(t *testing.T) {
	data, err := json.Marshal(ServerLoad{Name: "de2", Load: 10})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["de2",10]` {
		t.Errorf("Marshal() = %s, want [\"de2\",10]", data)
	}
}

func TestSummary_EncodeDeterministic(t *testing.T) {
	ranked := []Server{
		{Name: "c", Country: "Chile", City: "Santiago", Load: 3},
		{Name: "a", Country: "Albania", City: "Tirana", Load: 1},
		{Name: "b", Country: "Belgium", City: "Brussels", Load: 2},
	}

	first, err := BuildSummary(ranked).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := BuildSummary(ranked).Encode()
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if string(first) != string(again) {
			t.Fatal("Encode() output differs between runs")
		}
	}

	var decoded map[string]map[string]struct {
		Distance int             `json:"distance"`
		Servers  [][]interface{} `json:"servers"`
	}
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("encoded summary is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("decoded countries = %d, want 3", len(decoded))
	}
}
