package dining

import "testing"

func TestFilter(t *testing.T) {
	in := []Recommendation{
		{ID: "low", Rating: 3.5, ReviewCount: 900, Categories: []string{"Italian"}},
		{ID: "ok", Rating: 4.0, ReviewCount: 120, Categories: []string{"Bars"}},
		{ID: "great", Rating: 4.8, ReviewCount: 450, Categories: []string{"French"}},
		{ID: "truck", Rating: 4.9, ReviewCount: 1000, Categories: []string{"Tacos", "Food Trucks"}},
	}

	got := Filter(in, 0)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].ID != "great" || got[1].ID != "ok" {
		t.Errorf("order = %s, %s; want great, ok", got[0].ID, got[1].ID)
	}
	if in[0].ID != "low" || len(in) != 4 {
		t.Error("input slice was modified")
	}
}

func TestFilterStableAndTopN(t *testing.T) {
	in := []Recommendation{
		{ID: "a", Rating: 4.5, ReviewCount: 10},
		{ID: "b", Rating: 4.5, ReviewCount: 30},
		{ID: "c", Rating: 4.5, ReviewCount: 10},
		{ID: "d", Rating: 4.5, ReviewCount: 5},
	}

	got := Filter(in, 0)
	want := []string{"b", "a", "c", "d"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	top := Filter(in, 2)
	if len(top) != 2 || top[0].ID != "b" || top[1].ID != "a" {
		t.Errorf("top 2 = %+v", top)
	}
	if len(Filter(in, 10)) != 4 {
		t.Error("topN above length should keep everything")
	}
}

func TestFilterEmpty(t *testing.T) {
	got := Filter(nil, 5)
	if got == nil || len(got) != 0 {
		t.Errorf("got = %#v, want empty non-nil slice", got)
	}
}
