package squad

import "testing"

func TestCategoryGroups(t *testing.T) {
	starting, bench, out, in := 0, 0, 0, 0
	for c := Category(0); c < NumCategories; c++ {
		if c.Starting() {
			starting++
		}
		if c.Bench() {
			bench++
		}
		if c.Out() {
			out++
		}
		if c.In() {
			in++
		}
	}
	if starting != 4 || bench != 4 || out != 4 || in != 4 {
		t.Errorf("group sizes = %d/%d/%d/%d, want 4/4/4/4", starting, bench, out, in)
	}
	if len(roleCategories) != int(NumCategories)-1 {
		t.Errorf("len(roleCategories) = %d, want %d", len(roleCategories), NumCategories-1)
	}
	if !InBenchPaid.Paid() || InBenchFree.Paid() || !OutStartingPaid.Paid() {
		t.Error("Paid classification is wrong")
	}
}

func TestCategoryText(t *testing.T) {
	if got := InStartingPaid.Label(); got != "Transfer In (Paid)" {
		t.Errorf("Label = %q", got)
	}
	for c := Category(0); c < NumCategories; c++ {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", c, err)
		}
		var back Category
		if err := back.UnmarshalText(b); err != nil || back != c {
			t.Errorf("UnmarshalText(%s) = %v, %v", b, back, err)
		}
	}
}
