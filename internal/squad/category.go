package squad

import "fmt"

// Category is one of the thirteen role transitions a player can take between
// the incumbent roster and the next gameweek's squad.
type Category int

const (
	StayStarting Category = iota
	StayBench
	BenchToStarting
	StartingToBench
	OutStartingFree
	OutStartingPaid
	OutBenchFree
	OutBenchPaid
	InStartingFree
	InStartingPaid
	InBenchFree
	InBenchPaid
	Captain

	NumCategories
)

var categoryNames = [NumCategories]string{
	StayStarting:    "stay_starting",
	StayBench:       "stay_bench",
	BenchToStarting: "bench_to_starting",
	StartingToBench: "starting_to_bench",
	OutStartingFree: "out_starting_free",
	OutStartingPaid: "out_starting_paid",
	OutBenchFree:    "out_bench_free",
	OutBenchPaid:    "out_bench_paid",
	InStartingFree:  "in_starting_free",
	InStartingPaid:  "in_starting_paid",
	InBenchFree:     "in_bench_free",
	InBenchPaid:     "in_bench_paid",
	Captain:         "captain",
}

var categoryLabels = [NumCategories]string{
	StayStarting:    "Stay (Starting)",
	StayBench:       "Stay (Bench)",
	BenchToStarting: "Bench to Starting",
	StartingToBench: "Starting to Bench",
	OutStartingFree: "Transfer Out (Free)",
	OutStartingPaid: "Transfer Out (Paid)",
	OutBenchFree:    "Transfer Out (Free)",
	OutBenchPaid:    "Transfer Out (Paid)",
	InStartingFree:  "Transfer In (Free)",
	InStartingPaid:  "Transfer In (Paid)",
	InBenchFree:     "Transfer In (Free)",
	InBenchPaid:     "Transfer In (Paid)",
	Captain:         "Captain",
}

// Category groups used by the encoders.
var (
	startingCategories = []Category{StayStarting, BenchToStarting, InStartingFree, InStartingPaid}
	benchCategories    = []Category{StayBench, StartingToBench, InBenchFree, InBenchPaid}
	outCategories      = []Category{OutStartingFree, OutStartingPaid, OutBenchFree, OutBenchPaid}
	inCategories       = []Category{InStartingFree, InStartingPaid, InBenchFree, InBenchPaid}
	keptCategories     = []Category{StayStarting, StayBench, BenchToStarting, StartingToBench}
	roleCategories     = []Category{
		StayStarting, StayBench, BenchToStarting, StartingToBench,
		OutStartingFree, OutStartingPaid, OutBenchFree, OutBenchPaid,
		InStartingFree, InStartingPaid, InBenchFree, InBenchPaid,
	}
	freeInCategories  = []Category{InStartingFree, InBenchFree}
	freeOutCategories = []Category{OutStartingFree, OutBenchFree}
	paidInCategories  = []Category{InStartingPaid, InBenchPaid}
	paidOutCategories = []Category{OutStartingPaid, OutBenchPaid}

	// Categories a player may only use if they start (or sit on the bench)
	// in the incumbent roster.
	incumbentStartingOnly = []Category{StayStarting, StartingToBench, OutStartingFree, OutStartingPaid}
	incumbentBenchOnly    = []Category{StayBench, BenchToStarting, OutBenchFree, OutBenchPaid}
)

// String returns the variable-name form of the category.
func (c Category) String() string {
	if c >= 0 && c < NumCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Label returns the transfer-plan label of the category.
func (c Category) Label() string {
	if c >= 0 && c < NumCategories {
		return categoryLabels[c]
	}
	return c.String()
}

// Starting reports whether the category puts the player in the starting XI.
func (c Category) Starting() bool { return contains(startingCategories, c) }

// Bench reports whether the category puts the player on the bench.
func (c Category) Bench() bool { return contains(benchCategories, c) }

// Out reports whether the category sells the player.
func (c Category) Out() bool { return contains(outCategories, c) }

// In reports whether the category buys the player.
func (c Category) In() bool { return contains(inCategories, c) }

// Paid reports whether the category is a paid transfer.
func (c Category) Paid() bool {
	return contains(paidInCategories, c) || contains(paidOutCategories, c)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	for i, name := range categoryNames {
		if name == string(b) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(b))
}

func contains(cats []Category, c Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
