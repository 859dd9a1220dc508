package features

import (
	"fmt"

	"github.com/pucklab/puckcast/internal/table"
)

// DefaultFirstGameRest is the rest_days value assigned to the first game of
// a group, where no previous game exists.
const DefaultFirstGameRest = 3

// RestPass derives inter-game gaps from timestamps: rest_days is the whole
// number of days since the group's previous game, and is_back_to_back flags
// gaps of one day or less. Rows without a parsed timestamp carry no rest
// fields; the grouper has already excluded and counted malformed dates.
type RestPass struct {
	FirstGameRest float64
}

// NewRestPass builds a rest-days pass with the default first-game rest.
func NewRestPass() *RestPass {
	return &RestPass{FirstGameRest: DefaultFirstGameRest}
}

func (p *RestPass) Name() string { return "rest_days" }

func (p *RestPass) Requires() []string { return nil }

func (p *RestPass) Produces() []string {
	return []string{"rest_days", "is_back_to_back"}
}

func (p *RestPass) ApplyGroup(entity string, rows []*table.Record) error {
	var prev *table.Record
	for _, row := range rows {
		if !row.HasTime {
			continue
		}
		rest := p.FirstGameRest
		if prev != nil {
			gap := row.Timestamp.Sub(prev.Timestamp)
			if gap < 0 {
				return fmt.Errorf("group %q not time-ordered at seq %d", entity, row.Seq)
			}
			rest = float64(int(gap.Hours() / 24))
		}
		row.SetNum("rest_days", rest)
		row.SetNum("is_back_to_back", boolFlag(rest <= 1))
		prev = row
	}
	return nil
}
