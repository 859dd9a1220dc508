package features

import (
	"fmt"
	"strings"

	"github.com/pucklab/puckcast/internal/table"
)

// StreakPass converts a win/loss outcome column into per-row streak state:
// streak_type (+1 winning run, -1 losing run), streak_length (consecutive
// identical results ending at the current row), and convenience flags set
// once a run reaches two games. A streak resets to length 1 whenever the
// result flips, and at the first row of a group. Rows whose outcome cannot
// be read break the streak and carry no streak fields.
type StreakPass struct {
	ResultColumn string
}

// NewStreakPass builds a streak pass over the given outcome column.
func NewStreakPass(resultColumn string) *StreakPass {
	return &StreakPass{ResultColumn: resultColumn}
}

func (p *StreakPass) Name() string {
	return fmt.Sprintf("streak(%s)", p.ResultColumn)
}

func (p *StreakPass) Requires() []string { return []string{p.ResultColumn} }

func (p *StreakPass) Produces() []string {
	return []string{"streak_type", "streak_length", "is_win_streak", "is_loss_streak"}
}

func (p *StreakPass) ApplyGroup(entity string, rows []*table.Record) error {
	length := 0
	prevWin := false
	havePrev := false

	for _, row := range rows {
		win, ok := parseOutcome(row.Get(p.ResultColumn))
		if !ok {
			havePrev = false
			length = 0
			continue
		}

		if havePrev && win == prevWin {
			length++
		} else {
			length = 1
		}
		prevWin = win
		havePrev = true

		direction := -1.0
		if win {
			direction = 1.0
		}
		row.SetNum("streak_type", direction)
		row.SetNum("streak_length", float64(length))
		row.SetNum("is_win_streak", boolFlag(win && length >= 2))
		row.SetNum("is_loss_streak", boolFlag(!win && length >= 2))
	}
	return nil
}

// parseOutcome reads an outcome cell: "W"/"win"/1 are wins, "L"/"loss"/0 are
// losses. Overtime wins and losses count as their base result.
func parseOutcome(v table.Value) (win bool, ok bool) {
	if f, isNum := v.Float(); isNum {
		return f > 0.5, true
	}
	s, isStr := v.Str()
	if !isStr {
		return false, false
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W", "WIN", "RW", "OTW":
		return true, true
	case "L", "LOSS", "RL", "OTL":
		return false, true
	}
	return false, false
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
