package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// Printer writes round logs and status views to w.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer; color enables ANSI styling.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) paint(color, text string) string {
	if !p.color {
		return text
	}
	return Colorize(color, text)
}

// Entry formats one log line.
func (p *Printer) Entry(e combat.LogEntry) string {
	switch e.Kind {
	case combat.EntryAttack:
		switch {
		case e.Result == nil:
			return e.Text
		case e.Result.Critical:
			return p.paint(Bold+BrightYellow, e.Text)
		case e.Result.Hit:
			return p.paint(Green, e.Text)
		default:
			return p.paint(Dim, e.Text)
		}
	case combat.EntryKill:
		return p.paint(BrightRed, e.Text)
	case combat.EntryNoTarget:
		return p.paint(Cyan, e.Text)
	case combat.EntryOutcome:
		return p.paint(Bold+BrightWhite, e.Text)
	default:
		return e.Text
	}
}

// Round writes the log of round n. Factions are separated by a blank line.
func (p *Printer) Round(n int, r combat.RoundReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.paint(Bold, fmt.Sprintf("=== ROUND %d ===", n)))
	side := -1
	for _, e := range r.Entries {
		if e.Kind == combat.EntryOutcome {
			b.WriteString("\n")
		} else if e.Kind != combat.EntryKill && e.ActorSide != side {
			if side != -1 {
				b.WriteString("\n")
			}
			side = e.ActorSide
		}
		b.WriteString(p.Entry(e))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Status writes every combatant's hp, attacks, liveness and ignored factions.
func (p *Printer) Status(v combat.BattleView) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.paint(Bold, fmt.Sprintf("=== STATUS (round %d) ===", v.Round)))
	for _, f := range v.Factions {
		fmt.Fprintf(&b, "%s:\n", p.paint(Magenta, f.Name))
		for _, c := range f.Members {
			atks := make([]string, len(c.Attacks))
			for i, a := range c.Attacks {
				atks[i] = fmt.Sprintf("%s%+d", a.Name, a.AttackBonus)
			}
			state := p.paint(Green, "ALIVE")
			if !c.Alive {
				state = p.paint(Red, "DEAD")
			}
			fmt.Fprintf(&b, "  %s: %d/%d HP AC %d [%s] (%s)", c.Name, c.HP, c.MaxHP, c.ArmorClass, strings.Join(atks, ", "), state)
			if len(c.Ignores) > 0 {
				fmt.Fprintf(&b, " (ignores: %s)", strings.Join(c.Ignores, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Tally writes a win/draw summary over many simulated battles.
// wins[i] counts battles won by faction i.
func (p *Printer) Tally(names []string, wins []int, draws, unfinished, total int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.paint(Bold, fmt.Sprintf("=== %d BATTLES ===", total)))
	line := func(label string, n int) {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		fmt.Fprintf(&b, "  %-20s %6d  %5.1f%%\n", label, n, pct)
	}
	for i, name := range names {
		line(name, wins[i])
	}
	line("draw", draws)
	if unfinished > 0 {
		line("unfinished", unfinished)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}
