package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fleetsim/fleetsim/internal/combat"
	"github.com/fleetsim/fleetsim/internal/mission"
)

const reportWidth = 46

// report prints the startup and battle summary to a terminal.
type report struct {
	w io.Writer
	p *message.Printer
}

func newReport(w io.Writer) *report {
	return &report{w: w, p: message.NewPrinter(language.English)}
}

func (r *report) banner() {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Fprintln(r.w, "\033[36;1m  │\033[0m              fleetsim  v0.1.0             \033[36;1m│\033[0m")
	fmt.Fprintln(r.w, "\033[36;1m  │\033[0m        naval combat · mission planner     \033[36;1m│\033[0m")
	fmt.Fprintln(r.w, "\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Fprintln(r.w)
}

func (r *report) blank() { fmt.Fprintln(r.w) }

func (r *report) section(title string) {
	lineLen := reportWidth - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Fprintf(r.w, "  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

// line prints label, a dotted leader and value right-aligned to reportWidth.
func (r *report) line(label, value string) {
	dotsLen := reportWidth - 4 - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Fprintf(r.w, "  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func (r *report) stat(label string, n int) {
	r.line(label, r.p.Sprintf("%d", n))
}

func (r *report) money(label string, amount uint) {
	r.line(label, r.p.Sprintf("%d", amount))
}

func (r *report) ok(msg string) {
	fmt.Fprintf(r.w, "  \033[32m✓\033[0m %s\n", msg)
}

func (r *report) loss(round int, side, unit string) {
	fmt.Fprintf(r.w, "  \033[31m✗\033[0m round %s: %s lost %s\n", r.p.Sprintf("%d", round), side, unit)
}

func (r *report) result(res combat.Result, m *mission.Mission, won bool) {
	r.stat("Rounds", res.Rounds)
	r.line("Winner", string(res.Winner))
	r.money("Damage by attackers", res.DamageByAttackers)
	r.money("Damage by defenders", res.DamageByDefenders)
	r.stat("Attackers afloat", res.AttackersAfloat)
	r.stat("Defenders afloat", res.DefendersAfloat)
	r.money("Saved money", m.SavedMoney())
	r.money("Win threshold", m.WinThreshold())
	r.blank()
	if won {
		fmt.Fprintf(r.w, "  \033[32m▶\033[0m mission accomplished\n")
	} else {
		fmt.Fprintf(r.w, "  \033[31m▶\033[0m mission failed\n")
	}
}
