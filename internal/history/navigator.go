package history

import (
	"fmt"
	"sort"

	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// Ledger is the read-only slice of the fleet the navigator needs.
type Ledger interface {
	All() []domain.Shift
}

// Navigator produces successive drill-down menus over the ledger. It never
// mutates state.
type Navigator struct {
	ledger Ledger
}

// NewNavigator creates a navigator over the given ledger.
func NewNavigator(ledger Ledger) *Navigator {
	return &Navigator{ledger: ledger}
}

// Root returns the top-level menu: distinct years, descending.
func (n *Navigator) Root() (string, []ports.MenuItem) {
	years := distinct(n.ledger.All(), func(s domain.Shift) int {
		return s.StartedAt.Year()
	}, func(s domain.Shift) bool { return true })

	items := make([]ports.MenuItem, 0, len(years))
	for _, y := range years {
		items = append(items, ports.MenuItem{
			Token: Token{Kind: KindYear, Year: y}.String(),
			Label: fmt.Sprintf("%d", y),
		})
	}
	return "Shift history — pick a year:", items
}

// Menu returns the next drill-down level for a year, month or day token.
// Shift tokens do not have a menu; resolve them with Resolve.
func (n *Navigator) Menu(tok Token) (string, []ports.MenuItem, error) {
	all := n.ledger.All()

	switch tok.Kind {
	case KindYear:
		months := distinct(all, func(s domain.Shift) int {
			return int(s.StartedAt.Month())
		}, func(s domain.Shift) bool {
			return s.StartedAt.Year() == tok.Year
		})
		items := make([]ports.MenuItem, 0, len(months))
		for _, m := range months {
			items = append(items, ports.MenuItem{
				Token: Token{Kind: KindMonth, Year: tok.Year, Month: m}.String(),
				Label: fmt.Sprintf("%d-%02d", tok.Year, m),
			})
		}
		return fmt.Sprintf("%d — pick a month:", tok.Year), items, nil

	case KindMonth:
		days := distinct(all, func(s domain.Shift) int {
			return s.StartedAt.Day()
		}, func(s domain.Shift) bool {
			return s.StartedAt.Year() == tok.Year && int(s.StartedAt.Month()) == tok.Month
		})
		items := make([]ports.MenuItem, 0, len(days))
		for _, d := range days {
			items = append(items, ports.MenuItem{
				Token: Token{Kind: KindDay, Year: tok.Year, Month: tok.Month, Day: d}.String(),
				Label: fmt.Sprintf("%d-%02d-%02d", tok.Year, tok.Month, d),
			})
		}
		return fmt.Sprintf("%d-%02d — pick a day:", tok.Year, tok.Month), items, nil

	case KindDay:
		var items []ports.MenuItem
		for i, s := range all {
			if s.StartedAt.Year() != tok.Year || int(s.StartedAt.Month()) != tok.Month || s.StartedAt.Day() != tok.Day {
				continue
			}
			items = append(items, ports.MenuItem{
				Token: Token{Kind: KindShift, Index: i}.String(),
				Label: fmt.Sprintf("%s — %s, #%d %s",
					s.StartedAt.Format("15:04"), s.DriverName, s.CarID, s.CarDescription),
			})
		}
		return fmt.Sprintf("%d-%02d-%02d — shifts:", tok.Year, tok.Month, tok.Day), items, nil
	}

	return "", nil, fmt.Errorf("%w: %s has no menu", domain.ErrMalformedSelection, tok)
}

// Resolve returns the full record a shift token points at. Indices beyond
// the current ledger are stale and fail closed.
func (n *Navigator) Resolve(tok Token) (domain.Shift, error) {
	if tok.Kind != KindShift {
		return domain.Shift{}, fmt.Errorf("%w: %s is not a shift token", domain.ErrMalformedSelection, tok)
	}
	all := n.ledger.All()
	if tok.Index < 0 || tok.Index >= len(all) {
		return domain.Shift{}, fmt.Errorf("%w: shift index %d out of range", domain.ErrMalformedSelection, tok.Index)
	}
	return all[tok.Index], nil
}

// distinct collects the distinct keys of the shifts passing the filter, in
// descending order.
func distinct(shifts []domain.Shift, key func(domain.Shift) int, keep func(domain.Shift) bool) []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range shifts {
		if !keep(s) {
			continue
		}
		k := key(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
