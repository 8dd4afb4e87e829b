// Package history implements the stateless drill-down browser over the
// shift ledger: year → month → day → shift, encoded as self-describing
// selection tokens. Any token resolves independently and out of order, so no
// server-side navigation state is kept between menu renders.
package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/motorpool/pkg/domain"
)

// Kind tags the navigation level a token addresses.
type Kind string

const (
	KindYear  Kind = "year"
	KindMonth Kind = "month"
	KindDay   Kind = "day"
	KindShift Kind = "shift"
)

// Token is a parsed drill-down selection. Shift tokens carry the record's
// absolute index in the ledger, stable because the ledger is append-only.
type Token struct {
	Kind  Kind
	Year  int
	Month int
	Day   int
	Index int
}

// String formats the token in its wire form:
// year:<Y> | month:<Y>:<M> | day:<Y>:<M>:<D> | shift:<index>.
func (t Token) String() string {
	switch t.Kind {
	case KindYear:
		return fmt.Sprintf("year:%d", t.Year)
	case KindMonth:
		return fmt.Sprintf("month:%d:%d", t.Year, t.Month)
	case KindDay:
		return fmt.Sprintf("day:%d:%d:%d", t.Year, t.Month, t.Day)
	case KindShift:
		return fmt.Sprintf("shift:%d", t.Index)
	}
	return ""
}

// ParseToken parses a wire token. Stale or malformed input fails closed with
// domain.ErrMalformedSelection rather than crashing on a split.
func ParseToken(s string) (Token, error) {
	parts := strings.Split(s, ":")

	fail := func(reason string) (Token, error) {
		return Token{}, fmt.Errorf("%w: %q (%s)", domain.ErrMalformedSelection, s, reason)
	}

	nums := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fail("not a number")
		}
		nums = append(nums, n)
	}

	switch Kind(parts[0]) {
	case KindYear:
		if len(nums) != 1 || nums[0] <= 0 {
			return fail("want year:<Y>")
		}
		return Token{Kind: KindYear, Year: nums[0]}, nil
	case KindMonth:
		if len(nums) != 2 || nums[0] <= 0 || nums[1] < 1 || nums[1] > 12 {
			return fail("want month:<Y>:<M>")
		}
		return Token{Kind: KindMonth, Year: nums[0], Month: nums[1]}, nil
	case KindDay:
		if len(nums) != 3 || nums[0] <= 0 || nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 {
			return fail("want day:<Y>:<M>:<D>")
		}
		return Token{Kind: KindDay, Year: nums[0], Month: nums[1], Day: nums[2]}, nil
	case KindShift:
		if len(nums) != 1 || nums[0] < 0 {
			return fail("want shift:<index>")
		}
		return Token{Kind: KindShift, Index: nums[0]}, nil
	}
	return fail("unknown kind")
}
