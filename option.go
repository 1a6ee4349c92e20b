package lxtax

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PutCall says whether an option is a put or a call.
type PutCall int

const (
	Call PutCall = iota
	Put
)

func (pc PutCall) String() string {
	if pc == Put {
		return "Put"
	}
	return "Call"
}

// Char returns the one-letter spelling used in compact option names.
func (pc PutCall) Char() byte {
	if pc == Put {
		return 'P'
	}
	return 'C'
}

// Option is a single put or call option: strike, expiry and direction.
// The full pricing model lives elsewhere; this type only knows the pure
// payoff facts the lot engine needs.
type Option struct {
	PC     PutCall
	Strike Price
	Expiry time.Time
}

// NewCall constructs a call option.
func NewCall(strike Price, expiry time.Time) Option {
	return Option{PC: Call, Strike: strike, Expiry: expiry}
}

// NewPut constructs a put option.
func NewPut(strike Price, expiry time.Time) Option {
	return Option{PC: Put, Strike: strike, Expiry: expiry}
}

// ParseOption parses the compact notation, e.g. "2023-01-27C10000".
// The expiry time of day is fixed to the LX settlement hour.
func ParseOption(s string) (Option, error) {
	if len(s) < 12 {
		return Option{}, fmt.Errorf("option %q is too short", s)
	}
	day, err := time.Parse("2006-01-02", s[0:10])
	if err != nil {
		return Option{}, fmt.Errorf("parsing expiry in option %q: %w", s, err)
	}
	var pc PutCall
	switch s[10] {
	case 'C', 'c':
		pc = Call
	case 'P', 'p':
		pc = Put
	default:
		return Option{}, fmt.Errorf("unknown put/call symbol %q in %q", s[10], s)
	}
	strike, err := ParsePrice(s[11:])
	if err != nil {
		return Option{}, fmt.Errorf("parsing strike in option %q: %w", s, err)
	}
	expiry := time.Date(day.Year(), day.Month(), day.Day(), settlementHour, 0, 0, 0, time.UTC)
	return Option{PC: pc, Strike: strike, Expiry: expiry}, nil
}

func (o Option) String() string {
	return fmt.Sprintf("%s%c%s", o.Expiry.Format("2006-01-02"), o.PC.Char(), o.Strike)
}

// InTheMoney reports whether the option has positive exercise value at the
// given reference price. At-the-money counts as in.
func (o Option) InTheMoney(btcPrice Price) bool {
	if o.PC == Call {
		return !o.Strike.GreaterThan(btcPrice)
	}
	return !btcPrice.GreaterThan(o.Strike)
}

// IntrinsicValue is what the option would be worth if it expired instantly
// at the given reference price. May be negative for out-of-the-money
// options; callers decide whether to clamp.
func (o Option) IntrinsicValue(btcPrice Price) Price {
	if o.PC == Call {
		return btcPrice.Sub(o.Strike)
	}
	return o.Strike.Sub(btcPrice)
}

// YearsToExpiry is the option lifetime left at now, as a fraction of a
// 365-day year. Zero once expired.
func (o Option) YearsToExpiry(now time.Time) float64 {
	if !o.Expiry.After(now) {
		return 0
	}
	return o.Expiry.Sub(now).Seconds() / (86400.0 * 365.0)
}

// ARR models a short out-of-the-money option as a loan and returns its
// annualized rate of return: premium received over collateral locked,
// compounded over the remaining lifetime.
func (o Option) ARR(now time.Time, btcPrice, optPrice Price) float64 {
	yte := o.YearsToExpiry(now)
	if yte <= 0 {
		panic(fmt.Sprintf("computing ARR for %s at %s after expiry", o, now))
	}
	var collateral Price
	if o.PC == Put {
		collateral = o.Strike
	} else {
		collateral = btcPrice
	}
	return math.Pow(1+optPrice.Ratio(collateral), 1/yte) - 1
}

// CSVName renders the 2022-format contract name, e.g.
// "BTC-Mini-04FEB2022-40000-Call".
func (o Option) CSVName(u Underlying) string {
	return fmt.Sprintf("%s-Mini-%02d%s%d-%d-%s",
		u,
		o.Expiry.Day(),
		strings.ToUpper(o.Expiry.Format("Jan")),
		o.Expiry.Year(),
		o.Strike.Dec().IntPart(),
		o.PC,
	)
}
