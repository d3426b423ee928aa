package core

import (
	"errors"
	"strings"
)

// Frequency is the closed set of recurrence schedules a transaction can have.
const (
	Once         Frequency = "once"
	Monthly      Frequency = "monthly"
	Yearly       Frequency = "yearly"
	Biweekly     Frequency = "biweekly"
	TwiceMonthly Frequency = "twice_monthly"
)

type (
	Frequency string

	// Category groups expenses for reporting. Incomes are not categorized;
	// they carry a free-text source instead.
	Category struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	// Expense is a recurring or one-time outgoing transaction.
	Expense struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name"`
		Amount     Money     `json:"amount"`
		AnchorDate Date      `json:"anchorDate"`
		Frequency  Frequency `json:"frequency"`
		CategoryID int64     `json:"categoryId"`
	}

	// Income is a recurring or one-time incoming transaction.
	Income struct {
		ID         int64     `json:"id"`
		Name       string    `json:"name"`
		Amount     Money     `json:"amount"`
		AnchorDate Date      `json:"anchorDate"`
		Frequency  Frequency `json:"frequency"`
		Source     string    `json:"source"`
	}
)

// Transaction is the shape the recurrence engine needs from both expenses
// and incomes: an anchor date, a frequency and an amount.
type Transaction interface {
	Key() int64
	Label() string
	Money() Money
	Anchor() Date
	Repeats() Frequency
}

func (e Expense) Key() int64         { return e.ID }
func (e Expense) Label() string      { return e.Name }
func (e Expense) Money() Money       { return e.Amount }
func (e Expense) Anchor() Date       { return e.AnchorDate }
func (e Expense) Repeats() Frequency { return e.Frequency }

func (i Income) Key() int64         { return i.ID }
func (i Income) Label() string      { return i.Name }
func (i Income) Money() Money       { return i.Amount }
func (i Income) Anchor() Date       { return i.AnchorDate }
func (i Income) Repeats() Frequency { return i.Frequency }

var (
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingCategory  = errors.New("missing category")
)

// ParseFrequency normalizes a frequency string. Legacy uppercase values
// ("MONTHLY") are accepted; unknown values are an error, never a silent
// fallback to once.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Once:
		return Once, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	case Biweekly:
		return Biweekly, nil
	case TwiceMonthly:
		return TwiceMonthly, nil
	default:
		return "", ErrInvalidFrequency
	}
}

// Valid reports whether f is one of the declared frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Once, Monthly, Yearly, Biweekly, TwiceMonthly:
		return true
	default:
		return false
	}
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.AnchorDate.Validate(); err != nil {
		return err
	}
	if !e.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if e.CategoryID == 0 {
		return ErrMissingCategory
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if len(i.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if err := i.AnchorDate.Validate(); err != nil {
		return err
	}
	if !i.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}
