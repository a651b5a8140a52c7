package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"0.5", 50, false},
		{"1450", 145000, false},
		{"-450.75", -45075, false},
		{".99", 99, false},
		{"", 0, true},
		{"12.345", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{145000, "1450.00"},
		{99, "0.99"},
		{-45075, "-450.75"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Decimal(); got != tt.want {
			t.Errorf("Money{%d}.Decimal() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Amount:      Money{Cents: 1200},
		Category:    Food,
		Date:        NewDate(2025, 4, 1),
		Description: "groceries",
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"valid one-off", func(e *Expense) {}, nil},
		{"zero amount allowed", func(e *Expense) { e.Amount = Money{} }, nil},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -1} }, ErrNegativeAmount},
		{"unknown category", func(e *Expense) { e.Category = "gadgets" }, ErrUnknownCategory},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"recurring without frequency", func(e *Expense) {
			e.IsRecurring = true
			e.NextDueDate = NewDate(2025, 5, 1)
		}, ErrInvalidFrequency},
		{"recurring without next due date", func(e *Expense) {
			e.IsRecurring = true
			e.Frequency = MonthlyCadence
		}, ErrMissingNextDueDate},
		{"valid recurring", func(e *Expense) {
			e.IsRecurring = true
			e.Frequency = MonthlyCadence
			e.NextDueDate = NewDate(2025, 5, 1)
			e.BaseAmount = e.Amount
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebtValidate(t *testing.T) {
	valid := Debt{
		Name:      "car loan",
		Amount:    Money{Cents: 1000000},
		Remaining: Money{Cents: 400000},
		Type:      Loan,
		DueDate:   NewDate(2025, 6, 15),
	}

	tests := []struct {
		name    string
		mutate  func(*Debt)
		wantErr error
	}{
		{"valid loan", func(d *Debt) {}, nil},
		{"remaining equals total", func(d *Debt) { d.Remaining = d.Amount }, nil},
		{"remaining over total", func(d *Debt) { d.Remaining = Money{Cents: d.Amount.Cents + 1} }, ErrRemainingOverTotal},
		{"empty name", func(d *Debt) { d.Name = "  " }, ErrEmptyName},
		{"bad type", func(d *Debt) { d.Type = "mortgage" }, ErrInvalidDebtType},
		{"closing date on loan", func(d *Debt) { d.ClosingDate = NewDate(2025, 6, 1) }, ErrClosingDateNotCard},
		{"closing date on credit card", func(d *Debt) {
			d.Type = CreditCard
			d.ClosingDate = NewDate(2025, 6, 1)
		}, nil},
		{"missing due date", func(d *Debt) { d.DueDate = Date{} }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllCategoriesIsFixed(t *testing.T) {
	cats := AllCategories()
	want := []Category{Food, Transport, Home, Health, Shopping, Entertainment, Other}
	if len(cats) != len(want) {
		t.Fatalf("AllCategories() returned %d categories, want %d", len(cats), len(want))
	}
	for i, c := range want {
		if cats[i] != c {
			t.Errorf("AllCategories()[%d] = %q, want %q", i, cats[i], c)
		}
	}
}

func TestCategoryMetadata(t *testing.T) {
	info, ok := CategoryMetadata(Food)
	if !ok {
		t.Fatal("CategoryMetadata(Food) not found")
	}
	if info.Color != "#f471b5" || info.Icon != "utensils" {
		t.Errorf("CategoryMetadata(Food) = %+v", info)
	}
	if _, ok := CategoryMetadata("gadgets"); ok {
		t.Error("CategoryMetadata accepted an unknown category")
	}
}
