package models

import "testing"

func TestNormalize(t *testing.T) {
	s := FundamentalsSnapshot{
		Ticker:          " acme ",
		InterestExpense: Float(-12),
		Capex:           -15,
		ChangeInWC:      7,
	}.Normalize()

	if s.Ticker != "ACME" || s.CompanyName != "ACME" {
		t.Errorf("Expected ticker and name ACME, got %q %q", s.Ticker, s.CompanyName)
	}
	if s.InterestExpense == nil || *s.InterestExpense != 12 {
		t.Errorf("Expected interest expense magnitude 12, got %v", s.InterestExpense)
	}
	if s.Capex != 15 {
		t.Errorf("Expected capex magnitude 15, got %f", s.Capex)
	}
	if s.ChangeInWC != 0 {
		t.Errorf("Expected change in working capital 0, got %f", s.ChangeInWC)
	}
}

func TestNormalize_DoesNotAliasInterest(t *testing.T) {
	interest := Float(-3)
	s := FundamentalsSnapshot{InterestExpense: interest}.Normalize()
	if *interest != -3 {
		t.Errorf("Expected input snapshot untouched, got %f", *interest)
	}
	if *s.InterestExpense != 3 {
		t.Errorf("Expected 3, got %f", *s.InterestExpense)
	}

	if (FundamentalsSnapshot{}).Normalize().InterestExpense != nil {
		t.Error("Expected absent interest expense to stay nil")
	}
}
