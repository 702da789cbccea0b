package domain

import (
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  bool
	}{
		{"12.50", 1250, false},
		{"12,50", 1250, false},
		{" 7 ", 700, false},
		{"$3.999", 400, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12abc", 0, true},
		{"-1", 0, true},
		{"NaN", 0, true},
		{"1e12", 0, true},
		{"9.3e16", 0, true},
		{"1e19", 0, true},
		{"99999999.99", 9999999999, false},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if tt.err {
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("ParsePrice(%q) err = %v, want ErrInvalidPrice", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePrice(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestProduct_PriceInput(t *testing.T) {
	if got := (Product{PriceCents: 1205}).PriceInput(); got != "12.05" {
		t.Errorf("PriceInput = %q, want 12.05", got)
	}
}

func TestProduct_Validate(t *testing.T) {
	if err := (&Product{Name: "  "}).Validate(); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank name err = %v", err)
	}
	if err := (&Product{Name: "Ceviche", PriceCents: -5}).Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price err = %v", err)
	}
	if err := (&Product{Name: "Ceviche", Stock: -1}).Validate(); err == nil {
		t.Error("negative stock should fail")
	}
	if err := (&Product{Name: "Ceviche", PriceCents: 1500}).Validate(); err != nil {
		t.Errorf("valid product err = %v", err)
	}
}

func TestCategory_NormalizeAndValidate(t *testing.T) {
	c := &Category{Name: "  Entradas "}
	c.Normalize()
	if c.Name != "Entradas" {
		t.Errorf("Name = %q", c.Name)
	}
	if err := (&Category{}).Validate(); !errors.Is(err, ErrNameRequired) {
		t.Errorf("empty category err = %v", err)
	}
}

func TestGroupByCategory(t *testing.T) {
	cats := []Category{{ID: "c2", Name: "Postres"}, {ID: "c1", Name: "Entradas"}}
	prods := []Product{
		{ID: "p1", CategoryID: "c1", Name: "Ceviche"},
		{ID: "p2", CategoryID: "c2", Name: "Flan"},
		{ID: "p3", CategoryID: "", Name: "Suelto"},
		{ID: "p4", CategoryID: "c1", Name: "Tiradito"},
	}
	got := GroupByCategory(cats, prods)
	if len(got) != 2 {
		t.Fatalf("sections = %d, want 2", len(got))
	}
	if got[0].Category.ID != "c2" || len(got[0].Items) != 1 || got[0].Items[0].ID != "p2" {
		t.Errorf("first section = %+v", got[0])
	}
	if len(got[1].Items) != 2 || got[1].Items[0].ID != "p1" || got[1].Items[1].ID != "p4" {
		t.Errorf("second section items = %+v", got[1].Items)
	}
}
