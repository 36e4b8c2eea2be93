package extract

import (
	"context"
	"strings"
	"testing"
)

const sampleContract = `MASTER SERVICES AGREEMENT

Vendor: Acme Cloud Services Inc.
Total contract value: $1,500,000 payable annually.
Setup fee of $25K due on signature.
The initial term of this Agreement is 36 months.
Supplier shall maintain compliance with GDPR, SOX and ISO 27001.
Data handling must also satisfy gdpr obligations.`

func TestTextPlain(t *testing.T) {
	text, err := Text(context.Background(), []byte("hello contract"), "text/plain; charset=utf-8", "contract.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "hello contract" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextSniffsExtensionWhenMimeMissing(t *testing.T) {
	if _, err := Text(context.Background(), []byte("body"), "", "notes.md"); err != nil {
		t.Fatalf("expected .md to pass as text, got %v", err)
	}
}

func TestTextRejectsUnsupportedMime(t *testing.T) {
	_, err := Text(context.Background(), []byte{0x50, 0x4b}, "application/zip", "archive.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScanContract(t *testing.T) {
	contract := Scan(sampleContract)

	if contract.Vendor != "Acme Cloud Services Inc" {
		t.Fatalf("unexpected vendor %q", contract.Vendor)
	}
	if contract.Value != 1_500_000 {
		t.Fatalf("expected highest amount 1500000, got %v", contract.Value)
	}
	if contract.TermMonths != 36 {
		t.Fatalf("expected 36 months, got %v", contract.TermMonths)
	}
	want := []string{"GDPR", "SOX", "ISO 27001"}
	if len(contract.RegulatoryRequirements) != len(want) {
		t.Fatalf("unexpected requirements %v", contract.RegulatoryRequirements)
	}
	for i, req := range want {
		if contract.RegulatoryRequirements[i] != req {
			t.Fatalf("requirement %d: expected %q, got %q", i, req, contract.RegulatoryRequirements[i])
		}
	}
}

func TestScanYearTermAndAbbreviatedValue(t *testing.T) {
	contract := Scan("Consulting engagement worth $2.5M over a three (3) year period.")
	if contract.Value != 2_500_000 {
		t.Fatalf("expected 2500000, got %v", contract.Value)
	}
	if contract.TermMonths != 36 {
		t.Fatalf("expected 36 months from 3 year term, got %v", contract.TermMonths)
	}
}

func TestScanEmptyText(t *testing.T) {
	contract := Scan("nothing of interest here")
	if contract.Value != 0 || contract.TermMonths != 0 || contract.Vendor != "" {
		t.Fatalf("expected zero skeleton, got %+v", contract)
	}
	if len(contract.RegulatoryRequirements) != 0 {
		t.Fatalf("expected no requirements, got %v", contract.RegulatoryRequirements)
	}
}

func TestContractInputFieldNames(t *testing.T) {
	in := Contract{
		Vendor:                 "Acme",
		Value:                  500_000,
		TermMonths:             12,
		RegulatoryRequirements: []string{"GDPR"},
	}.Input()

	if in["vendor"] != "Acme" || in["value"] != 500_000.0 || in["term_months"] != 12.0 {
		t.Fatalf("unexpected input %+v", in)
	}
	reqs, ok := in["regulatory_requirements"].([]any)
	if !ok || len(reqs) != 1 || reqs[0] != "GDPR" {
		t.Fatalf("unexpected requirements %+v", in["regulatory_requirements"])
	}
}
