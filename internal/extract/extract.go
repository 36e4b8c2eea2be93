// Package extract turns uploaded contract documents (PDF or plain
// text) into an input skeleton for the contracts agent: detected
// monetary value, term length, and regulatory requirement mentions.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"agents-backend/internal/engine"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

// Text extracts plain text from an uploaded document payload.
func Text(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeMimeType(mimeType, fileName) {
	case mimePDF:
		return extractPDF(data)
	case mimeText:
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}

// Contract is the skeleton scanned out of a contract document. Fields
// the scan could not find stay at their zero value; the contracts agent
// applies its own defaults on top.
type Contract struct {
	Vendor                 string   `json:"vendor,omitempty"`
	Value                  float64  `json:"value,omitempty"`
	TermMonths             float64  `json:"termMonths,omitempty"`
	RegulatoryRequirements []string `json:"regulatoryRequirements"`
}

// Input converts the skeleton into the contracts agent's field names.
func (c Contract) Input() engine.Input {
	in := engine.Input{}
	if c.Vendor != "" {
		in["vendor"] = c.Vendor
	}
	if c.Value > 0 {
		in["value"] = c.Value
	}
	if c.TermMonths > 0 {
		in["term_months"] = c.TermMonths
	}
	if len(c.RegulatoryRequirements) > 0 {
		reqs := make([]any, len(c.RegulatoryRequirements))
		for i, r := range c.RegulatoryRequirements {
			reqs[i] = r
		}
		in["regulatory_requirements"] = reqs
	}
	return in
}

var (
	// $1,500,000 / $2.5M / $750K
	moneyRe = regexp.MustCompile(`(?i)\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(million|mm|m|k)?`)
	// "36 months" / "3 years" / "three (3) year"
	termMonthsRe = regexp.MustCompile(`(?i)([0-9]+)\s*(?:\([0-9]+\)\s*)?month`)
	termYearsRe  = regexp.MustCompile(`(?i)(?:\(([0-9]+)\)|([0-9]+))\s*year`)
	vendorRe     = regexp.MustCompile(`(?i)(?:vendor|supplier|contractor|provider)\s*[:\-]\s*([A-Z][A-Za-z0-9&.,' ]{2,60})`)
)

var regulatoryKeywords = []string{"GDPR", "SOX", "HIPAA", "PCI-DSS", "PCI DSS", "CCPA", "ISO 27001", "FedRAMP", "SOC 2"}

// Scan pulls contract fields out of extracted text. The highest dollar
// amount wins as the contract value.
func Scan(text string) Contract {
	contract := Contract{RegulatoryRequirements: []string{}}

	for _, m := range moneyRe.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "million", "mm", "m":
			value *= 1_000_000
		case "k":
			value *= 1_000
		}
		if value > contract.Value {
			contract.Value = value
		}
	}

	if m := termMonthsRe.FindStringSubmatch(text); m != nil {
		if months, err := strconv.ParseFloat(m[1], 64); err == nil {
			contract.TermMonths = months
		}
	} else if m := termYearsRe.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if years, err := strconv.ParseFloat(raw, 64); err == nil {
			contract.TermMonths = years * 12
		}
	}

	if m := vendorRe.FindStringSubmatch(text); m != nil {
		contract.Vendor = strings.TrimRight(strings.TrimSpace(m[1]), ".,")
	}

	upper := strings.ToUpper(text)
	seen := map[string]bool{}
	for _, kw := range regulatoryKeywords {
		canonical := strings.ReplaceAll(kw, " ", "-")
		if kw == "SOC 2" {
			canonical = "SOC 2"
		}
		if kw == "ISO 27001" {
			canonical = "ISO 27001"
		}
		if strings.Contains(upper, strings.ToUpper(kw)) && !seen[canonical] {
			seen[canonical] = true
			contract.RegulatoryRequirements = append(contract.RegulatoryRequirements, canonical)
		}
	}

	return contract
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func normalizeMimeType(mimeType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case mimePDF, mimeText:
		return clean
	case "":
		// fall through to extension sniffing
	default:
		if strings.HasPrefix(clean, "text/") {
			return mimeText
		}
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".txt", ".md":
		return mimeText
	}
	return clean
}
