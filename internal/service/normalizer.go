package service

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/vanshika/wealthnet/internal/domain"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// normalizeSector produces the lowercase, hyphenated form used by filters.
func normalizeSector(sector string) string {
	sector = sanitizeString(strings.ToLower(sector))
	return strings.ReplaceAll(sector, " ", "-")
}

// normalizeCIN uppercases a corporate identity number and drops separators.
func normalizeCIN(cin string) string {
	return strings.ToUpper(nonAlnumRegex.ReplaceAllString(cin, ""))
}

// hashValue returns a deterministic SHA-256 hash for the provided value.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// normalizeNode canonicalises free-text fields before storage.
func normalizeNode(n domain.Node) domain.Node {
	n.ID = strings.TrimSpace(n.ID)
	n.Label = sanitizeString(n.Label)
	switch p := n.Properties.(type) {
	case domain.PersonProperties:
		p.Email = normalizeEmail(p.Email)
		p.Sector = normalizeSector(p.Sector)
		p.Designation = sanitizeString(p.Designation)
		n.Properties = p
	case domain.CompanyProperties:
		p.CIN = normalizeCIN(p.CIN)
		p.Sector = normalizeSector(p.Sector)
		n.Properties = p
	case domain.RMProperties:
		p.Email = normalizeEmail(p.Email)
		n.Properties = p
	case domain.NetworkProperties:
		p.Category = sanitizeString(p.Category)
		n.Properties = p
	}
	if n.Metadata != nil {
		linked := strings.TrimSpace(n.Metadata.LinkedClientID)
		if linked == "" {
			n.Metadata = nil
		} else {
			n.Metadata = &domain.NodeMetadata{LinkedClientID: linked}
		}
	}
	return n
}

// normalizeEdge trims endpoints and derives a stable id when none is given.
func normalizeEdge(e domain.Edge) domain.Edge {
	e.Source = strings.TrimSpace(e.Source)
	e.Target = strings.TrimSpace(e.Target)
	e.Label = sanitizeString(e.Label)
	if strings.TrimSpace(e.ID) == "" {
		e.ID = "e-" + hashValue(e.Source+"|"+string(e.Type)+"|"+e.Target)[:16]
	}
	return e
}
