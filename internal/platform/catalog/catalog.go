// Package catalog loads the level catalog from a TOML file.
package catalog

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/core/policy"
)

type file struct {
	Levels []domain.Level `toml:"levels"`
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) ([]domain.Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a catalog and returns its levels ordered by level number.
// Prices are written as strings so they decode exactly.
func Load(r io.Reader) ([]domain.Level, error) {
	var doc file
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode level catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown catalog keys %v", apperrors.ErrValidation, undecoded)
	}
	if len(doc.Levels) == 0 {
		return nil, fmt.Errorf("%w: catalog has no levels", apperrors.ErrValidation)
	}

	seen := make(map[int]struct{}, len(doc.Levels))
	for _, l := range doc.Levels {
		if l.Level < 1 {
			return nil, fmt.Errorf("%w: level number must be positive, got %d", apperrors.ErrInvalidLevel, l.Level)
		}
		if _, dup := seen[l.Level]; dup {
			return nil, fmt.Errorf("%w: level %d listed twice", apperrors.ErrInvalidLevel, l.Level)
		}
		seen[l.Level] = struct{}{}
		if l.Name == "" {
			return nil, fmt.Errorf("%w: level %d has no name", apperrors.ErrInvalidLevel, l.Level)
		}
		if err := policy.ValidateAmount(l.Price); err != nil {
			return nil, fmt.Errorf("level %d price: %w", l.Level, err)
		}
		if l.CommissionPercent.IsNegative() {
			return nil, fmt.Errorf("%w: level %d commission percent is negative", apperrors.ErrInvalidLevel, l.Level)
		}
	}

	sort.Slice(doc.Levels, func(i, j int) bool { return doc.Levels[i].Level < doc.Levels[j].Level })
	return doc.Levels, nil
}
