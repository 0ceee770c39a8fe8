package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/newthinker/holdings/internal/storage/blob"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of one investor's filings.
type document struct {
	Slug      string        `json:"slug" yaml:"slug"`
	Name      string        `json:"name" yaml:"name"`
	Snapshots []snapshotDoc `json:"snapshots" yaml:"snapshots" validate:"dive"`
}

type snapshotDoc struct {
	Quarter   string        `json:"quarter" yaml:"quarter" validate:"required_without=AsOf"`
	AsOf      string        `json:"as_of" yaml:"as_of"`
	Positions []positionDoc `json:"positions" yaml:"positions" validate:"dive"`
}

type positionDoc struct {
	Identifier string  `json:"identifier" yaml:"identifier" validate:"required_without_all=Ticker Name"`
	Ticker     string  `json:"ticker" yaml:"ticker"`
	Name       string  `json:"name" yaml:"name"`
	Shares     int64   `json:"shares" yaml:"shares" validate:"gte=0"`
	Value      float64 `json:"value" yaml:"value" validate:"gte=0"`
}

// Loader reads investor documents from a bucket.
type Loader struct {
	bucket   blob.Bucket
	prefix   string
	logger   *zap.Logger
	validate *validator.Validate
}

// NewLoader creates a loader reading every document under prefix.
func NewLoader(bucket blob.Bucket, prefix string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load reads, validates and indexes all investor documents.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	paths, err := l.bucket.List(ctx, l.prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrLoadFailed, fmt.Errorf("listing %q: %w", l.prefix, err))
	}

	var histories []core.InvestorHistory
	for _, p := range paths {
		if !isDocument(p) {
			l.logger.Debug("skipping non-document file", zap.String("path", p))
			continue
		}

		data, err := l.bucket.Read(ctx, p)
		if err != nil {
			return nil, core.WrapError(core.ErrLoadFailed, fmt.Errorf("reading %s: %w", p, err))
		}

		h, err := l.decode(p, data)
		if err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}

	s, err := New(histories)
	if err != nil {
		return nil, err
	}

	l.logger.Info("snapshot store loaded",
		zap.Int("investors", s.Len()),
		zap.Int("active", len(s.Active())),
		zap.Int("snapshots", s.SnapshotCount()),
	)
	return s, nil
}

// Decode parses a single JSON or YAML document into an investor history.
func Decode(name string, data []byte) (core.InvestorHistory, error) {
	return NewLoader(nil, "", nil).decode(name, data)
}

func (l *Loader) decode(name string, data []byte) (core.InvestorHistory, error) {
	var doc document
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return core.InvestorHistory{}, core.WrapError(core.ErrLoadFailed, fmt.Errorf("parsing %s: %w", name, err))
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return core.InvestorHistory{}, core.WrapError(core.ErrLoadFailed, fmt.Errorf("parsing %s: %w", name, err))
		}
	}

	if err := l.validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return core.InvestorHistory{}, core.WrapError(core.ErrInvariantViolation, fmt.Errorf("%s: %w", name, verrs))
		}
		return core.InvestorHistory{}, core.WrapError(core.ErrLoadFailed, fmt.Errorf("%s: %w", name, err))
	}

	if doc.Slug == "" {
		base := path.Base(name)
		doc.Slug = strings.TrimSuffix(base, path.Ext(base))
	}

	return doc.toHistory()
}

func (d document) toHistory() (core.InvestorHistory, error) {
	h := core.InvestorHistory{
		Slug:      d.Slug,
		Name:      d.Name,
		Snapshots: make([]core.Snapshot, 0, len(d.Snapshots)),
	}

	for _, sd := range d.Snapshots {
		snap := core.Snapshot{Positions: make([]core.Position, 0, len(sd.Positions))}
		if sd.AsOf != "" {
			asOf, err := time.Parse("2006-01-02", sd.AsOf)
			if err != nil {
				return h, core.WrapError(core.ErrInvariantViolation, fmt.Errorf("%s: as_of %q: %w", d.Slug, sd.AsOf, err))
			}
			snap.AsOfDate = asOf
		}

		// as_of is the filing date, which follows the reported quarter's end.
		// Without a label the snapshot reports the quarter before the filing.
		if sd.Quarter == "" {
			snap.Quarter = core.QuarterOf(snap.AsOfDate).Prev()
		} else {
			q, err := core.ParseQuarter(sd.Quarter)
			if err != nil {
				return h, core.WrapError(core.ErrInvariantViolation, fmt.Errorf("%s: %w", d.Slug, err))
			}
			snap.Quarter = q
		}

		for _, pd := range sd.Positions {
			snap.Positions = append(snap.Positions, pd.toPosition())
		}
		h.Snapshots = append(h.Snapshots, snap)
	}

	// Document order is irrelevant; duplicates survive sorting and are
	// rejected by Validate.
	slices.SortStableFunc(h.Snapshots, func(a, b core.Snapshot) int {
		return a.Quarter.Compare(b.Quarter)
	})
	return h, nil
}

func (pd positionDoc) toPosition() core.Position {
	p := core.Position{
		Identifier: strings.TrimSpace(pd.Identifier),
		Ticker:     strings.TrimSpace(pd.Ticker),
		Name:       strings.TrimSpace(pd.Name),
		Shares:     pd.Shares,
		Value:      pd.Value,
	}
	if p.Identifier == "" {
		ticker := p.Ticker
		if ticker == "" {
			ticker, _ = identity.TickerFromName(p.Name)
		}
		if ticker == "" {
			ticker = strings.ToUpper(strings.Join(strings.Fields(p.Name), ""))
		}
		p.Identifier = identity.SynthesizeIdentifier(ticker)
	}
	return p
}

func isDocument(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
