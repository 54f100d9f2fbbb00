package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

// aliases acepta nombres de columna alternativos habituales en exports OHLCV.
var aliases = map[string]domain.Column{
	"timestamp": domain.ColOpenTime,
	"time":      domain.ColOpenTime,
	"date":      domain.ColOpenTime,
	"o":         domain.ColOpen,
	"h":         domain.ColHigh,
	"l":         domain.ColLow,
	"c":         domain.ColClose,
	"v":         domain.ColVolume,
}

// timeLayouts son los formatos ISO aceptados para open_time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Loader lee velas OHLCV de un fichero CSV local. Implementa ports.CandleSource.
type Loader struct {
	path string
}

// NewLoader crea un Loader para path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// FetchCandles carga el fichero completo; q solo se usa para logging.
func (l *Loader) FetchCandles(_ context.Context, q ports.CandleQuery) (domain.Series, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.Series{}, fmt.Errorf("csvfile.FetchCandles: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return domain.Series{}, fmt.Errorf("csvfile.FetchCandles %s: %w", l.path, err)
	}
	slog.Debug("loaded candles from csv",
		"path", l.path,
		"symbol", q.Symbol,
		"candles", s.Len(),
		"missing", s.Missing(),
	)
	return s, nil
}

// Load parsea un CSV con cabecera. Las columnas se localizan por nombre;
// las que falten se declaran como ausentes en la Series en lugar de fallar.
// Sin open_time, el orden de las filas define el orden de la serie.
func Load(r io.Reader) (domain.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.NewSeries(nil), nil
	}
	if err != nil {
		return domain.Series{}, fmt.Errorf("read header: %w", err)
	}

	idx := columnIndex(header)
	var missing []domain.Column
	for _, col := range domain.AllColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}

	var candles []domain.Candle
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		c, err := parseRecord(rec, idx, len(candles))
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	return domain.NewSeries(candles, missing...), nil
}

func columnIndex(header []string) map[domain.Column]int {
	idx := make(map[domain.Column]int, len(header))
	known := make(map[domain.Column]bool, len(domain.AllColumns))
	for _, col := range domain.AllColumns {
		known[col] = true
	}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		col := domain.Column(name)
		if !known[col] {
			alias, ok := aliases[name]
			if !ok {
				continue
			}
			col = alias
		}
		if _, dup := idx[col]; !dup {
			idx[col] = i
		}
	}
	return idx
}

func parseRecord(rec []string, idx map[domain.Column]int, row int) (domain.Candle, error) {
	var c domain.Candle
	field := func(col domain.Column) (string, bool) {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	if v, ok := field(domain.ColOpenTime); ok {
		t, err := ParseTime(v)
		if err != nil {
			return c, err
		}
		c.OpenTime = t
	} else {
		c.OpenTime = time.UnixMilli(int64(row)).UTC()
	}

	targets := []struct {
		col domain.Column
		dst *float64
	}{
		{domain.ColOpen, &c.Open},
		{domain.ColHigh, &c.High},
		{domain.ColLow, &c.Low},
		{domain.ColClose, &c.Close},
		{domain.ColVolume, &c.Volume},
	}
	for _, t := range targets {
		v, ok := field(t.col)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, fmt.Errorf("column %s: invalid number %q", t.col, v)
		}
		*t.dst = f
	}
	return c, nil
}

// ParseTime acepta epoch en milisegundos o una fecha ISO 8601.
// Las fechas sin zona se interpretan en UTC.
func ParseTime(v string) (time.Time, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
