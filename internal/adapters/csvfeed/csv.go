package csvfeed

// csv.go — fuente histórica de barras desde CSV.
//
// Formato esperado (cabecera obligatoria): time,open,high,low,close,volume
// (se acepta tick_volume como alias de volume). La validación ocurre aquí,
// en la frontera de ingestión: una barra malformada o un timestamp no
// monotónico rechazan el archivo entero antes de que el engine vea nada.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/fxbot/internal/domain"
)

// timeLayouts son los formatos de timestamp aceptados, probados en orden.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Feed implementa ports.BarSource sobre un buffer finito de barras ya
// validadas.
type Feed struct {
	bars []domain.Bar
	next int
}

// Open lee y valida el archivo CSV completo.
func Open(path string) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvfeed.Open: %w", err)
	}
	defer f.Close()

	bars, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("csvfeed.Open: %q: %w", path, err)
	}
	return &Feed{bars: bars}, nil
}

// FromBars crea un feed sobre barras ya materializadas. Valida orden y
// consistencia igual que Open.
func FromBars(bars []domain.Bar) (*Feed, error) {
	var last time.Time
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("csvfeed.FromBars: bar %d: %w", i, err)
		}
		if !last.IsZero() && !b.Time.After(last) {
			return nil, fmt.Errorf("csvfeed.FromBars: bar %d: %w", i, domain.ErrNonMonotonic)
		}
		last = b.Time
	}
	return &Feed{bars: bars}, nil
}

// Next devuelve la siguiente barra del buffer. No bloquea: una fuente
// histórica agotada termina el stream.
func (f *Feed) Next(_ context.Context) (domain.Bar, bool, error) {
	if f.next >= len(f.bars) {
		return domain.Bar{}, false, nil
	}
	b := f.bars[f.next]
	f.next++
	return b, true, nil
}

// Len devuelve el total de barras cargadas.
func (f *Feed) Len() int {
	return len(f.bars)
}

// parse lee el CSV entero validando cada fila contra la anterior.
func parse(r io.Reader) ([]domain.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []domain.Bar
	var last time.Time
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := bar.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !last.IsZero() && !bar.Time.After(last) {
			return nil, fmt.Errorf("line %d: %w", line, domain.ErrNonMonotonic)
		}
		last = bar.Time
		bars = append(bars, bar)
	}
	return bars, nil
}

// columns son los índices de cada campo en el CSV.
type columns struct {
	time, open, high, low, close, volume int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time", "timestamp", "datetime":
			cols.time = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume", "tick_volume":
			cols.volume = i
		}
	}
	if cols.time < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 {
		return cols, fmt.Errorf("%w: header missing required columns (time,open,high,low,close)", domain.ErrMalformedBar)
	}
	return cols, nil
}

func parseBar(record []string, cols columns) (domain.Bar, error) {
	t, err := parseTimestamp(record[cols.time])
	if err != nil {
		return domain.Bar{}, err
	}

	open, err := parsePrice(record[cols.open], "open")
	if err != nil {
		return domain.Bar{}, err
	}
	high, err := parsePrice(record[cols.high], "high")
	if err != nil {
		return domain.Bar{}, err
	}
	low, err := parsePrice(record[cols.low], "low")
	if err != nil {
		return domain.Bar{}, err
	}
	closePx, err := parsePrice(record[cols.close], "close")
	if err != nil {
		return domain.Bar{}, err
	}

	volume := 0.0
	if cols.volume >= 0 && cols.volume < len(record) {
		volume, err = strconv.ParseFloat(strings.TrimSpace(record[cols.volume]), 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%w: volume %q", domain.ErrMalformedBar, record[cols.volume])
		}
	}

	return domain.Bar{Time: t, Open: open, High: high, Low: low, Close: closePx, Volume: volume}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", domain.ErrMalformedBar, s)
}

func parsePrice(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrMalformedBar, field, s)
	}
	return v, nil
}
