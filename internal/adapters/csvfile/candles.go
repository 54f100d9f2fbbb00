package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/sniperbot/internal/domain"
)

// WriteCandles vuelca s con la cabecera estándar open_time,open,high,low,close,volume.
// Los precios se redondean a 2 decimales y el volumen a 4.
func WriteCandles(w io.Writer, s domain.Series) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(domain.AllColumns))
	for i, col := range domain.AllColumns {
		header[i] = string(col)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		c := s.At(i)
		if err := cw.Write([]string{
			formatTime(c.OpenTime),
			decimal.NewFromFloat(c.Open).StringFixed(2),
			decimal.NewFromFloat(c.High).StringFixed(2),
			decimal.NewFromFloat(c.Low).StringFixed(2),
			decimal.NewFromFloat(c.Close).StringFixed(2),
			decimal.NewFromFloat(c.Volume).StringFixed(4),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCandlesFile crea (o trunca) path y escribe s.
func WriteCandlesFile(path string, s domain.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvfile.WriteCandlesFile: %w", err)
	}
	if err := WriteCandles(f, s); err != nil {
		f.Close()
		return fmt.Errorf("csvfile.WriteCandlesFile: %w", err)
	}
	return f.Close()
}
