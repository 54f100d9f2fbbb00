package domain

// DetectFairValueGaps marca cada índice interior con el FVG formado por sus vecinos.
//
// Para 1 <= i <= N-2 compara la vela i-1 con la i+1; la vela i no se inspecciona.
//   - low[i+1]  > high[i-1] → bullish, gap = low[i+1] - high[i-1]
//   - high[i+1] < low[i-1]  → bearish, gap = low[i-1] - high[i+1]
//
// Los índices 0 y N-1 nunca forman ventana. Series con menos de 3 velas o sin
// columnas high/low devuelven una anotación degradada sin error.
func DetectFairValueGaps(s Series) Annotation {
	n := s.Len()
	if !s.HasColumns(ColHigh, ColLow) {
		return emptyAnnotation(KindFVG, n, DegradeMissingColumns)
	}
	if n < 3 {
		return emptyAnnotation(KindFVG, n, DegradeTooShort)
	}

	out := emptyAnnotation(KindFVG, n, DegradeNone)
	for i := 1; i < n-1; i++ {
		prev, next := s.At(i-1), s.At(i+1)
		switch {
		case next.Low > prev.High:
			out.Labels[i] = LabelBullish
			out.Magnitudes[i] = next.Low - prev.High
		case next.High < prev.Low:
			out.Labels[i] = LabelBearish
			out.Magnitudes[i] = prev.Low - next.High
		}
	}
	return out
}
