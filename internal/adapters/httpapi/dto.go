package httpapi

import (
	"time"

	"github.com/alejandrodnm/sniperbot/internal/domain"
	"github.com/alejandrodnm/sniperbot/internal/ports"
)

type summaryDTO struct {
	Total   int     `json:"total"`
	TP      int     `json:"tp"`
	SL      int     `json:"sl"`
	TPPct   float64 `json:"tp_pct"`
	SLPct   float64 `json:"sl_pct"`
	NetPips float64 `json:"net_pips"`
}

type tradeDTO struct {
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Price      float64   `json:"price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Result     string    `json:"result"`
	SignalType string    `json:"signal_type"`
}

type reportDTO struct {
	RunID    string     `json:"run_id"`
	Symbol   string     `json:"symbol"`
	Interval string     `json:"interval"`
	Candles  int        `json:"candles"`
	Signals  int        `json:"signals"`
	Entries  int        `json:"entries"`
	Degraded []string   `json:"degraded,omitempty"`
	Trades   []tradeDTO `json:"trades"`
	Summary  summaryDTO `json:"summary"`
}

type summaryRecordDTO struct {
	RunID     string     `json:"run_id"`
	Timestamp time.Time  `json:"timestamp"`
	Symbol    string     `json:"symbol"`
	Interval  string     `json:"interval"`
	Summary   summaryDTO `json:"summary"`
}

func toSummaryDTO(s domain.Summary) summaryDTO {
	return summaryDTO{
		Total:   s.Total,
		TP:      s.TPCount,
		SL:      s.SLCount,
		TPPct:   s.TPPct(),
		SLPct:   s.SLPct(),
		NetPips: s.NetPips,
	}
}

func toTradeDTO(t ports.TradeRecord) tradeDTO {
	return tradeDTO{
		Timestamp:  t.Timestamp.UTC(),
		Symbol:     t.Symbol,
		Direction:  string(t.Direction),
		Price:      t.Price,
		StopLoss:   t.StopLoss,
		TakeProfit: t.TakeProfit,
		Result:     string(t.Result),
		SignalType: string(t.SignalType),
	}
}

func toReportDTO(r ports.Report) reportDTO {
	out := reportDTO{
		RunID:    r.RunID,
		Symbol:   r.Symbol,
		Interval: r.Interval,
		Candles:  r.Candles,
		Signals:  r.Signals,
		Entries:  len(r.Entries),
		Trades:   make([]tradeDTO, 0, len(r.Trades)),
		Summary:  toSummaryDTO(r.Summary),
	}
	for _, d := range r.Degraded {
		out.Degraded = append(out.Degraded, d.String())
	}
	for _, t := range r.Trades {
		out.Trades = append(out.Trades, toTradeDTO(t))
	}
	return out
}

func toSummaryRecordDTO(r ports.SummaryRecord) summaryRecordDTO {
	return summaryRecordDTO{
		RunID:     r.RunID,
		Timestamp: r.Timestamp.UTC(),
		Symbol:    r.Symbol,
		Interval:  r.Interval,
		Summary:   toSummaryDTO(r.Summary),
	}
}
