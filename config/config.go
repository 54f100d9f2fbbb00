package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/sniperbot/internal/domain"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig controla qué se backtestea y con qué umbrales.
type BacktestConfig struct {
	Symbol   string         `yaml:"symbol"`
	Symbols  []string       `yaml:"symbols"` // si no está vacío, se ejecuta un backtest por símbolo
	Interval string         `yaml:"interval"`
	Limit    int            `yaml:"limit"` // velas a descargar
	CSV      string         `yaml:"csv"`   // si se indica, se lee de fichero en lugar de la API
	Workers  int            `yaml:"workers"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
}

// StrategyConfig son los umbrales del filtro BOS+FVG.
type StrategyConfig struct {
	MinBOSStrength     float64 `yaml:"min_bos_strength"`
	ConfirmLookahead   int     `yaml:"confirm_lookahead"` // posiciones de señal, no velas
	MinGapPct          float64 `yaml:"min_gap_pct"`       // fracción: 0.005 = 0.5%
	MinBodyRatio       float64 `yaml:"min_body_ratio"`
	MinSpacing         int     `yaml:"min_spacing"`
	CounterTrendWindow int     `yaml:"counter_trend_window"`
}

// RiskConfig son las distancias fijas de SL/TP y la ventana de simulación.
type RiskConfig struct {
	StopDistance   float64 `yaml:"stop_distance"`
	RewardDistance float64 `yaml:"reward_distance"`
	Lookahead      int     `yaml:"lookahead"`
}

// APIConfig contiene el endpoint de Bybit.
type APIConfig struct {
	BybitBase string `yaml:"bybit_base"`
	Category  string `yaml:"category"` // linear | spot | inverse
}

// StorageConfig controla dónde se persisten los resultados.
type StorageConfig struct {
	Driver     string `yaml:"driver"`      // sqlite | postgres
	DSN        string `yaml:"dsn"`         // ruta SQLite, ":memory:" o DSN de Postgres
	TradeLog   string `yaml:"trade_log"`   // CSV append-only de trades ("" = desactivado)
	SummaryCSV string `yaml:"summary_csv"` // CSV append-only de resúmenes ("" = desactivado)
}

// CacheConfig controla la cache Redis de velas. Addr vacío la desactiva.
type CacheConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML (opcional si path es "")
// y el archivo .env si existe. Las variables de entorno tienen prioridad sobre el YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Strategy convierte los umbrales al tipo de dominio.
func (c *Config) Strategy() domain.FilterConfig {
	s := c.Backtest.Strategy
	return domain.FilterConfig{
		MinBOSStrength:     s.MinBOSStrength,
		ConfirmLookahead:   s.ConfirmLookahead,
		MinGapPct:          s.MinGapPct,
		MinBodyRatio:       s.MinBodyRatio,
		MinSpacing:         s.MinSpacing,
		CounterTrendWindow: s.CounterTrendWindow,
	}
}

// Risk convierte la configuración de riesgo al tipo de dominio.
func (c *Config) Risk() domain.RiskConfig {
	r := c.Backtest.Risk
	return domain.RiskConfig{
		StopDistance:   r.StopDistance,
		RewardDistance: r.RewardDistance,
		Lookahead:      r.Lookahead,
	}
}

// CacheTTL devuelve el TTL de la cache de velas.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// defaults parte de los umbrales de referencia; el YAML solo pisa lo que declara,
// así un 0 explícito (p.ej. min_gap_pct: 0) se respeta.
func defaults() Config {
	f := domain.DefaultFilterConfig()
	r := domain.DefaultRiskConfig()
	return Config{
		Backtest: BacktestConfig{
			Symbol:   "BTCUSDT",
			Interval: "5m",
			Limit:    200,
			Strategy: StrategyConfig{
				MinBOSStrength:     f.MinBOSStrength,
				ConfirmLookahead:   f.ConfirmLookahead,
				MinGapPct:          f.MinGapPct,
				MinBodyRatio:       f.MinBodyRatio,
				MinSpacing:         f.MinSpacing,
				CounterTrendWindow: f.CounterTrendWindow,
			},
			Risk: RiskConfig{
				StopDistance:   r.StopDistance,
				RewardDistance: r.RewardDistance,
				Lookahead:      r.Lookahead,
			},
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			DSN:        "sniperbot.db",
			TradeLog:   "trade_log.csv",
			SummaryCSV: "summary.csv",
		},
		Cache:  CacheConfig{TTLSeconds: 300},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("OHLCV_CSV"); v != "" {
		cfg.Backtest.CSV = v
	}
	if v := os.Getenv("BYBIT_BASE_URL"); v != "" {
		cfg.API.BybitBase = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	b := &cfg.Backtest
	b.Symbol = strings.ToUpper(strings.TrimSpace(b.Symbol))
	if b.Symbol == "" {
		b.Symbol = "BTCUSDT"
	}
	for i, s := range b.Symbols {
		b.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if b.Interval == "" {
		b.Interval = "5m"
	}
	if b.Limit <= 0 {
		b.Limit = 200
	}
	if b.Workers < 0 {
		b.Workers = 0
	}
	if b.Strategy.ConfirmLookahead < 0 {
		b.Strategy.ConfirmLookahead = 0
	}
	if b.Strategy.MinSpacing < 0 {
		b.Strategy.MinSpacing = 0
	}
	if b.Strategy.CounterTrendWindow < 0 {
		b.Strategy.CounterTrendWindow = 0
	}
	if b.Risk.StopDistance <= 0 {
		b.Risk.StopDistance = domain.DefaultRiskConfig().StopDistance
	}
	if b.Risk.RewardDistance <= 0 {
		b.Risk.RewardDistance = domain.DefaultRiskConfig().RewardDistance
	}
	if b.Risk.Lookahead <= 0 {
		b.Risk.Lookahead = domain.DefaultRiskConfig().Lookahead
	}
	if cfg.API.BybitBase == "" {
		cfg.API.BybitBase = "https://api.bybit.com"
	}
	if cfg.API.Category == "" {
		cfg.API.Category = "linear"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
