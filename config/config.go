package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModePaper = "paper"
	ModeLive  = "live"
)

const (
	defaultFee         = 0.001
	defaultSlippage    = 0.002
	defaultMinEdge     = 0.0015
	defaultMinLiqQuote = 500
)

// Config es la configuración completa del bot.
type Config struct {
	Trading TradingConfig `yaml:"trading"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TradingConfig controla detección, gating y ejecución.
type TradingConfig struct {
	Mode            string   `yaml:"mode"` // paper | live
	QuoteAsset      string   `yaml:"quote_asset"`
	Bases           []string `yaml:"bases"`
	Fee             float64  `yaml:"fee"`           // taker fee por leg
	Slippage        float64  `yaml:"slippage"`      // haircut plano sobre el edge
	MinEdge         float64  `yaml:"min_edge"`      // estricto: edge > min_edge
	StartBalance    float64  `yaml:"start_balance"` // solo paper
	TradeSize       float64  `yaml:"trade_size"`
	MaxTrades       int      `yaml:"max_trades"`
	CooldownSeconds int      `yaml:"cooldown_seconds"`
	MinLiqQuote     float64  `yaml:"min_liq_quote"` // profundidad mínima en el bid de cada leg
	ExecWorkers     int      `yaml:"exec_workers"`  // 0 = inline en el path del feed
	ExecQueue       int      `yaml:"exec_queue"`
	ExecTimeoutMs   int      `yaml:"exec_timeout_ms"`
	LegTimeoutMs    int      `yaml:"leg_timeout_ms"`
}

// APIConfig contiene los endpoints del exchange. Las credenciales solo
// vienen del entorno.
type APIConfig struct {
	RESTBase            string `yaml:"rest_base"`
	StreamBase          string `yaml:"stream_base"`
	StreamsPerConn      int    `yaml:"streams_per_conn"`
	PingIntervalSeconds int    `yaml:"ping_interval_seconds"`

	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// StorageConfig controla el journal de auditoría.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`   // si no está vacío, además rota a este archivo
}

// MetricsConfig controla el endpoint de Prometheus.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // p.ej. ":9100"; vacío lo desactiva
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	// Los knobs donde 0 es un valor válido se siembran antes del parse:
	// yaml solo los pisa si la clave está presente.
	cfg := Config{Trading: TradingConfig{
		Fee:         defaultFee,
		Slippage:    defaultSlippage,
		MinEdge:     defaultMinEdge,
		MinLiqQuote: defaultMinLiqQuote,
	}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	t := c.Trading
	if t.Mode != ModePaper && t.Mode != ModeLive {
		errs = append(errs, fmt.Errorf("trading.mode %q: want paper or live", t.Mode))
	}
	if t.Fee < 0 || t.Fee >= 1 {
		errs = append(errs, fmt.Errorf("trading.fee %v out of range [0,1)", t.Fee))
	}
	if t.Slippage < 0 {
		errs = append(errs, fmt.Errorf("trading.slippage %v is negative", t.Slippage))
	}
	if t.MinEdge < 0 {
		errs = append(errs, fmt.Errorf("trading.min_edge %v is negative", t.MinEdge))
	}
	if t.MinLiqQuote < 0 {
		errs = append(errs, fmt.Errorf("trading.min_liq_quote %v is negative", t.MinLiqQuote))
	}
	if len(t.Bases) == 0 {
		errs = append(errs, errors.New("trading.bases is empty"))
	}
	if t.Mode == ModeLive && (c.API.APIKey == "" || c.API.APISecret == "") {
		errs = append(errs, errors.New("live mode needs BINANCE_API_KEY and BINANCE_API_SECRET"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}
	return nil
}

// Cooldown devuelve el cooldown por triángulo como time.Duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Trading.CooldownSeconds) * time.Second
}

// ExecTimeout bounds one whole execution.
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.Trading.ExecTimeoutMs) * time.Millisecond
}

// LegTimeout bounds one order placement.
func (c *Config) LegTimeout() time.Duration {
	return time.Duration(c.Trading.LegTimeoutMs) * time.Millisecond
}

// PingInterval is the websocket keepalive period.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.API.PingIntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TRIARB_MODE"); v != "" {
		cfg.Trading.Mode = v
	}
	if v := os.Getenv("TRIARB_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	cfg.API.APIKey = os.Getenv("BINANCE_API_KEY")
	cfg.API.APISecret = os.Getenv("BINANCE_API_SECRET")
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	t := &cfg.Trading
	t.Mode = strings.ToLower(t.Mode)
	if t.Mode == "" {
		t.Mode = ModePaper
	}
	if t.QuoteAsset == "" {
		t.QuoteAsset = "USDT"
	}
	if len(t.Bases) == 0 {
		t.Bases = []string{"BNB", "ETH"}
	}
	if t.StartBalance <= 0 {
		t.StartBalance = 1000
	}
	if t.TradeSize <= 0 {
		t.TradeSize = 50
	}
	if t.MaxTrades <= 0 {
		t.MaxTrades = 50
	}
	if t.CooldownSeconds <= 0 {
		t.CooldownSeconds = 60
	}
	if t.ExecWorkers < 0 {
		t.ExecWorkers = 0
	}
	if t.ExecQueue <= 0 {
		t.ExecQueue = 16
	}
	if t.ExecTimeoutMs <= 0 {
		t.ExecTimeoutMs = 10_000
	}
	if t.LegTimeoutMs <= 0 {
		t.LegTimeoutMs = 3_000
	}
	if cfg.API.RESTBase == "" {
		cfg.API.RESTBase = "https://api.binance.com"
	}
	if cfg.API.StreamBase == "" {
		cfg.API.StreamBase = "wss://stream.binance.com:9443"
	}
	if cfg.API.StreamsPerConn <= 0 {
		cfg.API.StreamsPerConn = 200
	}
	if cfg.API.PingIntervalSeconds <= 0 {
		cfg.API.PingIntervalSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
