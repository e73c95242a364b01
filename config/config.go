package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de fxbot.
type Config struct {
	Strategy StrategyConfig          `yaml:"strategy"`
	Symbols  map[string]SymbolConfig `yaml:"symbols"`
	Feed     FeedConfig              `yaml:"feed"`
	Storage  StorageConfig           `yaml:"storage"`
	Log      LogConfig               `yaml:"log"`
}

// StrategyConfig contiene los parámetros de la estrategia OB+FVG.
// Es un valor inmutable que se pasa al engine en construcción: dos backtests
// en paralelo con parámetros distintos nunca comparten estado.
type StrategyConfig struct {
	RiskRewardRatio float64 `yaml:"risk_reward_ratio"`  // multiplica la distancia del SL para fijar el TP
	MaxBarsPerTrade int     `yaml:"max_bars_per_trade"` // timeout en barras finas
	AllowedHours    []int   `yaml:"allowed_hours"`      // horas UTC en las que se permite abrir posición
	CoarseMinutes   int     `yaml:"coarse_minutes"`     // ancho del bucket de agregación (15 = M15)
	CoarseLookback  int     `yaml:"coarse_lookback"`    // ventana de barras coarse retenida por el engine
	SkipFVGConfirm  bool    `yaml:"skip_fvg_confirm"`   // entrar solo con OB, sin confirmación FVG (más señales falsas)

	// Módulos de estructura (compositor). Desactivados por defecto.
	UseCompositor          bool              `yaml:"use_compositor"`
	SwingStrength          int               `yaml:"swing_strength"`           // barras a cada lado para validar un swing
	SwingLookback          int               `yaml:"swing_lookback"`           // rango de búsqueda de swings (barras coarse)
	LiquidityLookback      int               `yaml:"liquidity_lookback"`       // rango de búsqueda de pools (barras coarse)
	LiquidityTolerancePips float64           `yaml:"liquidity_tolerance_pips"` // tolerancia equal high/low
	CompositorThreshold    float64           `yaml:"compositor_threshold"`     // score mínimo para aceptar la entrada
	CompositorWeights      CompositorWeights `yaml:"compositor_weights"`
}

// CompositorWeights pondera cada módulo dentro del score compuesto.
type CompositorWeights struct {
	OBFVG     float64 `yaml:"ob_fvg"`
	BOS       float64 `yaml:"bos"`
	CHoCH     float64 `yaml:"choch"`
	Liquidity float64 `yaml:"liquidity"`
}

// SymbolConfig contiene los parámetros por instrumento.
type SymbolConfig struct {
	PipSize        float64 `yaml:"pip_size"`        // incremento mínimo de cotización
	SpreadPips     float64 `yaml:"spread_pips"`     // spread medio en pips
	CommissionPips float64 `yaml:"commission_pips"` // comisión round-trip en pips
	StopBuffer     float64 `yaml:"stop_buffer"`     // margen en precio más allá del extremo de la barra
}

// TotalCostPips devuelve el coste round-trip (spread + comisión) en pips.
// Se aplica una sola vez por trade cerrado, no por lado.
func (s SymbolConfig) TotalCostPips() float64 {
	return s.SpreadPips + s.CommissionPips
}

// FeedConfig controla el feed de barras en vivo.
type FeedConfig struct {
	BaseURL     string  `yaml:"base_url"`
	PollSeconds int     `yaml:"poll_seconds"`
	RatePerSec  float64 `yaml:"rate_per_sec"` // límite de requests/s contra el broker
}

// StorageConfig controla dónde se persisten runs y trades.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Symbol devuelve la configuración del símbolo pedido.
func (c *Config) Symbol(name string) (SymbolConfig, error) {
	sym, ok := c.Symbols[name]
	if !ok {
		return SymbolConfig{}, fmt.Errorf("config.Symbol: unknown symbol %q", name)
	}
	return sym, nil
}

// CoarseBucket devuelve el ancho del bucket de agregación como time.Duration.
func (c *Config) CoarseBucket() time.Duration {
	return time.Duration(c.Strategy.CoarseMinutes) * time.Minute
}

// PollInterval devuelve el intervalo de poll del feed en vivo.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollSeconds) * time.Second
}

// Validate rechaza configuraciones inválidas antes de procesar ninguna barra.
func (c *Config) Validate() error {
	s := c.Strategy
	if s.RiskRewardRatio <= 0 {
		return fmt.Errorf("config.Validate: risk_reward_ratio must be > 0, got %v", s.RiskRewardRatio)
	}
	if s.MaxBarsPerTrade <= 0 {
		return fmt.Errorf("config.Validate: max_bars_per_trade must be > 0, got %d", s.MaxBarsPerTrade)
	}
	if len(s.AllowedHours) == 0 {
		return fmt.Errorf("config.Validate: allowed_hours must not be empty")
	}
	for _, h := range s.AllowedHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("config.Validate: allowed hour %d out of range [0,23]", h)
		}
	}
	if s.CoarseMinutes <= 0 {
		return fmt.Errorf("config.Validate: coarse_minutes must be > 0, got %d", s.CoarseMinutes)
	}
	if s.UseCompositor && (s.CompositorThreshold < 0 || s.CompositorThreshold > 1) {
		return fmt.Errorf("config.Validate: compositor_threshold %v out of range [0,1]", s.CompositorThreshold)
	}
	for name, sym := range c.Symbols {
		if sym.PipSize <= 0 {
			return fmt.Errorf("config.Validate: symbol %q: pip_size must be > 0", name)
		}
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	s := &cfg.Strategy
	if s.RiskRewardRatio == 0 {
		s.RiskRewardRatio = 10
	}
	if s.MaxBarsPerTrade == 0 {
		s.MaxBarsPerTrade = 100
	}
	if len(s.AllowedHours) == 0 {
		// Sesiones de Londres y Nueva York (UTC)
		s.AllowedHours = []int{0, 1, 8, 9, 16, 17}
	}
	if s.CoarseMinutes == 0 {
		s.CoarseMinutes = 15
	}
	if s.CoarseLookback == 0 {
		s.CoarseLookback = 50
	}
	if s.SwingStrength == 0 {
		s.SwingStrength = 5
	}
	if s.SwingLookback == 0 {
		s.SwingLookback = 20
	}
	if s.LiquidityLookback == 0 {
		s.LiquidityLookback = 50
	}
	if s.LiquidityTolerancePips == 0 {
		s.LiquidityTolerancePips = 3.0
	}
	if s.CompositorThreshold == 0 {
		s.CompositorThreshold = 0.6
	}
	if s.CompositorWeights == (CompositorWeights{}) {
		s.CompositorWeights = CompositorWeights{OBFVG: 0.4, BOS: 0.3, CHoCH: 0.2, Liquidity: 0.1}
	}

	if cfg.Symbols == nil {
		cfg.Symbols = map[string]SymbolConfig{}
	}
	if _, ok := cfg.Symbols["EURUSD"]; !ok {
		cfg.Symbols["EURUSD"] = SymbolConfig{
			PipSize:        0.0001,
			SpreadPips:     0.4,
			CommissionPips: 0.3,
			StopBuffer:     0.0001,
		}
	}

	if cfg.Feed.PollSeconds <= 0 {
		cfg.Feed.PollSeconds = 1
	}
	if cfg.Feed.RatePerSec <= 0 {
		cfg.Feed.RatePerSec = 2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "fxbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
