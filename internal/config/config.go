package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/utils"
	"github.com/spf13/viper"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Map      MapConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DataConfig - откуда читать исходные таблицы
type DataConfig struct {
	Source          string
	CoordPath       string
	TrajectoryPath  string
	TrajectorySheet string
	// ReloadInterval - период фонового перечитывания, 0 отключает
	ReloadInterval time.Duration
}

// MapConfig объединяет параметры обоих вариантов отображения
type MapConfig struct {
	MarkerRadius float64
	MemoizeLoad  bool
	ShowLegend   bool
	DefaultYear  int
	BoundingBox  domain.BoundingBox
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	SnapshotTTL time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads .env (when present) and the environment. Environment wins.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Data: DataConfig{
			Source:          strings.ToLower(strings.TrimSpace(v.GetString("DATA_SOURCE"))),
			CoordPath:       v.GetString("DATA_COORD_PATH"),
			TrajectoryPath:  v.GetString("DATA_TRAJECTORY_PATH"),
			TrajectorySheet: v.GetString("DATA_TRAJECTORY_SHEET"),
			ReloadInterval:  time.Duration(v.GetInt("DATA_RELOAD_INTERVAL")) * time.Second,
		},
		Map: MapConfig{
			MarkerRadius: v.GetFloat64("MAP_MARKER_RADIUS"),
			MemoizeLoad:  v.GetBool("MAP_MEMOIZE_LOAD"),
			ShowLegend:   v.GetBool("MAP_SHOW_LEGEND"),
			DefaultYear:  v.GetInt("MAP_DEFAULT_YEAR"),
			BoundingBox: domain.BoundingBox{
				MinLat: v.GetFloat64("BBOX_MIN_LAT"),
				MinLon: v.GetFloat64("BBOX_MIN_LON"),
				MaxLat: v.GetFloat64("BBOX_MAX_LAT"),
				MaxLon: v.GetFloat64("BBOX_MAX_LON"),
			},
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SnapshotTTL: time.Duration(v.GetInt("SNAPSHOT_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")

	v.SetDefault("DATA_SOURCE", SourceFile)
	v.SetDefault("DATA_COORD_PATH", "TS_Coord_Res.csv")
	v.SetDefault("DATA_TRAJECTORY_PATH", "Baza_Life_Trajectory.xlsx")
	v.SetDefault("DATA_TRAJECTORY_SHEET", "Sheet3")
	v.SetDefault("DATA_RELOAD_INTERVAL", 0)

	v.SetDefault("MAP_MARKER_RADIUS", 3)
	v.SetDefault("MAP_MEMOIZE_LOAD", true)
	v.SetDefault("MAP_SHOW_LEGEND", true)
	v.SetDefault("MAP_DEFAULT_YEAR", domain.DefaultYear)

	v.SetDefault("BBOX_MIN_LAT", domain.BucharestBBox.MinLat)
	v.SetDefault("BBOX_MIN_LON", domain.BucharestBBox.MinLon)
	v.SetDefault("BBOX_MAX_LAT", domain.BucharestBBox.MaxLat)
	v.SetDefault("BBOX_MAX_LON", domain.BucharestBBox.MaxLon)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("SNAPSHOT_CACHE_TTL", 86400)

	v.SetDefault("LOG_LEVEL", "info")
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (expected %q or %q)", c.Data.Source, SourceFile, SourcePostgres)
	}
	if c.Data.ReloadInterval < 0 {
		return fmt.Errorf("DATA_RELOAD_INTERVAL must not be negative, got %v", c.Data.ReloadInterval)
	}
	if c.Data.ReloadInterval > 0 && !c.Map.MemoizeLoad {
		return fmt.Errorf("DATA_RELOAD_INTERVAL requires MAP_MEMOIZE_LOAD=true")
	}
	if c.Map.MarkerRadius <= 0 {
		return fmt.Errorf("MAP_MARKER_RADIUS must be positive, got %v", c.Map.MarkerRadius)
	}
	bbox := c.Map.BoundingBox
	if !utils.ValidateCoordinates(bbox.MinLat, bbox.MinLon) || !utils.ValidateCoordinates(bbox.MaxLat, bbox.MaxLon) {
		return fmt.Errorf("bounding box corners must be valid coordinates: %+v", bbox)
	}
	if !bbox.Valid() {
		return fmt.Errorf("bounding box min corner must not exceed max corner: %+v", c.Map.BoundingBox)
	}
	if !domain.SupportedYears.Contains(c.Map.DefaultYear) {
		return fmt.Errorf("MAP_DEFAULT_YEAR %d outside %d-%d",
			c.Map.DefaultYear, domain.SupportedYears.Min, domain.SupportedYears.Max)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
