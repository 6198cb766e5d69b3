package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "8MB"
	defaultTimezone           = "Europe/Moscow"
	defaultSessionCookie      = "pointshop_session"
	defaultSessionTTL         = 30 * 24 * time.Hour
	defaultUploadPrefix       = "/static/uploads"
	defaultUploadMaxBytes     = 5 << 20
	defaultNotifyTimeout      = 5 * time.Second
	defaultNotifyQueueSize    = 256
)

// Storage drivers.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// DefaultShops is used when app.shops is empty.
var DefaultShops = []string{"regular", "premium"}

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	App AppConfig `json:"app" yaml:"app"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Session SessionConfig `json:"session" yaml:"session"`

	Admin struct {
		Password string `json:"password" yaml:"password"`
	} `json:"admin" yaml:"admin"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	Storage struct {
		Driver string `json:"driver" yaml:"driver"`
	} `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Notification NotificationConfig `json:"notification" yaml:"notification"`

	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`

	Webhook struct {
		URL string `json:"url" yaml:"url"`
	} `json:"webhook" yaml:"webhook"`

	Uploads UploadsConfig `json:"uploads" yaml:"uploads"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// AppConfig holds portal-wide settings.
type AppConfig struct {
	// TZ is the IANA zone used for shop windows and date filters.
	TZ    string   `json:"tz" yaml:"tz"`
	Shops []string `json:"shops" yaml:"shops"`
}

// Location resolves TZ, falling back to UTC when the zone database lacks it.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.TZ)
	if err != nil {
		return time.UTC
	}

	return loc
}

type SessionConfig struct {
	Secret     string        `json:"secret" yaml:"secret"`
	CookieName string        `json:"cookieName" yaml:"cookieName"`
	TTL        time.Duration `json:"ttl" yaml:"ttl"`
	Secure     bool          `json:"secure" yaml:"secure"`
}

type AuthConfig struct {
	BcryptCost        int `json:"bcryptCost" yaml:"bcryptCost"`
	MinPasswordLength int `json:"minPasswordLength" yaml:"minPasswordLength"`
	MaxPasswordLength int `json:"maxPasswordLength" yaml:"maxPasswordLength"`
}

// NotificationConfig selects where order notifications go.
type NotificationConfig struct {
	// Provider is one of "telegram", "webhook" or "noop".
	Provider  string        `json:"provider" yaml:"provider"`
	QueueSize int           `json:"queueSize" yaml:"queueSize"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

type TelegramConfig struct {
	BotToken string `json:"botToken" yaml:"botToken"`
	ChatID   int64  `json:"chatId" yaml:"chatId"`
}

type UploadsConfig struct {
	// BucketURL is a gocloud.dev blob URL, e.g. file:///var/lib/pointshop/uploads or mem://
	BucketURL    string `json:"bucketUrl" yaml:"bucketUrl"`
	PublicPrefix string `json:"publicPrefix" yaml:"publicPrefix"`
	MaxBytes     int64  `json:"maxBytes" yaml:"maxBytes"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(currEnv, searchPaths)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// ADMIN_PASSWORD -> admin.password, TELEGRAM_BOT_TOKEN -> telegram.botToken
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if strings.TrimSpace(cfg.App.TZ) == "" {
		cfg.App.TZ = defaultTimezone
	}
	cfg.App.Shops = normalizeShops(cfg.App.Shops)
	if len(cfg.App.Shops) == 0 {
		cfg.App.Shops = append([]string(nil), DefaultShops...)
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = defaultSessionCookie
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = defaultSessionTTL
	}
	if cfg.Auth.MinPasswordLength <= 0 {
		cfg.Auth.MinPasswordLength = 6
	}
	if cfg.Auth.MaxPasswordLength <= 0 {
		cfg.Auth.MaxPasswordLength = 128
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverPostgres
	}
	if cfg.Notification.Timeout <= 0 {
		cfg.Notification.Timeout = defaultNotifyTimeout
	}
	if cfg.Notification.QueueSize <= 0 {
		cfg.Notification.QueueSize = defaultNotifyQueueSize
	}
	if cfg.Uploads.PublicPrefix == "" {
		cfg.Uploads.PublicPrefix = defaultUploadPrefix
	}
	cfg.Uploads.PublicPrefix = strings.TrimRight(cfg.Uploads.PublicPrefix, "/")
	if cfg.Uploads.MaxBytes <= 0 {
		cfg.Uploads.MaxBytes = defaultUploadMaxBytes
	}
}

func normalizeShops(shops []string) []string {
	seen := make(map[string]struct{}, len(shops))
	out := make([]string, 0, len(shops))
	for _, shop := range shops {
		shop = strings.ToLower(strings.TrimSpace(shop))
		if shop == "" {
			continue
		}
		if _, ok := seen[shop]; ok {
			continue
		}
		seen[shop] = struct{}{}
		out = append(out, shop)
	}

	return out
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next

			continue
		}

		// TELEGRAM_BOT_TOKEN: "bot" alone is not a key but "bot"+"token" is.
		if matched, next, consumed, ok := findJoinedSegment(current, segments[i:]); ok {
			canonical = append(canonical, matched)
			current = next
			i += consumed - 1

			continue
		}

		canonical = append(canonical, segment)
		current = nil
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func findJoinedSegment(current map[string]any, segments []string) (matched string, next map[string]any, consumed int, ok bool) {
	if len(current) == 0 {
		return "", nil, 0, false
	}

	joined := ""
	for n, segment := range segments {
		joined += segment
		if n == 0 {
			continue
		}
		if key, child, found := findExistingSegment(current, joined); found {
			return key, child, n + 1, true
		}
	}

	return "", nil, 0, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
