package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/choicegroup/internal/errors"
)

const (
	// FileName is the default configuration file.
	FileName = "choicegroup.yaml"

	DefaultHost = "localhost"
	DefaultPort = 8080

	// DefaultShutdownTimeout bounds graceful shutdown of serve.
	DefaultShutdownTimeout = "10s"

	// DefaultChannel is the Redis channel and Kafka topic used when none is set.
	DefaultChannel = "choicegroup-changes"

	// EnvJWTSecret overrides server.jwtSecret.
	EnvJWTSecret = "CHOICEGROUP_JWT_SECRET"
)

// Config is the complete choicegroup configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Dispatch DispatchConfig `yaml:"dispatch" json:"dispatch"`
	Submit   SubmitConfig   `yaml:"submit" json:"submit"`
	Groups   []GroupConfig  `yaml:"groups" json:"groups"`

	path string
	root *yaml.Node
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// JWTSecret protects write endpoints. Empty disables authentication.
	JWTSecret string `yaml:"jwtSecret" json:"jwtSecret"`

	// ShutdownTimeout is a Go duration string such as "10s".
	ShutdownTimeout string `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level"`

	// Format is json or text.
	Format string `yaml:"format" json:"format"`

	// File switches output from stderr to a rotating file.
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays" json:"maxAgeDays"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DispatchConfig selects where change notifications are published.
type DispatchConfig struct {
	// WebSocket enables GET /groups/{name}/ws.
	WebSocket bool         `yaml:"websocket" json:"websocket"`
	Redis     *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
	Kafka     *KafkaConfig `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

type RedisConfig struct {
	URL     string `yaml:"url" json:"url"`
	Channel string `yaml:"channel" json:"channel"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" json:"brokers"`
	Topic   string   `yaml:"topic" json:"topic"`

	// CreateTopic creates the topic at startup when it is missing.
	CreateTopic bool `yaml:"createTopic" json:"createTopic"`
}

// SubmitConfig selects where form submissions are stored. Several sinks may
// be enabled at once; each submission is saved to all of them.
type SubmitConfig struct {
	Dir string     `yaml:"dir,omitempty" json:"dir,omitempty"`
	S3  *S3Config  `yaml:"s3,omitempty" json:"s3,omitempty"`
	SQL *SQLConfig `yaml:"sql,omitempty" json:"sql,omitempty"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket" json:"bucket"`
	Prefix          string `yaml:"prefix" json:"prefix"`
	Region          string `yaml:"region" json:"region"`
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	PathStyle       bool   `yaml:"pathStyle" json:"pathStyle"`
	AccessKeyID     string `yaml:"accessKeyId" json:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey" json:"secretAccessKey"`
}

type SQLConfig struct {
	// Driver is postgres, pgx or sqlite3.
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
	Table  string `yaml:"table" json:"table"`
}

// GroupConfig declares one group and its initial members.
type GroupConfig struct {
	Name string `yaml:"name" json:"name"`

	// Mode is multi, single or select.
	Mode  string `yaml:"mode" json:"mode"`
	Label string `yaml:"label" json:"label"`

	// Value is the initial model value, applied once the options are declared.
	Value any `yaml:"value" json:"value"`

	// InteractionMode is windows or mac; select only.
	InteractionMode string `yaml:"interactionMode" json:"interactionMode"`

	Required bool `yaml:"required" json:"required"`
	Disabled bool `yaml:"disabled" json:"disabled"`
	ReadOnly bool `yaml:"readOnly" json:"readOnly"`

	Rules   []RuleConfig   `yaml:"rules" json:"rules"`
	Options []OptionConfig `yaml:"options" json:"options"`
}

// RuleConfig declares one validation rule. Exactly one of Expr, CEL, JS,
// Min, Max or OneOf must be set.
type RuleConfig struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"`

	Expr  string `yaml:"expr,omitempty" json:"expr,omitempty"`
	CEL   string `yaml:"cel,omitempty" json:"cel,omitempty"`
	JS    string `yaml:"js,omitempty" json:"js,omitempty"`
	Min   *int   `yaml:"min,omitempty" json:"min,omitempty"`
	Max   *int   `yaml:"max,omitempty" json:"max,omitempty"`
	OneOf []any  `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
}

// Kind returns which rule field is set, or "" when none or several are.
func (r RuleConfig) Kind() string {
	var kinds []string
	if r.Expr != "" {
		kinds = append(kinds, "expr")
	}
	if r.CEL != "" {
		kinds = append(kinds, "cel")
	}
	if r.JS != "" {
		kinds = append(kinds, "js")
	}
	if r.Min != nil {
		kinds = append(kinds, "min")
	}
	if r.Max != nil {
		kinds = append(kinds, "max")
	}
	if r.OneOf != nil {
		kinds = append(kinds, "oneOf")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

type OptionConfig struct {
	Value    any    `yaml:"value" json:"value"`
	Label    string `yaml:"label" json:"label"`
	Name     string `yaml:"name" json:"name"`
	Checked  bool   `yaml:"checked" json:"checked"`
	Disabled bool   `yaml:"disabled" json:"disabled"`
}

// Default returns a configuration with defaults applied and no groups.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path as JSON when it ends in .json and YAML otherwise. A
// missing file yields Default(). The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		c := Default()
		c.path = path
		c.applyEnv()
		return c, nil
	}
	if err != nil {
		return nil, errors.New("E200").Wrap(err).WithSuggestionf("check that %s is readable", path)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var ce *errors.Error
		if stderrors.As(err, &ce) && ce.Location != nil {
			ce.WithLocation(path, ce.Location.Line, ce.Location.Column)
		}
		return nil, err
	}
	c.path = path
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes data without validating. ext selects the format.
func Parse(data []byte, ext string) (*Config, error) {
	c := &Config{}
	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return nil, errors.New("E201").Wrap(err).WithSuggestion(err.Error())
		}
	} else {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, yamlError(err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, yamlError(err)
		}
		if len(root.Content) > 0 {
			c.root = root.Content[0]
		}
	}
	c.applyDefaults()
	c.applyEnv()
	return c, nil
}

func yamlError(err error) *errors.Error {
	e := errors.New("E201").Wrap(err).WithSuggestion(err.Error())
	if line := yamlErrorLine(err); line > 0 {
		e.Location = &errors.Location{Line: line}
	}
	return e
}

// yamlErrorLine extracts "line N" from yaml.v3 error text.
func yamlErrorLine(err error) int {
	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return 0
	}
	rest := msg[i+len("line "):]
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(rest)
	}
	n, _ := strconv.Atoi(rest[:end])
	return n
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.File != "" && c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if r := c.Dispatch.Redis; r != nil && r.Channel == "" {
		r.Channel = DefaultChannel
	}
	if k := c.Dispatch.Kafka; k != nil && k.Topic == "" {
		k.Topic = DefaultChannel
	}
	for i := range c.Groups {
		if c.Groups[i].Mode == "" {
			c.Groups[i].Mode = "single"
		}
	}
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvJWTSecret); ok {
		c.Server.JWTSecret = v
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Address returns host:port for the HTTP server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Group returns the group named name.
func (c *Config) Group(name string) (GroupConfig, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return GroupConfig{}, false
}

// Save writes the configuration as YAML, or JSON when path ends in .json.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("E201").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E200").Wrap(err)
	}
	c.path = path
	return nil
}
