package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/choicegroup/internal/errors"
)

const sampleYAML = `server:
  port: 9090
  jwtSecret: s3cret
log:
  level: debug
  format: json
dispatch:
  websocket: true
  redis:
    url: redis://localhost:6379/0
submit:
  sql:
    driver: sqlite3
    dsn: ":memory:"
groups:
  - name: gender
    mode: single
    required: true
    options:
      - value: male
      - value: female
        checked: true
  - name: sports
    mode: multi
    value: [chess]
    rules:
      - name: atMostTwo
        expr: count <= 2
      - name: min1
        min: 1
        severity: warning
    options:
      - value: running
      - value: chess
      - value: 0
  - name: color
    mode: select
    interactionMode: mac
    options:
      - {value: red, label: Red}
      - {value: {r: 0, g: 0, b: 255}, label: Blue}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, "localhost:8080", cfg.Address())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, path, cfg.Path())
	assert.Empty(t, cfg.Groups)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "choicegroup.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Dispatch.WebSocket)
	require.NotNil(t, cfg.Dispatch.Redis)
	assert.Equal(t, DefaultChannel, cfg.Dispatch.Redis.Channel)
	require.NotNil(t, cfg.Submit.SQL)
	assert.Equal(t, "sqlite3", cfg.Submit.SQL.Driver)

	require.Len(t, cfg.Groups, 3)
	gender, ok := cfg.Group("gender")
	require.True(t, ok)
	assert.True(t, gender.Required)
	assert.True(t, gender.Options[1].Checked)

	sports, _ := cfg.Group("sports")
	assert.Equal(t, []any{"chess"}, sports.Value)
	assert.Equal(t, "expr", sports.Rules[0].Kind())
	assert.Equal(t, "min", sports.Rules[1].Kind())
	assert.Equal(t, 0, sports.Options[2].Value)

	color, _ := cfg.Group("color")
	assert.Equal(t, "mac", color.InteractionMode)
	assert.Equal(t, map[string]any{"r": 0, "g": 0, "b": 255}, color.Options[1].Value)

	_, ok = cfg.Group("missing")
	assert.False(t, ok)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "choicegroup.json", `{
  "server": {"port": 7000},
  "groups": [{"name": "gender", "options": [{"value": "male"}, {"value": 1}]}]
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, "single", cfg.Groups[0].Mode)
	assert.Equal(t, float64(1), cfg.Groups[0].Options[1].Value)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	_, err := Load(writeFile(t, "c.yaml", "server:\n  prot: 80\n"))
	var ce *errors.Error
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E201", ce.Code)
	require.NotNil(t, ce.Location)
	assert.Equal(t, 2, ce.Location.Line)

	_, err = Load(writeFile(t, "c.json", `{"servr": {}}`))
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E201", ce.Code)
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := Load(writeFile(t, "c.yaml", "groups:\n  - name: [unclosed\n"))
	var ce *errors.Error
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E201", ce.Code)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "c.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoad_EnvOverridesSecret(t *testing.T) {
	t.Setenv(EnvJWTSecret, "from-env")
	cfg, err := Load(writeFile(t, "c.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.JWTSecret)
}

func TestValidate_PointsAtYAMLLine(t *testing.T) {
	content := "groups:\n  - name: gender\n    mode: dropdown\n"
	path := writeFile(t, "c.yaml", content)

	_, err := Load(path)
	var ce *errors.Error
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E202", ce.Code)
	assert.Contains(t, ce.Suggestion, "mode must be one of multi, single, select")
	require.NotNil(t, ce.Location)
	assert.Equal(t, path, ce.Location.File)
	assert.Equal(t, 3, ce.Location.Line)
	assert.Equal(t, 11, ce.Location.Column)
	assert.NotEmpty(t, ce.Context)
}

func TestValidate(t *testing.T) {
	two, zero := 2, 0
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }, "shutdownTimeout"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"redis url", func(c *Config) { c.Dispatch.Redis = &RedisConfig{} }, "needs a url"},
		{"kafka brokers", func(c *Config) { c.Dispatch.Kafka = &KafkaConfig{Topic: "t"} }, "broker"},
		{"s3 bucket", func(c *Config) { c.Submit.S3 = &S3Config{} }, "bucket"},
		{"sql driver", func(c *Config) { c.Submit.SQL = &SQLConfig{Driver: "oracle", DSN: "x"} }, "sql driver"},
		{"sql dsn", func(c *Config) { c.Submit.SQL = &SQLConfig{Driver: "pgx"} }, "dsn"},
		{"group name", func(c *Config) { c.Groups = []GroupConfig{{Mode: "single"}} }, "has no name"},
		{"duplicate group", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "single"}, {Name: "a", Mode: "multi"}}
		}, "duplicate group"},
		{"interaction on radio", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "single", InteractionMode: "mac"}}
		}, "only applies to select"},
		{"bad interaction", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "select", InteractionMode: "linux"}}
		}, "interaction mode"},
		{"nil option", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Options: []OptionConfig{{}}}}
		}, "has no value"},
		{"option name", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Options: []OptionConfig{{Value: 1, Name: "b"}}}}
		}, "differs from group name"},
		{"two checked radios", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "single", Options: []OptionConfig{
				{Value: 1, Checked: true}, {Value: 2, Checked: true},
			}}}
		}, "2 options checked"},
		{"rule name", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Rules: []RuleConfig{{Max: &two}}}}
		}, "has no name"},
		{"rule kind", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Rules: []RuleConfig{{Name: "r", Max: &two, Min: &zero}}}}
		}, "exactly one of"},
		{"duplicate rule", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Rules: []RuleConfig{
				{Name: "r", Max: &two}, {Name: "r", Min: &zero},
			}}}
		}, "duplicate rule"},
		{"severity", func(c *Config) {
			c.Groups = []GroupConfig{{Name: "a", Mode: "multi", Rules: []RuleConfig{{Name: "r", Max: &two, Severity: "fatal"}}}}
		}, "unknown severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ce *errors.Error
			require.True(t, stderrors.As(err, &ce), "want *errors.Error, got %v", err)
			assert.Equal(t, "E202", ce.Code)
			assert.Contains(t, ce.Suggestion, tt.want)
		})
	}
}

func TestRuleKind(t *testing.T) {
	one := 1
	assert.Equal(t, "cel", RuleConfig{CEL: "count > 0"}.Kind())
	assert.Equal(t, "js", RuleConfig{JS: "count > 0"}.Kind())
	assert.Equal(t, "max", RuleConfig{Max: &one}.Kind())
	assert.Equal(t, "oneOf", RuleConfig{OneOf: []any{"a"}}.Kind())
	assert.Equal(t, "", RuleConfig{}.Kind())
	assert.Equal(t, "", RuleConfig{Expr: "x", JS: "y"}.Kind())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(writeFile(t, "c.yaml", sampleYAML))
	require.NoError(t, err)

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, cfg.Save(path))
		again, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, len(cfg.Groups), len(again.Groups), name)
		assert.Equal(t, cfg.Server.Port, again.Server.Port, name)
	}
}
