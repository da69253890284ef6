package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
	"github.com/vango-dev/choicegroup/pkg/submit"
)

// Modes accepted in GroupConfig.Mode.
var Modes = []string{"multi", "single", "select"}

// Validate checks the configuration and returns the first problem as an
// *errors.Error with code E202.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return c.invalid(fmt.Sprintf("port %d out of range", c.Server.Port), "server", "port")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return c.invalid("shutdownTimeout must be a duration such as 10s", "server", "shutdownTimeout")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return c.invalid(fmt.Sprintf("unknown log level %q", c.Log.Level), "log", "level")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return c.invalid(fmt.Sprintf("unknown log format %q", c.Log.Format), "log", "format")
	}

	if r := c.Dispatch.Redis; r != nil && r.URL == "" {
		return c.invalid("redis dispatch needs a url", "dispatch", "redis")
	}
	if k := c.Dispatch.Kafka; k != nil && len(k.Brokers) == 0 {
		return c.invalid("kafka dispatch needs at least one broker", "dispatch", "kafka")
	}
	if s := c.Submit.S3; s != nil && s.Bucket == "" {
		return c.invalid("s3 submit needs a bucket", "submit", "s3")
	}
	if s := c.Submit.SQL; s != nil {
		switch submit.Dialect(s.Driver) {
		case submit.Postgres, submit.PGX, submit.SQLite:
		default:
			return c.invalid(fmt.Sprintf("sql driver must be postgres, pgx or sqlite3, got %q", s.Driver), "submit", "sql", "driver")
		}
		if s.DSN == "" {
			return c.invalid("sql submit needs a dsn", "submit", "sql")
		}
	}

	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return c.invalid(fmt.Sprintf("group %d has no name", i), "groups", i)
		}
		if seen[g.Name] {
			return c.invalid(fmt.Sprintf("duplicate group %q", g.Name), "groups", i, "name")
		}
		seen[g.Name] = true
		if err := c.validateGroup(i, g); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateGroup(i int, g GroupConfig) error {
	switch g.Mode {
	case "multi", "single", "checkbox", "radio":
		if _, err := choice.ParseMode(g.Mode); err != nil {
			return c.invalid(err.Error(), "groups", i, "mode")
		}
		if g.InteractionMode != "" {
			return c.invalid(fmt.Sprintf("group %q: interactionMode only applies to select", g.Name), "groups", i, "interactionMode")
		}
	case "select":
		if _, err := selectrich.ParseInteractionMode(g.InteractionMode); err != nil {
			return c.invalid(err.Error(), "groups", i, "interactionMode")
		}
	default:
		return c.invalid(fmt.Sprintf("group %q: mode must be one of %s", g.Name, strings.Join(Modes, ", ")), "groups", i, "mode")
	}

	checked := 0
	for j, o := range g.Options {
		if o.Value == nil {
			return c.invalid(fmt.Sprintf("group %q: option %d has no value", g.Name, j), "groups", i, "options", j)
		}
		if o.Name != "" && o.Name != g.Name {
			return c.invalid(fmt.Sprintf("group %q: option name %q differs from group name", g.Name, o.Name), "groups", i, "options", j, "name")
		}
		if o.Checked {
			checked++
		}
	}
	if checked > 1 && g.Mode != "multi" && g.Mode != "checkbox" {
		return c.invalid(fmt.Sprintf("group %q: %d options checked in a single-select group", g.Name, checked), "groups", i, "options")
	}

	names := map[string]bool{}
	for j, r := range g.Rules {
		if r.Name == "" {
			return c.invalid(fmt.Sprintf("group %q: rule %d has no name", g.Name, j), "groups", i, "rules", j)
		}
		if names[r.Name] {
			return c.invalid(fmt.Sprintf("group %q: duplicate rule %q", g.Name, r.Name), "groups", i, "rules", j, "name")
		}
		names[r.Name] = true
		if r.Kind() == "" {
			return c.invalid(fmt.Sprintf("group %q: rule %q needs exactly one of expr, cel, js, min, max, oneOf", g.Name, r.Name), "groups", i, "rules", j)
		}
		switch choice.Severity(r.Severity) {
		case "", choice.SeverityError, choice.SeverityWarning, choice.SeverityInfo, choice.SeveritySuccess:
		default:
			return c.invalid(fmt.Sprintf("group %q: unknown severity %q", g.Name, r.Severity), "groups", i, "rules", j, "severity")
		}
	}
	return nil
}

// invalid builds an E202 error located at the YAML node addressed by path.
func (c *Config) invalid(msg string, path ...any) *errors.Error {
	e := errors.New("E202").WithSuggestion(msg)
	if n := locate(c.root, path...); n != nil {
		if c.path != "" {
			e.WithLocation(c.path, n.Line, n.Column)
		} else {
			e.Location = &errors.Location{Line: n.Line, Column: n.Column}
		}
	}
	return e
}

// locate walks mapping keys (string) and sequence indexes (int). It returns
// the deepest node reached.
func locate(n *yaml.Node, path ...any) *yaml.Node {
	if n == nil {
		return nil
	}
	for _, p := range path {
		var next *yaml.Node
		switch key := p.(type) {
		case string:
			if n.Kind != yaml.MappingNode {
				return n
			}
			for k := 0; k+1 < len(n.Content); k += 2 {
				if n.Content[k].Value == key {
					next = n.Content[k+1]
					break
				}
			}
		case int:
			if n.Kind == yaml.SequenceNode && key >= 0 && key < len(n.Content) {
				next = n.Content[key]
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
	return n
}
