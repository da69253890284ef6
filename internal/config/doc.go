// Package config loads choicegroup.yaml (or .json).
//
// # Configuration File Structure
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	  jwtSecret: change-me
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/choicegroup.log
//	dispatch:
//	  websocket: true
//	  redis: {url: "redis://localhost:6379/0", channel: choicegroup}
//	  kafka: {brokers: ["localhost:9092"], topic: choicegroup-changes}
//	submit:
//	  sql: {driver: sqlite3, dsn: "file:submissions.db"}
//	groups:
//	  - name: gender
//	    mode: single
//	    required: true
//	    options:
//	      - value: male
//	      - value: female
//	  - name: sports
//	    mode: multi
//	    rules:
//	      - {name: atMostTwo, expr: "count <= 2"}
//	    options:
//	      - value: running
//	      - value: chess
//	      - value: swimming
//
// # Usage
//
//	cfg, err := config.Load("choicegroup.yaml")
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//
// Load returns defaults when the file does not exist. Errors found by
// Validate point at the offending YAML line when the file was YAML.
package config
