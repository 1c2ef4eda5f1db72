// Package config loads vtree configuration from vtree.json, vtree.yaml or
// vtree.toml. All three formats share one schema:
//
//	{
//	  "log":      {"level": "info", "format": "text"},
//	  "serve":    {"addr": "localhost:7070", "path": "/ws",
//	               "readTimeout": "60s", "writeTimeout": "10s", "readLimit": 65536},
//	  "metrics":  {"enabled": true, "namespace": "vtree", "path": "/metrics"},
//	  "tracing":  {"enabled": false, "tracerName": "github.com/vango-dev/vtree"},
//	  "snapshot": {"dir": "snapshots", "format": "json",
//	               "s3": {"bucket": "", "prefix": "", "region": "", "endpoint": ""}},
//	  "demo":     {"app": "counter"}
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
