// Package config provides configuration parsing for reactbench.
//
// The configuration is a YAML file given with --config or the
// REACTBENCH_CONFIG environment variable. Every field is optional.
//
// # Configuration File Structure
//
//	log:
//	  level: info          # debug, info, warn, error
//	  format: text         # text, json
//	bench:
//	  scenarios: [chain, fanout, diamond, batch]
//	  size: 100
//	  iterations: 1000
//	  output: table        # table, json
//	server:
//	  addr: ":9464"
//	  readTimeout: 5s
//	  shutdownTimeout: 10s
//	  maxSize: 10000       # per-request upper bounds
//	  maxIterations: 100000
//	metrics:
//	  namespace: reactor
//	tracing:
//	  enabled: false
//	  tracerName: reactbench
//	  recomputes: false
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Size:", cfg.Bench.Size)
package config
