// Package config provides configuration parsing for the reactor CLI.
//
// The configuration is stored in reactor.json next to where the CLI
// runs. This package handles loading, saving, and validating it. Every
// field has a default, so a missing file is not an error.
//
// # Configuration File Structure
//
//	{
//	  "name": "orders",
//	  "server": {
//	    "address": "localhost:8080",
//	    "mutationInterval": "500ms"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reactor"
//	  },
//	  "snapshots": {
//	    "dir": "snapshots",
//	    "s3Bucket": "orders-snapshots",
//	    "s3Prefix": "dev",
//	    "s3Region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
