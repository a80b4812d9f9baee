// Package config provides configuration loading for the usershell CLI.
//
// The configuration is stored in usershell.json, usershell.yaml or
// usershell.yml, found by walking up from the working directory, or given
// explicitly with --config. Missing files are not an error: defaults apply.
//
// # Configuration File Structure
//
//	{
//	  "baseURL": "https://api.example.com",
//	  "timeout": "10s",
//	  "tokenKey": "token",
//	  "storage": {
//	    "driver": "sqlite",
//	    "path": "~/.config/usershell"
//	  },
//	  "log": {
//	    "level": "debug",
//	    "development": true
//	  },
//	  "telemetry": {
//	    "otlpEndpoint": "localhost:4318",
//	    "serviceName": "usershell"
//	  },
//	  "mock": {
//	    "addr": "127.0.0.1:8080"
//	  }
//	}
//
// The same keys work in YAML.
//
// # Environment
//
// USERSHELL_BASE_URL and USERSHELL_TOKEN_KEY override the file. Both are
// read once, when the configuration is resolved.
//
// # Usage
//
//	cfg, err := config.Resolve("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("API:", cfg.BaseURL)
package config
