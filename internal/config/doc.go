// Package config handles configuration loading for chatbot360-admin.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Missing fields fall back to defaults and the result is validated.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from CHATBOT360_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/chatbot360/admin.yaml
//  3. ~/.config/chatbot360/admin.yaml
//
// Files ending in .toml are decoded as TOML, everything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  secret: "${CHATBOT360_SESSION_SECRET}"
//
// After loading, CHATBOT360_API_BASE_URL and CHATBOT360_CHAT_BASE_URL
// override the backend URLs from the file.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "localhost:3000"
//
//	backend:
//	  api_base_url: "http://127.0.0.1:8088"   # login, users, documents, conversations
//	  chat_base_url: "http://localhost:6688"  # chat, extract_name, set_user_name, debug
//	  timeout: "30s"
//
//	database:
//	  path: "~/.local/share/chatbot360/admin.db"
//
//	session:
//	  secret: "${CHATBOT360_SESSION_SECRET}"  # random per process when empty
//	  ttl: "168h"
//	  sweep_interval: "1h"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(config.Path())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
