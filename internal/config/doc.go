// Package config loads servctl configuration.
//
// Configuration is layered: built-in defaults, then the user file
// (~/.config/servctl/config.yaml), then the project file
// (./.servctl/config.yaml), then an explicit --config file. Later layers
// override earlier ones field by field. Finally SERVCTL_* environment
// variables are applied on top.
//
// Example configuration:
//
//	api:
//	  baseURL: https://panel.example.com
//	  timeout: 15s
//	polling:
//	  processInterval: 7s
//	  tunnelInterval: 10s
//	tunnel:
//	  defaultPort: 25565
//	quickActions:
//	  - title: Check Players
//	    command: list
//	  - title: Kick Player
//	    command: kick
//	    needsArgument: true
//	logging:
//	  level: debug
package config
