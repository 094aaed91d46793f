// Package config loads the richtext configuration.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← RICHTEXT_LOG_LEVEL, RICHTEXT_LOG_FORMAT,
//	│                             │    RICHTEXT_WRAP_WIDTH
//	├─────────────────────────────┤
//	│  2. TOML file               │  ← --config path
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A configuration file looks like:
//
//	[text]
//	wrap_width = 80
//	default_policy = "before"
//	default_style = "body"
//
//	[styles.body]
//	fg = "#c0c0c0"
//
//	[styles.heading]
//	fg = "idx:3"
//	attrs = ["bold", "underline"]
//
//	[peephole]
//	margin_top = 2
//	margin_bottom = 2
//
//	[log]
//	level = "debug"
//	format = "json"
//
// Watcher reloads the file when it changes on disk. While the file is
// missing the current configuration stays in effect.
package config
