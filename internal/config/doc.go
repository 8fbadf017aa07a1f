// Package config loads tagtext configuration.
//
// Configuration is read from a TOML or YAML file, chosen by extension, and
// decoded over the built-in defaults, so a file only needs the settings it
// changes. A missing file yields the defaults.
//
// # Example
//
//	# tagtext.toml
//	[tokenizer]
//	innerPunctuation = "'"
//	normalization = "NFC"
//	cacheTTL = "10m"
//
//	[document]
//	rootType = "text"
//	nestingOrder = ["chapter", "paragraph", "sentence", "word"]
//
//	[logging]
//	level = "debug"
//
// Use Load for files and Decode for other sources:
//
//	cfg, err := config.Load("tagtext.toml")
//	if err != nil {
//	    return err
//	}
//	doc, err := engine.New(cfg.DocumentOptions()...)
package config
