// Package confloader loads TokStore configuration with koanf.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. Defaults already present in the target struct
//  2. A YAML configuration file
//  3. Environment variables (TOKSTORE_ prefix)
//  4. An explicit map, typically built from command-line flags
//
// Environment names are the dotted koanf path upper-cased with dots turned
// into underscores, so TOKSTORE_REDIS_MASTER_NAME sets redis.master_name.
// Names are resolved against the target struct's koanf tags, which is what
// lets keys themselves contain underscores.
//
// Watcher reports changes to a configuration file through fsnotify.
package confloader
