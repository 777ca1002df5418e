package filestore

// Config holds configuration for the file-backed store.
type Config struct {
	// Path is the JSON file holding the store contents.
	Path string `mapstructure:"path" default:"storesync.json"`
	// Watch enables filesystem notifications so writes from other
	// processes surface as bulk change events.
	Watch bool `mapstructure:"watch" default:"true"`
}
