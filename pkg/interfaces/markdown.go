package interfaces

// MarkdownParser converts Markdown into HTML. It is the default engine behind
// the embedded content-rendering pass used for marker and shape text.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour. Field names stay simple
// so they can be unmarshalled from YAML configuration.
type ParseOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions,omitempty"`
	Sanitize   bool     `yaml:"sanitize" json:"sanitize,omitempty"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps,omitempty"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode,omitempty"`
}
