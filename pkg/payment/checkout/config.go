package checkout

// Config holds the payment gateway credentials.
type Config struct {
	// PublishableKey is handed to the browser checkout widget
	PublishableKey string

	// SecretKey authenticates server-side verification calls
	SecretKey string

	// BaseURL is the gateway API base URL
	BaseURL string

	// Currency is the ISO code charged by the widget
	Currency string
}

// Validate checks if the configuration is usable for verification
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
