package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Saved prompt constraints
	MaxTitleLength   int
	MaxContentLength int
	MaxTagsPerPrompt int
	MaxTagLength     int

	// Draft history
	MaxDraftsPerUser  int
	DefaultDraftTitle string
	DefaultTitle      string

	// Document limits
	MaxBlocksPerDocument int
	MaxDocumentBytes     int

	// Caching
	TagCacheTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxTitleLength:   200,
		MaxContentLength: 50000,
		MaxTagsPerPrompt: 20,
		MaxTagLength:     30,

		MaxDraftsPerUser:  50,
		DefaultDraftTitle: "Untitled",
		DefaultTitle:      "New prompt",

		MaxBlocksPerDocument: 2000,
		MaxDocumentBytes:     1 << 20,

		TagCacheTTL: time.Minute,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxBlocksPerDocument = 1000
	config.TagCacheTTL = 5 * time.Minute

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxBlocksPerDocument = 10000
	config.MaxDocumentBytes = 8 << 20
	config.TagCacheTTL = 0

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxTitleLength <= 0 {
		return fmt.Errorf("max title length must be positive")
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("max content length must be positive")
	}
	if c.MaxDraftsPerUser <= 0 {
		return fmt.Errorf("max drafts per user must be positive")
	}
	if c.MaxBlocksPerDocument <= 0 {
		return fmt.Errorf("max blocks per document must be positive")
	}
	if c.DefaultDraftTitle == "" || c.DefaultTitle == "" {
		return fmt.Errorf("default titles must not be empty")
	}
	return nil
}
