package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Card constraints
	MaxCardTextLength int
	MaxAliasLength    int

	// Relationship constraints
	MaxLinkedFeedbackPerAction int
	MaxHierarchyDepth          int

	// Board defaults (used when the board record leaves a limit unset)
	DefaultCardLimitPerUser     int
	DefaultReactionLimitPerUser int

	// Time constraints
	SessionTimeout    time.Duration
	ConnectionTimeout time.Duration

	// Validation settings
	AllowSelfLinks       bool
	AllowAnonymousCards  bool
	RequireKnownColumns  bool

	// Feature flags
	EnableRealTimeSync bool
	EnableEventAudit   bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Card constraints
		MaxCardTextLength: 1000,
		MaxAliasLength:    60,

		// Relationship constraints
		MaxLinkedFeedbackPerAction: 50,
		MaxHierarchyDepth:          1,

		// Board defaults: zero means no limit unless the board says otherwise
		DefaultCardLimitPerUser:     0,
		DefaultReactionLimitPerUser: 0,

		// Time constraints
		SessionTimeout:    24 * time.Hour,
		ConnectionTimeout: 30 * time.Second,

		// Validation settings
		AllowSelfLinks:      false,
		AllowAnonymousCards: true,
		RequireKnownColumns: true,

		// Feature flags
		EnableRealTimeSync: true,
		EnableEventAudit:   true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxCardTextLength = 600
	config.MaxLinkedFeedbackPerAction = 25

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxCardTextLength = 5000
	config.AllowSelfLinks = false
	config.RequireKnownColumns = false

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
	return nil
}
