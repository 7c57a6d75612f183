package auth

import "time"

// SimpleConfig is a plain-struct Config for wiring and tests. Production
// deployments usually adapt their own config container to the Config
// interface instead.
type SimpleConfig struct {
	SigningSecret  string
	PasswordPepper string
	TokenTTL       time.Duration
	CookieName     string
	TrustProxy     bool
	LoginLimit     int
	LoginWindow    time.Duration
	LoginBlock     time.Duration
}

var _ Config = (*SimpleConfig)(nil)

func (c *SimpleConfig) GetSigningSecret() string {
	return c.SigningSecret
}

func (c *SimpleConfig) GetPasswordPepper() string {
	return c.PasswordPepper
}

func (c *SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

func (c *SimpleConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c *SimpleConfig) GetTrustProxyHeader() bool {
	return c.TrustProxy
}

func (c *SimpleConfig) GetLoginLimit() int {
	if c.LoginLimit == 0 {
		return DefaultLoginLimit
	}
	return c.LoginLimit
}

func (c *SimpleConfig) GetLoginWindow() time.Duration {
	if c.LoginWindow == 0 {
		return DefaultLoginWindow
	}
	return c.LoginWindow
}

func (c *SimpleConfig) GetLoginBlock() time.Duration {
	if c.LoginBlock == 0 {
		return DefaultLoginBlock
	}
	return c.LoginBlock
}

// Validate fails loud when the deployment cannot enforce security at all.
func (c *SimpleConfig) Validate() error {
	if c.SigningSecret == "" || c.PasswordPepper == "" {
		return ErrConfigurationMissing
	}
	return nil
}
