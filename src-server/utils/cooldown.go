package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type Cooldowns struct {
	cache *cache.Cache
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{cache: NewCache(time.Minute)}
}

// Use starts a cooldown of period for key, or returns a *CooldownError if
// one is already running.
func (c *Cooldowns) Use(key string, period time.Duration) error {
	if err := c.cache.Add(key, struct{}{}, period); err == nil {
		return nil
	}
	_, expiration, found := c.cache.GetWithExpiration(key)
	if !found {
		// expired between Add and GetWithExpiration
		c.cache.Set(key, struct{}{}, period)
		return nil
	}
	return &CooldownError{Remaining: time.Until(expiration)}
}

// UserCooldown is Use keyed by command and user.
func (c *Cooldowns) UserCooldown(command, userID string, period time.Duration) error {
	return c.Use(command+":"+userID, period)
}
