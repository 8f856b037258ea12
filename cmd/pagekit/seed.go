package main

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/pagekit/pkg/logs"
)

// seed fills store with n entries of every log type, one minute apart.
func seed(ctx context.Context, store logs.Store, n int) error {
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		at := now.Add(-time.Duration(i) * time.Minute)
		user := fmt.Sprintf("user%03d", i)
		email := user + "@example.com"

		entries := []logs.Entry{
			{Type: logs.LoginAttempts, CreatedAt: at, Username: user, IPAddress: fmt.Sprintf("10.0.%d.%d", i/250, i%250+1), UserAgent: "seed", Success: i%3 != 0},
			{Type: logs.UserRegistrations, CreatedAt: at, Username: user, Email: email, Active: i%4 != 0, Admin: i == 0},
			{Type: logs.EmailVerifications, CreatedAt: at, Username: user, Email: email, Verified: i%2 == 0, ExpiresAt: at.Add(24 * time.Hour)},
			{Type: logs.ContactSubmissions, CreatedAt: at, Name: "Visitor " + user, Email: email, Subject: "Hello", Message: "Seeded message " + user},
		}
		for _, e := range entries {
			if err := store.Insert(ctx, e); err != nil {
				return err
			}
		}
	}
	return nil
}
