// Package seed loads bootstrap accounts from a YAML file so a fresh install
// has at least one administrator.
//
//	users:
//	  - username: admin
//	    email: admin@example.com
//	    full_name: Administrator
//	    password: change-me-now
//	    role: admin
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

const minPasswordLength = 8

// User is one account entry of the seed file.
type User struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type file struct {
	Users []User `yaml:"users"`
}

// Bootstrapper creates a user unless the username already exists.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, input ports.CreateUserInput) (bool, error)
}

// LoadFile reads and validates the seed file at path.
func LoadFile(path string) ([]ports.CreateUserInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates seed entries from r. Unknown keys and unknown
// roles are rejected.
func Load(r io.Reader) ([]ports.CreateUserInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Users))
	inputs := make([]ports.CreateUserInput, 0, len(doc.Users))
	for i, u := range doc.Users {
		if u.Username == "" || u.Email == "" {
			return nil, fmt.Errorf("seed: users[%d]: username and email are required", i)
		}
		if len(u.Password) < minPasswordLength {
			return nil, fmt.Errorf("seed: users[%d] (%s): password must be at least %d characters", i, u.Username, minPasswordLength)
		}
		if len(u.Password) > domain.MaxPasswordBytes {
			return nil, fmt.Errorf("seed: users[%d] (%s): %w", i, u.Username, domain.ErrPasswordTooLong)
		}
		if _, dup := seen[u.Username]; dup {
			return nil, fmt.Errorf("seed: users[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = struct{}{}

		role := domain.RoleUser
		if u.Role != "" {
			parsed, err := domain.ParseRole(u.Role)
			if err != nil {
				return nil, fmt.Errorf("seed: users[%d] (%s): %w", i, u.Username, err)
			}
			role = parsed
		}

		inputs = append(inputs, ports.CreateUserInput{
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			Password: u.Password,
			Role:     role,
		})
	}
	return inputs, nil
}

// Apply bootstraps every entry and returns how many accounts were created.
// Existing usernames are left untouched.
func Apply(ctx context.Context, b Bootstrapper, inputs []ports.CreateUserInput, log zerolog.Logger) (int, error) {
	created := 0
	for _, in := range inputs {
		ok, err := b.Bootstrap(ctx, in)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", in.Username, err)
		}
		if ok {
			created++
		} else {
			log.Debug().Str("username", in.Username).Msg("seed user already exists")
		}
	}
	return created, nil
}
