package github

import "github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"

var _ ports.TokenSource = StaticToken("")

// StaticToken is a fixed credential, typically read from the environment.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
